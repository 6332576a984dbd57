package mctx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSwitch_roundTrip(t *testing.T) {
	main := New()
	var steps []string
	var child *Context
	child = Start(func() {
		steps = append(steps, "child")
		Switch(child, main)
		steps = append(steps, "child again")
		Switch(child, main)
	})
	steps = append(steps, "main")
	Switch(main, child)
	steps = append(steps, "back")
	Switch(main, child)
	child.Destroy()
	require.Equal(t, []string{"main", "child", "back", "child again"}, steps)
}

func TestStart_liveAccounting(t *testing.T) {
	before := Live()
	main := New()
	var c *Context
	c = Start(func() { Switch(c, main) })
	require.Equal(t, before+1, Live())
	Switch(main, c)
	c.Destroy()
	require.Equal(t, before, Live())
}

func TestDestroy_neverSwitchedIn(t *testing.T) {
	before := Live()
	var entered bool
	c := Start(func() { entered = true })
	c.Destroy()
	require.Equal(t, before, Live())
	require.False(t, entered)
}

func TestDestroy_idempotent(t *testing.T) {
	c := Start(func() {})
	c.Destroy()
	c.Destroy()
}

func TestDestroy_adoptedContext(t *testing.T) {
	New().Destroy() // no goroutine to wait for
}

func TestStart_runsDeferredCallsOnDestroy(t *testing.T) {
	main := New()
	done := make(chan struct{})
	var c *Context
	c = Start(func() {
		defer close(done)
		Switch(c, main)
	})
	Switch(main, c)
	c.Destroy()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deferred call did not run")
	}
}
