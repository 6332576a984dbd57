// Package mctx provides the machine-context primitive the scheduler
// switches between: allocate an execution context bound to an entry
// function, hand control from one context to another, and tear a
// context down.
//
// Contexts are backed by goroutines parked on a per-context channel.
// A context switch is a strict baton pass: the target is signalled,
// then the caller parks, so at most one context executes at a time.
// "Stack" allocation and release map onto goroutine creation and exit;
// the Go runtime owns the memory.
package mctx

import (
	"runtime"
	"sync/atomic"
)

// live counts started contexts whose goroutines have not yet exited.
var live atomic.Int64

// Context is a switchable execution context. Instances are created by
// New (adopting the calling goroutine's pre-existing execution) or
// Start (binding a fresh goroutine to an entry function).
type Context struct {
	// receives the baton; buffered so a switch-in cannot block on a
	// goroutine that has not parked yet
	resume chan struct{}
	// closed when the owning goroutine exits; nil for adopted contexts
	done      chan struct{}
	destroyed atomic.Bool
}

// New initializes a context for a pre-existing execution, i.e. one that
// is already running on a goroutine it does not own. The context is
// populated by the first switch out of it.
func New() *Context {
	return &Context{resume: make(chan struct{}, 1)}
}

// Start allocates a context bound to fn. A new goroutine is spawned,
// parked until the first Switch targeting the context, at which point
// fn is invoked. If fn returns, or the context is destroyed while
// parked, the goroutine exits.
func Start(fn func()) *Context {
	x := &Context{
		resume: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	live.Add(1)
	go func() {
		defer close(x.done)
		defer live.Add(-1)
		if _, ok := <-x.resume; ok {
			fn()
		}
	}()
	return x
}

// Switch hands execution to the context to, then parks the calling
// goroutine on from. It returns when a later Switch targets from. If
// from is destroyed while parked, the calling goroutine terminates via
// [runtime.Goexit], running its deferred calls.
//
// Switching to a destroyed context panics.
func Switch(from, to *Context) {
	to.resume <- struct{}{}
	if _, ok := <-from.resume; !ok {
		runtime.Goexit()
	}
}

// Destroy releases the context. A goroutine parked on it is woken and
// exits; Destroy returns once it has. Destroy is idempotent. The
// context must not be switched to afterwards.
func (x *Context) Destroy() {
	if !x.destroyed.CompareAndSwap(false, true) {
		return
	}
	close(x.resume)
	if x.done != nil {
		<-x.done
	}
}

// Live reports the number of started contexts that have not yet
// released their goroutine. It exists so tests can verify reclamation.
func Live() int64 {
	return live.Load()
}
