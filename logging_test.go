package uthread

import (
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEvent is a minimal logiface.Event implementation for exercising
// the structured logging paths.
type testEvent struct {
	logiface.UnimplementedEvent
	level logiface.Level
}

func (e *testEvent) Level() logiface.Level        { return e.level }
func (e *testEvent) AddField(key string, val any) {}

// testEventFactory creates testEvent instances.
type testEventFactory struct{}

func (f *testEventFactory) NewEvent(level logiface.Level) *testEvent {
	return &testEvent{level: level}
}

// testEventWriter writes testEvent instances.
type testEventWriter struct {
	onWrite func(*testEvent) error
}

func (w *testEventWriter) Write(event *testEvent) error {
	if w.onWrite != nil {
		return w.onWrite(event)
	}
	return nil
}

func TestRun_withLogger(t *testing.T) {
	var events int
	writer := &testEventWriter{onWrite: func(*testEvent) error {
		events++
		return nil
	}}
	typedLogger := logiface.New[*testEvent](
		logiface.WithEventFactory[*testEvent](&testEventFactory{}),
		logiface.WithWriter[*testEvent](writer),
		logiface.WithLevel[*testEvent](logiface.LevelTrace),
	)

	err := Run(func(s *Scheduler, _ any) {
		sem := s.NewSem(1)
		assert.NoError(t, s.Create(func(*Scheduler, any) {}, nil))
		s.Yield()
		assert.NoError(t, sem.Destroy())
	}, nil, WithLogger(typedLogger.Logger()))
	require.NoError(t, err)
	// run start/complete, thread create x2, exits, reaps, sem create
	require.NotZero(t, events)
}

func TestRun_nilLoggerIsSafe(t *testing.T) {
	require.NoError(t, Run(func(s *Scheduler, _ any) {
		_ = s.NewSem(1)
	}, nil, WithLogger(nil)))
}
