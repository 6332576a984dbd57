package uthread

import (
	"runtime"
	"sync/atomic"

	"github.com/joeycumines/go-uthread/internal/mctx"
	"github.com/joeycumines/go-uthread/queue"
	"github.com/joeycumines/logiface"
)

type (
	// Func is a thread entry function. It receives the scheduler that
	// dispatched it, which it may use to create threads, yield, and
	// synchronize. Returning from a Func terminates the thread, as if
	// by Scheduler.Exit.
	Func func(sched *Scheduler, arg any)

	// Thread is the control block for one user-level thread. Instances
	// are owned by the scheduler; user code obtains them via
	// Scheduler.Current, e.g. to pass to Scheduler.Unblock.
	Thread struct {
		ctx   *mctx.Context
		id    uint64
		state ThreadState
	}

	// Scheduler multiplexes many threads of control onto the single
	// goroutine that called Run, using explicit context switches. At
	// any instant exactly one thread is running; there is no parallel
	// execution.
	//
	// A Scheduler is only valid for the duration of its Run call, and
	// only usable from code running on one of its threads. All methods
	// except Metrics will panic or misbehave if called from any other
	// goroutine.
	Scheduler struct {
		// Prevent copying
		_ [0]func()

		ready   *queue.Queue[*Thread]
		zombie  *queue.Queue[*Thread]
		current *Thread

		preempt preempter

		logger  *logiface.Logger[logiface.Event]
		metrics *Metrics

		// goroutine id of the running thread, for misuse detection
		running atomic.Uint64

		maxThreads int
		live       int
		nextID     uint64
	}
)

// ID returns the thread's identifier, unique within its scheduler. The
// idle thread (the Run caller) has id 0.
func (x *Thread) ID() uint64 {
	return x.id
}

// State returns the thread's current state.
func (x *Thread) State() ThreadState {
	return x.state
}

// Run bootstraps a scheduler and runs it to completion: it starts
// preemption (per WithPreemption), adopts the calling goroutine as the
// idle thread, creates the initial thread from entry and arg, and
// dispatches threads until the ready queue drains. It then reclaims
// zombie thread resources, stops preemption, and returns.
//
// Run returns a non-nil error only if bootstrap fails; otherwise it
// returns nil after all created threads have terminated. Threads still
// blocked on a semaphore when the ready queue drains are abandoned.
func Run(entry Func, arg any, opts ...Option) error {
	cfg, err := resolveSchedulerOptions(opts)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrNilEntry
	}

	x := &Scheduler{
		ready:      queue.New[*Thread](),
		zombie:     queue.New[*Thread](),
		logger:     cfg.logger,
		maxThreads: cfg.maxThreads,
	}
	if cfg.metricsEnabled {
		x.metrics = new(Metrics)
	}

	if err := x.preempt.start(cfg.preemption); err != nil {
		return err
	}
	defer x.preempt.stop()

	idle := &Thread{state: StateRunning, ctx: mctx.New()}
	x.current = idle
	x.running.Store(goroutineID())

	x.logger.Debug().
		Bool("preemption", cfg.preemption).
		Log("uthread: run starting")

	if err := x.Create(entry, arg); err != nil {
		return err
	}

	for x.ready.Len() > 0 {
		x.Yield()
	}

	for {
		t, ok := x.zombie.Dequeue()
		if !ok {
			break
		}
		t.ctx.Destroy()
		if x.metrics != nil {
			x.metrics.threadsReaped.Add(1)
		}
		x.logger.Trace().
			Uint64("thread", t.id).
			Log("uthread: zombie reaped")
	}

	x.logger.Debug().Log("uthread: run complete")
	return nil
}

// Current returns the running thread. It never fails.
func (x *Scheduler) Current() *Thread {
	return x.current
}

// Create allocates a new thread that will invoke entry(x, arg) on its
// first dispatch, and appends it to the tail of the ready queue. It
// fails with ErrResourceExhausted if the WithMaxThreads bound would be
// exceeded.
func (x *Scheduler) Create(entry Func, arg any) error {
	if entry == nil {
		return ErrNilEntry
	}
	x.preempt.disable()
	if x.maxThreads > 0 && x.live >= x.maxThreads {
		x.preempt.enable()
		return ErrResourceExhausted
	}
	x.nextID++
	t := &Thread{state: StateReady, id: x.nextID}
	t.ctx = mctx.Start(func() {
		x.running.Store(goroutineID())
		entry(x, arg)
		x.Exit()
	})
	x.ready.Enqueue(t)
	x.live++
	if x.metrics != nil {
		x.metrics.threadsCreated.Add(1)
	}
	x.preempt.enable()
	x.logger.Trace().
		Uint64("thread", t.id).
		Log("uthread: thread created")
	return nil
}

// Yield deschedules the running thread in favor of the head of the
// ready queue. If the running thread is still runnable it is appended
// to the tail, giving round-robin rotation; a thread already routed to
// another queue (blocked or zombie) is not re-enqueued. If the ready
// queue is empty, Yield returns immediately and the caller keeps
// running.
//
// The caller returns from Yield only once a later scheduling action
// dispatches it again.
func (x *Scheduler) Yield() {
	x.assertRunning("Yield")
	x.preempt.disable()
	x.preempt.clearPending()
	prev := x.current
	next, ok := x.ready.Dequeue()
	if !ok {
		x.preempt.enable()
		return
	}
	if prev.state == StateRunning {
		prev.state = StateReady
		x.ready.Enqueue(prev)
	}
	next.state = StateRunning
	x.current = next
	if x.metrics != nil {
		x.metrics.dispatches.Add(1)
	}
	x.preempt.enable()
	mctx.Switch(prev.ctx, next.ctx)
	x.running.Store(goroutineID())
}

// Exit terminates the running thread, moving it to the zombie queue for
// reclamation by the run loop. It never returns. Exiting the idle
// thread (calling Exit from the Run caller itself) is a programming
// error and panics.
func (x *Scheduler) Exit() {
	x.assertRunning("Exit")
	if x.current.id == 0 {
		panic("uthread: Exit called from the run loop thread")
	}
	x.preempt.disable()
	x.current.state = StateZombie
	x.zombie.Enqueue(x.current)
	x.live--
	x.preempt.enable()
	x.logger.Trace().
		Uint64("thread", x.current.id).
		Log("uthread: thread exited")
	x.Yield()
	panic("uthread: zombie thread resumed")
}

// Block deschedules the running thread until a matching Unblock. The
// caller must already have registered the thread on the waiter queue of
// whatever will wake it (as the semaphore does); a thread blocked with
// no such registration is never dispatched again. Block on an
// already-blocked thread is a no-op.
func (x *Scheduler) Block() {
	x.assertRunning("Block")
	if x.current.state == StateBlocked {
		return
	}
	x.current.state = StateBlocked
	x.Yield()
}

// Unblock makes t eligible to run again, appending it to the tail of
// the ready queue. It is a no-op unless t is blocked.
func (x *Scheduler) Unblock(t *Thread) {
	if t == nil {
		return
	}
	x.preempt.disable()
	if t.state == StateBlocked {
		t.state = StateReady
		x.ready.Enqueue(t)
	}
	x.preempt.enable()
}

// Checkpoint is a preemption safepoint: if a preemption tick has been
// latched since the last dispatch, the running thread yields. Compute
// loops that do not otherwise interact with the scheduler should call
// Checkpoint periodically to remain preemptible; when no tick is
// pending it costs an atomic load and a failed compare-and-swap (a
// single atomic load while preemption is masked).
func (x *Scheduler) Checkpoint() {
	if x.preempt.takePending() {
		if x.metrics != nil {
			x.metrics.preemptions.Add(1)
		}
		x.Yield()
	}
}

// DisablePreempt masks preemption, preventing forced yields until the
// matching EnablePreempt. Calls nest. Application code can use this to
// make a non-atomic sequence uninterruptible; voluntary scheduler calls
// (Yield, Block, semaphore operations) still deschedule.
func (x *Scheduler) DisablePreempt() {
	x.preempt.disable()
}

// EnablePreempt unmasks preemption, reversing one DisablePreempt. It
// panics if unmatched.
func (x *Scheduler) EnablePreempt() {
	x.preempt.enable()
}

// Metrics returns the collected runtime statistics, or nil unless
// WithMetrics was set. Safe to call from any goroutine.
func (x *Scheduler) Metrics() *Metrics {
	return x.metrics
}

// assertRunning panics if called from any goroutine other than the one
// executing the scheduler's running thread, e.g. a goroutine spawned by
// user code.
func (x *Scheduler) assertRunning(op string) {
	if x.running.Load() != goroutineID() {
		panic("uthread: " + op + " called from outside the running thread")
	}
}

// goroutineID returns the current goroutine's ID.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
