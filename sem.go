package uthread

import (
	"github.com/joeycumines/go-uthread/queue"
)

// Sem is a counting semaphore layered on the scheduler's block/unblock
// interface. Waiters are woken in strict FIFO order, but wakeup is a
// signal, not a hand-off: a woken waiter retests the count, and a third
// thread may claim the resource first. Instances must be initialized
// using the Scheduler.NewSem factory.
type Sem struct {
	sched   *Scheduler
	waiters *queue.Queue[*Thread]
	count   uint
}

// NewSem creates a counting semaphore with the given initial count.
func (x *Scheduler) NewSem(count uint) *Sem {
	x.logger.Trace().
		Uint64("count", uint64(count)).
		Log("uthread: semaphore created")
	return &Sem{
		sched:   x,
		waiters: queue.New[*Thread](),
		count:   count,
	}
}

func (x *Sem) ok() bool {
	return x != nil && x.sched != nil && x.waiters != nil
}

// Down takes a resource, descheduling the calling thread until one is
// available. Fails with ErrNilSemaphore on a nil or destroyed handle.
func (x *Sem) Down() error {
	if !x.ok() {
		return ErrNilSemaphore
	}
	s := x.sched
	s.Checkpoint()
	s.preempt.disable()
	for {
		if x.count > 0 {
			x.count--
			s.preempt.enable()
			return nil
		}
		x.waiters.Enqueue(s.current)
		s.preempt.enable()
		s.Block()
		// Woken, but not handed the resource: another thread may have
		// taken it between the Up and this dispatch. Retest.
		s.preempt.disable()
	}
}

// Up releases a resource. If any threads are waiting, the head of the
// waiter queue is woken and the caller yields so the woken thread can
// run promptly. Fails with ErrNilSemaphore on a nil or destroyed
// handle.
func (x *Sem) Up() error {
	if !x.ok() {
		return ErrNilSemaphore
	}
	s := x.sched
	s.Checkpoint()
	s.preempt.disable()
	x.count++
	t, woke := x.waiters.Dequeue()
	if woke {
		s.Unblock(t)
	}
	s.preempt.enable()
	if woke {
		s.Yield()
	}
	return nil
}

// Destroy releases the semaphore, failing with ErrSemInUse while any
// threads remain blocked on it. Destroying does not account for
// threads that have begun a Down but not yet blocked; callers must
// ensure quiescence externally.
func (x *Sem) Destroy() error {
	if !x.ok() {
		return ErrNilSemaphore
	}
	x.sched.preempt.disable()
	defer x.sched.preempt.enable()
	if err := x.waiters.Destroy(); err != nil {
		return ErrSemInUse
	}
	x.waiters = nil
	return nil
}
