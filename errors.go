package uthread

import "errors"

// Standard errors.
var (
	// ErrResourceExhausted is returned by Scheduler.Create when the
	// configured thread limit (WithMaxThreads) would be exceeded.
	ErrResourceExhausted = errors.New("uthread: resource exhausted")

	// ErrNilEntry is returned when a nil entry function is passed to
	// Run or Scheduler.Create.
	ErrNilEntry = errors.New("uthread: nil entry function")

	// ErrNilSemaphore is returned by semaphore operations on a nil or
	// destroyed handle.
	ErrNilSemaphore = errors.New("uthread: nil or destroyed semaphore")

	// ErrSemInUse is returned by Sem.Destroy while threads remain
	// blocked on the semaphore.
	ErrSemInUse = errors.New("uthread: semaphore has blocked waiters")
)
