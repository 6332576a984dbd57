package uthread_test

import (
	"fmt"

	"github.com/joeycumines/go-uthread"
)

// Demonstrates cooperative scheduling: the entry thread yields to let a
// newly created thread run, then resumes.
func ExampleRun() {
	_ = uthread.Run(func(s *uthread.Scheduler, _ any) {
		fmt.Println("A")
		_ = s.Create(func(s *uthread.Scheduler, _ any) {
			fmt.Println("B")
		}, nil)
		s.Yield()
		fmt.Println("C")
	}, nil)
	// Output:
	// A
	// B
	// C
}

// Demonstrates blocking on a semaphore: the consumer thread suspends
// until the entry thread signals that an item is available.
func ExampleScheduler_NewSem() {
	_ = uthread.Run(func(s *uthread.Scheduler, _ any) {
		items := s.NewSem(0)
		var pending []string
		_ = s.Create(func(s *uthread.Scheduler, _ any) {
			_ = items.Down()
			fmt.Println("consumed", pending[0])
		}, nil)
		s.Yield() // the consumer blocks on the empty semaphore
		pending = append(pending, "job-1")
		_ = items.Up()
	}, nil)
	// Output:
	// consumed job-1
}

// Demonstrates a critical section guarded by a binary semaphore. The
// yields inside the critical section hand control to the other thread,
// which blocks at Down until the semaphore is released.
func ExampleSem_Down() {
	_ = uthread.Run(func(s *uthread.Scheduler, _ any) {
		mutex := s.NewSem(1)
		worker := func(s *uthread.Scheduler, arg any) {
			_ = mutex.Down()
			fmt.Println(arg, "enter")
			s.Yield()
			fmt.Println(arg, "leave")
			_ = mutex.Up()
		}
		_ = s.Create(worker, "first")
		_ = s.Create(worker, "second")
	}, nil)
	// Output:
	// first enter
	// first leave
	// second enter
	// second leave
}
