//go:build linux

package uthread

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// armPreemptTimer installs a per-process virtual-time interval timer
// (ITIMER_VIRTUAL) firing SIGVTALRM every period of consumed CPU time,
// and invokes tick on each expiry. Virtual time is deliberate: only CPU
// time spent in the process accumulates toward a tick, so a process
// blocked in the kernel does not generate spurious preemptions.
//
// The signal is observed via the runtime's signal delivery rather than
// an asynchronous handler; tick runs on a dedicated goroutine.
//
// The returned function disarms the timer, restores default handling of
// SIGVTALRM, and waits for the delivery goroutine to exit.
func armPreemptTimer(period time.Duration, tick func()) (func(), error) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGVTALRM)

	tv := unix.NsecToTimeval(period.Nanoseconds())
	if _, err := unix.Setitimer(unix.ItimerVirtual, unix.Itimerval{
		Interval: tv,
		Value:    tv,
	}); err != nil {
		signal.Stop(sigs)
		return nil, err
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-sigs:
				tick()
			case <-done:
				return
			}
		}
	}()

	return func() {
		_, _ = unix.Setitimer(unix.ItimerVirtual, unix.Itimerval{})
		signal.Stop(sigs)
		signal.Reset(unix.SIGVTALRM)
		close(done)
		wg.Wait()
	}, nil
}
