package uthread

import (
	"fmt"

	"github.com/joeycumines/logiface"
)

// schedulerOptions holds configuration options for Run.
type schedulerOptions struct {
	logger         *logiface.Logger[logiface.Event]
	maxThreads     int
	preemption     bool
	metricsEnabled bool
}

// Option configures a scheduler run.
type Option interface {
	applyScheduler(*schedulerOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applySchedulerFunc func(*schedulerOptions) error
}

func (x *optionImpl) applyScheduler(opts *schedulerOptions) error {
	return x.applySchedulerFunc(opts)
}

// WithPreemption sets whether the periodic preemption timer is armed
// for the duration of the run. When disabled (default), threads are
// descheduled only at their own scheduler calls.
func WithPreemption(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.preemption = enabled
		return nil
	}}
}

// WithMaxThreads bounds the number of concurrently live threads,
// if positive. Scheduler.Create fails with ErrResourceExhausted once
// the bound is reached. Zero (default) means no bound.
func WithMaxThreads(n int) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		if n < 0 {
			return fmt.Errorf("uthread: invalid max threads: %d", n)
		}
		opts.maxThreads = n
		return nil
	}}
}

// WithMetrics enables runtime metrics collection, accessible via
// Scheduler.Metrics.
func WithMetrics(enabled bool) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

// WithLogger sets the structured logger used for scheduler lifecycle
// events. A nil logger (the default) disables logging.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *schedulerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// resolveSchedulerOptions applies Option instances to schedulerOptions.
func resolveSchedulerOptions(opts []Option) (*schedulerOptions, error) {
	cfg := new(schedulerOptions)
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyScheduler(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
