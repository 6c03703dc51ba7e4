/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
	"github.com/diagridio/go-calendar-cron/caltime"
)

// Callback is invoked at every occurrence of a schedule. Returned errors are
// logged and do not stop the schedule.
type Callback func(ctx context.Context, occurrence time.Time) error

// RunnerOptions are the options for creating a new Runner.
type RunnerOptions struct {
	// Name identifies the execution in logs and errors. Defaults to the
	// schedule expression.
	Name string

	// Schedule is the recurrence to run.
	Schedule Interface

	// Callback is invoked at every occurrence.
	Callback Callback

	// Clock is the time source. Defaults to the real clock.
	Clock clock.Clock

	// Log is the logger to use. Defaults to a discarding logger.
	Log logr.Logger
}

// Runner drives a single execution of a schedule, sleeping until each
// occurrence and invoking the callback. A Runner is not safe for concurrent
// use.
type Runner struct {
	name     string
	schedule Interface
	fn       Callback
	clock    clock.Clock
	log      logr.Logger

	iterations uint64
}

func NewRunner(opts RunnerOptions) *Runner {
	name := opts.Name
	if len(name) == 0 {
		name = opts.Schedule.String()
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return &Runner{
		name:     name,
		schedule: opts.Schedule,
		fn:       opts.Callback,
		clock:    clk,
		log:      log.WithName("runner").WithValues("name", name, "schedule", opts.Schedule.String()),
	}
}

// RunOnce waits for the next occurrence after reference and invokes the
// callback, returning the occurrence. Occurrences already in the past are
// skipped when the schedule drops them, and invoked immediately otherwise.
// Returns a NonAdvancingSchedule error when the schedule fails to move past
// its reference after the first attempt of the execution.
func (r *Runner) RunOnce(ctx context.Context, reference caltime.Time) (caltime.Time, error) {
	var dropped int
	for {
		scheduled := r.schedule.Increment(reference)
		if !scheduled.After(reference) && (r.iterations > 0 || dropped > 0) {
			return reference, apierrors.NewNonAdvancingSchedule(r.schedule.String(), reference.Time(), scheduled.Time())
		}

		occurrence := scheduled.Time()
		delta := occurrence.Sub(r.clock.Now())
		r.log.V(1).Info("Next occurrence", "scheduled", occurrence, "delta", delta)

		if delta < 0 && r.schedule.Flags().Drop {
			dropped++
			r.log.Info("Skipping past occurrence", "scheduled", occurrence, "delta", delta, "dropped", dropped)
			if err := ctx.Err(); err != nil {
				return reference, err
			}
			reference = scheduled
			continue
		}

		if _, err := scheduled.Sleep(ctx, r.clock, 0); err != nil {
			return reference, err
		}

		r.invoke(ctx, occurrence, delta)
		r.iterations++

		return scheduled, nil
	}
}

// Run invokes RunOnce in a loop, feeding every occurrence forward as the
// next reference. Returns nil once ctx is cancelled, or the error which
// stopped the schedule.
func (r *Runner) Run(ctx context.Context, reference caltime.Time) error {
	for {
		next, err := r.RunOnce(ctx, reference)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			r.log.Error(err, "Schedule stopped")
			return err
		}

		reference = next
	}
}

// Iterations returns the number of callbacks invoked so far.
func (r *Runner) Iterations() uint64 {
	return r.iterations
}

func (r *Runner) invoke(ctx context.Context, occurrence time.Time, delta time.Duration) {
	err := func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("callback panicked: %v", rec)
			}
		}()
		return r.fn(ctx, occurrence)
	}()

	if err == nil {
		return
	}

	// Callbacks interrupted by shutdown are not failures.
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return
	}

	r.log.Error(apierrors.NewCallbackFailed(r.name, occurrence, delta, err),
		"Callback failed", "scheduled", occurrence, "delta", delta)
}
