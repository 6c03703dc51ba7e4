/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package cron

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"k8s.io/utils/clock"

	"github.com/diagridio/go-calendar-cron/api"
	"github.com/diagridio/go-calendar-cron/caltime"
	"github.com/diagridio/go-calendar-cron/internal/logging"
	"github.com/diagridio/go-calendar-cron/schedule"
)

// Options are the options for creating a new cron instance.
type Options struct {
	// Log is the logger to use for logging. Defaults to a zap production
	// logger.
	Log logr.Logger

	// Clock is the clock used to compute and wait for occurrences. Defaults
	// to the real clock.
	Clock clock.Clock
}

// cron is the implementation of the cron interface.
type cron struct {
	log   logr.Logger
	clock clock.Clock

	lock    sync.Mutex
	entries []*entry
	nextID  uint64

	running atomic.Bool
}

// New creates a new cron instance.
func New(opts Options) (api.Interface, error) {
	log := opts.Log
	if log.GetSink() == nil {
		var err error
		log, err = logging.New(logging.Options{Name: "cron"})
		if err != nil {
			return nil, err
		}
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &cron{
		log:   log,
		clock: clk,
	}, nil
}

// Add registers a schedule with its callback.
func (c *cron) Add(name string, sched schedule.Interface, fn api.CallbackFunc) (api.Entry, error) {
	if sched == nil {
		return nil, errors.New("schedule is required")
	}

	if fn == nil {
		return nil, errors.New("callback function is required")
	}

	if len(name) == 0 {
		name = sched.String()
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.running.Load() {
		return nil, errors.New("cannot add entries while cron is running")
	}

	c.nextID++
	e := &entry{
		id:       c.nextID,
		name:     name,
		schedule: sched,
		fn:       fn,
	}
	c.entries = append(c.entries, e)

	c.log.V(1).Info("Added entry", "id", e.id, "name", name, "schedule", sched.String())

	return e, nil
}

// Entries returns the registered entries in registration order.
func (c *cron) Entries() []api.Entry {
	c.lock.Lock()
	defer c.lock.Unlock()

	entries := make([]api.Entry, len(c.entries))
	for i, e := range c.entries {
		entries[i] = e
	}
	return entries
}

// Run is a blocking function that runs every registered entry until the
// context is cancelled or every entry has stopped.
func (c *cron) Run(ctx context.Context) error {
	c.lock.Lock()
	if !c.running.CompareAndSwap(false, true) {
		c.lock.Unlock()
		return errors.New("cron already running")
	}
	entries := slices.Clone(c.entries)
	c.lock.Unlock()

	defer c.running.Store(false)

	c.log.Info("Cron started", "entries", len(entries))
	defer c.log.Info("Cron stopped")

	errs := make([]error, len(entries))

	var wg sync.WaitGroup
	for i, e := range entries {
		ectx, ok := e.start(ctx)
		if !ok {
			c.log.V(1).Info("Skipping stopped entry", "id", e.id, "name", e.name)
			continue
		}

		runner := schedule.NewRunner(schedule.RunnerOptions{
			Name:     e.name,
			Schedule: e.schedule,
			Callback: schedule.Callback(e.fn),
			Clock:    c.clock,
			Log:      c.log,
		})

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer e.finish()
			errs[i] = runner.Run(ectx, caltime.Now(c.clock))
		}()
	}

	wg.Wait()

	return errors.Join(errs...)
}
