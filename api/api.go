/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package api

import (
	"context"
	"time"

	"github.com/diagridio/go-calendar-cron/schedule"
)

// CallbackFunc is the type of the function that is called at every
// occurrence of a schedule. The occurrence is the scheduled time, not the
// time the callback actually started. A returned error is logged and does not
// stop the schedule.
type CallbackFunc func(ctx context.Context, occurrence time.Time) error

// Entry is a single registration of a schedule and its callback. Every call
// to Add creates a new Entry, so registering the same schedule twice results
// in two independent executions.
type Entry interface {
	// ID is the unique, monotonically increasing identifier of the entry.
	ID() uint64

	// Name identifies the entry in logs and errors.
	Name() string

	// Schedule is the recurrence of the entry.
	Schedule() schedule.Interface

	// Stop cancels the execution of this entry only. Stopping an entry before
	// Run means it is never executed.
	Stop()
}

// Interface is a cron interface. It drives a set of calendar schedules
// concurrently, invoking each schedule's callback at its occurrences.
type Interface interface {
	// Run is a blocking function that runs every registered entry. It will
	// return an error if the instance is already running.
	// Returns when the given context is cancelled, or every entry has
	// stopped, after all executions have finished. Fatal schedule errors are
	// joined into the returned error.
	Run(ctx context.Context) error

	// Add registers a schedule with its callback. An empty name defaults to
	// the schedule expression. Add returns an error while Run is active.
	Add(name string, schedule schedule.Interface, fn CallbackFunc) (Entry, error)

	// Entries returns the registered entries in registration order.
	Entries() []Entry
}
