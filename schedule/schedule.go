/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	"time"

	"github.com/diagridio/go-calendar-cron/caltime"
)

// Interface is a recurrence which yields the next occurrence after a given
// calendar time.
type Interface interface {
	// Increment returns the next occurrence strictly after t, normalized.
	Increment(t caltime.Time) caltime.Time

	// Flags returns the run loop flags of the schedule.
	Flags() Flags

	// String returns the expression the schedule was built from.
	String() string
}

// Next returns the next occurrence of the schedule strictly after t, in t's
// UTC offset.
func Next(s Interface, t time.Time) time.Time {
	return s.Increment(caltime.From(t)).Time()
}
