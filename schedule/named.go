/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	"github.com/diagridio/go-calendar-cron/caltime"
)

// Named is a fixed recurrence which resets the finer fields of a time and
// moves the coarser one forward.
type Named struct {
	name  string
	step  func(t *caltime.Time)
	flags Flags
}

// Hourly recurs at the start of every hour.
func Hourly() *Named {
	return &Named{
		name:  "@hourly",
		flags: DefaultFlags(),
		step: func(t *caltime.Time) {
			t.Seconds = 0
			t.Minutes = 0
			t.Hours++
		},
	}
}

// Daily recurs at midnight.
func Daily() *Named {
	return &Named{
		name:  "@daily",
		flags: DefaultFlags(),
		step: func(t *caltime.Time) {
			t.Seconds = 0
			t.Minutes = 0
			t.Hours = 0
			t.Days++
		},
	}
}

// Weekly recurs at midnight on Sunday.
func Weekly() *Named {
	return &Named{
		name:  "@weekly",
		flags: DefaultFlags(),
		step: func(t *caltime.Time) {
			t.Seconds = 0
			t.Minutes = 0
			t.Hours = 0
			// Sunday of the following week, so a Sunday moves a full week.
			t.SetWeekday(7)
		},
	}
}

// Monthly recurs at midnight on the first day of every month.
func Monthly() *Named {
	return &Named{
		name:  "@monthly",
		flags: DefaultFlags(),
		step: func(t *caltime.Time) {
			t.Seconds = 0
			t.Minutes = 0
			t.Hours = 0
			t.Days = 0
			t.Months++
		},
	}
}

// WithFlags returns a copy of the schedule using the given flags.
func (n *Named) WithFlags(flags Flags) *Named {
	c := *n
	c.flags = flags
	return &c
}

func (n *Named) Increment(t caltime.Time) caltime.Time {
	t.Normalize()
	n.step(&t)
	return t.Normalized()
}

func (n *Named) Flags() Flags {
	return n.flags
}

func (n *Named) String() string {
	if n.flags != DefaultFlags() {
		return n.name + " " + n.flags.String()
	}
	return n.name
}
