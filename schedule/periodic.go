/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	"fmt"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
	"github.com/diagridio/go-calendar-cron/caltime"
	"github.com/diagridio/go-calendar-cron/period"
)

// maxPasses bounds the number of fit passes of a single increment.
const maxPasses = 1024

// leapYear is any leap year, used for the longest length of every month.
const leapYear = 2000

// kinds is the order fields are visited in, finest first.
var kinds = [...]period.Kind{
	period.Seconds,
	period.Minutes,
	period.Hours,
	period.Weekday,
	period.Monthday,
	period.Month,
}

// Periodic is a schedule built from one period per calendar field. Weekday
// and month-day constraints must both hold for a time to match.
type Periodic struct {
	expression string
	fields     [len(kinds)]*period.Period
	flags      Flags
}

// NewPeriodic returns a Periodic from the given fields, finest first. A nil
// period accepts every value of its field.
func NewPeriodic(seconds, minutes, hours, weekday, monthday, month *period.Period, flags Flags) (*Periodic, error) {
	p := &Periodic{flags: flags}

	for i, field := range []*period.Period{seconds, minutes, hours, weekday, monthday, month} {
		if field == nil {
			field = period.Every(kinds[i])
		}
		if field.Kind() != kinds[i] {
			return nil, fmt.Errorf("field %d must be a %s period, got %s", i, kinds[i], field.Kind())
		}
		p.fields[i] = field
	}

	p.expression = fmt.Sprintf("%s %s %s %s %s %s %s",
		p.fields[0], p.fields[1], p.fields[2], p.fields[3], p.fields[4], p.fields[5], flags)

	if !reachable(p.fields[5], p.fields[4]) {
		return nil, apierrors.NewParseError(p.expression, "no accepted month day exists in any accepted month")
	}

	return p, nil
}

// reachable reports whether some accepted month has an accepted month day
// which exists in it, in a leap year. Every other combination of fields,
// weekday included, recurs within a few years once this holds.
func reachable(months, monthdays *period.Period) bool {
	for _, month := range months.Values() {
		days := caltime.DaysIn(leapYear, month)
		for _, day := range monthdays.Values() {
			if (day >= 0 && day < days) || (day < 0 && day >= -days) {
				return true
			}
		}
	}
	return false
}

// Increment returns the first time strictly after t at which every field
// matches.
func (p *Periodic) Increment(t caltime.Time) caltime.Time {
	t.Normalize()

	p.fields[0].Increment(&t)
	p.fit(&t, 1)

	// A month-day reset can move off an accepted weekday and the weekday reset
	// that follows can move off an accepted month-day, so keep fitting until
	// both hold.
	for pass := 1; pass < maxPasses && !p.Includes(t); pass++ {
		p.fit(&t, 0)
	}

	return t.Normalized()
}

// fit visits every field from the given index upwards, incrementing those
// which do not match and resetting all finer fields, coarsest first.
func (p *Periodic) fit(t *caltime.Time, from int) {
	for i := from; i < len(p.fields); i++ {
		t.Normalize()
		if p.fields[i].Includes(*t) {
			continue
		}

		p.fields[i].Increment(t)
		for j := i - 1; j >= 0; j-- {
			p.fields[j].Reset(t)
		}
	}
}

// Includes reports whether every field of t matches.
func (p *Periodic) Includes(t caltime.Time) bool {
	t.Normalize()
	for _, field := range p.fields {
		if !field.Includes(t) {
			return false
		}
	}
	return true
}

// Field returns the period constraining the given field.
func (p *Periodic) Field(kind period.Kind) *period.Period {
	for i, k := range kinds {
		if k == kind {
			return p.fields[i]
		}
	}
	return nil
}

func (p *Periodic) Flags() Flags {
	return p.flags
}

func (p *Periodic) String() string {
	return p.expression
}
