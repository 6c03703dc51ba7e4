/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package caltime

import (
	"context"
	"fmt"
	"time"

	"k8s.io/utils/clock"
)

// Time is a calendar point in time whose fields may temporarily hold values
// outside of their natural range, e.g. Seconds = 75 or Months = 13. Months
// and Days are zero-based: month 0 is January and day 0 is the first day of
// the month. Offset is the fixed number of seconds east of UTC.
//
// Field arithmetic never carries implicitly. Call Normalize before comparing,
// formatting or reading derived values when fields may be out of range.
type Time struct {
	Years   int
	Months  int
	Days    int
	Hours   int
	Minutes int
	Seconds int

	Offset int
}

// Date returns a Time with the given raw fields.
func Date(years, months, days, hours, minutes, seconds, offset int) Time {
	return Time{
		Years:   years,
		Months:  months,
		Days:    days,
		Hours:   hours,
		Minutes: minutes,
		Seconds: seconds,
		Offset:  offset,
	}
}

// From converts a wall-clock time, keeping its UTC offset. Sub-second
// precision is dropped.
func From(t time.Time) Time {
	_, offset := t.Zone()
	return Time{
		Years:   t.Year(),
		Months:  int(t.Month()) - 1,
		Days:    t.Day() - 1,
		Hours:   t.Hour(),
		Minutes: t.Minute(),
		Seconds: t.Second(),
		Offset:  offset,
	}
}

// Now returns the current time of the given clock.
func Now(clk clock.PassiveClock) Time {
	return From(clk.Now())
}

// Normalize resolves all out-of-range fields into a canonical calendar time,
// carrying seconds into minutes, minutes into hours, hours into days and days
// into months and years. Normalize mutates and returns t.
func (t *Time) Normalize() *Time {
	minutes, seconds := divmod(t.Seconds, 60)
	hours, minutes := divmod(t.Minutes+minutes, 60)
	days, hours := divmod(t.Hours+hours, 24)
	days += t.Days

	// Walk the month axis from the 1st of January of the starting year and let
	// the calendar resolve year and month before adding the days, so that
	// multi-year overflow and negative months are handled.
	date := time.Date(t.Years, time.January, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, t.Months, 0).
		AddDate(0, 0, days)

	t.Years = date.Year()
	t.Months = int(date.Month()) - 1
	t.Days = date.Day() - 1
	t.Hours = hours
	t.Minutes = minutes
	t.Seconds = seconds

	return t
}

// Normalized returns a normalized copy of t.
func (t Time) Normalized() Time {
	return *t.Normalize()
}

// Weekday returns the day of the week of the normalized time, with Sunday as
// 0.
func (t Time) Weekday() int {
	return int(t.date().Weekday())
}

// SetWeekday moves the time by the difference between the given weekday and
// the current weekday. Values beyond 6 move into the following week.
func (t *Time) SetWeekday(weekday int) {
	t.Days += weekday - t.Weekday()
}

// SetMonthday sets the day of the current month. Negative values count
// backwards from the end of the month, with -1 being the last day.
func (t *Time) SetMonthday(monthday int) {
	if monthday >= 0 {
		t.Days = monthday
		return
	}

	t.Days = DaysIn(t.Years, t.Months) + monthday
}

// DaysIn returns the number of days in the given zero-based month. Months
// outside of 0-11 roll into neighbouring years.
func DaysIn(years, months int) int {
	// Day 0 of the following month is the last day of this month.
	return time.Date(years, time.Month(months+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// Compare compares the normalized tuples of t and other, returning -1, 0 or
// +1.
func (t Time) Compare(other Time) int {
	a, b := t.Normalized().tuple(), other.Normalized().tuple()
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// Equal reports whether t and other normalize to the same tuple.
func (t Time) Equal(other Time) bool {
	return t.Compare(other) == 0
}

// Before reports whether t sorts before other.
func (t Time) Before(other Time) bool {
	return t.Compare(other) < 0
}

// After reports whether t sorts after other.
func (t Time) After(other Time) bool {
	return t.Compare(other) > 0
}

// Sub returns the duration t-other.
func (t Time) Sub(other Time) time.Duration {
	return t.Time().Sub(other.Time())
}

// Time returns the instant t represents, in a fixed zone carrying t's
// offset.
func (t Time) Time() time.Time {
	n := t.Normalized()
	return time.Date(n.Years, time.Month(n.Months+1), n.Days+1,
		n.Hours, n.Minutes, n.Seconds, 0, time.FixedZone("", n.Offset))
}

// Sleep blocks until t, shifted by bias, has been reached on the given clock.
// It returns the duration slept, which is zero when t is already in the past.
// Sleep returns early with the context error if ctx is cancelled.
func (t Time) Sleep(ctx context.Context, clk clock.Clock, bias time.Duration) (time.Duration, error) {
	duration := t.Time().Sub(clk.Now()) + bias
	if duration <= 0 {
		return 0, nil
	}

	timer := clk.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C():
		return duration, nil
	}
}

func (t Time) String() string {
	return fmt.Sprintf("%04d+%02d+%02d %02d:%02d:%02d %d",
		t.Years, t.Months, t.Days, t.Hours, t.Minutes, t.Seconds, t.Offset)
}

func (t Time) tuple() [7]int {
	return [7]int{t.Years, t.Months, t.Days, t.Hours, t.Minutes, t.Seconds, t.Offset}
}

func (t Time) date() time.Time {
	n := t.Normalized()
	return time.Date(n.Years, time.Month(n.Months+1), n.Days+1, 0, 0, 0, 0, time.UTC)
}

// divmod divides with flooring, so that the remainder always has the sign of
// the divisor.
func divmod(value, divisor int) (int, int) {
	quotient, remainder := value/divisor, value%divisor
	if remainder < 0 {
		quotient--
		remainder += divisor
	}
	return quotient, remainder
}
