/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package period

import (
	"slices"
	"strconv"
	"strings"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
	"github.com/diagridio/go-calendar-cron/caltime"
)

// Kind is the calendar field a Period constrains.
type Kind int

const (
	Seconds Kind = iota
	Minutes
	Hours
	Weekday
	Monthday
	Month
)

// monthdaySize is the natural range of positive month days, 0-30. Negative
// month days, -31 to -1, count backwards from the end of the month and are
// resolved against the actual month length.
const monthdaySize = 31

func (k Kind) String() string {
	switch k {
	case Seconds:
		return "seconds"
	case Minutes:
		return "minutes"
	case Hours:
		return "hours"
	case Weekday:
		return "weekday"
	case Monthday:
		return "monthday"
	case Month:
		return "month"
	default:
		return "unknown(" + strconv.Itoa(int(k)) + ")"
	}
}

// size returns the number of raw values in the natural range of the field.
func (k Kind) size() int {
	switch k {
	case Seconds, Minutes:
		return 60
	case Hours:
		return 24
	case Weekday:
		return 7
	case Monthday:
		return monthdaySize
	case Month:
		return 12
	default:
		return 0
	}
}

// bounds returns the smallest accepted raw value of the field and the size
// of its natural range.
func (k Kind) bounds() (int, int) {
	if k == Monthday {
		return -monthdaySize, monthdaySize
	}
	return 0, k.size()
}

func (k Kind) get(t *caltime.Time) int {
	switch k {
	case Seconds:
		return t.Seconds
	case Minutes:
		return t.Minutes
	case Hours:
		return t.Hours
	case Weekday:
		return t.Weekday()
	case Monthday:
		return t.Days
	default:
		return t.Months
	}
}

func (k Kind) set(t *caltime.Time, value int) {
	switch k {
	case Seconds:
		t.Seconds = value
	case Minutes:
		t.Minutes = value
	case Hours:
		t.Hours = value
	case Weekday:
		t.SetWeekday(value)
	case Monthday:
		t.SetMonthday(value)
	default:
		t.Months = value
	}
}

// Period is the set of acceptable values for one calendar field. A Period is
// immutable once constructed and safe for concurrent use.
type Period struct {
	kind    Kind
	spec    string
	all     bool
	divisor int

	// values are the sorted accepted values, including negative month days.
	values []int

	// positive holds the non-negative accepted values and accepted marks
	// them for lookup by raw value.
	positive []int
	accepted []bool

	// negative holds the accepted month days counted from the end of the
	// month.
	negative []int

	// successors maps every raw value of the natural range to the next
	// accepted value after it, or to the first accepted value plus the range
	// size once past the last one.
	successors []int
}

// New returns a Period of the given kind accepting the given values, thinned
// by divisor. Nil values accept the whole natural range of the field.
func New(kind Kind, values []int, divisor int) (*Period, error) {
	return build(kind, "", values, divisor)
}

// Every returns a Period accepting every value of the field.
func Every(kind Kind) *Period {
	p, err := New(kind, nil, 1)
	if err != nil {
		// Accept-all periods of a known kind are always valid.
		panic(err)
	}
	return p
}

func build(kind Kind, spec string, values []int, divisor int) (*Period, error) {
	size := kind.size()
	if size == 0 {
		return nil, apierrors.NewParseError(spec, "unknown field kind %d", int(kind))
	}

	if divisor <= 0 {
		return nil, apierrors.NewParseError(spec, "%s divisor must be a positive integer, got %d", kind, divisor)
	}

	p := &Period{
		kind:    kind,
		spec:    spec,
		divisor: divisor,
	}

	whole := values == nil
	if whole {
		p.all = divisor == 1
		values = make([]int, size)
		for i := range values {
			values[i] = i
		}
	} else {
		values = slices.Clone(values)
	}

	minimum, _ := kind.bounds()
	for _, v := range values {
		if v < minimum || v >= size {
			return nil, apierrors.NewParseError(spec, "%s value %d out of range %d-%d", kind, v, minimum, size-1)
		}
	}

	slices.Sort(values)
	values = slices.Compact(values)
	if len(values) == 0 {
		return nil, apierrors.NewParseError(spec, "%s accepts no values", kind)
	}

	p.values = divide(values, divisor)

	p.accepted = make([]bool, size)
	for _, v := range p.values {
		if v < 0 {
			p.negative = append(p.negative, v)
			continue
		}
		p.positive = append(p.positive, v)
		p.accepted[v] = true
	}

	p.successors = successors(p.positive, size)

	if len(p.spec) == 0 {
		p.spec = format(values, whole, divisor)
	}

	return p, nil
}

// divide keeps one representative per divisor-sized bucket, counted from the
// first value.
func divide(values []int, divisor int) []int {
	if divisor == 1 || len(values) <= 1 {
		return values
	}

	offset := values[0]
	filtered := make([]int, 0, len(values))
	last := -1
	for _, v := range values {
		// values are sorted, so v-offset is never negative.
		if key := (v - offset) / divisor; key != last {
			filtered = append(filtered, v)
			last = key
		}
	}

	return filtered
}

func successors(values []int, size int) []int {
	mapped := make([]int, size)
	if len(values) == 0 {
		return mapped
	}

	current := 0
	for _, v := range values {
		for current < v {
			mapped[current] = v
			current++
		}
	}

	for current < size {
		mapped[current] = values[0] + size
		current++
	}

	return mapped
}

// Kind returns the field the period constrains.
func (p *Period) Kind() Kind {
	return p.kind
}

// All reports whether the period accepts every value of its field.
func (p *Period) All() bool {
	return p.all
}

// Values returns the accepted values in ascending order.
func (p *Period) Values() []int {
	return slices.Clone(p.values)
}

// Divisor returns the step applied to the accepted values.
func (p *Period) Divisor() int {
	return p.divisor
}

// Successor returns the next accepted value after the given raw value, or
// the first accepted value plus the natural range size when none remains.
// Values outside of the natural range are shifted by whole ranges, e.g.
// Successor(-1) is the first accepted value. Negative month days are not
// considered.
func (p *Period) Successor(value int) int {
	size := len(p.successors)
	wraps, value := value/size, value%size
	if value < 0 {
		wraps--
		value += size
	}
	return p.successors[value] + wraps*size
}

// Increment moves the field of t to its next accepted value. The field may be
// left out of range, e.g. Seconds = 60, signalling a carry into the next
// coarser field on normalization.
func (p *Period) Increment(t *caltime.Time) {
	switch p.kind {
	case Weekday:
		weekday := t.Weekday()
		t.Days += p.successors[weekday] - weekday

	case Monthday:
		p.incrementMonthday(t)

	default:
		value := p.kind.get(t)
		if value < 0 || value >= len(p.successors) {
			t.Normalize()
			value = p.kind.get(t)
		}
		p.kind.set(t, p.successors[value])
	}
}

// incrementMonthday moves t to the next accepted day strictly after its
// current day, advancing month by month when the current month has none
// left.
func (p *Period) incrementMonthday(t *caltime.Time) {
	t.Normalize()
	original := *t

	if day, ok := p.monthdayAfter(t.Years, t.Months, t.Days); ok {
		t.Days = day
		return
	}

	// Month-day sets are never empty and every day index from -31 to 30 exists
	// in at least one month of any year, so this terminates within a year.
	for {
		t.Months++
		if day, ok := p.monthdayAfter(t.Years, t.Months, -1); ok {
			t.Days = day
			if t.After(original) {
				return
			}
		}
	}
}

// monthdayAfter returns the smallest accepted day of the given month that is
// strictly after day, resolving negative values against the month length.
func (p *Period) monthdayAfter(years, months, day int) (int, bool) {
	days := caltime.DaysIn(years, months)
	best, found := 0, false

	if len(p.positive) > 0 {
		candidate := p.positive[0]
		if day >= 0 && day < len(p.successors) {
			candidate = p.successors[day]
		}
		if candidate > day && candidate < days {
			best, found = candidate, true
		}
	}

	for _, v := range p.negative {
		resolved := days + v
		if resolved > day && resolved >= 0 && (!found || resolved < best) {
			best, found = resolved, true
		}
	}

	return best, found
}

// Reset moves the field of t to its first accepted value. A weekday reset
// moves forward to the first accepted weekday on or after the current day.
func (p *Period) Reset(t *caltime.Time) {
	switch p.kind {
	case Weekday:
		if weekday := t.Weekday(); !p.accepted[weekday] {
			t.Days += p.successors[weekday] - weekday
		}

	case Monthday:
		if p.all {
			t.Days = 0
			return
		}
		if day, ok := p.monthdayAfter(t.Years, t.Months, -1); ok {
			t.Days = day
			return
		}
		t.SetMonthday(p.values[0])

	default:
		p.kind.set(t, p.values[0])
	}
}

// Includes reports whether the field of the normalized t is accepted.
func (p *Period) Includes(t caltime.Time) bool {
	if p.all {
		return true
	}

	t.Normalize()
	value := p.kind.get(&t)

	if p.kind == Monthday {
		if p.accepted[value] {
			return true
		}
		return slices.Contains(p.negative, value-caltime.DaysIn(t.Years, t.Months))
	}

	return p.accepted[value]
}

func (p *Period) String() string {
	return p.spec
}

func format(values []int, whole bool, divisor int) string {
	var b strings.Builder
	if whole {
		b.WriteString("*")
	} else {
		for i, v := range values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(v))
		}
	}

	if divisor != 1 {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(divisor))
	}

	return b.String()
}
