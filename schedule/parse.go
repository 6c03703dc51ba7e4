/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	"fmt"
	"strings"
	"unicode"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
	"github.com/diagridio/go-calendar-cron/period"
)

var descriptors = map[string]func() *Named{
	"@hourly":  Hourly,
	"@daily":   Daily,
	"@weekly":  Weekly,
	"@monthly": Monthly,
}

// Parse parses a recurrence expression of six whitespace separated fields,
// "seconds minutes hours weekday monthday month", followed by an optional
// flags token. All fields take raw zero-based values: month 0 is January,
// month-day 0 is the first of the month and weekday 0 is Sunday. The
// descriptors @hourly, @daily, @weekly and @monthly are also accepted.
func Parse(expression string) (Interface, error) {
	tokens := strings.Fields(expression)
	if len(tokens) == 0 {
		return nil, apierrors.NewParseError(expression, "empty expression")
	}

	if named, ok := descriptors[tokens[0]]; ok {
		switch len(tokens) {
		case 1:
			return named(), nil
		case 2:
			flags, err := ParseFlags(tokens[1])
			if err != nil {
				return nil, err
			}
			return named().WithFlags(flags), nil
		default:
			return nil, apierrors.NewParseError(expression, "unexpected tokens after %s", tokens[0])
		}
	}

	return ParsePeriodic(expression)
}

// ParsePeriodic parses a six field recurrence expression with optional flags.
func ParsePeriodic(expression string) (*Periodic, error) {
	tokens := strings.Fields(expression)

	flags := DefaultFlags()
	if n := len(tokens); n > 0 && strings.IndexFunc(tokens[n-1], unicode.IsLetter) >= 0 {
		var err error
		if flags, err = ParseFlags(tokens[n-1]); err != nil {
			return nil, err
		}
		tokens = tokens[:n-1]
	}

	if len(tokens) != len(kinds) {
		return nil, apierrors.NewParseError(expression, "expected %d fields, got %d", len(kinds), len(tokens))
	}

	var fields [len(kinds)]*period.Period
	for i, kind := range kinds {
		field, err := period.Parse(kind, tokens[i])
		if err != nil {
			return nil, fmt.Errorf("%s field of '%s': %w", kind, expression, err)
		}
		fields[i] = field
	}

	p, err := NewPeriodic(fields[0], fields[1], fields[2], fields[3], fields[4], fields[5], flags)
	if err != nil {
		return nil, err
	}
	p.expression = strings.Join(strings.Fields(expression), " ")

	return p, nil
}
