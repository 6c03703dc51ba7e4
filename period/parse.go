/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package period

import (
	"regexp"
	"strconv"
	"strings"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
)

var (
	dashRange = regexp.MustCompile(`^(\d+)-(\d+)$`)
	dotRange  = regexp.MustCompile(`^(-?\d+)\.\.(-?\d+)$`)
)

// Parse parses a single field of a recurrence expression. A field is a
// comma separated list of values, inclusive ranges "a-b" or "a..b", or "*",
// optionally followed by "/N" to keep one value per N. Only the "a..b" form
// accepts negative bounds.
func Parse(kind Kind, spec string) (*Period, error) {
	spec = strings.TrimSpace(spec)

	valuePart, divisorPart, hasDivisor := strings.Cut(spec, "/")

	divisor := 1
	if hasDivisor {
		d, err := strconv.Atoi(divisorPart)
		if err != nil {
			return nil, apierrors.NewParseError(spec, "%s divisor %q is not an integer", kind, divisorPart)
		}
		divisor = d
	}

	var values []int
	switch valuePart {
	case "*":
	case "":
		if hasDivisor {
			return nil, apierrors.NewParseError(spec, "%s divisor without values", kind)
		}
	default:
		var err error
		values, err = parseValues(kind, spec, valuePart)
		if err != nil {
			return nil, err
		}
	}

	return build(kind, spec, values, divisor)
}

func parseValues(kind Kind, spec, valuePart string) ([]int, error) {
	values := make([]int, 0)
	for _, part := range strings.Split(valuePart, ",") {
		part = strings.TrimSpace(part)

		match := dashRange.FindStringSubmatch(part)
		if match == nil {
			match = dotRange.FindStringSubmatch(part)
		}

		if match == nil {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, apierrors.NewParseError(spec, "%s value %q is not an integer", kind, part)
			}
			values = append(values, v)
			continue
		}

		from, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, apierrors.NewParseError(spec, "%s range %q bound %q is not an integer", kind, part, match[1])
		}
		to, err := strconv.Atoi(match[2])
		if err != nil {
			return nil, apierrors.NewParseError(spec, "%s range %q bound %q is not an integer", kind, part, match[2])
		}
		if to < from {
			return nil, apierrors.NewParseError(spec, "%s range %q is reversed", kind, part)
		}

		// Expansion stays within the natural range of the field.
		minimum, size := kind.bounds()
		if from < minimum || to >= size {
			return nil, apierrors.NewParseError(spec, "%s range %q out of range %d-%d", kind, part, minimum, size-1)
		}
		for v := from; v <= to; v++ {
			values = append(values, v)
		}
	}

	return values, nil
}
