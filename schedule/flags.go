/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package schedule

import (
	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
)

// Flags controls how the run loop treats a schedule.
type Flags struct {
	// Drop skips occurrences which are already in the past when they are
	// computed, rather than invoking the callback immediately for each.
	Drop bool
}

// DefaultFlags returns the flags used when an expression carries none.
func DefaultFlags() Flags {
	return Flags{Drop: true}
}

// ParseFlags parses a flags token. 'D' enables dropping past occurrences and
// 'd' disables it. The last occurrence of either wins.
func ParseFlags(token string) (Flags, error) {
	if len(token) == 0 {
		return Flags{}, apierrors.NewParseError(token, "empty flags")
	}

	flags := DefaultFlags()
	for _, c := range token {
		switch c {
		case 'D':
			flags.Drop = true
		case 'd':
			flags.Drop = false
		default:
			return Flags{}, apierrors.NewParseError(token, "unknown flag %q", c)
		}
	}

	return flags, nil
}

func (f Flags) String() string {
	if f.Drop {
		return "D"
	}
	return "d"
}
