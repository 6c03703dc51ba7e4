/*
Copyright (c) 2025 Diagrid Inc.
Licensed under the MIT License.
*/

package errors

import (
	"errors"
	"fmt"
	"time"
)

// ParseError is an error type that indicates a recurrence expression, one of
// its fields, or its flags could not be parsed.
type ParseError struct {
	// Input is the text that failed to parse.
	Input string
	// Reason describes why the input was rejected.
	Reason string
}

func (p ParseError) Error() string {
	return fmt.Sprintf("failed to parse '%s': %s", p.Input, p.Reason)
}

func NewParseError(input, reason string, args ...any) ParseError {
	return ParseError{Input: input, Reason: fmt.Sprintf(reason, args...)}
}

func IsParseError(err error) bool {
	var p ParseError
	return errors.As(err, &p)
}

// NonAdvancingSchedule is an error type that indicates a schedule did not
// produce an occurrence strictly after its reference time. Running such a
// schedule would spin forever, so it is fatal to that schedule's execution.
type NonAdvancingSchedule struct {
	Schedule  string
	Reference time.Time
	Scheduled time.Time
}

func (n NonAdvancingSchedule) Error() string {
	return fmt.Sprintf("schedule '%s' is not advancing: %s <= %s",
		n.Schedule, n.Scheduled.Format(time.RFC3339), n.Reference.Format(time.RFC3339))
}

func NewNonAdvancingSchedule(schedule string, reference, scheduled time.Time) NonAdvancingSchedule {
	return NonAdvancingSchedule{
		Schedule:  schedule,
		Reference: reference,
		Scheduled: scheduled,
	}
}

func IsNonAdvancingSchedule(err error) bool {
	var n NonAdvancingSchedule
	return errors.As(err, &n)
}

// CallbackFailed is an error type that wraps a failure returned, or a panic
// raised, by a callback invoked for a scheduled occurrence.
type CallbackFailed struct {
	Name      string
	Scheduled time.Time
	Delta     time.Duration
	Err       error
}

func (c CallbackFailed) Error() string {
	return fmt.Sprintf("callback for '%s' scheduled at %s failed: %s",
		c.Name, c.Scheduled.Format(time.RFC3339), c.Err)
}

func (c CallbackFailed) Unwrap() error {
	return c.Err
}

func NewCallbackFailed(name string, scheduled time.Time, delta time.Duration, err error) CallbackFailed {
	return CallbackFailed{
		Name:      name,
		Scheduled: scheduled,
		Delta:     delta,
		Err:       err,
	}
}

func IsCallbackFailed(err error) bool {
	var c CallbackFailed
	return errors.As(err, &c)
}
