/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package validator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"k8s.io/apimachinery/pkg/util/validation"

	"github.com/diagridio/go-calendar-cron/schedule"
)

// Options is a struct that contains options for the validator.
type Options struct {
	// JobNameSanitizer is a replacer that sanitizes job names before name
	// validation.
	JobNameSanitizer *strings.Replacer
}

// Validator validates job definitions.
type Validator struct {
	jobNameSanitizer *strings.Replacer
}

func New(opts Options) *Validator {
	jobNameSanitizer := opts.JobNameSanitizer
	if jobNameSanitizer == nil {
		jobNameSanitizer = strings.NewReplacer("_", "-")
	}
	return &Validator{
		jobNameSanitizer: jobNameSanitizer,
	}
}

// JobName validates a job name string. Names must be DNS-1123 subdomains once
// sanitized, ignoring case.
func (v *Validator) JobName(name string) error {
	if len(name) == 0 {
		return errors.New("job name cannot be empty")
	}

	sanitized := strings.ToLower(v.jobNameSanitizer.Replace(name))
	if errs := validation.IsDNS1123Subdomain(sanitized); len(errs) > 0 {
		return fmt.Errorf("job name is invalid %q: %s", name, strings.Join(errs, ", "))
	}

	return nil
}

// Schedule parses a recurrence expression, returning the schedule.
func (v *Validator) Schedule(expression string) (schedule.Interface, error) {
	if len(strings.TrimSpace(expression)) == 0 {
		return nil, errors.New("schedule cannot be empty")
	}

	return schedule.Parse(expression)
}

// Command validates the argv of a job.
func (v *Validator) Command(command []string) error {
	if len(command) == 0 || len(strings.TrimSpace(command[0])) == 0 {
		return errors.New("command cannot be empty")
	}
	return nil
}

// Timeout validates an optional job timeout.
func (v *Validator) Timeout(timeout *time.Duration) error {
	if timeout != nil && *timeout < 0 {
		return fmt.Errorf("timeout cannot be negative: %s", *timeout)
	}
	return nil
}
