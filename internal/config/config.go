/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/diagridio/go-calendar-cron/internal/api/validator"
	"github.com/diagridio/go-calendar-cron/schedule"
)

// DefaultPath is the job file loaded when none is given.
const DefaultPath = "config/cron/scheduler.yaml"

// Config is the job file of the scheduler service.
type Config struct {
	Jobs []Job `yaml:"jobs"`
}

// Job is a command run at every occurrence of a schedule.
type Job struct {
	// Name identifies the job. Must be unique.
	Name string `yaml:"name"`

	// Schedule is the recurrence expression of the job.
	Schedule string `yaml:"schedule"`

	// Command is the argv of the command to execute.
	Command []string `yaml:"command"`

	// Dir is the working directory of the command. Defaults to the working
	// directory of the scheduler.
	Dir string `yaml:"dir,omitempty"`

	// Env is added to the environment inherited from the scheduler.
	Env map[string]string `yaml:"env,omitempty"`

	// Timeout bounds a single execution of the command. Unbounded if unset.
	Timeout *time.Duration `yaml:"timeout,omitempty"`

	sched schedule.Interface
}

// Load reads, decodes and validates the job file at the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}

	return cfg, nil
}

// Decode decodes and validates a job file. Unknown fields are rejected.
func Decode(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("config is empty")
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks every job, parsing its schedule.
func (c *Config) Validate() error {
	v := validator.New(validator.Options{})

	names := make(map[string]struct{}, len(c.Jobs))
	for i := range c.Jobs {
		job := &c.Jobs[i]

		if err := v.JobName(job.Name); err != nil {
			return fmt.Errorf("job %d: %w", i, err)
		}

		if _, ok := names[job.Name]; ok {
			return fmt.Errorf("job %q: duplicate name", job.Name)
		}
		names[job.Name] = struct{}{}

		sched, err := v.Schedule(job.Schedule)
		if err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
		job.sched = sched

		if err := v.Command(job.Command); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}

		if err := v.Timeout(job.Timeout); err != nil {
			return fmt.Errorf("job %q: %w", job.Name, err)
		}
	}

	return nil
}

// ParsedSchedule returns the schedule of a validated job.
func (j *Job) ParsedSchedule() (schedule.Interface, error) {
	if j.sched != nil {
		return j.sched, nil
	}
	return schedule.Parse(j.Schedule)
}
