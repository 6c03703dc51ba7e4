/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/diagridio/go-calendar-cron/api"
)

const (
	// EnvJobName is set to the name of the job in the command environment.
	EnvJobName = "CRON_JOB_NAME"

	// EnvOccurrence is set to the scheduled occurrence, in RFC 3339, in the
	// command environment.
	EnvOccurrence = "CRON_OCCURRENCE"
)

// Options are the options for creating a command callback.
type Options struct {
	Log logr.Logger

	// Name is the name of the job the command belongs to.
	Name string

	// Command is the argv of the command to execute.
	Command []string

	// Dir is the working directory of the command.
	Dir string

	// Env is added to the environment inherited from this process.
	Env map[string]string

	// Timeout bounds a single execution. Unbounded if nil.
	Timeout *time.Duration
}

type command struct {
	log     logr.Logger
	name    string
	argv    []string
	dir     string
	env     []string
	timeout *time.Duration
}

// New returns a callback which executes the configured command at every
// occurrence. A non-zero exit status is returned as an error, including the
// command output.
func New(opts Options) api.CallbackFunc {
	env := make([]string, 0, len(opts.Env))
	for _, k := range slices.Sorted(maps.Keys(opts.Env)) {
		env = append(env, k+"="+opts.Env[k])
	}

	c := &command{
		log:     opts.Log.WithName("command").WithValues("name", opts.Name),
		name:    opts.Name,
		argv:    slices.Clone(opts.Command),
		dir:     opts.Dir,
		env:     env,
		timeout: opts.Timeout,
	}

	return c.run
}

func (c *command) run(ctx context.Context, occurrence time.Time) error {
	if len(c.argv) == 0 {
		return errors.New("command is empty")
	}

	if c.timeout != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *c.timeout)
		defer cancel()
	}

	//nolint:gosec
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Dir = c.dir
	cmd.Env = append(os.Environ(), c.env...)
	cmd.Env = append(cmd.Env,
		EnvJobName+"="+c.name,
		EnvOccurrence+"="+occurrence.Format(time.RFC3339),
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("command %q interrupted after %s: %w", c.argv[0], duration, ctx.Err())
		}
		return fmt.Errorf("command %q failed: %w: %s", c.argv[0], err, strings.TrimSpace(out.String()))
	}

	c.log.V(1).Info("Command completed", "occurrence", occurrence, "duration", duration, "output", strings.TrimSpace(out.String()))

	return nil
}
