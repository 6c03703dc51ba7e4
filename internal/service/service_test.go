/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/dapr/kit/concurrency/slice"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

const hourlyJob = `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
`

const twoJobs = `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
  - name: world
    schedule: "0 */5 * * * *"
    command: ["true"]
`

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func recorder(states slice.Slice[string]) NotifyFunc {
	return func(state string) (bool, error) {
		states.Append(state)
		return true, nil
	}
}

func Test_Run(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("invalid initial config is an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "scheduler.yaml")
		writeConfig(t, path, "jobs: [{name: hello}]")

		states := slice.New[string]()
		s := New(Options{
			Log:        logr.Discard(),
			ConfigPath: path,
			Clock:      clocktesting.NewFakeClock(start),
			Notify:     recorder(states),
		})

		require.Error(t, s.Run(context.Background()))
		assert.Empty(t, states.Slice())
	})

	t.Run("missing config is an error", func(t *testing.T) {
		t.Parallel()

		s := New(Options{
			Log:        logr.Discard(),
			ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
			Notify:     recorder(slice.New[string]()),
		})
		require.Error(t, s.Run(context.Background()))
	})

	t.Run("notifies readiness and stopping", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "scheduler.yaml")
		writeConfig(t, path, hourlyJob)

		states := slice.New[string]()
		s := New(Options{
			Log:        logr.Discard(),
			ConfigPath: path,
			Clock:      clocktesting.NewFakeClock(start),
			Notify:     recorder(states),
		})

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Run(ctx)
		}()

		assert.EventuallyWithT(t, func(c *assert.CollectT) {
			assert.Equal(c, []string{daemon.SdNotifyReady}, states.Slice())
		}, time.Second*5, time.Millisecond*10)

		require.Error(t, s.Run(ctx), "second run must fail")

		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for Run")
		}

		assert.Equal(t, []string{daemon.SdNotifyReady, daemon.SdNotifyStopping}, states.Slice())
	})

	t.Run("reloads on valid config changes only", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "scheduler.yaml")
		writeConfig(t, path, hourlyJob)

		states := slice.New[string]()
		s := New(Options{
			Log:        logr.Discard(),
			ConfigPath: path,
			Watch:      true,
			Debounce:   time.Millisecond * 100,
			Clock:      clocktesting.NewFakeClock(start),
			Notify:     recorder(states),
		})

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Run(ctx)
		}()

		assert.EventuallyWithT(t, func(c *assert.CollectT) {
			assert.Equal(c, []string{daemon.SdNotifyReady}, states.Slice())
		}, time.Second*5, time.Millisecond*10)

		writeConfig(t, path, twoJobs)
		assert.EventuallyWithT(t, func(c *assert.CollectT) {
			assert.Equal(c, []string{
				daemon.SdNotifyReady,
				daemon.SdNotifyReloading,
				daemon.SdNotifyReady,
			}, states.Slice())
		}, time.Second*5, time.Millisecond*10)

		writeConfig(t, path, "jobs: [{name: broken}]")
		assert.Never(t, func() bool {
			return states.Len() != 3
		}, time.Millisecond*300, time.Millisecond*10)

		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for Run")
		}
		assert.Equal(t, 4, states.Len())
	})

	t.Run("runs job commands at their occurrences", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "scheduler.yaml")
		out := filepath.Join(dir, "out.txt")
		writeConfig(t, path, `
jobs:
  - name: tick
    schedule: "* * * * * *"
    command: ["sh", "-c", "echo $CRON_OCCURRENCE >> `+out+`"]
`)

		clock := clocktesting.NewFakeClock(start)
		s := New(Options{
			Log:        logr.Discard(),
			ConfigPath: path,
			Clock:      clock,
			Notify:     recorder(slice.New[string]()),
		})

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Run(ctx)
		}()

		for i := 1; i <= 2; i++ {
			assert.Eventually(t, clock.HasWaiters, time.Second*5, time.Millisecond*10)
			clock.Step(time.Second)
			assert.EventuallyWithT(t, func(c *assert.CollectT) {
				b, err := os.ReadFile(out)
				if !assert.NoError(c, err) {
					return
				}
				assert.Len(c, strings.Fields(string(b)), i)
			}, time.Second*5, time.Millisecond*10)
		}

		cancel()
		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(time.Second * 5):
			t.Fatal("timed out waiting for Run")
		}

		b, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"2024-01-01T00:00:01Z",
			"2024-01-01T00:00:02Z",
		}, strings.Fields(string(b)))
	})
}
