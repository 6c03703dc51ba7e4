/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dapr/kit/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
)

func Test_Decode(t *testing.T) {
	t.Parallel()

	cfg, err := Decode(strings.NewReader(`
jobs:
  - name: hello
    schedule: "*/10 * * * * * d"
    command: ["echo", "hello"]
    dir: /tmp
    env:
      GREETING: hi
    timeout: 30s
  - name: nightly
    schedule: "@daily"
    command: ["true"]
`))
	require.NoError(t, err)
	require.Len(t, cfg.Jobs, 2)

	hello := cfg.Jobs[0]
	assert.Equal(t, "hello", hello.Name)
	assert.Equal(t, []string{"echo", "hello"}, hello.Command)
	assert.Equal(t, "/tmp", hello.Dir)
	assert.Equal(t, map[string]string{"GREETING": "hi"}, hello.Env)
	assert.Equal(t, ptr.Of(time.Second*30), hello.Timeout)

	sched, err := hello.ParsedSchedule()
	require.NoError(t, err)
	assert.Equal(t, "*/10 * * * * * d", sched.String())
	assert.False(t, sched.Flags().Drop)

	nightly := cfg.Jobs[1]
	assert.Nil(t, nightly.Timeout)
	sched, err = nightly.ParsedSchedule()
	require.NoError(t, err)
	assert.Equal(t, "@daily", sched.String())
}

func Test_DecodeErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		input       string
		expParseErr bool
	}{
		"empty": {
			input: "",
		},
		"unknown field": {
			input: `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
    retries: 3
`,
		},
		"duplicate names": {
			input: `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
  - name: hello
    schedule: "@daily"
    command: ["true"]
`,
		},
		"invalid name": {
			input: `
jobs:
  - name: "hello world"
    schedule: "@hourly"
    command: ["true"]
`,
		},
		"missing name": {
			input: `
jobs:
  - schedule: "@hourly"
    command: ["true"]
`,
		},
		"bad schedule": {
			input: `
jobs:
  - name: hello
    schedule: "*/0 * * * * *"
    command: ["true"]
`,
			expParseErr: true,
		},
		"huge schedule range": {
			input: `
jobs:
  - name: hello
    schedule: "0..60000000 * * * * *"
    command: ["true"]
`,
			expParseErr: true,
		},
		"schedule that never fires": {
			input: `
jobs:
  - name: hello
    schedule: "0 0 0 * 29 1"
    command: ["true"]
`,
			expParseErr: true,
		},
		"missing command": {
			input: `
jobs:
  - name: hello
    schedule: "@hourly"
`,
		},
		"negative timeout": {
			input: `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
    timeout: -1s
`,
		},
		"bad timeout": {
			input: `
jobs:
  - name: hello
    schedule: "@hourly"
    command: ["true"]
    timeout: soon
`,
		},
	}

	for name, test := range tests {
		test := test
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode(strings.NewReader(test.input))
			require.Error(t, err)
			assert.Equal(t, test.expParseErr, apierrors.IsParseError(err), "%v", err)
		})
	}
}

func Test_Load(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
	})

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "scheduler.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
jobs:
  - name: hello
    schedule: "0 0 * * * *"
    command: ["echo", "hello"]
`), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.Len(t, cfg.Jobs, 1)
		assert.Equal(t, "hello", cfg.Jobs[0].Name)
	})

	t.Run("invalid file names the path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "scheduler.yaml")
		require.NoError(t, os.WriteFile(path, []byte("jobs: 3\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), path)
	})
}
