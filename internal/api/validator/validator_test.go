/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package validator

import (
	"strings"
	"testing"
	"time"

	"github.com/dapr/kit/ptr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
)

func Test_JobName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		expErr bool
	}{
		{
			name:   "",
			expErr: true,
		},
		{
			name:   "/",
			expErr: true,
		},
		{
			name:   "foo/",
			expErr: true,
		},
		{
			name:   ".",
			expErr: true,
		},
		{
			name:   "..",
			expErr: true,
		},
		{
			name:   "fo.o",
			expErr: false,
		},
		{
			name:   "fo...o",
			expErr: true,
		},
		{
			name:   "valid",
			expErr: false,
		},
		{
			name:   "-leading-dash",
			expErr: true,
		},
		{
			name:   "with space",
			expErr: true,
		},
		{
			name:   "Backup_Nightly",
			expErr: false,
		},
		{
			name:   "rotate-logs.weekly",
			expErr: false,
		},
		{
			name:   strings.Repeat("a", 254),
			expErr: true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			err := New(Options{}).JobName(test.name)
			assert.Equal(t, test.expErr, err != nil, "%v", err)
		})
	}
}

func Test_JobNameSanitizer(t *testing.T) {
	t.Parallel()

	v := New(Options{JobNameSanitizer: strings.NewReplacer(" ", "-")})
	require.NoError(t, v.JobName("with space"))
	require.Error(t, v.JobName("under_score"))
}

func Test_Schedule(t *testing.T) {
	t.Parallel()

	v := New(Options{})

	s, err := v.Schedule("*/10 * * * * * d")
	require.NoError(t, err)
	assert.False(t, s.Flags().Drop)

	_, err = v.Schedule("  ")
	require.Error(t, err)

	_, err = v.Schedule("* * *")
	require.Error(t, err)
	assert.True(t, apierrors.IsParseError(err))
}

func Test_Command(t *testing.T) {
	t.Parallel()

	v := New(Options{})
	require.NoError(t, v.Command([]string{"echo", "hello"}))
	require.Error(t, v.Command(nil))
	require.Error(t, v.Command([]string{" "}))
}

func Test_Timeout(t *testing.T) {
	t.Parallel()

	v := New(Options{})
	require.NoError(t, v.Timeout(nil))
	require.NoError(t, v.Timeout(ptr.Of(time.Second)))
	require.Error(t, v.Timeout(ptr.Of(-time.Second)))
}
