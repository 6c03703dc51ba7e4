/*
Copyright (c) 2024 Diagrid Inc.
Licensed under the MIT License.
*/

package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"

	apierrors "github.com/diagridio/go-calendar-cron/api/errors"
	"github.com/diagridio/go-calendar-cron/schedule"
)

func Test_Loader(t *testing.T) {
	t.Parallel()

	noop := func(context.Context, time.Time) error { return nil }

	c := newCron(t, clocktesting.NewFakeClock(start))
	l := NewLoader(c)

	_, err := l.Hourly(noop)
	require.NoError(t, err)
	_, err = l.Daily(noop)
	require.NoError(t, err)
	_, err = l.Weekly(noop)
	require.NoError(t, err)
	_, err = l.Monthly(noop)
	require.NoError(t, err)
	_, err = l.Periodic("0 */5 * * * * d", noop)
	require.NoError(t, err)
	_, err = l.Add("backup", schedule.Daily(), noop)
	require.NoError(t, err)

	_, err = l.Periodic("0 */0 * * * *", noop)
	require.Error(t, err)
	assert.True(t, apierrors.IsParseError(err))

	var names []string
	for _, e := range c.Entries() {
		names = append(names, e.Name())
	}
	assert.Equal(t, []string{
		"@hourly", "@daily", "@weekly", "@monthly", "0 */5 * * * * d", "backup",
	}, names)

	assert.False(t, c.Entries()[4].Schedule().Flags().Drop)
}
