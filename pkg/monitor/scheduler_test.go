package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wallet-hunter/pkg/config"
)

func TestNewScheduler_InvalidSpec(t *testing.T) {
	_, err := NewScheduler(&config.Config{TrackSchedule: "every day"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TRACK_SCHEDULE")
}

func TestScheduler_Next(t *testing.T) {
	s, err := NewScheduler(&config.Config{TrackSchedule: "0 9 * * *", TrackWindow: time.Hour}, nil)
	require.NoError(t, err)

	from := time.Date(2022, 5, 21, 13, 50, 30, 0, time.UTC)
	assert.Equal(t, time.Date(2022, 5, 22, 9, 0, 0, 0, time.UTC), s.Next(from))
}

func TestScheduler_TickLooksBackOneWindow(t *testing.T) {
	var got time.Time
	s, err := NewScheduler(&config.Config{TrackSchedule: "0 9 * * *", TrackWindow: 24 * time.Hour},
		func(_ context.Context, since time.Time) error {
			got = since
			return errors.New("explorer down")
		})
	require.NoError(t, err)

	now := time.Date(2022, 5, 22, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	failed := testutil.ToFloat64(scheduledRuns.WithLabelValues("error"))
	s.tick(context.Background())

	assert.Equal(t, time.Date(2022, 5, 21, 9, 0, 0, 0, time.UTC), got)
	assert.Equal(t, failed+1, testutil.ToFloat64(scheduledRuns.WithLabelValues("error")))
}

func TestScheduler_TickSkippedAfterCancel(t *testing.T) {
	calls := 0
	s, err := NewScheduler(&config.Config{TrackSchedule: "@hourly"}, func(context.Context, time.Time) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, s.window, "zero window falls back to a day")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.tick(ctx)
	assert.Zero(t, calls)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	s, err := NewScheduler(&config.Config{TrackSchedule: "@every 1h"}, func(context.Context, time.Time) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
