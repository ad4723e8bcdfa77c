package sources

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/asyncflow/internal/testutil"
	gferrors "github.com/vnykmshr/asyncflow/pkg/common/errors"
	"github.com/vnykmshr/asyncflow/pkg/metrics"
)

// every fires at a fixed sub-second interval.
type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func TestCronConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  CronConfig
		wantErr bool
	}{
		{"valid expression", CronConfig{Name: "c", Expression: "*/5 * * * *"}, false},
		{"valid with seconds", CronConfig{Name: "c", Expression: "*/10 * * * * *"}, false},
		{"descriptor", CronConfig{Name: "c", Expression: "@hourly"}, false},
		{"schedule instead of expression", CronConfig{Name: "c", Schedule: every(time.Second)}, false},
		{"missing name", CronConfig{Expression: "@daily"}, true},
		{"negative limit", CronConfig{Name: "c", Expression: "@daily", Limit: -1}, true},
		{"missing expression", CronConfig{Name: "c"}, true},
		{"bad expression", CronConfig{Name: "c", Expression: "every tuesday"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, gferrors.ErrInvalidConfiguration)
			require.True(t, gferrors.IsValidationError(err))
		})
	}

	_, err := Cron(CronConfig{Name: "c", Expression: "nope"})
	require.Error(t, err)
}

func TestCron_CompletesAfterLimit(t *testing.T) {
	registry := metrics.NewRegistry(prometheus.NewRegistry())
	ticks, err := Cron(CronConfig{
		Name:     "limited",
		Schedule: every(2 * time.Millisecond),
		Limit:    3,
		Registry: registry,
	})
	require.NoError(t, err)

	rec := testutil.NewRecorder[time.Time]()
	sub, err := ticks.SubscribeFuncs(rec.Next, rec.Error, rec.Complete)
	require.NoError(t, err)

	testutil.Eventually(t, rec.Terminated, testutil.TestTimeout, time.Millisecond)
	require.Len(t, rec.Values(), 3)
	require.Equal(t, "complete", rec.Events()[3])
	require.True(t, sub.Closed())
	require.Equal(t, 3.0, promtest.ToFloat64(registry.SourceEvents.WithLabelValues("cron", "limited")))
}

func TestCron_ReleaseStopsTicks(t *testing.T) {
	ticks, err := Cron(CronConfig{
		Name:     "unbounded",
		Schedule: every(2 * time.Millisecond),
		Registry: metrics.NewRegistry(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	var count atomic.Int32
	sub, err := ticks.SubscribeFuncs(func(time.Time) error {
		count.Add(1)
		return nil
	}, nil, nil)
	require.NoError(t, err)

	testutil.Eventually(t, func() bool { return count.Load() >= 2 }, testutil.TestTimeout, time.Millisecond)
	sub.Release()

	time.Sleep(10 * time.Millisecond)
	settled := count.Load()
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, settled, count.Load())
}

func TestCron_HandlerFailureEndsSubscription(t *testing.T) {
	ticks, err := Cron(CronConfig{
		Name:     "failing",
		Schedule: every(2 * time.Millisecond),
		Registry: metrics.NewRegistry(prometheus.NewRegistry()),
	})
	require.NoError(t, err)

	var count atomic.Int32
	sub, err := ticks.SubscribeFuncs(func(time.Time) error {
		count.Add(1)
		return errors.New("report failed")
	}, nil, nil)
	require.NoError(t, err)

	testutil.Eventually(t, sub.Closed, testutil.TestTimeout, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(1), count.Load())
}
