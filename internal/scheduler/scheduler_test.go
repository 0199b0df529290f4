package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/metrics"
	"hostpanel/internal/model"
)

type recorded struct {
	typ      model.ActivityType
	svc      string
	activity string
}

type fakeRecorder struct {
	mu    sync.Mutex
	items []recorded
}

func (f *fakeRecorder) Record(_ context.Context, typ model.ActivityType, svc string, activity string, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, recorded{typ: typ, svc: svc, activity: activity})
}

func TestDescriptor(t *testing.T) {
	t.Parallel()

	for frequency, want := range map[string]string{
		"hourly":  "@hourly",
		" Daily ": "@daily",
		"weekly":  "@weekly",
		"MONTHLY": "@monthly",
	} {
		got, err := Descriptor(frequency)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Descriptor("yearly")
	require.Error(t, err)
}

func TestReschedule(t *testing.T) {
	t.Parallel()

	s := NewBackupScheduler(nil, nil)
	s.Start()
	defer s.Stop(context.Background())

	spec, err := s.Reschedule("hourly")
	require.NoError(t, err)
	assert.Equal(t, "@hourly", spec)
	first := s.entry

	next := s.Next()
	require.False(t, next.IsZero())
	assert.WithinDuration(t, time.Now(), next, time.Hour+time.Minute)

	_, err = s.Reschedule("hourly")
	require.NoError(t, err)
	assert.Equal(t, first, s.entry, "same frequency keeps the entry")

	_, err = s.Reschedule("monthly")
	require.NoError(t, err)
	assert.NotEqual(t, first, s.entry)
	assert.Len(t, s.cron.Entries(), 1)

	_, err = s.Reschedule("fortnightly")
	require.Error(t, err)
	assert.Equal(t, "@monthly", s.spec)
}

func TestRunBackup(t *testing.T) {
	t.Parallel()

	recorder := &fakeRecorder{}
	s := NewBackupScheduler(recorder, nil)
	before := testutil.ToFloat64(metrics.BackupsCompleted)

	s.RunBackup(context.Background())

	require.Len(t, recorder.items, 1)
	assert.Equal(t, recorded{typ: model.ActivitySuccess, svc: "mysql", activity: "MySQL backup completed"}, recorder.items[0])
	assert.GreaterOrEqual(t, testutil.ToFloat64(metrics.BackupsCompleted), before+1)
}

func TestStopWithoutStart(t *testing.T) {
	t.Parallel()

	s := NewBackupScheduler(nil, nil)
	assert.NotPanics(t, func() { s.Stop(context.Background()) })
}
