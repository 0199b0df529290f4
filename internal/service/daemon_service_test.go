package service

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/event"
	"hostpanel/internal/model"
	"hostpanel/pkg/apierror"
)

func newTestDaemons(p testPanel) *DaemonService {
	return NewDaemonService(p.Panel, DefaultDaemons(map[string]time.Duration{
		"nginx": 26 * time.Hour,
		"php":   3 * time.Hour,
		"mysql": 90 * time.Minute,
	}))
}

func TestDaemonService_List(t *testing.T) {
	t.Parallel()

	svc := newTestDaemons(newTestPanel(t))
	list := svc.List()

	require.Len(t, list, 3)
	assert.Equal(t, "Nginx", list[0].Name)
	assert.Equal(t, "PHP-FPM", list[1].Name)
	assert.Equal(t, "MySQL", list[2].Name)
	assert.Equal(t, "1d 2h 0m", list[0].Uptime)
	assert.Equal(t, model.StatusActive, list[2].Status)
}

func TestDaemonService_StopAndStart(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := newTestDaemons(p)
	events, unsubscribe := p.bus.Subscribe()
	defer unsubscribe()
	ctx := context.Background()

	info, err := svc.Stop(ctx, "nginx")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, info.Status)
	assert.Equal(t, "0d 0h 0m", info.Uptime)
	assert.Nil(t, info.StartedAt)
	assert.Equal(t, []string{"Stopping Nginx", "Nginx Stopped"}, p.titles())

	var changed bool
	for len(events) > 0 {
		if e := <-events; e.Type == event.TypeServiceChanged {
			changed = true
		}
	}
	assert.True(t, changed)

	_, err = svc.Stop(ctx, "nginx")
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "CONFLICT", apiErr.Code)

	info, err = svc.Start(ctx, "nginx")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, info.Status)
	assert.Equal(t, "0d 0h 0m", info.Uptime)

	acts := p.activities(t)
	require.Len(t, acts, 2)
	assert.Equal(t, "Nginx service started", acts[0].Activity)
}

func TestDaemonService_RestartAndToggle(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	svc := newTestDaemons(p)
	ctx := context.Background()

	info, err := svc.Restart(ctx, "mysql")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, info.Status)

	info, err = svc.Toggle(ctx, "php")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, info.Status)

	info, err = svc.Toggle(ctx, "php")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, info.Status)
}

func TestDaemonService_UnknownService(t *testing.T) {
	t.Parallel()

	svc := newTestDaemons(newTestPanel(t))

	_, err := svc.Start(context.Background(), "redis")
	require.ErrorIs(t, err, model.ErrServiceNotFound)
	_, err = svc.Status("redis")
	require.ErrorIs(t, err, model.ErrServiceNotFound)
}

func TestDaemonService_CancelledTransitionKeepsState(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	p.Sim = NewSimulator(1)
	svc := newTestDaemons(p)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Stop(ctx, "nginx")
	require.ErrorIs(t, err, context.Canceled)

	info, err := svc.Status("nginx")
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, info.Status)

	_, err = svc.Stop(context.Background(), "nginx")
	require.NoError(t, err, "busy flag must be released after a cancelled transition")
}

func TestFormatUptime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0d 0h 0m", FormatUptime(-time.Minute))
	assert.Equal(t, "0d 0h 59m", FormatUptime(59*time.Minute+30*time.Second))
	assert.Equal(t, "3d 4h 5m", FormatUptime(76*time.Hour+5*time.Minute))
}

func TestSystemService_Snapshot(t *testing.T) {
	t.Parallel()

	svc := NewSystemService(newTestDaemons(newTestPanel(t)), nil, rand.New(rand.NewPCG(1, 2)))

	for range 50 {
		snap := svc.Snapshot()
		require.Len(t, snap.Services, 3)
		assert.GreaterOrEqual(t, snap.Resources.CPU, 20)
		assert.LessOrEqual(t, snap.Resources.CPU, 50)
		assert.GreaterOrEqual(t, snap.Resources.Memory, 40)
		assert.LessOrEqual(t, snap.Resources.Memory, 60)
		assert.GreaterOrEqual(t, snap.Resources.Disk, 55)
		assert.LessOrEqual(t, snap.Resources.Disk, 65)
	}
}

func TestSystemService_CheckServiceStatus(t *testing.T) {
	t.Parallel()

	daemons := newTestDaemons(newTestPanel(t))
	svc := NewSystemService(daemons, nil, rand.New(rand.NewPCG(7, 7)))

	counts := map[model.ServiceStatus]int{}
	for range 2000 {
		status, err := svc.CheckServiceStatus("Nginx")
		require.NoError(t, err)
		counts[status]++
	}
	assert.Greater(t, counts[model.StatusActive], 1500)
	assert.Positive(t, counts[model.StatusWarning])
	assert.Positive(t, counts[model.StatusInactive])

	_, err := daemons.Stop(context.Background(), "nginx")
	require.NoError(t, err)
	for range 20 {
		status, err := svc.CheckServiceStatus("nginx")
		require.NoError(t, err)
		assert.Equal(t, model.StatusInactive, status)
	}

	_, err = svc.CheckServiceStatus("apache")
	require.ErrorIs(t, err, model.ErrServiceNotFound)
}

func TestSystemService_RunPublishes(t *testing.T) {
	t.Parallel()

	bus := event.NewBus()
	events, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	svc := NewSystemService(newTestDaemons(newTestPanel(t)), bus, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go svc.Run(ctx, 10*time.Millisecond)

	select {
	case e := <-events:
		assert.Equal(t, event.TypeSystemStatus, e.Type)
		snap, ok := e.Payload.(model.SystemStatus)
		require.True(t, ok)
		assert.Len(t, snap.Services, 3)
	case <-time.After(2 * time.Second):
		t.Fatal("no status event published")
	}
}

func TestRandomUptimes(t *testing.T) {
	t.Parallel()

	uptimes := RandomUptimes(rand.New(rand.NewPCG(3, 4)), "nginx", "php")
	require.Len(t, uptimes, 2)
	for _, d := range uptimes {
		assert.GreaterOrEqual(t, d, 24*time.Hour)
		assert.Less(t, d, 8*24*time.Hour)
	}
}
