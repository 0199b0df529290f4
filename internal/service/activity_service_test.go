package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/event"
	"hostpanel/internal/model"
	"hostpanel/internal/session"
)

func TestActivityService_SeedOnlyWhenEmpty(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	ctx := context.Background()
	seed := testSeed(t).Activities

	require.NoError(t, p.Activities.Seed(ctx, seed))
	require.NoError(t, p.Activities.Seed(ctx, seed))

	items, meta, err := p.Activities.List(ctx, model.ActivityFilter{Type: "all"})
	require.NoError(t, err)
	assert.Equal(t, 10, meta.Total)
	require.Len(t, items, 10)
	assert.Equal(t, "Nginx configuration updated", items[0].Activity)
	assert.Equal(t, "10 minutes ago", items[0].Time)
	assert.Equal(t, "3 days ago", items[9].Time)
}

func TestActivityService_ListFilters(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	ctx := context.Background()
	require.NoError(t, p.Activities.Seed(ctx, testSeed(t).Activities))

	warnings, _, err := p.Activities.List(ctx, model.ActivityFilter{Type: "Warning"})
	require.NoError(t, err)
	assert.Len(t, warnings, 3)

	mysql, _, err := p.Activities.List(ctx, model.ActivityFilter{Service: "mysql"})
	require.NoError(t, err)
	assert.Len(t, mysql, 2)

	page, meta, err := p.Activities.List(ctx, model.ActivityFilter{Page: 2, Limit: 4})
	require.NoError(t, err)
	assert.Len(t, page, 4)
	assert.Equal(t, 3, meta.TotalPages)

	_, _, err = p.Activities.List(ctx, model.ActivityFilter{Type: "debug"})
	require.Error(t, err)
}

func TestActivityService_RecordStampsActorAndPublishes(t *testing.T) {
	t.Parallel()

	p := newTestPanel(t)
	events, unsubscribe := p.bus.Subscribe()
	defer unsubscribe()

	store := session.NewStore(session.NewMemoryStorage(), session.DemoCredentials(), session.WithLoginDelay(0))
	store.Initialize(context.Background())
	require.True(t, store.Login(context.Background(), "admin", "admin123"))
	ctx := session.WithStore(context.Background(), store)

	p.Activities.Record(ctx, model.ActivityInfo, "nginx", "Site enabled", "")

	items := p.activities(t)
	require.Len(t, items, 1)
	assert.Equal(t, "admin", items[0].Actor)
	assert.Equal(t, "just now", items[0].Time)

	select {
	case e := <-events:
		assert.Equal(t, event.TypeActivityAdded, e.Type)
	default:
		t.Fatal("activity event not published")
	}
}

func TestRelativeTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "just now", RelativeTime(now, now.Add(time.Minute)))
	assert.Equal(t, "1 minute ago", RelativeTime(now, now.Add(-90*time.Second)))
	assert.Equal(t, "2 hours ago", RelativeTime(now, now.Add(-2*time.Hour)))
	assert.Equal(t, "1 day ago", RelativeTime(now, now.Add(-26*time.Hour)))
}
