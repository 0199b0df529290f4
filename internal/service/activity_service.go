package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"hostpanel/internal/event"
	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
	"hostpanel/internal/session"
	"hostpanel/pkg/apierror"
)

type ActivityStore interface {
	Add(ctx context.Context, a model.Activity) (model.Activity, error)
	AddBatch(ctx context.Context, items []model.Activity) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, model.Meta, error)
}

type ActivityService struct {
	store ActivityStore
	bus   event.Bus
	now   func() time.Time
}

func NewActivityService(store ActivityStore, bus event.Bus) *ActivityService {
	return &ActivityService{store: store, bus: bus, now: time.Now}
}

// Seed fills an empty history with the fixture entries, dated relative to now.
func (s *ActivityService) Seed(ctx context.Context, seed []fixtures.Activity) error {
	count, err := s.store.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := s.now().UTC()
	items := make([]model.Activity, 0, len(seed))
	for _, a := range seed {
		items = append(items, model.Activity{
			Activity:  a.Activity,
			Type:      a.Type,
			Service:   a.Service,
			Details:   a.Details,
			CreatedAt: now.Add(-a.Age),
		})
	}
	return s.store.AddBatch(ctx, items)
}

// Record appends an entry. Failures are logged; a lost history line never fails
// the operation that produced it.
func (s *ActivityService) Record(ctx context.Context, typ model.ActivityType, svc string, activity string, details string) {
	entry := model.Activity{
		Activity:  activity,
		Type:      typ,
		Service:   svc,
		Details:   details,
		CreatedAt: s.now().UTC(),
	}
	if user, ok := session.UserFromContext(ctx); ok {
		entry.Actor = user.Username
	}

	saved, err := s.store.Add(ctx, entry)
	if err != nil {
		slog.WarnContext(ctx, "failed to record activity", "activity", activity, "error", err.Error())
		return
	}
	saved.Time = RelativeTime(s.now(), saved.CreatedAt)

	if s.bus != nil {
		s.bus.Publish(event.Event{
			ID:        uuid.NewString(),
			Type:      event.TypeActivityAdded,
			Payload:   saved,
			Timestamp: saved.CreatedAt.Format(time.RFC3339Nano),
		})
	}
}

func (s *ActivityService) List(ctx context.Context, filter model.ActivityFilter) ([]model.Activity, model.Meta, error) {
	filter.Type = strings.ToLower(strings.TrimSpace(filter.Type))
	if filter.Type != "" && filter.Type != "all" && !model.ActivityType(filter.Type).Valid() {
		return nil, model.Meta{}, apierror.BadRequest("invalid activity type", filter.Type)
	}

	items, meta, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, model.Meta{}, err
	}

	now := s.now()
	for i := range items {
		items[i].Time = RelativeTime(now, items[i].CreatedAt)
	}
	return items, meta, nil
}

// RelativeTime renders the age of t the way the activity feed shows it.
func RelativeTime(now time.Time, t time.Time) string {
	d := now.Sub(t)
	if d < 0 {
		d = 0
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
