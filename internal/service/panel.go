package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"hostpanel/internal/event"
	"hostpanel/internal/metrics"
	"hostpanel/internal/model"
	"hostpanel/internal/notify"
)

// Simulator stands in for the latency of real system calls. Every delay is
// multiplied by scale; a scale of 0 makes all operations immediate.
type Simulator struct {
	scale float64
}

func NewSimulator(scale float64) *Simulator {
	if scale < 0 {
		scale = 0
	}
	return &Simulator{scale: scale}
}

// Wait blocks for d (scaled) or until ctx is done.
func (s *Simulator) Wait(ctx context.Context, d time.Duration) error {
	if s != nil {
		d = time.Duration(float64(d) * s.scale)
	}
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Panel bundles what every panel mutation needs: the simulated delay, the
// notification sink, the activity history and the event bus.
type Panel struct {
	Sim        *Simulator
	Notifier   notify.Notifier
	Activities *ActivityService
	Bus        event.Bus
}

func (p Panel) wait(ctx context.Context, d time.Duration) error {
	return p.Sim.Wait(ctx, d)
}

func (p Panel) info(ctx context.Context, title string, description string) {
	if p.Notifier != nil {
		p.Notifier.Notify(ctx, notify.Info(title, description))
	}
}

func (p Panel) failure(ctx context.Context, title string, description string) {
	if p.Notifier != nil {
		p.Notifier.Notify(ctx, notify.Failure(title, description))
	}
}

func (p Panel) record(ctx context.Context, typ model.ActivityType, svc string, action string, activity string, details string) {
	metrics.RecordOperation(svc, action)
	if p.Activities != nil {
		p.Activities.Record(ctx, typ, svc, activity, details)
	}
}

func (p Panel) publish(typ event.Type, payload any) {
	if p.Bus == nil {
		return
	}
	p.Bus.Publish(event.Event{
		ID:        uuid.NewString(),
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	})
}
