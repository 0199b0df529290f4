package service

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostpanel/internal/event"
	"hostpanel/internal/metrics"
	"hostpanel/internal/model"
)

// RandomUptimes returns a boot uptime between one and seven days per service.
func RandomUptimes(rng *rand.Rand, keys ...string) map[string]time.Duration {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	out := make(map[string]time.Duration, len(keys))
	for _, k := range keys {
		days := 1 + rng.IntN(7)
		hours := rng.IntN(24)
		minutes := rng.IntN(60)
		out[k] = time.Duration(days)*24*time.Hour + time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	}
	return out
}

// SystemService reports service status and placeholder resource usage.
type SystemService struct {
	daemons *DaemonService
	bus     event.Bus

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSystemService(daemons *DaemonService, bus event.Bus, rng *rand.Rand) *SystemService {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	return &SystemService{daemons: daemons, bus: bus, rng: rng}
}

func (s *SystemService) Snapshot() model.SystemStatus {
	s.mu.Lock()
	resources := model.ResourceUsage{
		CPU:    s.between(20, 50),
		Memory: s.between(40, 60),
		Disk:   s.between(55, 65),
	}
	s.mu.Unlock()

	return model.SystemStatus{
		Services:  s.daemons.List(),
		Resources: resources,
		At:        time.Now().UTC(),
	}
}

// CheckServiceStatus rolls a health probe: 5% inactive, 10% warning, otherwise
// active. A stopped service is always inactive.
func (s *SystemService) CheckServiceStatus(name string) (model.ServiceStatus, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	info, err := s.daemons.Status(key)
	if err != nil {
		return "", err
	}
	if info.Status != model.StatusActive {
		return model.StatusInactive, nil
	}

	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	switch {
	case roll < 0.05:
		return model.StatusInactive, nil
	case roll < 0.15:
		return model.StatusWarning, nil
	default:
		return model.StatusActive, nil
	}
}

// Run publishes a status snapshot every interval until ctx is cancelled.
func (s *SystemService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := s.Snapshot()
			for _, svc := range snap.Services {
				metrics.SetServiceUp(svc.Key, svc.Status == model.StatusActive)
			}
			if s.bus != nil {
				s.bus.Publish(event.Event{
					ID:        uuid.NewString(),
					Type:      event.TypeSystemStatus,
					Payload:   snap,
					Timestamp: snap.At.Format(time.RFC3339Nano),
				})
			}
			slog.Debug("system status published", "services", len(snap.Services))
		}
	}
}

func (s *SystemService) between(lo int, hi int) int {
	return lo + s.rng.IntN(hi-lo+1)
}
