package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hostpanel/internal/event"
	"hostpanel/internal/metrics"
	"hostpanel/internal/model"
	"hostpanel/pkg/apierror"
)

const (
	stopDelay    = 1500 * time.Millisecond
	startDelay   = 1500 * time.Millisecond
	restartDelay = 2 * time.Second
)

type DaemonSpec struct {
	Key     string
	Name    string
	Version string
	PID     int
	Uptime  time.Duration
}

// DefaultDaemons are the three managed services with their boot uptime.
func DefaultDaemons(uptimes map[string]time.Duration) []DaemonSpec {
	specs := []DaemonSpec{
		{Key: "nginx", Name: "Nginx", Version: "1.22.1", PID: 1234},
		{Key: "php", Name: "PHP-FPM", Version: "8.2.7", PID: 5678},
		{Key: "mysql", Name: "MySQL", Version: "8.0.33", PID: 9012},
	}
	for i := range specs {
		specs[i].Uptime = uptimes[specs[i].Key]
	}
	return specs
}

type daemon struct {
	spec      DaemonSpec
	status    model.ServiceStatus
	startedAt time.Time
	busy      bool
}

// DaemonService simulates start/stop/restart of the managed services. A
// transition in progress blocks further transitions of the same service.
type DaemonService struct {
	Panel

	mu      sync.Mutex
	daemons map[string]*daemon
	now     func() time.Time
}

func NewDaemonService(panel Panel, specs []DaemonSpec) *DaemonService {
	s := &DaemonService{Panel: panel, daemons: map[string]*daemon{}, now: time.Now}

	now := s.now().UTC()
	for _, spec := range specs {
		s.daemons[spec.Key] = &daemon{
			spec:      spec,
			status:    model.StatusActive,
			startedAt: now.Add(-spec.Uptime),
		}
		metrics.SetServiceUp(spec.Key, true)
	}
	return s
}

func (s *DaemonService) List() []model.ServiceInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ServiceInfo, 0, len(s.daemons))
	for _, d := range s.daemons {
		out = append(out, s.infoLocked(d))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PID < out[j].PID })
	return out
}

func (s *DaemonService) Status(key string) (model.ServiceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.daemons[key]
	if !ok {
		return model.ServiceInfo{}, model.ErrServiceNotFound
	}
	return s.infoLocked(d), nil
}

func (s *DaemonService) Start(ctx context.Context, key string) (model.ServiceInfo, error) {
	return s.transition(ctx, key, "start", model.StatusActive)
}

func (s *DaemonService) Stop(ctx context.Context, key string) (model.ServiceInfo, error) {
	return s.transition(ctx, key, "stop", model.StatusInactive)
}

func (s *DaemonService) Restart(ctx context.Context, key string) (model.ServiceInfo, error) {
	return s.transition(ctx, key, "restart", model.StatusActive)
}

// Toggle stops an active service and starts an inactive one.
func (s *DaemonService) Toggle(ctx context.Context, key string) (model.ServiceInfo, error) {
	info, err := s.Status(key)
	if err != nil {
		return model.ServiceInfo{}, err
	}
	if info.Status == model.StatusActive {
		return s.Stop(ctx, key)
	}
	return s.Start(ctx, key)
}

func (s *DaemonService) transition(ctx context.Context, key string, action string, target model.ServiceStatus) (model.ServiceInfo, error) {
	s.mu.Lock()
	d, ok := s.daemons[key]
	if !ok {
		s.mu.Unlock()
		return model.ServiceInfo{}, model.ErrServiceNotFound
	}
	if d.busy {
		s.mu.Unlock()
		return model.ServiceInfo{}, apierror.Conflict("service operation already in progress", d.spec.Name)
	}
	if action != "restart" && d.status == target {
		s.mu.Unlock()
		return model.ServiceInfo{}, apierror.Conflict(fmt.Sprintf("%s is already %s", d.spec.Name, target), key)
	}
	d.busy = true
	name := d.spec.Name
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		d.busy = false
		s.mu.Unlock()
	}()

	var delay time.Duration
	var pending, done [2]string
	switch action {
	case "start":
		delay = startDelay
		pending = [2]string{"Starting " + name, name + " service is being started..."}
		done = [2]string{name + " Started", name + " service has been started successfully."}
	case "stop":
		delay = stopDelay
		pending = [2]string{"Stopping " + name, name + " service is being stopped..."}
		done = [2]string{name + " Stopped", name + " service has been stopped successfully."}
	default:
		delay = restartDelay
		pending = [2]string{"Restarting " + name, name + " service is being restarted..."}
		done = [2]string{name + " Restarted", name + " service has been restarted successfully."}
	}

	s.info(ctx, pending[0], pending[1])
	if err := s.wait(ctx, delay); err != nil {
		return model.ServiceInfo{}, err
	}

	s.mu.Lock()
	d.status = target
	if target == model.StatusActive {
		d.startedAt = s.now().UTC()
	}
	info := s.infoLocked(d)
	s.mu.Unlock()

	metrics.SetServiceUp(key, target == model.StatusActive)
	s.info(ctx, done[0], done[1])
	s.record(ctx, model.ActivityInfo, key, action, fmt.Sprintf("%s service %s", name, pastTense(action)), "")
	s.publish(event.TypeServiceChanged, info)

	return info, nil
}

func (s *DaemonService) infoLocked(d *daemon) model.ServiceInfo {
	info := model.ServiceInfo{
		Key:     d.spec.Key,
		Name:    d.spec.Name,
		Version: d.spec.Version,
		PID:     d.spec.PID,
		Status:  d.status,
		Uptime:  "0d 0h 0m",
	}
	if d.status == model.StatusActive {
		started := d.startedAt
		info.StartedAt = &started
		info.Uptime = FormatUptime(s.now().Sub(started))
	}
	return info
}

func pastTense(action string) string {
	switch action {
	case "start":
		return "started"
	case "stop":
		return "stopped"
	default:
		return "restarted"
	}
}

// FormatUptime renders d as "Xd Yh Zm".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
}
