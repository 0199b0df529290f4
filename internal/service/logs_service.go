package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
)

const logsRefreshDelay = time.Second

type LogsService struct {
	Panel

	mu      sync.RWMutex
	seed    []fixtures.Log
	entries []model.LogEntry
	now     func() time.Time
}

func NewLogsService(panel Panel, seed []fixtures.Log) *LogsService {
	s := &LogsService{Panel: panel, seed: append([]fixtures.Log(nil), seed...), now: time.Now}
	s.entries = s.build()
	return s
}

// List returns entries newest first. An empty service or "all" matches every
// entry.
func (s *LogsService) List(service string) []model.LogEntry {
	service = strings.ToLower(strings.TrimSpace(service))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if service == "" || service == "all" || e.Service == service {
			out = append(out, e)
		}
	}
	return out
}

// Refresh re-stamps the entries against the current time.
func (s *LogsService) Refresh(ctx context.Context, service string) ([]model.LogEntry, error) {
	if err := s.wait(ctx, logsRefreshDelay); err != nil {
		return nil, err
	}

	entries := s.build()
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	s.info(ctx, "Logs Refreshed", "Latest logs have been loaded")
	return s.List(service), nil
}

// Download renders the filtered entries as a plain text log file.
func (s *LogsService) Download(ctx context.Context, service string) (string, []byte) {
	entries := s.List(service)

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s [%s] %s: %s\n",
			e.Timestamp.Format(time.RFC3339),
			strings.ToUpper(string(e.Level)),
			e.Service,
			e.Message,
		)
	}

	name := "all"
	if v := strings.ToLower(strings.TrimSpace(service)); v != "" {
		name = v
	}
	filename := fmt.Sprintf("%s-logs-%s.log", name, s.now().Format("20060102-150405"))

	s.info(ctx, "Downloading Logs", "Log file download will start shortly")
	s.record(ctx, model.ActivityInfo, "system", "download_logs", "Log file downloaded", filename)
	return filename, []byte(b.String())
}

func (s *LogsService) build() []model.LogEntry {
	now := s.now().UTC()
	entries := make([]model.LogEntry, 0, len(s.seed))
	for i, l := range s.seed {
		entries = append(entries, model.LogEntry{
			ID:        i + 1,
			Timestamp: now.Add(-l.Age),
			Level:     l.Level,
			Service:   l.Service,
			Message:   l.Message,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.After(entries[j].Timestamp) })
	return entries
}
