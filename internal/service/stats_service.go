package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"hostpanel/internal/fixtures"
	"hostpanel/internal/model"
	"hostpanel/pkg/apierror"
)

const (
	statsRefreshDelay = 1500 * time.Millisecond
	statsReportDelay  = 2 * time.Second
)

type StatsService struct {
	Panel

	seed fixtures.Stats
	now  func() time.Time
}

func NewStatsService(panel Panel, seed fixtures.Stats) *StatsService {
	return &StatsService{Panel: panel, seed: seed, now: time.Now}
}

// ParseRange defaults an empty value to week.
func ParseRange(raw string) (model.StatsRange, error) {
	switch r := model.StatsRange(strings.ToLower(strings.TrimSpace(raw))); r {
	case "":
		return model.RangeWeek, nil
	case model.RangeDay, model.RangeWeek, model.RangeMonth, model.RangeYear:
		return r, nil
	default:
		return "", apierror.BadRequest("invalid range", raw)
	}
}

// Get returns the datasets for r. Counters scale with the range; percentages
// do not.
func (s *StatsService) Get(r model.StatsRange) model.Statistics {
	factor := s.seed.RangeFactor[r]
	if factor == 0 {
		factor = 1
	}

	requests := make([]model.ServicePoint, len(s.seed.ServiceRequests))
	for i, p := range s.seed.ServiceRequests {
		requests[i] = scalePoint(p, factor)
	}
	errorRates := make([]model.ServicePoint, len(s.seed.ErrorRates))
	for i, p := range s.seed.ErrorRates {
		errorRates[i] = scalePoint(p, factor)
	}

	return model.Statistics{
		Range:               r,
		ResourceUsage:       append([]model.ResourcePoint(nil), s.seed.ResourceUsage...),
		ServiceRequests:     requests,
		TrafficDistribution: append([]model.Share(nil), s.seed.TrafficDistribution...),
		ErrorRates:          errorRates,
		GeneratedAt:         s.now().UTC(),
	}
}

func (s *StatsService) Refresh(ctx context.Context, r model.StatsRange) (model.Statistics, error) {
	s.info(ctx, "Refreshing Data", "Statistics are being updated...")
	if err := s.wait(ctx, statsRefreshDelay); err != nil {
		return model.Statistics{}, err
	}

	stats := s.Get(r)
	s.info(ctx, "Data Refreshed", "Statistics have been updated successfully.")
	return stats, nil
}

// Report renders the datasets for r as CSV, one section per dataset.
func (s *StatsService) Report(ctx context.Context, r model.StatsRange) (string, []byte, error) {
	s.info(ctx, "Downloading Report", "Your statistics report is being generated...")
	if err := s.wait(ctx, statsReportDelay); err != nil {
		return "", nil, err
	}

	stats := s.Get(r)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	rows := [][]string{{"dataset", "name", "cpu", "ram", "disk"}}
	for _, p := range stats.ResourceUsage {
		rows = append(rows, []string{"resource_usage", p.Name, itoa(p.CPU), itoa(p.RAM), itoa(p.Disk)})
	}
	rows = append(rows, []string{"dataset", "name", "nginx", "php", "mysql"})
	for _, p := range stats.ServiceRequests {
		rows = append(rows, []string{"service_requests", p.Name, itoa(p.Nginx), itoa(p.PHP), itoa(p.MySQL)})
	}
	for _, p := range stats.ErrorRates {
		rows = append(rows, []string{"error_rates", p.Name, itoa(p.Nginx), itoa(p.PHP), itoa(p.MySQL)})
	}
	rows = append(rows, []string{"dataset", "name", "value"})
	for _, p := range stats.TrafficDistribution {
		rows = append(rows, []string{"traffic_distribution", p.Name, itoa(p.Value)})
	}
	if err := w.WriteAll(rows); err != nil {
		return "", nil, fmt.Errorf("write report: %w", err)
	}

	filename := fmt.Sprintf("statistics-%s-%s.csv", r, s.now().Format(time.DateOnly))
	s.info(ctx, "Report Ready", "Your statistics report has been downloaded successfully.")
	s.record(ctx, model.ActivityInfo, "system", "stats_report", "Statistics report generated", filename)
	return filename, buf.Bytes(), nil
}

func scalePoint(p model.ServicePoint, factor float64) model.ServicePoint {
	return model.ServicePoint{
		Name:  p.Name,
		Nginx: scale(p.Nginx, factor),
		PHP:   scale(p.PHP, factor),
		MySQL: scale(p.MySQL, factor),
	}
}

func scale(v int, factor float64) int {
	return int(math.Round(float64(v) * factor))
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
