// Package metrics exposes Prometheus collectors with the hostpanel_ prefix.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostpanel/internal/guard"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpanel_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hostpanel_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpanel_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	GuardDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpanel_guard_decisions_total",
			Help: "Route guard outcomes",
		},
		[]string{"outcome"},
	)

	PanelOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hostpanel_panel_operations_total",
			Help: "Panel mutations by service and action",
		},
		[]string{"service", "action"},
	)

	ServiceUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hostpanel_service_up",
			Help: "Whether a managed service is reported active (1) or not (0)",
		},
		[]string{"service"},
	)

	WebsocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hostpanel_websocket_clients",
			Help: "Connected websocket clients",
		},
	)

	BackupsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hostpanel_backups_completed_total",
			Help: "Scheduled backups recorded",
		},
	)
)

func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordLogin counts a login attempt.
func RecordLogin(ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	LoginAttempts.WithLabelValues(result).Inc()
}

func RecordOperation(service string, action string) {
	PanelOperations.WithLabelValues(service, action).Inc()
}

func SetServiceUp(service string, up bool) {
	v := 0.0
	if up {
		v = 1
	}
	ServiceUp.WithLabelValues(service).Set(v)
}

// GuardObserver feeds route guard outcomes into GuardDecisions.
type GuardObserver struct{}

func (GuardObserver) ObserveDecision(outcome guard.Outcome) {
	GuardDecisions.WithLabelValues(string(outcome)).Inc()
}

// Middleware records request counts and latencies labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
