package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"hostpanel/internal/guard"
)

func TestRecordLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginAttempts.WithLabelValues("failure"))
	RecordLogin(false)
	assert.Equal(t, before+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("failure")))
}

func TestGuardObserver(t *testing.T) {
	before := testutil.ToFloat64(GuardDecisions.WithLabelValues("redirect"))
	GuardObserver{}.ObserveDecision(guard.OutcomeRedirect)
	assert.Equal(t, before+1, testutil.ToFloat64(GuardDecisions.WithLabelValues("redirect")))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/v1/nginx/hosts/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/nginx/hosts/{id}", "418")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/nginx/hosts/3", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
