package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostpanel/internal/notify"
	"hostpanel/internal/session"
)

func TestSessionAttachesStoreAndCollector(t *testing.T) {
	t.Parallel()

	factory := &session.Factory{
		Credentials: session.DemoCredentials(),
		Cookie:      session.CookieConfig{Secret: []byte("0123456789abcdef0123456789abcdef")},
		Notifier:    notify.Contextual{},
	}

	var (
		state     session.State
		loading   bool
		collected []notify.Notification
	)
	handler := Session(factory)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, ok := session.FromContext(r.Context())
		require.True(t, ok)
		loading = store.Loading()
		require.True(t, store.Login(r.Context(), "admin", "admin123"))
		state = store.State()

		c, ok := notify.CollectorFromContext(r.Context())
		require.True(t, ok)
		collected = c.Drain()
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, loading, "store is initialised before the handler runs")
	assert.Equal(t, session.StateAuthenticated, state)
	require.Len(t, collected, 1)
	assert.Equal(t, "Login successful", collected[0].Title)
	assert.NotEmpty(t, rec.Result().Cookies(), "login persists into the cookie")
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	handler := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/system/status", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"INTERNAL_ERROR"`)
}

func TestLoggingRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := Logging(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"nope"}}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	assert.Equal(t, "abc-123", seen)
}

func TestStreamingTimeoutCancelsIdleRequests(t *testing.T) {
	t.Parallel()

	done := make(chan error, 1)
	handler := StreamingTimeout(time.Minute, 50*time.Millisecond)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
		done <- r.Context().Err()
	}))

	server := httptest.NewServer(handler)
	defer server.Close()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	if err == nil {
		_ = resp.Body.Close()
	}

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("idle request was not cancelled")
	}
}

func TestTimeoutDefault(t *testing.T) {
	t.Parallel()

	handler := Timeout(0)(okHandler())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
