//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hostpanel/internal/app"
	"hostpanel/internal/config"
	"hostpanel/internal/notify"
)

const testSecret = "integration-secret-0123456789"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Notifications []notify.Notification `json:"notifications"`
}

func newConfig(t *testing.T, filesRoot string) *config.Config {
	t.Helper()

	state := t.TempDir()
	if filesRoot == "" {
		filesRoot = filepath.Join(state, "files")
	}
	return &config.Config{
		ServerPort:          "0",
		RequestTimeout:      10 * time.Second,
		SessionSecret:       testSecret,
		SessionTTL:          time.Hour,
		CORSOrigins:         []string{"*"},
		RateLimitRPM:        1000,
		AuthRateLimitRPM:    1000,
		FilesRoot:           filesRoot,
		ThumbnailRoot:       filepath.Join(state, "thumbnails"),
		MaxUploadSize:       10 * 1024 * 1024,
		MaxEditSize:         64 * 1024,
		StatusInterval:      50 * time.Millisecond,
		LogLevel:            "error",
		BackupFrequency:     "daily",
		SimulatedDelayScale: 0,
	}
}

func startServer(t *testing.T, cfg *config.Config) *httptest.Server {
	t.Helper()

	application, err := app.NewWithConfig(cfg)
	require.NoError(t, err)
	application.Start(context.Background())
	t.Cleanup(func() { application.Stop(context.Background()) })

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// newAuthedServer starts a panel and signs a fresh client in as admin.
func newAuthedServer(t *testing.T, filesRoot string) (*httptest.Server, *http.Client) {
	t.Helper()

	server := startServer(t, newConfig(t, filesRoot))
	client := newClient(t)
	loginAs(t, client, server.URL, "admin", "admin123")
	return server, client
}

func loginAs(t *testing.T, client *http.Client, base string, username string, password string) {
	t.Helper()

	resp, env := doJSON(t, client, http.MethodPost, base+"/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)
}

func doJSON(t *testing.T, client *http.Client, method string, url string, body any) (*http.Response, envelope) {
	t.Helper()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req, err := http.NewRequest(method, url, bytes.NewReader(payload))
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp := doRequest(t, client, req)
	var env envelope
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func doRequest(t *testing.T, client *http.Client, req *http.Request) *http.Response {
	t.Helper()

	resp, err := client.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func titles(notes []notify.Notification) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}
