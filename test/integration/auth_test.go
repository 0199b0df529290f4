//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlowAndProtectedEndpoints(t *testing.T) {
	server, client := newAuthedServer(t, "")

	resp, env := doJSON(t, client, http.MethodGet, server.URL+"/api/v1/system/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, env.Success)

	for _, page := range []string{"/", "/nginx", "/php", "/mysql", "/stats", "/settings", "/files", "/activities"} {
		resp, _ := doJSON(t, client, http.MethodGet, server.URL+page, nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode, page)
	}

	anonymous := newClient(t)
	resp, _ = doJSON(t, anonymous, http.MethodGet, server.URL+"/api/v1/system/status", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = doJSON(t, anonymous, http.MethodGet, server.URL+"/mysql?tab=users", nil)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/mysql?tab=users", loc.Query().Get("from"))
}

func TestSessionSurvivesRestart(t *testing.T) {
	cfg := newConfig(t, "")
	first := startServer(t, cfg)
	client := newClient(t)
	loginAs(t, client, first.URL, "admin", "admin123")

	firstURL, err := url.Parse(first.URL)
	require.NoError(t, err)
	cookies := client.Jar.Cookies(firstURL)
	require.NotEmpty(t, cookies)

	second := startServer(t, newConfig(t, ""))
	secondURL, err := url.Parse(second.URL)
	require.NoError(t, err)
	client.Jar.SetCookies(secondURL, cookies)

	_, env := doJSON(t, client, http.MethodGet, second.URL+"/api/v1/auth/me", nil)
	var snap struct {
		State string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &snap))
	assert.Equal(t, "authenticated", snap.State)
}

func TestTamperedCookieIsDiscarded(t *testing.T) {
	server := startServer(t, newConfig(t, ""))
	client := newClient(t)

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/v1/auth/me", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: "hostpanel_user", Value: "not-a-token"})

	resp := doRequest(t, client, req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var cleared bool
	for _, c := range resp.Cookies() {
		if c.Name == "hostpanel_user" && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "corrupt session cookie should be expired")
}

func TestLogoutClearsSession(t *testing.T) {
	server, client := newAuthedServer(t, "")

	resp, env := doJSON(t, client, http.MethodPost, server.URL+"/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, titles(env.Notifications), "Logged out")

	resp, _ = doJSON(t, client, http.MethodGet, server.URL+"/api/v1/services", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
