package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStorage_SurvivesReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state", "session.json")

	first := NewFileStorage(path)
	require.NoError(t, first.Set(StorageKey, `{"id":"1","username":"admin","role":"admin"}`))

	second := NewFileStorage(path)
	value, ok, err := second.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, value, `"admin"`)

	require.NoError(t, second.Remove(StorageKey))
	_, ok, err = first.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStorage_CorruptFileReadsAsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	fs := NewFileStorage(path)
	_, _, err := fs.Get(StorageKey)
	require.Error(t, err)

	store := NewStore(fs, DemoCredentials(), WithLoginDelay(0))
	store.Initialize(context.Background())
	assert.Equal(t, StateAnonymous, store.State())

	_, ok, err := fs.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testCookieConfig() CookieConfig {
	return CookieConfig{Secret: []byte("test-secret"), TTL: time.Hour}
}

func TestCookieStorage_RoundTrip(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	cs := NewCookieStorage(rec, req, testCookieConfig())

	require.NoError(t, cs.Set(StorageKey, "value-1"))

	value, ok, err := cs.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "value-1", value)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, StorageKey, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	reread := NewCookieStorage(httptest.NewRecorder(), next, testCookieConfig())

	value, ok, err = reread.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "value-1", value)
}

func TestCookieStorage_TamperedCookieIsAnError(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: StorageKey, Value: "eyJhbGciOiJub25lIn0.e30."})

	cs := NewCookieStorage(httptest.NewRecorder(), req, testCookieConfig())
	_, _, err := cs.Get(StorageKey)
	assert.Error(t, err)
}

func TestCookieStorage_WrongSecretIsAnError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	other := CookieConfig{Secret: []byte("other-secret"), TTL: time.Hour}
	require.NoError(t, NewCookieStorage(rec, httptest.NewRequest(http.MethodGet, "/", nil), other).Set(StorageKey, "v"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, _, err := NewCookieStorage(httptest.NewRecorder(), req, testCookieConfig()).Get(StorageKey)
	assert.Error(t, err)
}

func TestCookieStorage_ExpiredCookieIsAbsent(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	writer := NewCookieStorage(rec, httptest.NewRequest(http.MethodGet, "/", nil), testCookieConfig())
	writer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	require.NoError(t, writer.Set(StorageKey, "stale"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])

	_, ok, err := NewCookieStorage(httptest.NewRecorder(), req, testCookieConfig()).Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCookieStorage_RemoveExpiresCookie(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	cs := NewCookieStorage(rec, httptest.NewRequest(http.MethodGet, "/", nil), testCookieConfig())

	require.NoError(t, cs.Set(StorageKey, "v"))
	require.NoError(t, cs.Remove(StorageKey))

	_, ok, err := cs.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, -1, cookies[len(cookies)-1].MaxAge)
}

func TestFactory_StorePerRequest(t *testing.T) {
	t.Parallel()

	factory := &Factory{Credentials: DemoCredentials(), Cookie: testCookieConfig()}

	rec := httptest.NewRecorder()
	store := factory.ForRequest(rec, httptest.NewRequest(http.MethodPost, "/login", nil))
	store.Initialize(context.Background())
	require.True(t, store.Login(context.Background(), "admin", "admin123"))

	req := httptest.NewRequest(http.MethodGet, "/nginx", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	next := factory.ForRequest(httptest.NewRecorder(), req)
	next.Initialize(context.Background())

	user, ok := next.User()
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, user.Role)
}
