package session

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func TestTokenRoundTrip(t *testing.T) {
	tok := Issue("ada", DefaultTTL, t0)
	assert.Equal(t, t0.Add(24*time.Hour).UnixMilli(), tok.Exp)

	got, err := Decode(tok.Encode())
	require.NoError(t, err)
	assert.Equal(t, tok, got)

	assert.False(t, got.Expired(t0))
	assert.False(t, got.Expired(t0.Add(24*time.Hour-time.Millisecond)))
	assert.True(t, got.Expired(t0.Add(24*time.Hour)))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "not base64!", "e30=", "bnVsbA=="} {
		_, err := Decode(s)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", s)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Init())
	require.NoError(t, s.Set("a", "1"))
	v, ok := s.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	require.NoError(t, s.Delete("a"))
	_, ok = s.Get("a")
	assert.False(t, ok)
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Clear())
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := NewFileStore(path)
	require.NoError(t, s.Init(), "missing file is an empty session")
	require.NoError(t, s.Set("user", "ada"))

	reopened := NewFileStore(path)
	require.NoError(t, reopened.Init())
	v, ok := reopened.Get("user")
	assert.True(t, ok)
	assert.Equal(t, "ada", v)

	require.NoError(t, reopened.Clear())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, reopened.Clear(), "clearing twice is fine")
}

func TestFileStoreBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a list\n"), 0o600))
	assert.Error(t, NewFileStore(path).Init())
}

func newManager(now *time.Time) *Manager {
	return NewManager(NewMemoryStore(), WithClock(func() time.Time { return *now }))
}

func TestManagerExpiryClears(t *testing.T) {
	now := t0
	m := newManager(&now)
	tok, err := m.Login("ada")
	require.NoError(t, err)

	cur, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, tok, cur)

	now = now.Add(25 * time.Hour)
	_, ok = m.Current()
	assert.False(t, ok)
	_, ok = m.store.Get(userKey)
	assert.False(t, ok, "expiry clears the whole session")
}

func TestGuardRedirectsWithNext(t *testing.T) {
	now := t0
	m := newManager(&now)
	h := m.Guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/model/42?tab=notes", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/login", loc.Path)
	assert.Equal(t, "/model/42?tab=notes", loc.Query().Get("next"))

	tok, err := m.Login("ada")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/model/42", nil)
	req.Header.Set(HeaderName, tok.Encode())
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/model/42", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: tok.Encode()})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	forged := Issue("mallory", time.Hour, now).Encode()
	req = httptest.NewRequest(http.MethodGet, "/model/42", nil)
	req.Header.Set(HeaderName, forged)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestLoginAndLogoutHandlers(t *testing.T) {
	now := t0
	m := newManager(&now)

	rec := httptest.NewRecorder()
	m.LoginHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login?next=/viewer", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `value="/viewer"`)

	form := url.Values{"user": {"ada"}, "next": {"/viewer"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = httptest.NewRecorder()
	m.LoginHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/viewer", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)

	_, ok := m.Current()
	assert.True(t, ok)

	rec = httptest.NewRecorder()
	m.LogoutHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	assert.Equal(t, "/login", rec.Header().Get("Location"))
	_, ok = m.Current()
	assert.False(t, ok)
}

func TestLoginRequiresUser(t *testing.T) {
	now := t0
	m := newManager(&now)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("user=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	m.LoginHandler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                   "/",
		"/viewer?x=1":        "/viewer?x=1",
		"//evil.example.com": "/",
		"https://evil.com":   "/",
		"/\\evil.example":    "/",
		"/a\\b":              "/a\\b",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), "input %q", in)
	}
}
