package session

import (
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// HeaderName carries the token for non-browser clients.
	HeaderName = "X-Auth-Token"
	// CookieName carries the token for browsers.
	CookieName = "meshview_token"
	// tokenKey is where the live token is kept in the Store.
	tokenKey = "token"
	userKey  = "user"
)

// Manager issues, checks and clears the single prototype login.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets the token lifetime.
func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager wraps an initialised store.
func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{store: store, ttl: DefaultTTL, now: time.Now, log: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login stores a fresh token for user and returns it.
func (m *Manager) Login(user string) (Token, error) {
	t := Issue(user, m.ttl, m.now())
	if err := m.store.Set(tokenKey, t.Encode()); err != nil {
		return Token{}, err
	}
	if err := m.store.Set(userKey, user); err != nil {
		return Token{}, err
	}
	m.log.Info("login", zap.String("user", user), zap.Time("expires", t.ExpiresAt()))
	return t, nil
}

// Logout clears the session.
func (m *Manager) Logout() error {
	m.log.Info("logout")
	return m.store.Clear()
}

// Current returns the stored token while it is fresh. An expired token
// clears the session.
func (m *Manager) Current() (Token, bool) {
	raw, ok := m.store.Get(tokenKey)
	if !ok {
		return Token{}, false
	}
	t, err := Decode(raw)
	if err != nil || t.Expired(m.now()) {
		m.log.Debug("session expired or unreadable", zap.Error(err))
		_ = m.store.Clear()
		return Token{}, false
	}
	return t, true
}

// Authorized reports whether r carries the current token.
func (m *Manager) Authorized(r *http.Request) bool {
	raw := requestToken(r)
	if raw == "" {
		return false
	}
	cur, ok := m.Current()
	if !ok {
		return false
	}
	return raw == cur.Encode()
}

func requestToken(r *http.Request) string {
	if h := r.Header.Get(HeaderName); h != "" {
		return h
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Guard sends unauthenticated requests to /login, keeping the requested
// location in the next parameter.
func (m *Manager) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		dest := "/login?next=" + url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, dest, http.StatusFound)
	})
}

var loginPage = template.Must(template.New("login").Parse(`<!doctype html>
<title>meshview login</title>
<form method="post" action="/login">
<input type="hidden" name="next" value="{{.}}">
<input name="user" placeholder="name" autofocus>
<button>Sign in</button>
</form>
`))

// LoginHandler shows the form on GET and logs in on POST, then returns
// the browser to next.
func (m *Manager) LoginHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_ = loginPage.Execute(w, safeNext(r.URL.Query().Get("next")))
		case http.MethodPost:
			user := strings.TrimSpace(r.FormValue("user"))
			if user == "" {
				http.Error(w, "user is required", http.StatusBadRequest)
				return
			}
			t, err := m.Login(user)
			if err != nil {
				m.log.Error("login failed", zap.Error(err))
				http.Error(w, "login failed", http.StatusInternalServerError)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    t.Encode(),
				Path:     "/",
				Expires:  t.ExpiresAt(),
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusSeeOther)
		default:
			w.Header().Set("Allow", "GET, POST")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
}

// LogoutHandler clears the session and the cookie.
func (m *Manager) LogoutHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := m.Logout(); err != nil {
			m.log.Warn("logout failed", zap.Error(err))
		}
		http.SetCookie(w, &http.Cookie{Name: CookieName, Value: "", Path: "/", MaxAge: -1})
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}

// safeNext keeps redirects on this host.
func safeNext(next string) string {
	// Browsers read "/\host" as "//host".
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
