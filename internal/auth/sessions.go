package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/mrlokans/bookshelf/internal/config"
)

// Session data keys
const (
	SessionKeyMaintainer = "maintainer"
	SessionKeyProvider   = "provider"
	SessionKeyLoginAt    = "login_at"
	SessionKeyOAuthState = "oauth_state"
	SessionKeyLoginNext  = "login_next"
	SessionKeyFlash      = "flash"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Kind    string // "success", "info", "danger"
	Message string
}

func init() {
	gob.Register(time.Time{})
	gob.Register(Flash{})
}

// SessionManager wraps scs.SessionManager with the maintainer session helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager backed by the catalog database.
// The sqlDB parameter should be the underlying *sql.DB from GORM.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, err
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	// Lax so the GitHub callback redirect still carries the cookie.
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession marks the request's session as belonging to the maintainer.
// The token is renewed first to prevent session fixation.
func (sm *SessionManager) CreateSession(r *http.Request, maintainer, provider string) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyMaintainer, maintainer)
	sm.Put(r.Context(), SessionKeyProvider, provider)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	return nil
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// GetMaintainer returns the logged-in maintainer, or "" when there is none.
func (sm *SessionManager) GetMaintainer(r *http.Request) string {
	return sm.GetString(r.Context(), SessionKeyMaintainer)
}

func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetMaintainer(r) != ""
}

// SetOAuthState remembers the state parameter of a pending OAuth login.
func (sm *SessionManager) SetOAuthState(r *http.Request, state string) {
	sm.Put(r.Context(), SessionKeyOAuthState, state)
}

// PopOAuthState returns and forgets the pending OAuth state.
func (sm *SessionManager) PopOAuthState(r *http.Request) string {
	return sm.PopString(r.Context(), SessionKeyOAuthState)
}

// SessionData holds the session information for a request.
type SessionData struct {
	Maintainer string
	Provider   string
	LoginAt    time.Time
}

// GetSessionData retrieves all session data at once, or nil when logged out.
func (sm *SessionManager) GetSessionData(r *http.Request) *SessionData {
	maintainer := sm.GetMaintainer(r)
	if maintainer == "" {
		return nil
	}

	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return &SessionData{
		Maintainer: maintainer,
		Provider:   sm.GetString(r.Context(), SessionKeyProvider),
		LoginAt:    loginAt,
	}
}

// AddFlash stores a message for the next page render.
func (sm *SessionManager) AddFlash(r *http.Request, kind, message string) {
	sm.Put(r.Context(), SessionKeyFlash, Flash{Kind: kind, Message: message})
}

// PopFlash returns and clears the pending message, if any.
func (sm *SessionManager) PopFlash(r *http.Request) *Flash {
	flash, ok := sm.Pop(r.Context(), SessionKeyFlash).(Flash)
	if !ok {
		return nil
	}
	return &flash
}
