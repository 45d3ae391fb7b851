package auth

import (
	"database/sql"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/bookworm/internal/config"
)

// Session data keys
const (
	SessionKeyOwner   = "owner"
	SessionKeyLoginAt = "login_at"
)

const sessionsTableDDL = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

func init() {
	gob.Register(time.Time{})
}

// SessionManager wraps scs.SessionManager with owner-session helpers.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a session manager persisted in the library's SQLite
// database. Pass a nil sqlDB (for example with PostgreSQL) to keep sessions in
// memory; they are then lost on restart.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	sm := scs.New()

	if sqlDB != nil {
		if _, err := sqlDB.Exec(sessionsTableDDL); err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	} else {
		sm.Store = memstore.New()
	}

	lifetime := cfg.SessionLifetime
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	sm.Lifetime = lifetime
	sm.IdleTimeout = lifetime / 2

	sm.Cookie.Name = "bookworm_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}, nil
}

// CreateSession marks the session as belonging to the owner.
// Call only after the password was verified.
func (sm *SessionManager) CreateSession(r *http.Request) error {
	// Renew token to prevent session fixation
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyOwner, true)
	sm.Put(r.Context(), SessionKeyLoginAt, time.Now())
	return nil
}

func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// IsAuthenticated returns true if the request carries an owner session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	return sm.GetBool(r.Context(), SessionKeyOwner)
}

// LoginAt returns when the owner logged in, or the zero time.
func (sm *SessionManager) LoginAt(r *http.Request) time.Time {
	loginAt, _ := sm.Get(r.Context(), SessionKeyLoginAt).(time.Time)
	return loginAt
}
