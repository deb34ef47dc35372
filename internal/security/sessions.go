package security

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/config"
)

// SessionKeyFlash holds the one-shot message shown after a redirect.
const SessionKeyFlash = "flash"

// SessionManager wraps scs.SessionManager with flash helpers.
type SessionManager struct {
	*scs.SessionManager
	logger *zap.Logger
}

// NewSQLiteStore creates the sessions table when missing and returns an scs
// store backed by sqlDB.
func NewSQLiteStore(sqlDB *sql.DB) (scs.Store, error) {
	_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		return nil, fmt.Errorf("create sessions table: %w", err)
	}
	return sqlite3store.New(sqlDB), nil
}

// NewMemoryStore returns an in-process store, used with non-sqlite databases.
func NewMemoryStore() scs.Store {
	return memstore.New()
}

// NewSessionManager creates a configured session manager on top of store.
func NewSessionManager(store scs.Store, cfg config.Security, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}

	sm := scs.New()
	sm.Store = store
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm, logger: logger.Named("sessions")}
}

// PutFlash stores message for the next rendered page.
func (sm *SessionManager) PutFlash(ctx context.Context, message string) {
	sm.Put(ctx, SessionKeyFlash, message)
}

// PopFlash returns and clears the pending flash message.
func (sm *SessionManager) PopFlash(ctx context.Context) string {
	return sm.PopString(ctx, SessionKeyFlash)
}
