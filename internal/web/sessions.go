package web

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mrlokans/library/internal/config"
)

// Session data keys. The bearer credential lives under credentials.Slot.
const (
	SessionKeyUsername     = "username"
	SessionKeyFlashKind    = "flash_kind"
	SessionKeyFlashMessage = "flash_message"
)

// Flash kinds, used as CSS modifiers on the toast.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// SessionManager wraps scs.SessionManager with application-specific methods.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager creates a configured session manager on top of store.
func NewSessionManager(store scs.Store, cfg config.Web) *SessionManager {
	sm := scs.New()
	sm.Store = store

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "library_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteStrictMode
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm}
}

// OpenSQLiteStore opens (creating if needed) the session database at path.
// The caller owns the returned *sql.DB and must close it on shutdown.
func OpenSQLiteStore(path string) (*sql.DB, scs.Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("open session database: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("create sessions table: %w", err)
	}

	return db, sqlite3store.New(db), nil
}

// Flash is a one-shot notification shown as a toast on the next page.
type Flash struct {
	Kind    string
	Message string
}

func (sm *SessionManager) PutFlash(ctx context.Context, kind, message string) {
	sm.Put(ctx, SessionKeyFlashKind, kind)
	sm.Put(ctx, SessionKeyFlashMessage, message)
}

// PopFlash returns and removes the pending flash, or nil.
func (sm *SessionManager) PopFlash(ctx context.Context) *Flash {
	message := sm.PopString(ctx, SessionKeyFlashMessage)
	kind := sm.PopString(ctx, SessionKeyFlashKind)
	if message == "" {
		return nil
	}
	return &Flash{Kind: kind, Message: message}
}

func (sm *SessionManager) Username(ctx context.Context) string {
	return sm.GetString(ctx, SessionKeyUsername)
}
