package credentials

import (
	"context"

	"github.com/alexedwards/scs/v2"
)

// SessionStore keeps the slot inside the caller's scs session. The context
// passed to each method must come from a request loaded by the session
// manager's middleware.
type SessionStore struct {
	sessions *scs.SessionManager
}

func NewSessionStore(sessions *scs.SessionManager) *SessionStore {
	return &SessionStore{sessions: sessions}
}

func (s *SessionStore) Token(ctx context.Context) (string, error) {
	return s.sessions.GetString(ctx, Slot), nil
}

// SetToken stores the credential and renews the session token, so a login
// never reuses a pre-authentication session id.
func (s *SessionStore) SetToken(ctx context.Context, token string) error {
	if err := s.sessions.RenewToken(ctx); err != nil {
		return err
	}
	s.sessions.Put(ctx, Slot, token)
	return nil
}

func (s *SessionStore) Clear(ctx context.Context) error {
	s.sessions.Remove(ctx, Slot)
	return s.sessions.RenewToken(ctx)
}
