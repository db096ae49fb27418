// Package credentials holds the client's bearer token in a single named slot.
//
// The CLI keeps the slot in an encrypted SQLite file (FileStore); the web UI
// keeps one slot per browser session (SessionStore). Both satisfy Store, which
// is all the client SDK depends on.
package credentials

import (
	"context"
	"sync"
)

// Slot is the fixed key the bearer credential is stored under.
const Slot = "jwt"

// Store is a single-slot credential holder. Token returns "" when empty.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps the credential in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(token string) *MemoryStore {
	return &MemoryStore{token: token}
}

func (m *MemoryStore) Token(context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token, nil
}

func (m *MemoryStore) SetToken(_ context.Context, token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	return m.SetToken(context.Background(), "")
}
