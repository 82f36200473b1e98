// Package session holds the authenticated identity of one browser tab.
//
// A session is a record in a Store addressed by a random id. The client
// only ever sees a signed token carrying that id, so revoking the record
// on logout invalidates every copy of the token.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/kirinyoku/eventease/internal/domain"
)

// Store persists session records.
type Store interface {
	Save(ctx context.Context, id string, sess domain.Session, ttl time.Duration) error
	// Load reports false, with a nil error, when id is unknown or expired.
	Load(ctx context.Context, id string) (domain.Session, bool, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	sess    domain.Session
	expires time.Time
}

// MemoryStore is an in-process Store for development and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, id string, sess domain.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[id] = memoryEntry{sess: sess, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (domain.Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return domain.Session{}, false, nil
	}

	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return domain.Session{}, false, nil
	}

	return e.sess, true, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, id)
	return nil
}
