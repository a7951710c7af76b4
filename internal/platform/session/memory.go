package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	identity  Identity
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is a process-lifetime session store. Expired entries are
// dropped lazily on read.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, token string, id Identity, ttl time.Duration) error {
	entry := memoryEntry{identity: id}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[token] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, token string) (*Identity, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, nil
	}

	id := entry.identity
	return &id, nil
}

func (s *MemoryStore) Refresh(_ context.Context, token string, id Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.sessions[token]
	if !ok {
		return nil
	}
	entry.identity = id
	s.sessions[token] = entry
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// ExpiresAt reports the stored expiry of a session, if any. Used by
// tests to assert remember-me semantics.
func (s *MemoryStore) ExpiresAt(token string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.sessions[token]
	if !ok || entry.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return entry.expiresAt, true
}

// MemoryCodeStore keeps pending recovery codes in a process-lifetime
// map, one per email.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]RecoveryCode
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]RecoveryCode)}
}

func (s *MemoryCodeStore) Put(_ context.Context, email string, rc RecoveryCode) error {
	s.mu.Lock()
	s.codes[email] = rc
	s.mu.Unlock()
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, email string) (*RecoveryCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rc, ok := s.codes[email]
	if !ok {
		return nil, nil
	}
	return &rc, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	delete(s.codes, email)
	s.mu.Unlock()
	return nil
}
