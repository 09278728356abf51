package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a single-process Store. It backs tests and local runs
// without Redis. Records are stored as JSON so callers never share memory
// with the store.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memItem
}

type memItem struct {
	data    []byte
	expires time.Time
}

// NewMemoryStore returns an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, items: make(map[string]memItem)}
}

// WithClock replaces the clock used for expiry.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) load(key string) ([]byte, bool) {
	it, ok := s.items[key]
	if !ok {
		return nil, false
	}
	if !it.expires.IsZero() && !s.now().Before(it.expires) {
		delete(s.items, key)
		return nil, false
	}
	return it.data, true
}

func (s *MemoryStore) save(key string, data []byte, ttl time.Duration) {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.items[key] = memItem{data: data, expires: exp}
}

func (s *MemoryStore) Create(_ context.Context, p *Progress, ttl time.Duration) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", p.ID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.load(sessionKey(p.ID)); ok {
		return fmt.Errorf("%w: id %s already exists", ErrConflict, p.ID)
	}
	s.save(sessionKey(p.ID), data, ttl)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Progress, error) {
	s.mu.Lock()
	data, ok := s.load(sessionKey(id))
	s.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	return &p, nil
}

// Update holds the store lock for the whole read-modify-write, so it never
// conflicts.
func (s *MemoryStore) Update(_ context.Context, id string, ttl time.Duration, fn func(*Progress) error) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.load(sessionKey(id))
	if !ok {
		return nil, ErrNotFound
	}
	var p Progress
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("session: decode %s: %w", id, err)
	}
	if err := fn(&p); err != nil {
		return nil, err
	}
	updated, err := json.Marshal(&p)
	if err != nil {
		return nil, fmt.Errorf("session: marshal %s: %w", id, err)
	}
	s.save(sessionKey(id), updated, ttl)
	return &p, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, sessionKey(id))
	return nil
}

func (s *MemoryStore) SetUserSession(_ context.Context, userID, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(userKey(userID), []byte(sessionID), ttl)
	return nil
}

func (s *MemoryStore) UserSession(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.load(userKey(userID))
	if !ok {
		return "", ErrNotFound
	}
	return string(data), nil
}

func (s *MemoryStore) ClearUserSession(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, userKey(userID))
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

// TTL returns the remaining lifetime of session id, or 0 when absent.
func (s *MemoryStore) TTL(id string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[sessionKey(id)]
	if !ok || it.expires.IsZero() {
		return 0
	}
	return it.expires.Sub(s.now())
}
