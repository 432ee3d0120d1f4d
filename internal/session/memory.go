package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is the in-process twin of RedisStore, for tests and dev runs
// without a redis.
type MemoryStore struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memoryEntry
}

type memoryEntry struct {
	userID string
	exp    time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	return &MemoryStore{
		ttl: ttl,
		m:   make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()

	s.mu.Lock()
	s.m[token] = memoryEntry{userID: userID, exp: time.Now().Add(s.ttl)}
	s.mu.Unlock()

	return token, nil
}

func (s *MemoryStore) UserID(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	e, ok := s.m[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNoSession
	}

	if time.Now().After(e.exp) {
		s.mu.Lock()
		delete(s.m, token)
		s.mu.Unlock()
		return "", ErrNoSession
	}

	return e.userID, nil
}

func (s *MemoryStore) Destroy(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.m, token)
	s.mu.Unlock()

	return nil
}
