package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/session"
)

type cachedDocument struct {
	payload   itinerary.Payload
	expiresAt time.Time
}

// MemoryStore is an in-memory document cache for tests/dev.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]cachedDocument
}

// NewMemoryStore constructs a store backed by process memory.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]cachedDocument)}
}

// SaveDocument caches the session document with optional TTL.
func (s *MemoryStore) SaveDocument(_ context.Context, sessionID string, doc itinerary.Payload, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp := time.Time{}
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	s.docs[sessionID] = cachedDocument{payload: doc, expiresAt: exp}
	return nil
}

// GetDocument implements session.Store.
func (s *MemoryStore) GetDocument(_ context.Context, sessionID string) (itinerary.Payload, bool, error) {
	s.mu.RLock()
	cached, ok := s.docs[sessionID]
	s.mu.RUnlock()
	if !ok {
		return itinerary.Payload{}, false, nil
	}
	if hasExpired(cached.expiresAt) {
		s.mu.Lock()
		delete(s.docs, sessionID)
		s.mu.Unlock()
		return itinerary.Payload{}, false, nil
	}
	return cached.payload, true, nil
}

// DeleteDocument drops a cached session document.
func (s *MemoryStore) DeleteDocument(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, sessionID)
	return nil
}

func hasExpired(ts time.Time) bool {
	if ts.IsZero() {
		return false
	}
	return ts.Before(time.Now())
}

var _ session.Store = (*MemoryStore)(nil)
