package historyrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/varad-more/Voyagent/internal/domain/session"
)

// MemoryRepository is an in-memory history implementation for tests/dev.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]session.HistoryRecord
}

// NewMemoryRepository constructs a repository backed by process memory.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]session.HistoryRecord)}
}

// Save upserts a record by ID.
func (r *MemoryRepository) Save(_ context.Context, record session.HistoryRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = record
	return nil
}

// Get fetches one record.
func (r *MemoryRepository) Get(_ context.Context, id string) (session.HistoryRecord, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id]
	return record, ok, nil
}

// List returns the most recently created records first.
func (r *MemoryRepository) List(_ context.Context, limit int) ([]session.HistoryRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]session.HistoryRecord, 0, len(r.records))
	for _, record := range r.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

var _ session.HistoryRepository = (*MemoryRepository)(nil)
