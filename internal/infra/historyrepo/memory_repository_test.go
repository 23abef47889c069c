package historyrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varad-more/Voyagent/internal/domain/session"
)

func TestMemoryRepositoryUpsert(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	record := session.HistoryRecord{ID: "rec-1", Status: session.StatusPending, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Save(ctx, record))

	record.Status = session.StatusComplete
	require.NoError(t, repo.Save(ctx, record))

	got, found, err := repo.Get(ctx, "rec-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, session.StatusComplete, got.Status)

	_, found, err = repo.Get(ctx, "rec-2")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryRepositoryListNewestFirst(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Now().UTC()

	for i, id := range []string{"rec-a", "rec-b", "rec-c"} {
		require.NoError(t, repo.Save(ctx, session.HistoryRecord{
			ID:        id,
			Status:    session.StatusComplete,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, "rec-c", records[0].ID)
	require.Equal(t, "rec-b", records[1].ID)
}
