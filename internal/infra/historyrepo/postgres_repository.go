package historyrepo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/session"
	"github.com/varad-more/Voyagent/internal/domain/trip"
)

// PostgresRepository implements session.HistoryRepository using pgx.
//
// Expected schema:
//
//	CREATE TABLE itineraries (
//	    id           TEXT PRIMARY KEY,
//	    status       TEXT NOT NULL,
//	    request      JSONB NOT NULL,
//	    result       JSONB,
//	    error_detail TEXT NOT NULL DEFAULT '',
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    updated_at   TIMESTAMPTZ NOT NULL
//	);
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Save upserts a record by ID.
func (r *PostgresRepository) Save(ctx context.Context, record session.HistoryRecord) error {
	request, err := json.Marshal(record.Request)
	if err != nil {
		return err
	}
	var result []byte
	if record.Result != nil {
		result, err = json.Marshal(record.Result)
		if err != nil {
			return err
		}
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO itineraries (id, status, request, result, error_detail, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			result = EXCLUDED.result,
			error_detail = EXCLUDED.error_detail,
			updated_at = EXCLUDED.updated_at
	`, record.ID, record.Status, request, result, record.ErrorDetail, record.CreatedAt, record.UpdatedAt)
	return err
}

// Get fetches one record.
func (r *PostgresRepository) Get(ctx context.Context, id string) (session.HistoryRecord, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, status, request, result, error_detail, created_at, updated_at
		FROM itineraries
		WHERE id = $1
		LIMIT 1
	`, id)
	if err != nil {
		return session.HistoryRecord{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return session.HistoryRecord{}, false, rows.Err()
	}
	record, err := scanRecord(rows)
	if err != nil {
		return session.HistoryRecord{}, false, err
	}
	return record, true, rows.Err()
}

// List returns the most recently created records first.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]session.HistoryRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, status, request, result, error_detail, created_at, updated_at
		FROM itineraries
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []session.HistoryRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func scanRecord(rows pgx.Rows) (session.HistoryRecord, error) {
	var (
		record    session.HistoryRecord
		request   []byte
		result    []byte
		createdAt time.Time
		updatedAt time.Time
	)
	if err := rows.Scan(&record.ID, &record.Status, &request, &result, &record.ErrorDetail, &createdAt, &updatedAt); err != nil {
		return session.HistoryRecord{}, err
	}
	record.CreatedAt = createdAt
	record.UpdatedAt = updatedAt
	var req trip.Request
	if err := json.Unmarshal(request, &req); err != nil {
		return session.HistoryRecord{}, err
	}
	record.Request = req
	if len(result) > 0 {
		var doc itinerary.Payload
		if err := json.Unmarshal(result, &doc); err != nil {
			return session.HistoryRecord{}, err
		}
		record.Result = &doc
	}
	return record, nil
}

var _ session.HistoryRepository = (*PostgresRepository)(nil)
