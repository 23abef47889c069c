package session

import (
	"context"
	"time"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	"github.com/varad-more/Voyagent/internal/infra/planner"
)

// History record statuses.
const (
	StatusPending  = "pending"
	StatusComplete = "completed"
	StatusFailed   = "failed"
)

// Config tunes session behavior.
type Config struct {
	// DocumentTTL bounds how long a cached session document survives
	// without activity.
	DocumentTTL time.Duration
}

// HistoryRecord is one locally recorded generation outcome.
type HistoryRecord struct {
	ID          string             `json:"id"`
	Status      string             `json:"status"`
	Request     trip.Request       `json:"request"`
	Result      *itinerary.Payload `json:"result,omitempty"`
	ErrorDetail string             `json:"error,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// HistoryRepository persists generation records. Save upserts by ID.
type HistoryRepository interface {
	Save(ctx context.Context, record HistoryRecord) error
	Get(ctx context.Context, id string) (HistoryRecord, bool, error)
	List(ctx context.Context, limit int) ([]HistoryRecord, error)
}

// Store caches the current document per session so a session survives
// a process restart.
type Store interface {
	SaveDocument(ctx context.Context, sessionID string, doc itinerary.Payload, ttl time.Duration) error
	GetDocument(ctx context.Context, sessionID string) (itinerary.Payload, bool, error)
	DeleteDocument(ctx context.Context, sessionID string) error
}

// EventSource is a received planner event stream.
type EventSource interface {
	Recv() (planner.Event, error)
	Close() error
}

// PlannerClient covers the remote planner operations the orchestrator
// drives.
type PlannerClient interface {
	Generate(ctx context.Context, req trip.Request) (itinerary.Payload, error)
	GenerateStream(ctx context.Context, req trip.Request) (EventSource, error)
	EditBlock(ctx context.Context, req planner.EditBlockRequest) (itinerary.ScheduleBlock, error)
	SwapBlock(ctx context.Context, req planner.SwapRequest) ([]planner.Alternative, error)
	RegenerateDay(ctx context.Context, req planner.RegenerateDayRequest) (planner.RegeneratedDay, error)
	SaveItinerary(ctx context.Context, id string, doc itinerary.Payload) error
}

// StagedEdit is the single uncommitted block suggestion of a session.
type StagedEdit struct {
	DayIndex   int                     `json:"day_index"`
	BlockIndex int                     `json:"block_index"`
	Suggestion itinerary.ScheduleBlock `json:"suggestion"`
}

// SwapOption is one ranked alternative for a block.
type SwapOption struct {
	Rank  int                     `json:"rank"`
	Label string                  `json:"label"`
	Block itinerary.ScheduleBlock `json:"block"`
	Why   string                  `json:"why,omitempty"`
}

// StreamUpdate is one event re-emitted to the caller during streamed
// generation. Payload is the raw planner data line for the kind.
type StreamUpdate struct {
	Kind    string `json:"kind"`
	Payload []byte `json:"payload,omitempty"`
}
