package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/pipeline"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	"github.com/varad-more/Voyagent/internal/infra/planner"
	apperrors "github.com/varad-more/Voyagent/pkg/errors"
	"github.com/varad-more/Voyagent/pkg/util"
)

// Service orchestrates one itinerary document per session: generation,
// the staged edit flow, swaps, day regeneration and persistence.
type Service interface {
	Generate(ctx context.Context, sessionID string, req trip.Request) (itinerary.Payload, error)
	GenerateStream(ctx context.Context, sessionID string, req trip.Request) (<-chan StreamUpdate, error)
	Document(ctx context.Context, sessionID string) (itinerary.Payload, error)
	Progress(sessionID string) (pipeline.Snapshot, error)
	LoadDemo(ctx context.Context, sessionID string) (itinerary.Payload, error)

	RequestEdit(ctx context.Context, sessionID string, dayIndex, blockIndex int, instruction string) (itinerary.ScheduleBlock, error)
	ConfirmEdit(ctx context.Context, sessionID string) (itinerary.Payload, bool, error)
	CancelEdit(ctx context.Context, sessionID string) error

	SwapOptions(ctx context.Context, sessionID string, dayIndex, blockIndex int, preferences string) ([]SwapOption, error)
	ApplySwap(ctx context.Context, sessionID string, dayIndex, blockIndex int, candidate itinerary.ScheduleBlock) (itinerary.Payload, bool, error)
	RegenerateDay(ctx context.Context, sessionID string, dayIndex int, preferences string) (itinerary.Payload, error)
	DeleteBlock(ctx context.Context, sessionID string, dayIndex, blockIndex int) (itinerary.Payload, error)
	InsertBlock(ctx context.Context, sessionID string, dayIndex int, block itinerary.ScheduleBlock) (itinerary.Payload, bool, error)

	Save(ctx context.Context, sessionID string) error
	Record(ctx context.Context, id string) (HistoryRecord, error)
	History(ctx context.Context, limit int) ([]HistoryRecord, error)
}

// state is everything the orchestrator tracks for one session. All
// fields are guarded by the service mutex.
type state struct {
	doc      *itinerary.Document
	tracker  *pipeline.Tracker
	staged   *StagedEdit
	inflight map[string]struct{}
}

type service struct {
	cfg     Config
	client  PlannerClient
	store   Store
	history HistoryRepository
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string]*state
}

// NewService wires up the session domain.
func NewService(cfg Config, client PlannerClient, store Store, history HistoryRepository, logger *slog.Logger) Service {
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = time.Hour
	}
	return &service{
		cfg:      cfg,
		client:   client,
		store:    store,
		history:  history,
		logger:   logger.With("component", "session.service"),
		sessions: make(map[string]*state),
	}
}

func (s *service) Generate(ctx context.Context, sessionID string, req trip.Request) (itinerary.Payload, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return itinerary.Payload{}, err
	}
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, err
	}

	record := s.openRecord(ctx, req)
	result, err := s.client.Generate(ctx, req)
	if err != nil {
		s.closeRecord(ctx, record, nil, err)
		return itinerary.Payload{}, err
	}
	s.closeRecord(ctx, record, &result, nil)

	doc := itinerary.NewDocument(result)
	s.mu.Lock()
	st.doc = doc
	st.staged = nil
	snapshot := doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, nil
}

func (s *service) GenerateStream(ctx context.Context, sessionID string, req trip.Request) (<-chan StreamUpdate, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	record := s.openRecord(ctx, req)
	src, err := s.client.GenerateStream(ctx, req)
	if err != nil {
		s.closeRecord(ctx, record, nil, err)
		return nil, err
	}

	s.mu.Lock()
	st.tracker = pipeline.NewTracker()
	s.mu.Unlock()

	out := make(chan StreamUpdate)
	go s.consume(ctx, sessionID, st, record, src, out)
	return out, nil
}

// consume drains the planner stream, feeds the tracker and re-emits
// each event to the caller.
func (s *service) consume(ctx context.Context, sessionID string, st *state, record HistoryRecord, src EventSource, out chan<- StreamUpdate) {
	defer close(out)
	defer src.Close()

	// terminal flips once the stream produced a result, reported an
	// error, or signalled done. An EOF before any of those means the
	// planner hung up mid-generation and the caller still needs a
	// failure event.
	terminal := false
	for {
		ev, err := src.Recv()
		if err != nil {
			if terminal {
				return
			}
			message := err.Error()
			if errors.Is(err, io.EOF) {
				message = "planner stream ended before a result was produced"
			}
			s.logger.Error("planner stream interrupted", "session_id", sessionID, "error", err)
			s.failStream(ctx, st, record, message)
			s.emit(ctx, out, StreamUpdate{Kind: planner.EventError, Payload: []byte(fmt.Sprintf(`{"message":%q}`, message))})
			return
		}

		switch ev.Kind {
		case planner.EventProgress:
			if p, perr := ev.Progress(); perr == nil {
				s.mu.Lock()
				st.tracker.Progress(p.Stage, p.Status, p.Detail)
				s.mu.Unlock()
			}
		case planner.EventResult:
			result, rerr := ev.Result()
			if rerr != nil {
				s.logger.Error("planner result undecodable", "session_id", sessionID, "error", rerr)
				break
			}
			s.closeRecord(ctx, record, &result, nil)
			doc := itinerary.NewDocument(result)
			s.mu.Lock()
			st.doc = doc
			st.staged = nil
			snapshot := doc.Snapshot()
			s.mu.Unlock()
			s.persist(ctx, sessionID, snapshot)
			terminal = true
		case planner.EventError:
			s.failStream(ctx, st, record, ev.ErrorMessage())
			terminal = true
		case planner.EventDone:
			s.mu.Lock()
			st.tracker.Complete()
			s.mu.Unlock()
			terminal = true
		}

		if !s.emit(ctx, out, StreamUpdate{Kind: ev.Kind, Payload: ev.Payload}) {
			return
		}
	}
}

func (s *service) emit(ctx context.Context, out chan<- StreamUpdate, update StreamUpdate) bool {
	select {
	case out <- update:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *service) failStream(ctx context.Context, st *state, record HistoryRecord, message string) {
	s.mu.Lock()
	st.tracker.Fail(message)
	s.mu.Unlock()
	s.closeRecord(ctx, record, nil, errors.New(message))
}

func (s *service) Document(ctx context.Context, sessionID string) (itinerary.Payload, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if st.doc == nil {
		return itinerary.Payload{}, noDocument()
	}
	return st.doc.Snapshot(), nil
}

func (s *service) Progress(sessionID string) (pipeline.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[sessionID]
	if !ok {
		return pipeline.Snapshot{}, apperrors.Wrap(apperrors.CodeNotFound, "unknown session", nil)
	}
	if st.tracker == nil {
		return pipeline.NewTracker().Snapshot(), nil
	}
	return st.tracker.Snapshot(), nil
}

func (s *service) LoadDemo(ctx context.Context, sessionID string) (itinerary.Payload, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, err
	}
	doc := itinerary.NewDocument(DemoDocument())
	s.mu.Lock()
	st.doc = doc
	st.staged = nil
	snapshot := doc.Snapshot()
	s.mu.Unlock()
	s.persist(ctx, sessionID, snapshot)
	return snapshot, nil
}

func (s *service) RequestEdit(ctx context.Context, sessionID string, dayIndex, blockIndex int, instruction string) (itinerary.ScheduleBlock, error) {
	if strings.TrimSpace(instruction) == "" {
		return itinerary.ScheduleBlock{}, apperrors.Wrap(apperrors.CodeInvalidInput, "instruction cannot be empty", nil)
	}
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.ScheduleBlock{}, err
	}

	key := blockKey(dayIndex, blockIndex)
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.ScheduleBlock{}, noDocument()
	}
	current, err := st.doc.Block(dayIndex, blockIndex)
	if err != nil {
		s.mu.Unlock()
		return itinerary.ScheduleBlock{}, err
	}
	if _, busy := st.inflight[key]; busy {
		s.mu.Unlock()
		return itinerary.ScheduleBlock{}, editConflict(dayIndex, blockIndex)
	}
	st.inflight[key] = struct{}{}
	destination := st.doc.Snapshot().Request.Destination
	s.mu.Unlock()

	suggestion, err := s.client.EditBlock(ctx, planner.EditBlockRequest{
		DayIndex:     dayIndex,
		BlockIndex:   blockIndex,
		Instruction:  instruction,
		CurrentBlock: current,
		Destination:  destination,
	})

	s.mu.Lock()
	delete(st.inflight, key)
	if err == nil {
		// One staged suggestion per session; a request for another
		// block supersedes the previous one.
		st.staged = &StagedEdit{DayIndex: dayIndex, BlockIndex: blockIndex, Suggestion: suggestion}
	}
	s.mu.Unlock()
	if err != nil {
		return itinerary.ScheduleBlock{}, err
	}
	return suggestion, nil
}

func (s *service) ConfirmEdit(ctx context.Context, sessionID string) (itinerary.Payload, bool, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, false, err
	}
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, noDocument()
	}
	if st.staged == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "no staged edit to confirm", nil)
	}
	staged := *st.staged
	duplicate, err := st.doc.ReplaceBlock(staged.DayIndex, staged.BlockIndex, staged.Suggestion)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, err
	}
	st.staged = nil
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, duplicate, nil
}

func (s *service) CancelEdit(ctx context.Context, sessionID string) error {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	st.staged = nil
	s.mu.Unlock()
	return nil
}

func (s *service) SwapOptions(ctx context.Context, sessionID string, dayIndex, blockIndex int, preferences string) ([]SwapOption, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := blockKey(dayIndex, blockIndex)
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return nil, noDocument()
	}
	current, err := st.doc.Block(dayIndex, blockIndex)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	day, err := st.doc.Day(dayIndex)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if _, busy := st.inflight[key]; busy {
		s.mu.Unlock()
		return nil, editConflict(dayIndex, blockIndex)
	}
	st.inflight[key] = struct{}{}
	destination := st.doc.Snapshot().Request.Destination
	s.mu.Unlock()

	alternatives, err := s.client.SwapBlock(ctx, planner.SwapRequest{
		CurrentBlock: current,
		Destination:  destination,
		BlockType:    current.BlockType,
		DayDate:      day.Date,
		Preferences:  preferences,
	})

	s.mu.Lock()
	delete(st.inflight, key)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	options := make([]SwapOption, 0, len(alternatives))
	for i, alt := range alternatives {
		label := ""
		if i < len(planner.RankLabels) {
			label = planner.RankLabels[i]
		}
		options = append(options, SwapOption{
			Rank:  i + 1,
			Label: label,
			Block: alt.ScheduleBlock,
			Why:   alt.Why,
		})
	}
	return options, nil
}

func (s *service) ApplySwap(ctx context.Context, sessionID string, dayIndex, blockIndex int, candidate itinerary.ScheduleBlock) (itinerary.Payload, bool, error) {
	if strings.TrimSpace(candidate.Title) == "" {
		return itinerary.Payload{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "candidate block needs a title", nil)
	}
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, false, err
	}

	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, noDocument()
	}
	if _, busy := st.inflight[blockKey(dayIndex, blockIndex)]; busy {
		s.mu.Unlock()
		return itinerary.Payload{}, false, editConflict(dayIndex, blockIndex)
	}
	current, err := st.doc.Block(dayIndex, blockIndex)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, err
	}

	// The alternative payload carries the new content and times; block
	// fields it never carries stay with the original. Missing times
	// fall back to the slot being replaced.
	merged := current
	merged.Title = candidate.Title
	merged.Description = candidate.Description
	merged.Location = candidate.Location
	merged.MicroActivities = candidate.MicroActivities
	if candidate.StartTime != "" {
		merged.StartTime = candidate.StartTime
	}
	if candidate.EndTime != "" {
		merged.EndTime = candidate.EndTime
	}
	if candidate.BlockType != "" {
		merged.BlockType = candidate.BlockType
	}
	duplicate, err := st.doc.ReplaceBlock(dayIndex, blockIndex, merged)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, err
	}
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, duplicate, nil
}

func (s *service) RegenerateDay(ctx context.Context, sessionID string, dayIndex int, preferences string) (itinerary.Payload, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, err
	}

	key := dayKey(dayIndex)
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, noDocument()
	}
	day, err := st.doc.Day(dayIndex)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, err
	}
	if _, busy := st.inflight[key]; busy {
		s.mu.Unlock()
		return itinerary.Payload{}, apperrors.Wrap(apperrors.CodeEditConflict, fmt.Sprintf("day %d already has a regeneration in flight", dayIndex), nil)
	}
	st.inflight[key] = struct{}{}
	destination := st.doc.Snapshot().Request.Destination
	s.mu.Unlock()

	regenerated, err := s.client.RegenerateDay(ctx, planner.RegenerateDayRequest{
		Day: planner.RegenerateDayInput{
			Date:      day.Date,
			DayNumber: day.DayNumber,
			Theme:     day.Theme,
			Blocks:    day.Blocks,
		},
		Destination:    destination,
		WeatherSummary: day.WeatherSummary,
		Preferences:    preferences,
	})

	s.mu.Lock()
	delete(st.inflight, key)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, err
	}
	if err := st.doc.ReplaceDay(dayIndex, regenerated.Theme, regenerated.Blocks); err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, err
	}
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, nil
}

func (s *service) DeleteBlock(ctx context.Context, sessionID string, dayIndex, blockIndex int) (itinerary.Payload, error) {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, err
	}
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, noDocument()
	}
	if _, busy := st.inflight[blockKey(dayIndex, blockIndex)]; busy {
		s.mu.Unlock()
		return itinerary.Payload{}, editConflict(dayIndex, blockIndex)
	}
	if err := st.doc.DeleteBlock(dayIndex, blockIndex); err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, err
	}
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, nil
}

func (s *service) InsertBlock(ctx context.Context, sessionID string, dayIndex int, block itinerary.ScheduleBlock) (itinerary.Payload, bool, error) {
	if strings.TrimSpace(block.Title) == "" {
		return itinerary.Payload{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "block needs a title", nil)
	}
	if _, err := util.ParseClock(block.StartTime); err != nil {
		return itinerary.Payload{}, false, apperrors.Wrap(apperrors.CodeInvalidInput, "start_time must be formatted as HH:MM", nil)
	}
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return itinerary.Payload{}, false, err
	}
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, noDocument()
	}
	duplicate, err := st.doc.InsertBlock(dayIndex, block)
	if err != nil {
		s.mu.Unlock()
		return itinerary.Payload{}, false, err
	}
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	s.persist(ctx, sessionID, snapshot)
	return snapshot, duplicate, nil
}

func (s *service) Save(ctx context.Context, sessionID string) error {
	st, err := s.ensure(ctx, sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if st.doc == nil {
		s.mu.Unlock()
		return noDocument()
	}
	id := st.doc.ID()
	snapshot := st.doc.Snapshot()
	s.mu.Unlock()

	if id == "" {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "document has no server identity to save", nil)
	}
	return s.client.SaveItinerary(ctx, id, snapshot)
}

func (s *service) Record(ctx context.Context, id string) (HistoryRecord, error) {
	record, found, err := s.history.Get(ctx, id)
	if err != nil {
		return HistoryRecord{}, err
	}
	if !found {
		return HistoryRecord{}, apperrors.Wrap(apperrors.CodeNotFound, "no itinerary record with that id", nil)
	}
	return record, nil
}

func (s *service) History(ctx context.Context, limit int) ([]HistoryRecord, error) {
	return s.history.List(ctx, limit)
}

// ensure returns the session state, rehydrating the document from the
// store after a restart.
func (s *service) ensure(ctx context.Context, sessionID string) (*state, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "session id cannot be empty", nil)
	}
	s.mu.Lock()
	st, ok := s.sessions[sessionID]
	if ok {
		s.mu.Unlock()
		return st, nil
	}
	s.mu.Unlock()

	var doc *itinerary.Document
	if cached, found, err := s.store.GetDocument(ctx, sessionID); err != nil {
		s.logger.Warn("document rehydration failed", "session_id", sessionID, "error", err)
	} else if found {
		doc = itinerary.NewDocument(cached)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[sessionID]; ok {
		return st, nil
	}
	st = &state{doc: doc, inflight: make(map[string]struct{})}
	s.sessions[sessionID] = st
	return st, nil
}

func (s *service) persist(ctx context.Context, sessionID string, doc itinerary.Payload) {
	if err := s.store.SaveDocument(ctx, sessionID, doc, s.cfg.DocumentTTL); err != nil {
		s.logger.Warn("document write-through failed", "session_id", sessionID, "error", err)
	}
}

func (s *service) openRecord(ctx context.Context, req trip.Request) HistoryRecord {
	now := util.NowUTC()
	record := HistoryRecord{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Warn("history insert failed", "record_id", record.ID, "error", err)
	}
	return record
}

func (s *service) closeRecord(ctx context.Context, record HistoryRecord, result *itinerary.Payload, cause error) {
	record.UpdatedAt = util.NowUTC()
	if cause != nil {
		record.Status = StatusFailed
		record.ErrorDetail = cause.Error()
	} else {
		record.Status = StatusComplete
		record.Result = result
	}
	if err := s.history.Save(ctx, record); err != nil {
		s.logger.Warn("history update failed", "record_id", record.ID, "error", err)
	}
}

func blockKey(dayIndex, blockIndex int) string {
	return fmt.Sprintf("b:%d:%d", dayIndex, blockIndex)
}

func dayKey(dayIndex int) string {
	return fmt.Sprintf("d:%d", dayIndex)
}

func noDocument() error {
	return apperrors.Wrap(apperrors.CodeNoDocument, "session has no itinerary yet", nil)
}

func editConflict(dayIndex, blockIndex int) error {
	return apperrors.Wrap(apperrors.CodeEditConflict, fmt.Sprintf("block %d of day %d already has a request in flight", blockIndex, dayIndex), nil)
}
