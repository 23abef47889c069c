package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/pipeline"
	"github.com/varad-more/Voyagent/internal/domain/trip"
	"github.com/varad-more/Voyagent/internal/infra/planner"
	apperrors "github.com/varad-more/Voyagent/pkg/errors"
	"github.com/varad-more/Voyagent/pkg/logger"
)

type stubPlanner struct {
	generate   func(trip.Request) (itinerary.Payload, error)
	stream     func(trip.Request) (EventSource, error)
	editBlock  func(planner.EditBlockRequest) (itinerary.ScheduleBlock, error)
	swapBlock  func(planner.SwapRequest) ([]planner.Alternative, error)
	regenerate func(planner.RegenerateDayRequest) (planner.RegeneratedDay, error)
	save       func(string, itinerary.Payload) error
}

func (p *stubPlanner) Generate(_ context.Context, req trip.Request) (itinerary.Payload, error) {
	return p.generate(req)
}

func (p *stubPlanner) GenerateStream(_ context.Context, req trip.Request) (EventSource, error) {
	return p.stream(req)
}

func (p *stubPlanner) EditBlock(_ context.Context, req planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
	return p.editBlock(req)
}

func (p *stubPlanner) SwapBlock(_ context.Context, req planner.SwapRequest) ([]planner.Alternative, error) {
	return p.swapBlock(req)
}

func (p *stubPlanner) RegenerateDay(_ context.Context, req planner.RegenerateDayRequest) (planner.RegeneratedDay, error) {
	return p.regenerate(req)
}

func (p *stubPlanner) SaveItinerary(_ context.Context, id string, doc itinerary.Payload) error {
	return p.save(id, doc)
}

type stubStore struct {
	docs map[string]itinerary.Payload
}

func newStubStore() *stubStore {
	return &stubStore{docs: make(map[string]itinerary.Payload)}
}

func (s *stubStore) SaveDocument(_ context.Context, sessionID string, doc itinerary.Payload, _ time.Duration) error {
	s.docs[sessionID] = doc
	return nil
}

func (s *stubStore) GetDocument(_ context.Context, sessionID string) (itinerary.Payload, bool, error) {
	doc, ok := s.docs[sessionID]
	return doc, ok, nil
}

func (s *stubStore) DeleteDocument(_ context.Context, sessionID string) error {
	delete(s.docs, sessionID)
	return nil
}

type stubHistory struct {
	records map[string]HistoryRecord
}

func newStubHistory() *stubHistory {
	return &stubHistory{records: make(map[string]HistoryRecord)}
}

func (h *stubHistory) Save(_ context.Context, record HistoryRecord) error {
	h.records[record.ID] = record
	return nil
}

func (h *stubHistory) Get(_ context.Context, id string) (HistoryRecord, bool, error) {
	record, ok := h.records[id]
	return record, ok, nil
}

func (h *stubHistory) List(_ context.Context, limit int) ([]HistoryRecord, error) {
	out := make([]HistoryRecord, 0, len(h.records))
	for _, record := range h.records {
		out = append(out, record)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeStream replays a fixed event sequence then EOF.
type fakeStream struct {
	events []planner.Event
	err    error
	closed bool
}

func (f *fakeStream) Recv() (planner.Event, error) {
	if len(f.events) == 0 {
		if f.err != nil {
			return planner.Event{}, f.err
		}
		return planner.Event{}, io.EOF
	}
	ev := f.events[0]
	f.events = f.events[1:]
	return ev, nil
}

func (f *fakeStream) Close() error {
	f.closed = true
	return nil
}

func validRequest() trip.Request {
	return trip.Request{
		Destination: "Kyoto, Japan",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-03",
		Travelers:   trip.Travelers{Adults: 2},
		Budget:      trip.BudgetPreferences{TotalBudget: 2000},
	}
}

func generatedDoc() itinerary.Payload {
	return itinerary.Payload{
		ID:      "itin-42",
		Request: itinerary.RequestSummary{Destination: "Kyoto, Japan", StartDate: "2026-04-01", EndDate: "2026-04-03"},
		Days: []itinerary.DayPlan{
			{
				Date: "2026-04-01", DayNumber: 1,
				Blocks: []itinerary.ScheduleBlock{
					{StartTime: "09:00", EndTime: "11:00", Title: "Fushimi Inari", BlockType: itinerary.BlockActivity},
					{StartTime: "12:00", EndTime: "13:00", Title: "Lunch", BlockType: itinerary.BlockMeal},
				},
			},
			{
				Date: "2026-04-02", DayNumber: 2,
				Blocks: []itinerary.ScheduleBlock{
					{StartTime: "10:00", EndTime: "12:00", Title: "Arashiyama", BlockType: itinerary.BlockActivity},
				},
			},
		},
	}
}

type fixture struct {
	svc     Service
	client  *stubPlanner
	store   *stubStore
	history *stubHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client := &stubPlanner{}
	store := newStubStore()
	history := newStubHistory()
	svc := NewService(Config{DocumentTTL: time.Minute}, client, store, history, logger.New())
	return &fixture{svc: svc, client: client, store: store, history: history}
}

func (f *fixture) loadDoc(t *testing.T, sessionID string) {
	t.Helper()
	f.client.generate = func(trip.Request) (itinerary.Payload, error) {
		return generatedDoc(), nil
	}
	_, err := f.svc.Generate(context.Background(), sessionID, validRequest())
	require.NoError(t, err)
}

func TestGenerateStoresDocumentAndHistory(t *testing.T) {
	f := newFixture(t)
	f.client.generate = func(trip.Request) (itinerary.Payload, error) {
		return generatedDoc(), nil
	}

	doc, err := f.svc.Generate(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)
	require.Equal(t, "itin-42", doc.ID)

	cached, ok := f.store.docs["sess-1"]
	require.True(t, ok)
	require.Equal(t, doc, cached)

	require.Len(t, f.history.records, 1)
	for _, record := range f.history.records {
		require.Equal(t, StatusComplete, record.Status)
		require.NotNil(t, record.Result)
	}
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.StartDate = "2026-04-05"
	req.EndDate = "2026-04-01"

	_, err := f.svc.Generate(context.Background(), "sess-1", req)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestGenerateFailureRecordsHistory(t *testing.T) {
	f := newFixture(t)
	f.client.generate = func(trip.Request) (itinerary.Payload, error) {
		return itinerary.Payload{}, apperrors.Wrap(apperrors.CodePlannerQuota, "quota exhausted", nil)
	}

	_, err := f.svc.Generate(context.Background(), "sess-1", validRequest())
	require.True(t, apperrors.IsCode(err, apperrors.CodePlannerQuota))

	require.Len(t, f.history.records, 1)
	for _, record := range f.history.records {
		require.Equal(t, StatusFailed, record.Status)
		require.Contains(t, record.ErrorDetail, "quota")
	}
}

func streamEvent(kind, payload string) planner.Event {
	return planner.Event{Kind: kind, Payload: json.RawMessage(payload)}
}

func TestGenerateStreamFeedsTrackerAndInstallsDocument(t *testing.T) {
	f := newFixture(t)
	resultPayload, err := json.Marshal(map[string]any{"data": generatedDoc()})
	require.NoError(t, err)

	f.client.stream = func(trip.Request) (EventSource, error) {
		return &fakeStream{events: []planner.Event{
			streamEvent(planner.EventProgress, `{"stage":"research","status":"started","detail":"Researching your destination..."}`),
			streamEvent(planner.EventProgress, `{"stage":"research","status":"done"}`),
			streamEvent(planner.EventResult, string(resultPayload)),
			streamEvent(planner.EventDone, `{}`),
		}}, nil
	}

	updates, err := f.svc.GenerateStream(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)

	var kinds []string
	for update := range updates {
		kinds = append(kinds, update.Kind)
	}
	require.Equal(t, []string{planner.EventProgress, planner.EventProgress, planner.EventResult, planner.EventDone}, kinds)

	snap, err := f.svc.Progress("sess-1")
	require.NoError(t, err)
	require.True(t, snap.Terminal)
	require.Empty(t, snap.LastError)

	doc, err := f.svc.Document(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "itin-42", doc.ID)
}

func TestGenerateStreamFailureKeepsPartialProgress(t *testing.T) {
	f := newFixture(t)
	f.client.stream = func(trip.Request) (EventSource, error) {
		return &fakeStream{events: []planner.Event{
			streamEvent(planner.EventProgress, `{"stage":"research","status":"done"}`),
			streamEvent(planner.EventProgress, `{"stage":"planner","status":"started"}`),
			streamEvent(planner.EventError, `{"message":"model overloaded"}`),
		}}, nil
	}

	updates, err := f.svc.GenerateStream(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)
	for range updates {
	}

	snap, err := f.svc.Progress("sess-1")
	require.NoError(t, err)
	require.True(t, snap.Terminal)
	require.Equal(t, "model overloaded", snap.LastError)
	require.Equal(t, pipeline.StatusDone, stageStatus(t, snap, "research"))

	_, err = f.svc.Document(context.Background(), "sess-1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoDocument))

	for _, record := range f.history.records {
		require.Equal(t, StatusFailed, record.Status)
	}
}

func TestGenerateStreamTransportErrorFailsTracker(t *testing.T) {
	f := newFixture(t)
	f.client.stream = func(trip.Request) (EventSource, error) {
		return &fakeStream{
			events: []planner.Event{streamEvent(planner.EventProgress, `{"stage":"research","status":"started"}`)},
			err:    errors.New("connection reset"),
		}, nil
	}

	updates, err := f.svc.GenerateStream(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)

	var last StreamUpdate
	for update := range updates {
		last = update
	}
	require.Equal(t, planner.EventError, last.Kind)

	snap, err := f.svc.Progress("sess-1")
	require.NoError(t, err)
	require.True(t, snap.Terminal)
	require.Contains(t, snap.LastError, "connection reset")
}

func TestGenerateStreamEOFWithoutResultFails(t *testing.T) {
	f := newFixture(t)
	f.client.stream = func(trip.Request) (EventSource, error) {
		return &fakeStream{events: []planner.Event{
			streamEvent(planner.EventProgress, `{"stage":"research","status":"started"}`),
			streamEvent(planner.EventProgress, `{"stage":"research","status":"done"}`),
			streamEvent(planner.EventProgress, `{"stage":"planner","status":"started"}`),
		}}, nil
	}

	updates, err := f.svc.GenerateStream(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)

	errorEvents := 0
	var last StreamUpdate
	for update := range updates {
		if update.Kind == planner.EventError {
			errorEvents++
		}
		last = update
	}
	require.Equal(t, 1, errorEvents)
	require.Equal(t, planner.EventError, last.Kind)
	require.Contains(t, string(last.Payload), "ended before a result")

	snap, err := f.svc.Progress("sess-1")
	require.NoError(t, err)
	require.True(t, snap.Terminal)
	require.Contains(t, snap.LastError, "ended before a result")
	require.Equal(t, pipeline.StatusDone, stageStatus(t, snap, "research"))

	_, err = f.svc.Document(context.Background(), "sess-1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNoDocument))

	require.Len(t, f.history.records, 1)
	for _, record := range f.history.records {
		require.Equal(t, StatusFailed, record.Status)
	}
}

func stageStatus(t *testing.T, snap pipeline.Snapshot, name string) string {
	t.Helper()
	for _, view := range snap.Stages {
		if view.Name == name {
			return view.Status
		}
	}
	t.Fatalf("stage %q missing from snapshot", name)
	return ""
}

func TestEditStageAndConfirm(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	replacement := itinerary.ScheduleBlock{StartTime: "09:00", EndTime: "11:00", Title: "Kiyomizu-dera", BlockType: itinerary.BlockActivity}
	f.client.editBlock = func(req planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		require.Equal(t, "Fushimi Inari", req.CurrentBlock.Title)
		require.Equal(t, "Kyoto, Japan", req.Destination)
		return replacement, nil
	}

	suggestion, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "something less crowded")
	require.NoError(t, err)
	require.Equal(t, "Kiyomizu-dera", suggestion.Title)

	// Not applied until confirmed.
	doc, err := f.svc.Document(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "Fushimi Inari", doc.Days[0].Blocks[0].Title)

	doc, duplicate, err := f.svc.ConfirmEdit(context.Background(), "sess-1")
	require.NoError(t, err)
	require.False(t, duplicate)
	require.Equal(t, "Kiyomizu-dera", doc.Days[0].Blocks[0].Title)

	_, _, err = f.svc.ConfirmEdit(context.Background(), "sess-1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestEditForAnotherBlockSupersedesStage(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	f.client.editBlock = func(req planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		return itinerary.ScheduleBlock{StartTime: "12:00", EndTime: "13:00", Title: "Suggestion " + req.Instruction, BlockType: itinerary.BlockMeal}, nil
	}

	_, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "one")
	require.NoError(t, err)
	_, err = f.svc.RequestEdit(context.Background(), "sess-1", 0, 1, "two")
	require.NoError(t, err)

	doc, _, err := f.svc.ConfirmEdit(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "Fushimi Inari", doc.Days[0].Blocks[0].Title)
	require.Equal(t, "Suggestion two", doc.Days[0].Blocks[1].Title)
}

func TestEditFailureKeepsPriorStage(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	f.client.editBlock = func(planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		return itinerary.ScheduleBlock{StartTime: "09:00", EndTime: "11:00", Title: "Staged", BlockType: itinerary.BlockActivity}, nil
	}
	_, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "stage this")
	require.NoError(t, err)

	f.client.editBlock = func(planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		return itinerary.ScheduleBlock{}, apperrors.Wrap(apperrors.CodePlannerError, "model failure", nil)
	}
	_, err = f.svc.RequestEdit(context.Background(), "sess-1", 0, 1, "fails")
	require.True(t, apperrors.IsCode(err, apperrors.CodePlannerError))

	doc, _, err := f.svc.ConfirmEdit(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "Staged", doc.Days[0].Blocks[0].Title)
}

func TestCancelEditClearsStage(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	f.client.editBlock = func(planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		return itinerary.ScheduleBlock{StartTime: "09:00", EndTime: "11:00", Title: "Staged", BlockType: itinerary.BlockActivity}, nil
	}
	_, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "stage this")
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelEdit(context.Background(), "sess-1"))

	_, _, err = f.svc.ConfirmEdit(context.Background(), "sess-1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestConcurrentEditOnSameBlockRejected(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	entered := make(chan struct{})
	release := make(chan struct{})
	f.client.editBlock = func(planner.EditBlockRequest) (itinerary.ScheduleBlock, error) {
		close(entered)
		<-release
		return itinerary.ScheduleBlock{StartTime: "09:00", EndTime: "11:00", Title: "Slow", BlockType: itinerary.BlockActivity}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "slow edit")
		done <- err
	}()
	<-entered

	_, err := f.svc.RequestEdit(context.Background(), "sess-1", 0, 0, "conflicting edit")
	require.True(t, apperrors.IsCode(err, apperrors.CodeEditConflict))

	close(release)
	require.NoError(t, <-done)
}

func TestSwapOptionsCarryRankLabels(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	f.client.swapBlock = func(req planner.SwapRequest) ([]planner.Alternative, error) {
		require.Equal(t, "2026-04-01", req.DayDate)
		require.Equal(t, itinerary.BlockActivity, req.BlockType)
		return []planner.Alternative{
			{ScheduleBlock: itinerary.ScheduleBlock{Title: "Nijo Castle"}, Why: "crowd favorite"},
			{ScheduleBlock: itinerary.ScheduleBlock{Title: "Philosopher's Path"}},
			{ScheduleBlock: itinerary.ScheduleBlock{Title: "Manga Museum"}},
		}, nil
	}

	options, err := f.svc.SwapOptions(context.Background(), "sess-1", 0, 0, "")
	require.NoError(t, err)
	require.Len(t, options, 3)
	require.Equal(t, []string{"popularity", "novelty", "creativity"}, []string{options[0].Label, options[1].Label, options[2].Label})
	require.Equal(t, 1, options[0].Rank)
	require.Equal(t, "crowd favorite", options[0].Why)
}

func TestApplySwapTakesCandidateTimesAndContent(t *testing.T) {
	f := newFixture(t)
	payload := generatedDoc()
	payload.Days[0].Blocks[0].ExternalLink = "https://example.org/fushimi"
	payload.Days[0].Blocks[0].TravelTimeMins = 25
	payload.Days[0].Blocks[0].BufferMins = 10
	payload.Days[0].Blocks[0].IsUnique = true
	f.client.generate = func(trip.Request) (itinerary.Payload, error) {
		return payload, nil
	}
	_, err := f.svc.Generate(context.Background(), "sess-1", validRequest())
	require.NoError(t, err)

	candidate := itinerary.ScheduleBlock{
		StartTime:   "15:00",
		EndTime:     "17:00",
		Title:       "Nijo Castle",
		Description: "Shogun-era palace grounds.",
		Location:    "Nijojo-cho",
	}
	doc, duplicate, err := f.svc.ApplySwap(context.Background(), "sess-1", 0, 0, candidate)
	require.NoError(t, err)
	require.False(t, duplicate)

	// The document stays sorted by start time, so the swapped block
	// now sits after the 12:00 lunch.
	block := doc.Days[0].Blocks[1]
	require.Equal(t, "Nijo Castle", block.Title)
	require.Equal(t, "15:00", block.StartTime)
	require.Equal(t, "17:00", block.EndTime)
	require.Equal(t, "Nijojo-cho", block.Location)
	require.Equal(t, "Shogun-era palace grounds.", block.Description)
	// Candidate carries no type, so the slot keeps its own.
	require.Equal(t, itinerary.BlockActivity, block.BlockType)
	// Fields the swap payload never carries survive from the original.
	require.Equal(t, "https://example.org/fushimi", block.ExternalLink)
	require.Equal(t, 25, block.TravelTimeMins)
	require.Equal(t, 10, block.BufferMins)
	require.True(t, block.IsUnique)
}

func TestApplySwapWithoutTimesKeepsSlot(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	candidate := itinerary.ScheduleBlock{Title: "Nijo Castle"}
	doc, _, err := f.svc.ApplySwap(context.Background(), "sess-1", 0, 0, candidate)
	require.NoError(t, err)

	block := doc.Days[0].Blocks[0]
	require.Equal(t, "Nijo Castle", block.Title)
	require.Equal(t, "09:00", block.StartTime)
	require.Equal(t, "11:00", block.EndTime)
}

func TestRegenerateDayReplacesWholeDay(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	f.client.regenerate = func(req planner.RegenerateDayRequest) (planner.RegeneratedDay, error) {
		require.Equal(t, "2026-04-02", req.Day.Date)
		return planner.RegeneratedDay{
			Theme: "Rainy Day Indoors",
			Blocks: []itinerary.ScheduleBlock{
				{StartTime: "11:00", EndTime: "13:00", Title: "Kyoto Railway Museum", BlockType: itinerary.BlockActivity},
				{StartTime: "09:00", EndTime: "10:30", Title: "Morning Market", BlockType: itinerary.BlockActivity},
			},
		}, nil
	}

	doc, err := f.svc.RegenerateDay(context.Background(), "sess-1", 1, "it will rain")
	require.NoError(t, err)
	require.Equal(t, "Rainy Day Indoors", doc.Days[1].Theme)
	// Replacement blocks are re-sorted by start time.
	require.Equal(t, "Morning Market", doc.Days[1].Blocks[0].Title)
	// Other days untouched.
	require.Equal(t, "Fushimi Inari", doc.Days[0].Blocks[0].Title)
}

func TestRegenerateDayFailureLeavesDocumentUntouched(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")
	before, err := f.svc.Document(context.Background(), "sess-1")
	require.NoError(t, err)

	f.client.regenerate = func(planner.RegenerateDayRequest) (planner.RegeneratedDay, error) {
		return planner.RegeneratedDay{}, apperrors.Wrap(apperrors.CodePlannerError, "model failure", nil)
	}

	_, err = f.svc.RegenerateDay(context.Background(), "sess-1", 1, "")
	require.True(t, apperrors.IsCode(err, apperrors.CodePlannerError))

	after, err := f.svc.Document(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, before, after)
}

func TestInsertAndDeleteBlocks(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	doc, duplicate, err := f.svc.InsertBlock(context.Background(), "sess-1", 0, itinerary.ScheduleBlock{
		StartTime: "14:00", EndTime: "15:00", Title: "Tea Ceremony", BlockType: itinerary.BlockActivity,
	})
	require.NoError(t, err)
	require.False(t, duplicate)
	require.Len(t, doc.Days[0].Blocks, 3)
	require.Equal(t, "Tea Ceremony", doc.Days[0].Blocks[2].Title)

	// Inserting the same triple again is flagged.
	_, duplicate, err = f.svc.InsertBlock(context.Background(), "sess-1", 0, itinerary.ScheduleBlock{
		StartTime: "14:00", EndTime: "15:00", Title: "Tea Ceremony", BlockType: itinerary.BlockActivity,
	})
	require.NoError(t, err)
	require.True(t, duplicate)

	doc, err = f.svc.DeleteBlock(context.Background(), "sess-1", 0, 3)
	require.NoError(t, err)
	require.Len(t, doc.Days[0].Blocks, 3)
}

func TestInsertBlockValidatesInput(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	_, _, err := f.svc.InsertBlock(context.Background(), "sess-1", 0, itinerary.ScheduleBlock{StartTime: "14:00", EndTime: "15:00"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, _, err = f.svc.InsertBlock(context.Background(), "sess-1", 0, itinerary.ScheduleBlock{StartTime: "2pm", EndTime: "15:00", Title: "Tea"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSaveRequiresServerIdentity(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.LoadDemo(context.Background(), "sess-1")
	require.NoError(t, err)

	err = f.svc.Save(context.Background(), "sess-1")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSavePushesFullDocument(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	var savedID string
	var savedDoc itinerary.Payload
	f.client.save = func(id string, doc itinerary.Payload) error {
		savedID = id
		savedDoc = doc
		return nil
	}

	require.NoError(t, f.svc.Save(context.Background(), "sess-1"))
	require.Equal(t, "itin-42", savedID)
	require.Len(t, savedDoc.Days, 2)
}

func TestSessionRehydratesFromStore(t *testing.T) {
	client := &stubPlanner{}
	store := newStubStore()
	store.docs["sess-1"] = generatedDoc()
	svc := NewService(Config{}, client, store, newStubHistory(), logger.New())

	doc, err := svc.Document(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Equal(t, "itin-42", doc.ID)
}

func TestDemoDocumentHasNoServerIdentity(t *testing.T) {
	f := newFixture(t)

	doc, err := f.svc.LoadDemo(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Empty(t, doc.ID)
	require.Len(t, doc.Days, 3)
	require.Equal(t, "Tempe -> Grand Canyon -> Las Vegas", doc.Request.Destination)
}

func TestRecordLookup(t *testing.T) {
	f := newFixture(t)
	f.loadDoc(t, "sess-1")

	records, err := f.svc.History(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	record, err := f.svc.Record(context.Background(), records[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusComplete, record.Status)

	_, err = f.svc.Record(context.Background(), "missing")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestProgressUnknownSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Progress("nope")
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}
