package itinerary

import (
	"sort"

	apperrors "github.com/varad-more/Voyagent/pkg/errors"
)

// Document is the one authoritative, editable plan held by a session.
// All mutation goes through the methods below, which re-establish the
// per-day ordering invariant; reads hand out deep copies so callers can
// never bypass it.
type Document struct {
	payload Payload
}

// NewDocument wraps a decoded payload, normalizing each day's block
// order on the way in.
func NewDocument(p Payload) *Document {
	doc := &Document{payload: p}
	for i := range doc.payload.Days {
		sortBlocks(doc.payload.Days[i].Blocks)
	}
	return doc
}

// ID returns the server-assigned identity, or "" for a local document.
func (d *Document) ID() string {
	return d.payload.ID
}

// AssignIdentity records the server identity. Once set it is stable for
// the life of the session.
func (d *Document) AssignIdentity(id string) error {
	if d.payload.ID != "" && d.payload.ID != id {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "document identity is already assigned", nil)
	}
	d.payload.ID = id
	return nil
}

// DayCount reports how many days the plan covers.
func (d *Document) DayCount() int {
	return len(d.payload.Days)
}

// Day returns a deep copy of one day plan.
func (d *Document) Day(dayIndex int) (DayPlan, error) {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return DayPlan{}, apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	return copyDay(d.payload.Days[dayIndex]), nil
}

// Block returns a deep copy of one schedule block.
func (d *Document) Block(dayIndex, blockIndex int) (ScheduleBlock, error) {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return ScheduleBlock{}, apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	day := d.payload.Days[dayIndex]
	if blockIndex < 0 || blockIndex >= len(day.Blocks) {
		return ScheduleBlock{}, apperrors.Wrap(apperrors.CodeInvalidInput, "block index out of range", nil)
	}
	return copyBlock(day.Blocks[blockIndex]), nil
}

// Snapshot returns an immutable deep copy of the whole payload.
func (d *Document) Snapshot() Payload {
	out := d.payload
	out.Days = make([]DayPlan, len(d.payload.Days))
	for i, day := range d.payload.Days {
		out.Days[i] = copyDay(day)
	}
	out.PackingList = append([]string(nil), d.payload.PackingList...)
	out.Attractions = append([]Attraction(nil), d.payload.Attractions...)
	out.TravelOptions = append([]TravelOption(nil), d.payload.TravelOptions...)
	out.Validation = append([]ValidationResult(nil), d.payload.Validation...)
	out.Warnings = append([]string(nil), d.payload.Warnings...)
	if d.payload.TransportAnalysis != nil {
		analysis := *d.payload.TransportAnalysis
		analysis.Options = append([]TransportOption(nil), d.payload.TransportAnalysis.Options...)
		out.TransportAnalysis = &analysis
	}
	return out
}

// ReplaceBlock swaps one block in place and re-sorts that day. The
// returned flag reports whether the mutation produced a detectable
// duplicate (start, end, title) triple within the day.
func (d *Document) ReplaceBlock(dayIndex, blockIndex int, block ScheduleBlock) (bool, error) {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return false, apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	day := &d.payload.Days[dayIndex]
	if blockIndex < 0 || blockIndex >= len(day.Blocks) {
		return false, apperrors.Wrap(apperrors.CodeInvalidInput, "block index out of range", nil)
	}
	day.Blocks[blockIndex] = block
	sortBlocks(day.Blocks)
	return hasDuplicate(day.Blocks), nil
}

// InsertBlock appends then re-sorts; equal start times keep insertion
// order because the sort is stable.
func (d *Document) InsertBlock(dayIndex int, block ScheduleBlock) (bool, error) {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return false, apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	day := &d.payload.Days[dayIndex]
	day.Blocks = append(day.Blocks, block)
	sortBlocks(day.Blocks)
	return hasDuplicate(day.Blocks), nil
}

// DeleteBlock removes by position. Irreversible at the document level.
func (d *Document) DeleteBlock(dayIndex, blockIndex int) error {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	day := &d.payload.Days[dayIndex]
	if blockIndex < 0 || blockIndex >= len(day.Blocks) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "block index out of range", nil)
	}
	day.Blocks = append(day.Blocks[:blockIndex], day.Blocks[blockIndex+1:]...)
	return nil
}

// ReplaceDay substitutes theme and blocks for one day wholesale, leaving
// every other day untouched. Used by day-level regeneration.
func (d *Document) ReplaceDay(dayIndex int, theme string, blocks []ScheduleBlock) error {
	if dayIndex < 0 || dayIndex >= len(d.payload.Days) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "day index out of range", nil)
	}
	day := &d.payload.Days[dayIndex]
	day.Theme = theme
	day.Blocks = make([]ScheduleBlock, len(blocks))
	for i, blk := range blocks {
		day.Blocks[i] = copyBlock(blk)
	}
	sortBlocks(day.Blocks)
	return nil
}

func sortBlocks(blocks []ScheduleBlock) {
	// "HH:MM" compares lexicographically in chronological order.
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].StartTime < blocks[j].StartTime
	})
}

func hasDuplicate(blocks []ScheduleBlock) bool {
	for i := 1; i < len(blocks); i++ {
		prev, cur := blocks[i-1], blocks[i]
		if prev.StartTime == cur.StartTime && prev.EndTime == cur.EndTime && prev.Title == cur.Title {
			return true
		}
	}
	return false
}

func copyDay(day DayPlan) DayPlan {
	out := day
	out.Blocks = make([]ScheduleBlock, len(day.Blocks))
	for i, blk := range day.Blocks {
		out.Blocks[i] = copyBlock(blk)
	}
	out.Contingencies = append([]string(nil), day.Contingencies...)
	out.Meals = append([]MealPlan(nil), day.Meals...)
	out.Notes = append([]string(nil), day.Notes...)
	return out
}

func copyBlock(block ScheduleBlock) ScheduleBlock {
	out := block
	out.MicroActivities = append([]MicroActivity(nil), block.MicroActivities...)
	return out
}
