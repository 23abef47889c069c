package planner

import (
	"encoding/json"
	"errors"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
)

// Event kinds emitted by the planner stream.
const (
	EventMessage  = "message"
	EventProgress = "progress"
	EventResult   = "result"
	EventError    = "error"
	EventDone     = "done"
)

// Event is one decoded stream notification. Payload holds the raw data
// line so callers pick the typed view matching the kind.
type Event struct {
	Kind    string
	Payload json.RawMessage
}

// ProgressPayload carries a stage transition.
type ProgressPayload struct {
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Progress decodes the payload of a progress event.
func (e Event) Progress() (ProgressPayload, error) {
	var out ProgressPayload
	if err := json.Unmarshal(e.Payload, &out); err != nil {
		return ProgressPayload{}, err
	}
	if out.Stage == "" {
		return ProgressPayload{}, errors.New("progress event missing stage")
	}
	return out, nil
}

// Result decodes the completed document from a result event. The
// planner wraps the document in a "data" envelope; bare documents are
// accepted as well.
func (e Event) Result() (itinerary.Payload, error) {
	var envelope struct {
		Data *itinerary.Payload `json:"data"`
	}
	if err := json.Unmarshal(e.Payload, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}
	var doc itinerary.Payload
	if err := json.Unmarshal(e.Payload, &doc); err != nil {
		return itinerary.Payload{}, err
	}
	return doc, nil
}

// ErrorMessage extracts the message of an error event, with a generic
// fallback when the payload carries none.
func (e Event) ErrorMessage() string {
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(e.Payload, &out); err == nil && out.Message != "" {
		return out.Message
	}
	return "itinerary generation failed"
}
