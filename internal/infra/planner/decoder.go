package planner

import (
	"encoding/json"
	"io"
	"strings"
)

const (
	eventPrefix = "event:"
	dataPrefix  = "data:"
)

// Decoder turns raw byte chunks of a text/event-stream body into Events.
// It keeps a single rolling buffer so a line split across chunks is
// never interpreted before it is complete; feeding the same bytes in any
// chunking yields the identical event sequence.
type Decoder struct {
	remainder string
	pending   string
}

// NewDecoder returns a decoder with the event type defaulted to message.
func NewDecoder() *Decoder {
	return &Decoder{pending: EventMessage}
}

// Feed appends a chunk and returns every event completed by it, in
// arrival order.
func (d *Decoder) Feed(chunk []byte) []Event {
	d.remainder += string(chunk)
	lines := strings.Split(d.remainder, "\n")
	d.remainder = lines[len(lines)-1]

	var events []Event
	for _, line := range lines[:len(lines)-1] {
		if event, ok := d.decodeLine(strings.TrimSuffix(line, "\r")); ok {
			events = append(events, event)
		}
	}
	return events
}

func (d *Decoder) decodeLine(line string) (Event, bool) {
	switch {
	case line == "" || strings.HasPrefix(line, ":"):
		// Event separator or keep-alive comment.
		return Event{}, false
	case strings.HasPrefix(line, eventPrefix):
		d.pending = strings.TrimSpace(strings.TrimPrefix(line, eventPrefix))
		return Event{}, false
	case strings.HasPrefix(line, dataPrefix):
		payload := strings.TrimSpace(strings.TrimPrefix(line, dataPrefix))
		if !json.Valid([]byte(payload)) {
			// Protocol tolerance: the server may interleave junk lines.
			return Event{}, false
		}
		kind := d.pending
		if kind == "" {
			kind = EventMessage
		}
		d.pending = EventMessage
		return Event{Kind: kind, Payload: json.RawMessage(payload)}, true
	default:
		return Event{}, false
	}
}

// EventStream decodes a streaming response body on demand.
type EventStream struct {
	body    io.ReadCloser
	decoder *Decoder
	queue   []Event
	buf     []byte
	closed  bool
	err     error
}

func newEventStream(body io.ReadCloser) *EventStream {
	return &EventStream{
		body:    body,
		decoder: NewDecoder(),
		buf:     make([]byte, 4096),
	}
}

// Recv returns the next event in arrival order, or io.EOF once the
// transport closes.
func (s *EventStream) Recv() (Event, error) {
	for {
		if len(s.queue) > 0 {
			event := s.queue[0]
			s.queue = s.queue[1:]
			return event, nil
		}
		if s.closed {
			if s.err != nil {
				return Event{}, s.err
			}
			return Event{}, io.EOF
		}
		n, err := s.body.Read(s.buf)
		if n > 0 {
			s.queue = append(s.queue, s.decoder.Feed(s.buf[:n])...)
		}
		if err != nil {
			s.Close()
			if err != io.EOF {
				s.err = err
			}
		}
	}
}

// Close tears down the underlying transport. Recv never emits again
// after Close returns.
func (s *EventStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
