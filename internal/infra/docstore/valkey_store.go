package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/varad-more/Voyagent/internal/domain/itinerary"
	"github.com/varad-more/Voyagent/internal/domain/session"
)

// ValkeyStore persists session documents in a Valkey-compatible
// database so sessions survive a process restart.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a new store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "voyagent"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) SaveDocument(ctx context.Context, sessionID string, doc itinerary.Payload, ttl time.Duration) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	builder := s.client.B().Set().Key(s.documentKey(sessionID)).Value(string(payload))
	var cmd valkey.Completed
	if ttl > 0 {
		if ttl < time.Second {
			ttl = time.Second
		}
		cmd = builder.Ex(ttl).Build()
	} else {
		cmd = builder.Build()
	}
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) GetDocument(ctx context.Context, sessionID string) (itinerary.Payload, bool, error) {
	cmd := s.client.B().Get().Key(s.documentKey(sessionID)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return itinerary.Payload{}, false, nil
		}
		return itinerary.Payload{}, false, err
	}
	var doc itinerary.Payload
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return itinerary.Payload{}, false, err
	}
	return doc, true, nil
}

func (s *ValkeyStore) DeleteDocument(ctx context.Context, sessionID string) error {
	return s.client.Do(ctx, s.client.B().Del().Key(s.documentKey(sessionID)).Build()).Error()
}

func (s *ValkeyStore) documentKey(sessionID string) string {
	return fmt.Sprintf("%s:doc:%s", s.prefix, sessionID)
}

var _ session.Store = (*ValkeyStore)(nil)
