// Package event provides the ChangeEvent type used to signal record
// creations and updates outward to subscribers.
package event

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

var (
	errKindInvalid = errors.New("kind is empty")
	errIDInvalid   = errors.New("record id is not positive")
)

// ChangeEvent signals that the record of Kind identified by RecordID was
// created or updated. It deliberately carries no record state; consumers
// re-fetch the record when handling the event.
type ChangeEvent struct {
	ID        uuid.UUID `msgpack:"id"`
	Kind      string    `msgpack:"kind"`
	RecordID  int64     `msgpack:"recordId"`
	CreatedAt time.Time `msgpack:"createdAt"`
}

// New creates a new ChangeEvent instance.
func New(kind string, recordID int64) ChangeEvent {
	return ChangeEvent{
		ID:        uuid.New(),
		Kind:      kind,
		RecordID:  recordID,
		CreatedAt: time.Now().UTC(),
	}
}

// Encode encodes the ChangeEvent for transmission over a stream.
func (e ChangeEvent) Encode() ([]byte, error) {
	b, err := msgpack.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event; error: %w", err)
	}
	return b, nil
}

// Parse accepts a slice of bytes (b) and decodes these bytes into a
// ChangeEvent.
func Parse(b []byte) (*ChangeEvent, error) {
	var e ChangeEvent
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event; error: %w", err)
	}
	if e.Kind == "" {
		return nil, errKindInvalid
	}
	if e.RecordID <= 0 {
		return nil, fmt.Errorf("unexpected event; id: %d, error: %w", e.RecordID, errIDInvalid)
	}
	return &e, nil
}
