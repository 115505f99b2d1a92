package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// LedgerEventMessage announces that the persisted ledger changed. Consumers
// reload state from storage; the message only says what changed.
type LedgerEventMessage struct {
	Type      core.EventType `json:"type"`
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
}

func NewLedgerEventMessage(ev core.Event) *LedgerEventMessage {
	ts := ev.At
	if ts.IsZero() {
		ts = time.Now()
	}
	return &LedgerEventMessage{Type: ev.Type, ID: ev.ID, Timestamp: ts}
}

func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON decodes a message and rejects unknown event types.
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case core.TransactionAdded, core.TransactionDeleted, core.CategoryAdded, core.CategoryDeleted:
	default:
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	return &msg, nil
}

func (m *LedgerEventMessage) Event() core.Event {
	return core.Event{Type: m.Type, ID: m.ID, At: m.Timestamp}
}
