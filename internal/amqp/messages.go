package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	KindUpserted = "upserted"
	KindDeleted  = "deleted"
)

// ReceiptEventMessage is the lightweight change notification the
// extraction backend publishes. It carries only the receipt ID and the
// kind of change; the consumer fetches the full record from storage.
type ReceiptEventMessage struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReceiptEventMessage(id, kind string) *ReceiptEventMessage {
	return &ReceiptEventMessage{
		ID:        id,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

func (m *ReceiptEventMessage) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("empty receipt id")
	}
	if m.Kind != KindUpserted && m.Kind != KindDeleted {
		return fmt.Errorf("unknown event kind %q", m.Kind)
	}
	return nil
}

func (m *ReceiptEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReceiptEventMessageFromJSON(data []byte) (*ReceiptEventMessage, error) {
	var msg ReceiptEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
