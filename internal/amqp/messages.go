package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EntrySyncMessage asks the worker to mirror one stored entry.
// It carries only ids; the worker loads the entry from the database.
type EntrySyncMessage struct {
	MessageID string    `json:"message_id"`
	EntryID   int64     `json:"entry_id"`
	UserID    int64     `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(entryID, userID int64) *EntrySyncMessage {
	return &EntrySyncMessage{
		MessageID: uuid.NewString(),
		EntryID:   entryID,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntrySyncMessageFromJSON decodes a message and rejects ones without an entry id.
func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.EntryID <= 0 {
		return nil, fmt.Errorf("invalid entry id %d", msg.EntryID)
	}
	return &msg, nil
}
