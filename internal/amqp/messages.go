package amqp

import (
	"encoding/json"
	"time"
)

// Op names what happened to a ledger entry.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// EntryChangedMessage tells the export worker that a month's ledger
// changed. It carries only coordinates; the worker re-reads the full
// entry set from the database before regenerating the report.
type EntryChangedMessage struct {
	UserID    string    `json:"user_id"`
	Month     string    `json:"month"`
	EntryID   string    `json:"entry_id"`
	Op        Op        `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntryChangedMessage(userID, month, entryID string, op Op) *EntryChangedMessage {
	return &EntryChangedMessage{
		UserID:    userID,
		Month:     month,
		EntryID:   entryID,
		Op:        op,
		Timestamp: time.Now(),
	}
}

func (m *EntryChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntryChangedMessageFromJSON(data []byte) (*EntryChangedMessage, error) {
	var msg EntryChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
