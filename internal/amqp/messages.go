package amqp

import (
	"encoding/json"
	"time"
)

// Change operations carried by RecordChangeMessage.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// RecordChangeMessage notifies downstream consumers that a record changed.
// It carries only the coordinates needed to invalidate or re-export the
// affected month; consumers fetch fresh data from the store themselves.
type RecordChangeMessage struct {
	Op        string    `json:"op"`
	RecordID  string    `json:"record_id"`
	OwnerID   string    `json:"owner_id"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordChangeMessage creates a change message for the given operation.
func NewRecordChangeMessage(op, recordID, ownerID string, year, month int) *RecordChangeMessage {
	return &RecordChangeMessage{
		Op:        op,
		RecordID:  recordID,
		OwnerID:   ownerID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RecordChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordChangeMessageFromJSON creates a message from JSON bytes
func RecordChangeMessageFromJSON(data []byte) (*RecordChangeMessage, error) {
	var msg RecordChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
