package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"informe/internal/core"
)

// RecordSyncMessage asks the worker to mirror one daily record. The worker
// reads the record itself; the version lets it drop stale messages.
type RecordSyncMessage struct {
	Date      string    `json:"date"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRecordSyncMessage(dateKey string, version int64) *RecordSyncMessage {
	return &RecordSyncMessage{
		Date:      dateKey,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}

func (m *RecordSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RecordSyncMessageFromJSON decodes and validates a message body.
func RecordSyncMessageFromJSON(data []byte) (*RecordSyncMessage, error) {
	var msg RecordSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !core.IsDateKey(msg.Date) {
		return nil, core.ErrInvalidDate
	}
	if msg.Version < 1 {
		return nil, errors.New("message version must be positive")
	}
	return &msg, nil
}
