package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TypeMessageNew tags notifications about a new conversation message.
const TypeMessageNew = "message.new"

// Notification is one fan-out record addressed to a portal user. Data is a
// tagged payload: its shape is determined by Type, so consumers decode it
// through the typed accessors instead of guessing.
type Notification struct {
	ID        uuid.UUID       `db:"id" json:"id"`
	UserID    uuid.UUID       `db:"user_id" json:"user_id"`
	Type      string          `db:"type" json:"type"`
	Data      json.RawMessage `db:"data" json:"data"`
	ReadAt    *time.Time      `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Read reports whether the user has acknowledged the notification.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

// MessageNewPayload is the Data variant carried by message.new notifications.
type MessageNewPayload struct {
	PatientID uuid.UUID `json:"patient_id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	MessageID uuid.UUID `json:"message_id"`
	Snippet   string    `json:"snippet"`
}

// MessagePayload decodes Data as a MessageNewPayload. It fails when the
// notification carries a different type tag.
func (n *Notification) MessagePayload() (*MessageNewPayload, error) {
	if n.Type != TypeMessageNew {
		return nil, fmt.Errorf("notification type %q does not carry a message payload", n.Type)
	}
	var p MessageNewPayload
	if err := json.Unmarshal(n.Data, &p); err != nil {
		return nil, fmt.Errorf("decoding message payload: %w", err)
	}
	return &p, nil
}
