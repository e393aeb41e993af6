package messaging

import (
	"time"

	"github.com/google/uuid"
)

// SenderType identifies which side of the conversation authored a message.
type SenderType string

const (
	SenderDoctor  SenderType = "doctor"
	SenderPatient SenderType = "patient"
)

func (s SenderType) Valid() bool {
	return s == SenderDoctor || s == SenderPatient
}

// Message is one entry in a patient-doctor conversation. DoctorID is frozen
// at send time: reassigning the patient later does not rewrite history, it
// starts a new conversation pair.
type Message struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	SenderType SenderType `db:"sender_type" json:"sender_type"`
	Body       string     `db:"body" json:"body"`
	ClientKey  *string    `db:"client_key" json:"client_key,omitempty"`
	ReadAt     *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// Read reports whether the message has been seen by its recipient.
func (m *Message) Read() bool {
	return m.ReadAt != nil
}

// ConversationSummary is one row of a conversation list: the latest activity
// and how many messages the viewer has not read yet.
type ConversationSummary struct {
	PatientID          uuid.UUID  `json:"patient_id"`
	PatientName        string     `json:"patient_name"`
	DoctorID           uuid.UUID  `json:"doctor_id"`
	LastMessageSnippet *string    `json:"last_message_snippet,omitempty"`
	LastMessageAt      *time.Time `json:"last_message_at,omitempty"`
	UnreadCount        int        `json:"unread_count"`
}

// snippetRunes is the preview length used in conversation lists and
// notification payloads.
const snippetRunes = 120

// Snippet returns the first 120 runes of body. Truncation is rune-based so
// multi-byte text is never cut mid-character.
func Snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetRunes {
		return body
	}
	return string(runes[:snippetRunes])
}
