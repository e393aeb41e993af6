package messaging

import (
	"context"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*Message, error)
	// GetByClientKey returns the message previously created for this
	// (patient, client key) pair, or ErrMessageNotFound.
	GetByClientKey(ctx context.Context, patientID uuid.UUID, key string) (*Message, error)
	// ListThread returns all messages of a conversation pair ascending by
	// created_at.
	ListThread(ctx context.Context, patientID, doctorID uuid.UUID) ([]*Message, error)
	// MarkRead stamps read_at if it is still null and returns the message.
	MarkRead(ctx context.Context, id uuid.UUID) (*Message, error)
	// MarkThreadRead stamps every unread message of the pair that was NOT
	// authored by viewer. Returns the number of rows updated.
	MarkThreadRead(ctx context.Context, patientID, doctorID uuid.UUID, viewer SenderType) (int, error)
	DeleteThread(ctx context.Context, patientID, doctorID uuid.UUID) error
	// DoctorSummaries returns one summary per patient assigned to the
	// doctor, ordered by last activity, patients without messages last.
	DoctorSummaries(ctx context.Context, doctorID uuid.UUID) ([]*ConversationSummary, error)
	// PatientSummary returns the summary of a single conversation pair from
	// the patient's side (unread counts doctor-authored messages).
	PatientSummary(ctx context.Context, patientID, doctorID uuid.UUID) (*ConversationSummary, error)
}
