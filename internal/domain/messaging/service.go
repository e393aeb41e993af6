package messaging

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/domain/assignment"
)

// Notifier is told about every persisted message so it can fan out a
// notification to the counter-party. It runs inside the send transaction.
type Notifier interface {
	MessageCreated(ctx context.Context, m *Message) error
}

// TxRunner executes fn inside a database transaction. The production runner
// is db.WithTx bound to the pool; tests substitute a pass-through.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type Service struct {
	messages  MessageRepository
	directory assignment.Directory
	notifier  Notifier
	tx        TxRunner
}

func NewService(messages MessageRepository, directory assignment.Directory, notifier Notifier, tx TxRunner) *Service {
	return &Service{
		messages:  messages,
		directory: directory,
		notifier:  notifier,
		tx:        tx,
	}
}

// SendRequest carries one outbound message. ClientKey is an optional
// idempotency token: resending with the same (patient, key) returns the
// originally created message instead of a duplicate.
type SendRequest struct {
	PatientID  uuid.UUID  `json:"patient_id"`
	SenderType SenderType `json:"sender_type"`
	Body       string     `json:"body"`
	ClientKey  *string    `json:"client_key,omitempty"`
}

// Send persists a message addressed to the patient's current doctor and fans
// out a notification in the same transaction. A patient without an assigned
// doctor cannot hold a conversation: nothing is written and
// ErrUnassignedDoctor is returned.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Message, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if !req.SenderType.Valid() {
		return nil, fmt.Errorf("%w: invalid sender_type %q", ErrValidation, req.SenderType)
	}

	doctorID, err := s.directory.ResolveDoctor(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if doctorID == nil {
		return nil, ErrUnassignedDoctor
	}

	if req.ClientKey != nil && *req.ClientKey != "" {
		existing, err := s.messages.GetByClientKey(ctx, req.PatientID, *req.ClientKey)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrMessageNotFound) {
			return nil, err
		}
	}

	m := &Message{
		PatientID:  req.PatientID,
		DoctorID:   *doctorID,
		SenderType: req.SenderType,
		Body:       req.Body,
		ClientKey:  req.ClientKey,
	}

	err = s.tx(ctx, func(ctx context.Context) error {
		if err := s.messages.Create(ctx, m); err != nil {
			return fmt.Errorf("creating message: %w", err)
		}
		if err := s.notifier.MessageCreated(ctx, m); err != nil {
			return fmt.Errorf("dispatching notification: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Thread returns the conversation between the patient and their current
// doctor, oldest first, and marks every message the viewer had not read yet.
// The read stamps and the returned snapshot come from one transaction. A
// patient without an assigned doctor has no conversation and reads as empty.
func (s *Service) Thread(ctx context.Context, patientID uuid.UUID, viewer SenderType) ([]*Message, error) {
	if !viewer.Valid() {
		return nil, fmt.Errorf("%w: invalid viewer %q", ErrValidation, viewer)
	}

	doctorID, err := s.directory.ResolveDoctor(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if doctorID == nil {
		return []*Message{}, nil
	}

	var items []*Message
	err = s.tx(ctx, func(ctx context.Context) error {
		if _, err := s.messages.MarkThreadRead(ctx, patientID, *doctorID, viewer); err != nil {
			return err
		}
		items, err = s.messages.ListThread(ctx, patientID, *doctorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead stamps a single message read. Calling it again is a no-op that
// keeps the original timestamp.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Message, error) {
	return s.messages.MarkRead(ctx, id)
}

// ClearThread deletes the conversation between the patient and their current
// doctor. Notifications already fanned out are left alone.
func (s *Service) ClearThread(ctx context.Context, patientID uuid.UUID) error {
	doctorID, err := s.directory.ResolveDoctor(ctx, patientID)
	if err != nil {
		return err
	}
	if doctorID == nil {
		return ErrUnassignedDoctor
	}
	return s.messages.DeleteThread(ctx, patientID, *doctorID)
}

// ListForDoctor returns one conversation summary per assigned patient,
// most recent activity first, patients with no messages at the end.
func (s *Service) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*ConversationSummary, error) {
	if doctorID == uuid.Nil {
		return nil, fmt.Errorf("%w: doctor_id is required", ErrValidation)
	}
	return s.messages.DoctorSummaries(ctx, doctorID)
}

// ListForPatient returns zero or one summary for the calling user's own
// conversation. Users without a patient record or without an assigned
// doctor simply see an empty list.
func (s *Service) ListForPatient(ctx context.Context, userID uuid.UUID) ([]*ConversationSummary, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user_id is required", ErrValidation)
	}

	patient, err := s.directory.GetPatientByUser(ctx, userID)
	if errors.Is(err, assignment.ErrPatientNotFound) {
		return []*ConversationSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	if patient.AssignedDoctorID == nil {
		return []*ConversationSummary{}, nil
	}

	summary, err := s.messages.PatientSummary(ctx, patient.ID, *patient.AssignedDoctorID)
	if errors.Is(err, ErrMessageNotFound) {
		return []*ConversationSummary{}, nil
	}
	if err != nil {
		return nil, err
	}
	return []*ConversationSummary{summary}, nil
}
