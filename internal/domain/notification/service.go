package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/carebridge/carebridge/internal/domain/assignment"
	"github.com/carebridge/carebridge/internal/domain/messaging"
)

// maxRecent caps how many notifications a single listing returns.
const maxRecent = 100

type Service struct {
	notifications NotificationRepository
	directory     assignment.Directory
}

func NewService(notifications NotificationRepository, directory assignment.Directory) *Service {
	return &Service{notifications: notifications, directory: directory}
}

// MessageCreated fans a new message out to the counter-party: a doctor's
// message notifies the patient's portal account, a patient's message
// notifies the doctor. A patient without a linked account is skipped
// silently; the message itself is unaffected. Runs inside the sender's
// transaction, so the notification and the message commit together.
func (s *Service) MessageCreated(ctx context.Context, m *messaging.Message) error {
	var recipient *uuid.UUID
	switch m.SenderType {
	case messaging.SenderDoctor:
		patient, err := s.directory.GetPatient(ctx, m.PatientID)
		if errors.Is(err, assignment.ErrPatientNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		recipient = patient.UserID
	case messaging.SenderPatient:
		recipient = &m.DoctorID
	default:
		return fmt.Errorf("unknown sender type: %s", m.SenderType)
	}

	if recipient == nil {
		// No portal account to notify.
		return nil
	}

	data, err := json.Marshal(MessageNewPayload{
		PatientID: m.PatientID,
		DoctorID:  m.DoctorID,
		MessageID: m.ID,
		Snippet:   messaging.Snippet(m.Body),
	})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}

	return s.notifications.Create(ctx, &Notification{
		UserID: *recipient,
		Type:   TypeMessageNew,
		Data:   data,
	})
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("user_id is required")
	}
	return s.notifications.UnreadCount(ctx, userID)
}

// ListRecent returns the user's newest notifications. The limit is clamped
// to maxRecent; zero or negative means the full cap.
func (s *Service) ListRecent(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if limit <= 0 || limit > maxRecent {
		limit = maxRecent
	}
	return s.notifications.ListRecent(ctx, userID, unreadOnly, limit)
}

// MarkRead stamps one notification read; repeat calls keep the first stamp.
func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.notifications.MarkRead(ctx, id)
}

// MarkAllRead stamps every unread notification of the user and returns how
// many were affected.
func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, fmt.Errorf("user_id is required")
	}
	return s.notifications.MarkAllRead(ctx, userID)
}
