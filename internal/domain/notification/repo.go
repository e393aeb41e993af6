package notification

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListRecent returns the user's notifications newest first, capped at
	// limit, optionally restricted to unread ones.
	ListRecent(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	// MarkRead stamps read_at if it is still null and returns the row.
	MarkRead(ctx context.Context, id uuid.UUID) (*Notification, error)
	// MarkAllRead stamps every unread notification of the user. Returns the
	// number of rows updated.
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int, error)
}
