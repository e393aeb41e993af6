// Package syncproto defines the polling contract between the portal server
// and its clients: how often each surface should be refreshed and the
// snapshot signature used to discard stale poll responses.
package syncproto

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/platform/auth"
)

// Config holds the polling cadence clients should follow. Serving it keeps
// the staleness bound explicit instead of hard-coded in every client.
type Config struct {
	ConversationsInterval time.Duration
	ThreadInterval        time.Duration
	NotificationsInterval time.Duration
}

type configResponse struct {
	ConversationsIntervalSeconds int `json:"conversations_interval_seconds"`
	ThreadIntervalSeconds        int `json:"thread_interval_seconds"`
	NotificationsIntervalSeconds int `json:"notifications_interval_seconds"`
}

// Signature builds a snapshot signature from a result count and the latest
// activity timestamp. Two polls over the same data yield the same signature,
// so clients can compare before re-rendering and drop responses that arrive
// out of order.
func Signature(count int, latest *time.Time) string {
	var ts int64
	if latest != nil {
		ts = latest.UnixMilli()
	}
	return fmt.Sprintf("%d:%d", count, ts)
}

type Handler struct {
	cfg Config
}

func NewHandler(cfg Config) *Handler {
	return &Handler{cfg: cfg}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/sync/config", h.GetConfig, auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
}

func (h *Handler) GetConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, configResponse{
		ConversationsIntervalSeconds: int(h.cfg.ConversationsInterval.Seconds()),
		ThreadIntervalSeconds:        int(h.cfg.ThreadInterval.Seconds()),
		NotificationsIntervalSeconds: int(h.cfg.NotificationsInterval.Seconds()),
	})
}
