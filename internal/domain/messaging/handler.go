package messaging

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/carebridge/internal/domain/assignment"
	"github.com/carebridge/carebridge/internal/platform/auth"
	"github.com/carebridge/carebridge/internal/platform/syncproto"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("", auth.RequireRole(auth.RoleDoctor, auth.RolePatient))
	g.GET("/conversations", h.ListConversations)
	g.GET("/messages/thread/:patientID", h.Thread)
	g.POST("/messages", h.Send)
	g.PATCH("/messages/:id/read", h.MarkRead)

	doctorGroup := api.Group("", auth.RequireRole(auth.RoleDoctor))
	doctorGroup.DELETE("/messages/thread/:patientID", h.ClearThread)
}

// threadResponse carries the messages plus a snapshot signature pollers use
// to discard out-of-order responses.
type threadResponse struct {
	Data      []*Message `json:"data"`
	Signature string     `json:"signature"`
}

type conversationsResponse struct {
	Data      []*ConversationSummary `json:"data"`
	Signature string                 `json:"signature"`
}

func (h *Handler) ListConversations(c echo.Context) error {
	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user_id")
	}

	var items []*ConversationSummary
	switch c.QueryParam("role") {
	case string(SenderDoctor):
		items, err = h.svc.ListForDoctor(c.Request().Context(), userID)
	case string(SenderPatient):
		items, err = h.svc.ListForPatient(c.Request().Context(), userID)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "role must be doctor or patient")
	}
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*ConversationSummary{}
	}

	var latest *time.Time
	for _, s := range items {
		if s.LastMessageAt != nil && (latest == nil || s.LastMessageAt.After(*latest)) {
			latest = s.LastMessageAt
		}
	}
	return c.JSON(http.StatusOK, conversationsResponse{
		Data:      items,
		Signature: syncproto.Signature(len(items), latest),
	})
}

func (h *Handler) Thread(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	viewer := SenderType(c.QueryParam("viewer"))

	items, err := h.svc.Thread(c.Request().Context(), patientID, viewer)
	if err != nil {
		return mapError(err)
	}
	if items == nil {
		items = []*Message{}
	}

	var latest *time.Time
	if len(items) > 0 {
		latest = &items[len(items)-1].CreatedAt
	}
	return c.JSON(http.StatusOK, threadResponse{
		Data:      items,
		Signature: syncproto.Signature(len(items), latest),
	})
}

func (h *Handler) Send(c echo.Context) error {
	var req SendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	m, err := h.svc.Send(c.Request().Context(), req)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.MarkRead(c.Request().Context(), id)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ClearThread(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientID"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.ClearThread(c.Request().Context(), patientID); err != nil {
		return mapError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// mapError translates service errors to HTTP status codes. An unassigned
// patient is an expected business condition, not a server fault; anything
// the service did not classify is one.
func mapError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUnassignedDoctor):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrMessageNotFound), errors.Is(err, assignment.ErrPatientNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
