package syncproto

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestSignature_Stable(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	a := Signature(5, &ts)
	b := Signature(5, &ts)
	if a != b {
		t.Errorf("expected identical signatures for identical snapshots, got %q vs %q", a, b)
	}
}

func TestSignature_ChangesWithData(t *testing.T) {
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	later := ts.Add(time.Minute)

	base := Signature(5, &ts)
	if Signature(6, &ts) == base {
		t.Error("expected signature to change when count changes")
	}
	if Signature(5, &later) == base {
		t.Error("expected signature to change when latest timestamp changes")
	}
}

func TestSignature_NilLatest(t *testing.T) {
	if got := Signature(0, nil); got != "0:0" {
		t.Errorf("expected '0:0' for empty snapshot, got %q", got)
	}
}

func TestGetConfig(t *testing.T) {
	h := NewHandler(Config{
		ConversationsInterval: 30 * time.Second,
		ThreadInterval:        10 * time.Second,
		NotificationsInterval: 10 * time.Second,
	})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/sync/config", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.GetConfig(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		ConversationsIntervalSeconds int `json:"conversations_interval_seconds"`
		ThreadIntervalSeconds        int `json:"thread_interval_seconds"`
		NotificationsIntervalSeconds int `json:"notifications_interval_seconds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ConversationsIntervalSeconds != 30 {
		t.Errorf("expected conversations interval 30, got %d", resp.ConversationsIntervalSeconds)
	}
	if resp.ThreadIntervalSeconds != 10 {
		t.Errorf("expected thread interval 10, got %d", resp.ThreadIntervalSeconds)
	}
	if resp.NotificationsIntervalSeconds != 10 {
		t.Errorf("expected notifications interval 10, got %d", resp.NotificationsIntervalSeconds)
	}
}
