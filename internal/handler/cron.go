package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/touchline/internal/push"
	"github.com/dukerupert/touchline/internal/websocket"
)

// passTimeout caps a pass started by the cron trigger. The pass outlives the
// request so a caller that hangs up does not cut deliveries short.
const passTimeout = 5 * time.Minute

// PassRunner runs one notification pass.
type PassRunner interface {
	RunPass(ctx context.Context) push.Summary
}

type CronHandler struct {
	runner PassRunner
	hub    websocket.Broadcaster
	logger *slog.Logger
}

// NewCronHandler with a nil runner answers 503, for when push is not configured.
func NewCronHandler(runner PassRunner, hub websocket.Broadcaster, logger *slog.Logger) *CronHandler {
	return &CronHandler{runner: runner, hub: hub, logger: logger}
}

// Notifications handles POST /api/cron/notifications. Authentication and
// rate limiting happen in middleware before this runs.
func (h *CronHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), passTimeout)
	defer cancel()

	sum := h.runner.RunPass(ctx)
	h.logger.Info("notification pass triggered",
		"sent", sum.Sent, "expired", sum.Expired,
		"notifications", sum.Notifications, "hour", sum.Hour)

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityNotification, websocket.ActionRan, "",
		map[string]any{"sent": sum.Sent, "expired": sum.Expired, "notifications": sum.Notifications, "hour": sum.Hour}))
	writeJSON(w, http.StatusOK, sum)
}
