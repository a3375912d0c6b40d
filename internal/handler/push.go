package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/touchline/internal/model"
	"github.com/dukerupert/touchline/internal/push"
	"github.com/dukerupert/touchline/internal/store"
	"github.com/dukerupert/touchline/internal/websocket"
)

// PushService is the part of push.Service the handler needs.
type PushService interface {
	push.Sender
	VAPIDPublicKey() string
	Enabled() bool
}

type PushHandler struct {
	pushStore *store.PushStore
	players   *store.PlayerStore
	service   PushService
	hub       websocket.Broadcaster
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, players *store.PlayerStore, svc PushService, hub websocket.Broadcaster, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, players: players, service: svc, hub: hub, logger: logger}
}

type subscribeRequest struct {
	PlayerID   string `json:"player_id" validate:"notblank"`
	Endpoint   string `json:"endpoint" validate:"required,url"`
	P256dh     string `json:"p256dh" validate:"notblank"`
	Auth       string `json:"auth" validate:"notblank"`
	DeviceName string `json:"device_name" validate:"max=100"`
}

type testPushRequest struct {
	PlayerID string `json:"player_id" validate:"notblank"`
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}

// Subscribe handles POST /api/push/subscribe. Re-subscribing an endpoint
// moves it to the given player.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.players.GetByID(r.Context(), req.PlayerID)
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "unknown player")
		return
	}

	sub, err := h.pushStore.CreateSubscription(r.Context(), req.PlayerID, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntitySubscription, websocket.ActionCreated, sub.ID,
		map[string]any{"player_id": sub.PlayerID}))
	writeJSON(w, http.StatusCreated, sub)
}

// ListSubscriptions handles GET /api/push/subscriptions?player_id=
func (h *PushHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	var (
		subs []model.PushSubscription
		err  error
	)
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		subs, err = h.pushStore.ListByPlayer(r.Context(), playerID)
	} else {
		subs, err = h.pushStore.ListAll(r.Context())
	}
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(subs))
}

// Unsubscribe handles DELETE /api/push/subscriptions/{id}
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sub, err := h.pushStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get subscription")
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, "subscription not found")
		return
	}

	if err := h.pushStore.DeleteSubscription(r.Context(), id); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntitySubscription, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// SendTest handles POST /api/push/test. It sends a test notification to each
// of the player's devices and drops the ones whose endpoint is gone.
func (h *PushHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	if !h.service.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "push notifications are not configured")
		return
	}

	var req testPushRequest
	if !decode(w, r, &req) {
		return
	}

	subs, err := h.pushStore.ListByPlayer(r.Context(), req.PlayerID)
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if len(subs) == 0 {
		writeError(w, http.StatusNotFound, "player has no subscriptions")
		return
	}

	payload := push.Payload{
		Title: "Test notification",
		Body:  "Push notifications are working.",
		Tag:   "test",
		Data:  push.PayloadData{URL: "/"},
	}

	var sent, failed int
	var gone []string
	for _, sub := range subs {
		out := h.service.Deliver(r.Context(), sub, payload)
		switch out.Kind {
		case push.Delivered:
			sent++
		case push.EndpointGone:
			gone = append(gone, sub.ID)
		default:
			failed++
			h.logger.Warn("test push failed", "subscription_id", sub.ID, "error", out.Err)
		}
	}

	expired := h.dropGone(r.Context(), gone)
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent, "expired": expired, "failed": failed})
}

func (h *PushHandler) dropGone(ctx context.Context, ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	n, err := h.pushStore.DeleteSubscriptions(ctx, ids)
	if err != nil {
		h.logger.Error("delete gone subscriptions", "error", err)
		return 0
	}
	for _, id := range ids {
		h.hub.Broadcast(websocket.NewMessage(websocket.EntitySubscription, websocket.ActionDeleted, id, nil))
	}
	return n
}
