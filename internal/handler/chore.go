package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/touchline/internal/chore"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
	"github.com/dukerupert/touchline/internal/store"
	"github.com/dukerupert/touchline/internal/websocket"
)

type ChoreHandler struct {
	chores  *store.ChoreStore
	players *store.PlayerStore
	zone    *localtime.Zone
	hub     websocket.Broadcaster
	logger  *slog.Logger
	now     func() time.Time
}

func NewChoreHandler(cs *store.ChoreStore, ps *store.PlayerStore, zone *localtime.Zone, hub websocket.Broadcaster, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, players: ps, zone: zone, hub: hub, logger: logger, now: time.Now}
}

type choreRequest struct {
	Title       string    `json:"title" validate:"notblank,max=200"`
	Description string    `json:"description" validate:"max=1000"`
	AssignedTo  string    `json:"assigned_to" validate:"notblank"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

type choreStatusRequest struct {
	Status string `json:"status" validate:"chorestatus"`
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.players.GetByID(r.Context(), req.AssignedTo)
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "unknown player")
		return
	}

	c, err := h.chores.Create(r.Context(), strings.TrimSpace(req.Title), req.Description, req.AssignedTo, req.Deadline)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityChore, websocket.ActionCreated, c.ID,
		map[string]any{"assigned_to": c.AssignedTo}))
	writeJSON(w, http.StatusCreated, h.annotate([]model.Chore{*c})[0])
}

// List returns chores tagged with their bucket relative to today.
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		chores []model.Chore
		err    error
	)
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		chores, err = h.chores.ListByPlayer(r.Context(), playerID)
	} else {
		chores, err = h.chores.List(r.Context())
	}
	if err != nil {
		h.logger.Error("list chores", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	writeJSON(w, http.StatusOK, h.annotate(chores))
}

func (h *ChoreHandler) annotate(chores []model.Chore) []chore.ChoreWithBucket {
	todayStart, tomorrowStart, _ := h.zone.DayBounds(h.zone.Date(h.now()))
	return chore.Annotate(chores, todayStart, tomorrowStart)
}

func (h *ChoreHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.chores.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req choreStatusRequest
	if !decode(w, r, &req) {
		return
	}

	c, err := h.chores.UpdateStatus(r.Context(), id, model.ChoreStatus(req.Status))
	if err != nil {
		h.logger.Error("update chore status", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityChore, websocket.ActionUpdated, id,
		map[string]any{"status": c.Status}))
	writeJSON(w, http.StatusOK, h.annotate([]model.Chore{*c})[0])
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.chores.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	if err := h.chores.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityChore, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
