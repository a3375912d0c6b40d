package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/touchline/internal/store"
	"github.com/dukerupert/touchline/internal/websocket"
)

type PlayerHandler struct {
	store  *store.PlayerStore
	hub    websocket.Broadcaster
	logger *slog.Logger
}

func NewPlayerHandler(s *store.PlayerStore, hub websocket.Broadcaster, logger *slog.Logger) *PlayerHandler {
	return &PlayerHandler{store: s, hub: hub, logger: logger}
}

type playerRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	Email    string `json:"email" validate:"omitempty,email"`
	Squad    string `json:"squad" validate:"max=50"`
	Position string `json:"position" validate:"max=50"`
	Active   *bool  `json:"active"`
}

func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	players, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("list players", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list players")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(players))
}

func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *PlayerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req playerRequest
	if !decode(w, r, &req) {
		return
	}

	p, err := h.store.Create(r.Context(), strings.TrimSpace(req.Name), req.Email, req.Squad, req.Position)
	if err != nil {
		h.logger.Error("create player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create player")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlayer, websocket.ActionCreated, p.ID, nil))
	writeJSON(w, http.StatusCreated, p)
}

func (h *PlayerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	var req playerRequest
	if !decode(w, r, &req) {
		return
	}
	active := existing.Active
	if req.Active != nil {
		active = *req.Active
	}

	p, err := h.store.Update(r.Context(), id, strings.TrimSpace(req.Name), req.Email, req.Squad, req.Position, active)
	if err != nil {
		h.logger.Error("update player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update player")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlayer, websocket.ActionUpdated, p.ID, nil))
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a player along with their logs, chores and subscriptions.
func (h *PlayerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete player")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityPlayer, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
