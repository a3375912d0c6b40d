package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/touchline/internal/compliance"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/store"
)

type ComplianceHandler struct {
	service *compliance.Service
	players *store.PlayerStore
	zone    *localtime.Zone
	logger  *slog.Logger
	now     func() time.Time
}

func NewComplianceHandler(svc *compliance.Service, ps *store.PlayerStore, zone *localtime.Zone, logger *slog.Logger) *ComplianceHandler {
	return &ComplianceHandler{service: svc, players: ps, zone: zone, logger: logger, now: time.Now}
}

// Day handles GET /api/players/{id}/compliance?date=
func (h *ComplianceHandler) Day(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.player(w, r)
	if !ok {
		return
	}
	date, ok := dateQuery(r, "date", h.zone, h.now())
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}

	res, err := h.service.Day(r.Context(), playerID, date)
	if err != nil {
		h.fail(w, "score day", err)
		return
	}
	writeJSON(w, http.StatusOK, compliance.DayResult{Date: date, Result: res})
}

// Week handles GET /api/players/{id}/compliance/week?end=
func (h *ComplianceHandler) Week(w http.ResponseWriter, r *http.Request) {
	playerID, ok := h.player(w, r)
	if !ok {
		return
	}
	end, ok := dateQuery(r, "end", h.zone, h.now())
	if !ok {
		writeError(w, http.StatusBadRequest, "end must be a YYYY-MM-DD date")
		return
	}

	days, err := h.service.Week(r.Context(), playerID, end)
	if err != nil {
		h.fail(w, "score week", err)
		return
	}
	writeJSON(w, http.StatusOK, days)
}

// Team handles GET /api/compliance?date=
func (h *ComplianceHandler) Team(w http.ResponseWriter, r *http.Request) {
	date, ok := dateQuery(r, "date", h.zone, h.now())
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}

	results, err := h.service.Team(r.Context(), date)
	if err != nil {
		h.fail(w, "score team", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(results))
}

func (h *ComplianceHandler) player(w http.ResponseWriter, r *http.Request) (string, bool) {
	p, err := h.players.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return "", false
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "player not found")
		return "", false
	}
	return p.ID, true
}

func (h *ComplianceHandler) fail(w http.ResponseWriter, msg string, err error) {
	if errors.Is(err, localtime.ErrBadDate) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "failed to compute compliance")
}
