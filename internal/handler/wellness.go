package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
	"github.com/dukerupert/touchline/internal/store"
	"github.com/dukerupert/touchline/internal/websocket"
)

// WellnessHandler serves daily wellness reports and training load entries.
type WellnessHandler struct {
	wellness *store.WellnessStore
	loads    *store.TrainingLoadStore
	players  *store.PlayerStore
	zone     *localtime.Zone
	hub      websocket.Broadcaster
	logger   *slog.Logger
	now      func() time.Time
}

func NewWellnessHandler(ws *store.WellnessStore, ls *store.TrainingLoadStore, ps *store.PlayerStore, zone *localtime.Zone, hub websocket.Broadcaster, logger *slog.Logger) *WellnessHandler {
	return &WellnessHandler{wellness: ws, loads: ls, players: ps, zone: zone, hub: hub, logger: logger, now: time.Now}
}

type wellnessRequest struct {
	PlayerID string `json:"player_id" validate:"notblank"`
	Date     string `json:"date" validate:"omitempty,date"`
	Sleep    int    `json:"sleep" validate:"min=1,max=10"`
	Energy   int    `json:"energy" validate:"min=1,max=10"`
	Mood     int    `json:"mood" validate:"min=1,max=10"`
	Soreness int    `json:"soreness" validate:"min=1,max=10"`
	Notes    string `json:"notes" validate:"max=1000"`
}

type trainingLoadRequest struct {
	PlayerID          string `json:"player_id" validate:"notblank"`
	Date              string `json:"date" validate:"omitempty,date"`
	SessionType       string `json:"session_type" validate:"notblank,max=50"`
	DurationMinutes   int    `json:"duration_minutes" validate:"min=1,max=600"`
	RPE               int    `json:"rpe" validate:"min=1,max=10"`
	MobilityCompleted bool   `json:"mobility_completed"`
}

// playerExists writes a 400 or 500 and returns false when id is not a player.
func (h *WellnessHandler) playerExists(w http.ResponseWriter, r *http.Request, id string) bool {
	p, err := h.players.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get player", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get player")
		return false
	}
	if p == nil {
		writeError(w, http.StatusBadRequest, "unknown player")
		return false
	}
	return true
}

// CreateWellness records a wellness report. The date defaults to today.
func (h *WellnessHandler) CreateWellness(w http.ResponseWriter, r *http.Request) {
	var req wellnessRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.playerExists(w, r, req.PlayerID) {
		return
	}
	if req.Date == "" {
		req.Date = h.zone.Date(h.now())
	}

	wl, err := h.wellness.Create(r.Context(), model.WellnessLog{
		PlayerID: req.PlayerID,
		Date:     req.Date,
		Sleep:    req.Sleep,
		Energy:   req.Energy,
		Mood:     req.Mood,
		Soreness: req.Soreness,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.Error("create wellness log", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save wellness log")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityWellness, websocket.ActionCreated, wl.ID,
		map[string]any{"player_id": wl.PlayerID, "date": wl.Date}))
	writeJSON(w, http.StatusCreated, wl)
}

func (h *WellnessHandler) ListWellness(w http.ResponseWriter, r *http.Request) {
	date, ok := dateQuery(r, "date", h.zone, h.now())
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}

	var (
		logs []model.WellnessLog
		err  error
	)
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		logs, err = h.wellness.ListByPlayerDate(r.Context(), playerID, date)
	} else {
		logs, err = h.wellness.ListByDate(r.Context(), date)
	}
	if err != nil {
		h.logger.Error("list wellness logs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list wellness logs")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(logs))
}

// CreateTrainingLoad records one session. The date defaults to today.
func (h *WellnessHandler) CreateTrainingLoad(w http.ResponseWriter, r *http.Request) {
	var req trainingLoadRequest
	if !decode(w, r, &req) {
		return
	}
	if !h.playerExists(w, r, req.PlayerID) {
		return
	}
	if req.Date == "" {
		req.Date = h.zone.Date(h.now())
	}

	load, err := h.loads.Create(r.Context(), model.TrainingLoad{
		PlayerID:          req.PlayerID,
		Date:              req.Date,
		SessionType:       req.SessionType,
		DurationMinutes:   req.DurationMinutes,
		RPE:               req.RPE,
		MobilityCompleted: req.MobilityCompleted,
	})
	if err != nil {
		h.logger.Error("create training load", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save training load")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityTrainingLoad, websocket.ActionCreated, load.ID,
		map[string]any{"player_id": load.PlayerID, "date": load.Date}))
	writeJSON(w, http.StatusCreated, load)
}

func (h *WellnessHandler) ListTrainingLoads(w http.ResponseWriter, r *http.Request) {
	date, ok := dateQuery(r, "date", h.zone, h.now())
	if !ok {
		writeError(w, http.StatusBadRequest, "date must be a YYYY-MM-DD date")
		return
	}

	var (
		loads []model.TrainingLoad
		err   error
	)
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		loads, err = h.loads.ListByPlayerDate(r.Context(), playerID, date)
	} else {
		loads, err = h.loads.ListByDate(r.Context(), date)
	}
	if err != nil {
		h.logger.Error("list training loads", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list training loads")
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(loads))
}
