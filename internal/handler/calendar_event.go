package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/touchline/internal/compliance"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
	"github.com/dukerupert/touchline/internal/recurrence"
	"github.com/dukerupert/touchline/internal/store"
	"github.com/dukerupert/touchline/internal/websocket"
)

type CalendarEventHandler struct {
	events  *store.EventStore
	players *store.PlayerStore
	zone    *localtime.Zone
	hub     websocket.Broadcaster
	logger  *slog.Logger
	now     func() time.Time
}

func NewCalendarEventHandler(es *store.EventStore, ps *store.PlayerStore, zone *localtime.Zone, hub websocket.Broadcaster, logger *slog.Logger) *CalendarEventHandler {
	return &CalendarEventHandler{events: es, players: ps, zone: zone, hub: hub, logger: logger, now: time.Now}
}

type eventRequest struct {
	Title             string    `json:"title" validate:"notblank,max=200"`
	Type              string    `json:"type" validate:"eventtype"`
	StartTime         time.Time `json:"start_time" validate:"required"`
	EndTime           time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Location          string    `json:"location" validate:"max=200"`
	Attendees         []string  `json:"attendees" validate:"dive,notblank"`
	RecurrenceRule    string    `json:"recurrence_rule"`
	RecurrenceEndDate string    `json:"recurrence_end_date" validate:"omitempty,date"`
}

// event builds the first (or only) occurrence described by the request.
func (h *CalendarEventHandler) event(req eventRequest) model.CalendarEvent {
	return model.CalendarEvent{
		Title:     strings.TrimSpace(req.Title),
		Type:      model.EventType(req.Type),
		Date:      h.zone.Date(req.StartTime),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Attendees: req.Attendees,
	}
}

// unknownAttendee returns the first attendee id with no matching player.
func (h *CalendarEventHandler) unknownAttendee(ctx context.Context, ids []string) (string, error) {
	for _, id := range ids {
		p, err := h.players.GetByID(ctx, id)
		if err != nil {
			return "", err
		}
		if p == nil {
			return id, nil
		}
	}
	return "", nil
}

// Create stores an event. A recurrence rule expands it into a series whose
// first occurrence carries the rule.
func (h *CalendarEventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if !decode(w, r, &req) {
		return
	}

	missing, err := h.unknownAttendee(r.Context(), req.Attendees)
	if err != nil {
		h.logger.Error("check attendees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check attendees")
		return
	}
	if missing != "" {
		writeError(w, http.StatusBadRequest, "unknown attendee: "+missing)
		return
	}

	first := h.event(req)
	series := []model.CalendarEvent{first}
	if strings.TrimSpace(req.RecurrenceRule) != "" {
		rule, err := recurrence.Parse(req.RecurrenceRule)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid recurrence_rule: "+err.Error())
			return
		}

		duration := req.EndTime.Sub(req.StartTime)
		starts := recurrence.Expand(rule, req.StartTime.In(h.zone.Location()), req.RecurrenceEndDate)
		if len(starts) == 0 {
			writeError(w, http.StatusBadRequest, "recurrence produces no occurrences")
			return
		}
		series = make([]model.CalendarEvent, 0, len(starts))
		for _, start := range starts {
			e := first
			e.StartTime = start
			e.EndTime = start.Add(duration)
			e.Date = h.zone.Date(start)
			series = append(series, e)
		}
		series[0].RecurrenceRule = rule.String()
		series[0].RecurrenceEndDate = req.RecurrenceEndDate
	}

	created, err := h.events.CreateSeries(r.Context(), series)
	if err != nil {
		h.logger.Error("create calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create event")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityEvent, websocket.ActionCreated, created[0].ID,
		map[string]any{"instances": len(created)}))
	if len(created) == 1 {
		writeJSON(w, http.StatusCreated, created[0])
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns events between the start and end dates (inclusive). Both
// default to today; player_id narrows to events that player attends.
func (h *CalendarEventHandler) List(w http.ResponseWriter, r *http.Request) {
	now := h.now()
	start, ok := dateQuery(r, "start", h.zone, now)
	if !ok {
		writeError(w, http.StatusBadRequest, "start must be a YYYY-MM-DD date")
		return
	}
	end := start
	if v := r.URL.Query().Get("end"); v != "" {
		if !localtime.ValidDate(v) {
			writeError(w, http.StatusBadRequest, "end must be a YYYY-MM-DD date")
			return
		}
		end = v
	}
	if end < start {
		writeError(w, http.StatusBadRequest, "end must not be before start")
		return
	}

	events, err := h.events.ListByDateRange(r.Context(), start, end)
	if err != nil {
		h.logger.Error("list calendar events", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if playerID := r.URL.Query().Get("player_id"); playerID != "" {
		events = compliance.ForPlayer(events, playerID)
	}
	writeJSON(w, http.StatusOK, emptyIfNil(events))
}

func (h *CalendarEventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if e == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Update edits a single occurrence. The recurrence fields are ignored.
func (h *CalendarEventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	var req eventRequest
	if !decode(w, r, &req) {
		return
	}
	missing, err := h.unknownAttendee(r.Context(), req.Attendees)
	if err != nil {
		h.logger.Error("check attendees", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to check attendees")
		return
	}
	if missing != "" {
		writeError(w, http.StatusBadRequest, "unknown attendee: "+missing)
		return
	}

	e := h.event(req)
	e.ID = id
	updated, err := h.events.Update(r.Context(), e)
	if err != nil {
		h.logger.Error("update calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update event")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityEvent, websocket.ActionUpdated, id, nil))
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes one occurrence, or with ?scope=series the whole series.
func (h *CalendarEventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if r.URL.Query().Get("scope") == "series" {
		n, err := h.events.DeleteSeries(r.Context(), id)
		if err != nil {
			h.logger.Error("delete event series", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete series")
			return
		}
		if n == 0 {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		h.hub.Broadcast(websocket.NewMessage(websocket.EntityEvent, websocket.ActionDeleted, id,
			map[string]any{"scope": "series", "instances": n}))
		w.WriteHeader(http.StatusNoContent)
		return
	}

	existing, err := h.events.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("get calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}
	if err := h.events.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete calendar event", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete event")
		return
	}

	h.hub.Broadcast(websocket.NewMessage(websocket.EntityEvent, websocket.ActionDeleted, id, nil))
	w.WriteHeader(http.StatusNoContent)
}
