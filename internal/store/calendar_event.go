package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/touchline/internal/model"
)

type EventStore struct {
	db *sql.DB
}

func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const eventCols = `id, title, type, date, start_time, end_time, location, recurrence_rule, recurrence_end_date, parent_event_id, created_at, updated_at`

func scanEvent(sc scanner) (*model.CalendarEvent, error) {
	var e model.CalendarEvent
	var parentID sql.NullString
	err := sc.Scan(
		&e.ID, &e.Title, &e.Type, &e.Date, &e.StartTime, &e.EndTime, &e.Location,
		&e.RecurrenceRule, &e.RecurrenceEndDate, &parentID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if parentID.Valid {
		e.ParentEventID = &parentID.String
	}
	return &e, nil
}

func insertEvent(ctx context.Context, ex execer, e *model.CalendarEvent) error {
	if e.ID == "" {
		e.ID = newID()
	}
	var parentID sql.NullString
	if e.ParentEventID != nil {
		parentID = sql.NullString{String: *e.ParentEventID, Valid: true}
	}

	_, err := ex.ExecContext(ctx,
		`INSERT INTO calendar_events (id, title, type, date, start_time, end_time, location, recurrence_rule, recurrence_end_date, parent_event_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Type, e.Date, e.StartTime.UTC(), e.EndTime.UTC(), e.Location,
		e.RecurrenceRule, e.RecurrenceEndDate, parentID,
	)
	if err != nil {
		return fmt.Errorf("insert calendar event: %w", err)
	}
	return insertAttendees(ctx, ex, e.ID, e.Attendees)
}

func insertAttendees(ctx context.Context, ex execer, eventID string, playerIDs []string) error {
	for _, pid := range playerIDs {
		if _, err := ex.ExecContext(ctx,
			`INSERT OR IGNORE INTO event_attendees (event_id, player_id) VALUES (?, ?)`, eventID, pid,
		); err != nil {
			return fmt.Errorf("insert event attendee: %w", err)
		}
	}
	return nil
}

// Create inserts a single event with its attendees.
func (s *EventStore) Create(ctx context.Context, e model.CalendarEvent) (*model.CalendarEvent, error) {
	events, err := s.CreateSeries(ctx, []model.CalendarEvent{e})
	if err != nil {
		return nil, err
	}
	return &events[0], nil
}

// CreateSeries inserts events in one transaction. The first event is the
// series parent; every later event is linked to it through parent_event_id.
func (s *EventStore) CreateSeries(ctx context.Context, events []model.CalendarEvent) ([]model.CalendarEvent, error) {
	if len(events) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertEvent(ctx, tx, &events[0]); err != nil {
		return nil, err
	}
	parentID := events[0].ID
	for i := 1; i < len(events); i++ {
		events[i].ParentEventID = &parentID
		if err := insertEvent(ctx, tx, &events[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return s.listByIDs(ctx, ids)
}

func (s *EventStore) GetByID(ctx context.Context, id string) (*model.CalendarEvent, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventCols+` FROM calendar_events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar event: %w", err)
	}

	events := []model.CalendarEvent{*e}
	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// ListByDate returns events on a local calendar date.
func (s *EventStore) ListByDate(ctx context.Context, date string) ([]model.CalendarEvent, error) {
	return s.query(ctx, `SELECT `+eventCols+` FROM calendar_events WHERE date = ? ORDER BY start_time ASC`, date)
}

// ListByDateRange returns events whose local date lies in [startDate, endDate].
func (s *EventStore) ListByDateRange(ctx context.Context, startDate, endDate string) ([]model.CalendarEvent, error) {
	return s.query(ctx,
		`SELECT `+eventCols+` FROM calendar_events WHERE date >= ? AND date <= ? ORDER BY start_time ASC`,
		startDate, endDate,
	)
}

// ListStartingBetween returns events with from <= start_time < until.
func (s *EventStore) ListStartingBetween(ctx context.Context, from, until time.Time) ([]model.CalendarEvent, error) {
	return s.query(ctx,
		`SELECT `+eventCols+` FROM calendar_events WHERE start_time >= ? AND start_time < ? ORDER BY start_time ASC`,
		from.UTC(), until.UTC(),
	)
}

// ListSeries returns the parent and every instance of a recurring event.
func (s *EventStore) ListSeries(ctx context.Context, parentID string) ([]model.CalendarEvent, error) {
	return s.query(ctx,
		`SELECT `+eventCols+` FROM calendar_events WHERE id = ? OR parent_event_id = ? ORDER BY start_time ASC`,
		parentID, parentID,
	)
}

func (s *EventStore) listByIDs(ctx context.Context, ids []string) ([]model.CalendarEvent, error) {
	q := `SELECT ` + eventCols + ` FROM calendar_events WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY start_time ASC`
	return s.query(ctx, q, stringArgs(ids)...)
}

func (s *EventStore) query(ctx context.Context, q string, args ...any) ([]model.CalendarEvent, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan calendar event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.attachAttendees(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventStore) attachAttendees(ctx context.Context, events []model.CalendarEvent) error {
	if len(events) == 0 {
		return nil
	}

	index := make(map[string]int, len(events))
	ids := make([]string, len(events))
	for i, e := range events {
		index[e.ID] = i
		ids[i] = e.ID
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, player_id FROM event_attendees WHERE event_id IN (`+placeholders(len(ids))+`) ORDER BY player_id`,
		stringArgs(ids)...,
	)
	if err != nil {
		return fmt.Errorf("query event attendees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, playerID string
		if err := rows.Scan(&eventID, &playerID); err != nil {
			return fmt.Errorf("scan event attendee: %w", err)
		}
		i := index[eventID]
		events[i].Attendees = append(events[i].Attendees, playerID)
	}
	return rows.Err()
}

// Update replaces an event's fields and attendee list.
func (s *EventStore) Update(ctx context.Context, e model.CalendarEvent) (*model.CalendarEvent, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE calendar_events
		 SET title = ?, type = ?, date = ?, start_time = ?, end_time = ?, location = ?
		 WHERE id = ?`,
		e.Title, e.Type, e.Date, e.StartTime.UTC(), e.EndTime.UTC(), e.Location, e.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar event: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM event_attendees WHERE event_id = ?`, e.ID); err != nil {
		return nil, fmt.Errorf("clear event attendees: %w", err)
	}
	if err := insertAttendees(ctx, tx, e.ID, e.Attendees); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return s.GetByID(ctx, e.ID)
}

// Delete removes one event. When it is a series parent, the next instance
// becomes the parent and inherits the recurrence rule.
func (s *EventStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var next string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM calendar_events WHERE parent_event_id = ? ORDER BY start_time ASC LIMIT 1`, id,
	).Scan(&next)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return fmt.Errorf("find next instance: %w", err)
	default:
		if _, err := tx.ExecContext(ctx,
			`UPDATE calendar_events SET parent_event_id = NULL,
			 recurrence_rule = (SELECT recurrence_rule FROM calendar_events WHERE id = ?),
			 recurrence_end_date = (SELECT recurrence_end_date FROM calendar_events WHERE id = ?)
			 WHERE id = ?`, id, id, next,
		); err != nil {
			return fmt.Errorf("promote instance: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE calendar_events SET parent_event_id = ? WHERE parent_event_id = ? AND id != ?`, next, id, next,
		); err != nil {
			return fmt.Errorf("relink instances: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return tx.Commit()
}

// DeleteSeries removes the whole series id belongs to and reports how many
// events went.
func (s *EventStore) DeleteSeries(ctx context.Context, id string) (int, error) {
	var parent sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT parent_event_id FROM calendar_events WHERE id = ?`, id).Scan(&parent)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get series parent: %w", err)
	}
	root := id
	if parent.Valid {
		root = parent.String
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM calendar_events WHERE id = ? OR parent_event_id = ?`, root, root)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

func stringArgs(ss []string) []any {
	args := make([]any, len(ss))
	for i, s := range ss {
		args[i] = s
	}
	return args
}
