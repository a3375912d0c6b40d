package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/touchline/internal/model"
)

type WellnessStore struct {
	db *sql.DB
}

func NewWellnessStore(db *sql.DB) *WellnessStore {
	return &WellnessStore{db: db}
}

const wellnessCols = `id, player_id, date, sleep, energy, mood, soreness, notes, created_at`

func scanWellness(sc scanner) (*model.WellnessLog, error) {
	var w model.WellnessLog
	if err := sc.Scan(&w.ID, &w.PlayerID, &w.Date, &w.Sleep, &w.Energy, &w.Mood, &w.Soreness, &w.Notes, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *WellnessStore) Create(ctx context.Context, w model.WellnessLog) (*model.WellnessLog, error) {
	w.ID = newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO wellness_logs (id, player_id, date, sleep, energy, mood, soreness, notes) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.PlayerID, w.Date, w.Sleep, w.Energy, w.Mood, w.Soreness, w.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert wellness log: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+wellnessCols+` FROM wellness_logs WHERE id = ?`, w.ID)
	created, err := scanWellness(row)
	if err != nil {
		return nil, fmt.Errorf("get wellness log: %w", err)
	}
	return created, nil
}

func (s *WellnessStore) ListByPlayerDate(ctx context.Context, playerID, date string) ([]model.WellnessLog, error) {
	return s.query(ctx, `SELECT `+wellnessCols+` FROM wellness_logs WHERE player_id = ? AND date = ? ORDER BY created_at`, playerID, date)
}

func (s *WellnessStore) ListByDate(ctx context.Context, date string) ([]model.WellnessLog, error) {
	return s.query(ctx, `SELECT `+wellnessCols+` FROM wellness_logs WHERE date = ? ORDER BY player_id, created_at`, date)
}

// PlayersWithLog returns which of playerIDs have at least one log on date.
func (s *WellnessStore) PlayersWithLog(ctx context.Context, date string, playerIDs []string) (map[string]bool, error) {
	logged := make(map[string]bool)
	if len(playerIDs) == 0 {
		return logged, nil
	}

	args := append([]any{date}, stringArgs(playerIDs)...)
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT player_id FROM wellness_logs WHERE date = ? AND player_id IN (`+placeholders(len(playerIDs))+`)`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query logged players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan logged player: %w", err)
		}
		logged[id] = true
	}
	return logged, rows.Err()
}

func (s *WellnessStore) query(ctx context.Context, q string, args ...any) ([]model.WellnessLog, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query wellness logs: %w", err)
	}
	defer rows.Close()

	var logs []model.WellnessLog
	for rows.Next() {
		w, err := scanWellness(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wellness log: %w", err)
		}
		logs = append(logs, *w)
	}
	return logs, rows.Err()
}
