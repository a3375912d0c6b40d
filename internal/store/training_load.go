package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/touchline/internal/model"
)

type TrainingLoadStore struct {
	db *sql.DB
}

func NewTrainingLoadStore(db *sql.DB) *TrainingLoadStore {
	return &TrainingLoadStore{db: db}
}

const trainingLoadCols = `id, player_id, date, session_type, duration_minutes, rpe, mobility_completed, created_at`

func scanTrainingLoad(sc scanner) (*model.TrainingLoad, error) {
	var l model.TrainingLoad
	var mobility int
	if err := sc.Scan(&l.ID, &l.PlayerID, &l.Date, &l.SessionType, &l.DurationMinutes, &l.RPE, &mobility, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.MobilityCompleted = mobility != 0
	return &l, nil
}

func (s *TrainingLoadStore) Create(ctx context.Context, l model.TrainingLoad) (*model.TrainingLoad, error) {
	l.ID = newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO training_loads (id, player_id, date, session_type, duration_minutes, rpe, mobility_completed) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.PlayerID, l.Date, l.SessionType, l.DurationMinutes, l.RPE, boolToInt(l.MobilityCompleted),
	)
	if err != nil {
		return nil, fmt.Errorf("insert training load: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+trainingLoadCols+` FROM training_loads WHERE id = ?`, l.ID)
	created, err := scanTrainingLoad(row)
	if err != nil {
		return nil, fmt.Errorf("get training load: %w", err)
	}
	return created, nil
}

func (s *TrainingLoadStore) ListByPlayerDate(ctx context.Context, playerID, date string) ([]model.TrainingLoad, error) {
	return s.query(ctx, `SELECT `+trainingLoadCols+` FROM training_loads WHERE player_id = ? AND date = ? ORDER BY created_at`, playerID, date)
}

func (s *TrainingLoadStore) ListByDate(ctx context.Context, date string) ([]model.TrainingLoad, error) {
	return s.query(ctx, `SELECT `+trainingLoadCols+` FROM training_loads WHERE date = ? ORDER BY player_id, created_at`, date)
}

func (s *TrainingLoadStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM training_loads WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete training load: %w", err)
	}
	return nil
}

func (s *TrainingLoadStore) query(ctx context.Context, q string, args ...any) ([]model.TrainingLoad, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query training loads: %w", err)
	}
	defer rows.Close()

	var loads []model.TrainingLoad
	for rows.Next() {
		l, err := scanTrainingLoad(rows)
		if err != nil {
			return nil, fmt.Errorf("scan training load: %w", err)
		}
		loads = append(loads, *l)
	}
	return loads, rows.Err()
}
