package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/touchline/internal/model"
)

type PlayerStore struct {
	db *sql.DB
}

func NewPlayerStore(db *sql.DB) *PlayerStore {
	return &PlayerStore{db: db}
}

const playerCols = `id, name, email, squad, position, active, created_at, updated_at`

func scanPlayer(sc scanner) (*model.Player, error) {
	var p model.Player
	var active int
	if err := sc.Scan(&p.ID, &p.Name, &p.Email, &p.Squad, &p.Position, &active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Active = active != 0
	return &p, nil
}

func (s *PlayerStore) Create(ctx context.Context, name, email, squad, position string) (*model.Player, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, email, squad, position) VALUES (?, ?, ?, ?, ?)`,
		id, name, email, squad, position,
	)
	if err != nil {
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PlayerStore) GetByID(ctx context.Context, id string) (*model.Player, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+playerCols+` FROM players WHERE id = ?`, id)
	p, err := scanPlayer(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// List returns all players, active first, then by name.
func (s *PlayerStore) List(ctx context.Context) ([]model.Player, error) {
	return s.query(ctx, `SELECT `+playerCols+` FROM players ORDER BY active DESC, name ASC`)
}

func (s *PlayerStore) ListActive(ctx context.Context) ([]model.Player, error) {
	return s.query(ctx, `SELECT `+playerCols+` FROM players WHERE active = 1 ORDER BY name ASC`)
}

func (s *PlayerStore) query(ctx context.Context, q string, args ...any) ([]model.Player, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []model.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, *p)
	}
	return players, rows.Err()
}

func (s *PlayerStore) Update(ctx context.Context, id, name, email, squad, position string, active bool) (*model.Player, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE players SET name = ?, email = ?, squad = ?, position = ?, active = ? WHERE id = ?`,
		name, email, squad, position, boolToInt(active), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update player: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *PlayerStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	return nil
}
