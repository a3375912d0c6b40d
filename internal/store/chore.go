package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/touchline/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, title, description, assigned_to, deadline, status, created_at, updated_at`

func scanChore(sc scanner) (*model.Chore, error) {
	var c model.Chore
	err := sc.Scan(&c.ID, &c.Title, &c.Description, &c.AssignedTo, &c.Deadline, &c.Status, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChoreStore) Create(ctx context.Context, title, description, assignedTo string, deadline time.Time) (*model.Chore, error) {
	id := newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chores (id, title, description, assigned_to, deadline) VALUES (?, ?, ?, ?, ?)`,
		id, title, description, assignedTo, deadline.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) GetByID(ctx context.Context, id string) (*model.Chore, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}
	return c, nil
}

func (s *ChoreStore) List(ctx context.Context) ([]model.Chore, error) {
	return s.query(ctx, `SELECT `+choreCols+` FROM chores ORDER BY deadline ASC`)
}

func (s *ChoreStore) ListByPlayer(ctx context.Context, playerID string) ([]model.Chore, error) {
	return s.query(ctx, `SELECT `+choreCols+` FROM chores WHERE assigned_to = ? ORDER BY deadline ASC`, playerID)
}

// ListPendingDueBefore returns pending chores whose deadline is strictly before t.
func (s *ChoreStore) ListPendingDueBefore(ctx context.Context, t time.Time) ([]model.Chore, error) {
	return s.query(ctx,
		`SELECT `+choreCols+` FROM chores WHERE status = ? AND deadline < ? ORDER BY deadline ASC`,
		model.ChoreStatusPending, t.UTC(),
	)
}

// ListPendingDueBetween returns pending chores with from <= deadline < until.
func (s *ChoreStore) ListPendingDueBetween(ctx context.Context, from, until time.Time) ([]model.Chore, error) {
	return s.query(ctx,
		`SELECT `+choreCols+` FROM chores WHERE status = ? AND deadline >= ? AND deadline < ? ORDER BY deadline ASC`,
		model.ChoreStatusPending, from.UTC(), until.UTC(),
	)
}

func (s *ChoreStore) query(ctx context.Context, q string, args ...any) ([]model.Chore, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	return chores, rows.Err()
}

func (s *ChoreStore) Update(ctx context.Context, id, title, description, assignedTo string, deadline time.Time) (*model.Chore, error) {
	_, err := s.db.ExecContext(ctx,
		`UPDATE chores SET title = ?, description = ?, assigned_to = ?, deadline = ? WHERE id = ?`,
		title, description, assignedTo, deadline.UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) UpdateStatus(ctx context.Context, id string, status model.ChoreStatus) (*model.Chore, error) {
	_, err := s.db.ExecContext(ctx, `UPDATE chores SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("update chore status: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *ChoreStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chores WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}
