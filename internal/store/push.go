package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/touchline/internal/model"
)

type PushStore struct {
	db *sql.DB
}

func NewPushStore(db *sql.DB) *PushStore {
	return &PushStore{db: db}
}

const subscriptionCols = `id, player_id, endpoint, p256dh_key, auth_key, device_name, created_at`

func scanSubscription(sc scanner) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := sc.Scan(&sub.ID, &sub.PlayerID, &sub.Endpoint, &sub.P256dhKey, &sub.AuthKey, &sub.DeviceName, &sub.CreatedAt); err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscription registers a device. Re-subscribing an endpoint that is
// already known replaces its keys and owner.
func (s *PushStore) CreateSubscription(ctx context.Context, playerID, endpoint, p256dh, auth, deviceName string) (*model.PushSubscription, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO push_subscriptions (id, player_id, endpoint, p256dh_key, auth_key, device_name)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(endpoint) DO UPDATE SET player_id = excluded.player_id, p256dh_key = excluded.p256dh_key,
		 auth_key = excluded.auth_key, device_name = excluded.device_name`,
		newID(), playerID, endpoint, p256dh, auth, deviceName,
	)
	if err != nil {
		return nil, fmt.Errorf("create push subscription: %w", err)
	}
	return s.getByEndpoint(ctx, endpoint)
}

func (s *PushStore) GetByID(ctx context.Context, id string) (*model.PushSubscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionCols+` FROM push_subscriptions WHERE id = ?`, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription: %w", err)
	}
	return sub, nil
}

func (s *PushStore) getByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subscriptionCols+` FROM push_subscriptions WHERE endpoint = ?`, endpoint)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get push subscription by endpoint: %w", err)
	}
	return sub, nil
}

func (s *PushStore) ListAll(ctx context.Context) ([]model.PushSubscription, error) {
	return s.querySubscriptions(ctx, `SELECT `+subscriptionCols+` FROM push_subscriptions ORDER BY player_id, created_at`)
}

func (s *PushStore) ListByPlayer(ctx context.Context, playerID string) ([]model.PushSubscription, error) {
	return s.querySubscriptions(ctx,
		`SELECT `+subscriptionCols+` FROM push_subscriptions WHERE player_id = ? ORDER BY created_at DESC`, playerID)
}

func (s *PushStore) querySubscriptions(ctx context.Context, q string, args ...any) ([]model.PushSubscription, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []model.PushSubscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

func (s *PushStore) DeleteSubscription(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM push_subscriptions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete push subscription: %w", err)
	}
	return nil
}

// DeleteSubscriptions removes every subscription in ids and reports how many rows went.
func (s *PushStore) DeleteSubscriptions(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete push subscriptions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}

// ListSentOn returns the notification log entries recorded for a local date.
func (s *PushStore) ListSentOn(ctx context.Context, date string) ([]model.NotificationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, player_id, notification_type, reference_id, sent_date FROM notification_log WHERE sent_date = ?`, date)
	if err != nil {
		return nil, fmt.Errorf("list sent notifications: %w", err)
	}
	defer rows.Close()

	var entries []model.NotificationLogEntry
	for rows.Next() {
		var e model.NotificationLogEntry
		if err := rows.Scan(&e.ID, &e.PlayerID, &e.Type, &e.ReferenceID, &e.SentDate); err != nil {
			return nil, fmt.Errorf("scan sent notification: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecordSent writes log entries in one transaction. Entries already present
// for the same (player, type, reference, date) are ignored.
func (s *PushStore) RecordSent(ctx context.Context, entries []model.NotificationLogEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO notification_log (id, player_id, notification_type, reference_id, sent_date) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare record sent: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, newID(), e.PlayerID, e.Type, e.ReferenceID, e.SentDate); err != nil {
			return fmt.Errorf("record sent notification: %w", err)
		}
	}
	return tx.Commit()
}

// CleanupBefore deletes log entries whose sent_date is earlier than date.
func (s *PushStore) CleanupBefore(ctx context.Context, date string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notification_log WHERE sent_date < ?`, date)
	if err != nil {
		return 0, fmt.Errorf("cleanup notification log: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
