// Package store persists touchline records in SQLite.
package store

import "github.com/google/uuid"

type scanner interface {
	Scan(...any) error
}

func newID() string {
	return uuid.NewString()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
