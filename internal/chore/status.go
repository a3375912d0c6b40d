package chore

import (
	"time"

	"github.com/dukerupert/touchline/internal/model"
)

type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketDueToday Bucket = "due_today"
	BucketUpcoming Bucket = "upcoming"
	BucketClosed   Bucket = "closed"
)

type ChoreWithBucket struct {
	model.Chore
	Bucket Bucket `json:"bucket"`
}

// Classify places a chore relative to the local day [todayStart, tomorrowStart).
// Only pending chores can be overdue or due.
func Classify(c model.Chore, todayStart, tomorrowStart time.Time) Bucket {
	if c.Status != model.ChoreStatusPending {
		return BucketClosed
	}
	switch {
	case c.Deadline.Before(todayStart):
		return BucketOverdue
	case c.Deadline.Before(tomorrowStart):
		return BucketDueToday
	default:
		return BucketUpcoming
	}
}

// Annotate classifies every chore in the list.
func Annotate(chores []model.Chore, todayStart, tomorrowStart time.Time) []ChoreWithBucket {
	out := make([]ChoreWithBucket, 0, len(chores))
	for _, c := range chores {
		out = append(out, ChoreWithBucket{Chore: c, Bucket: Classify(c, todayStart, tomorrowStart)})
	}
	return out
}

// ValidStatus reports whether s is a known chore status.
func ValidStatus(s model.ChoreStatus) bool {
	switch s {
	case model.ChoreStatusPending, model.ChoreStatusCompleted, model.ChoreStatusCancelled:
		return true
	}
	return false
}
