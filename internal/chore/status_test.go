package chore

import (
	"testing"
	"time"

	"github.com/dukerupert/touchline/internal/model"
)

var (
	todayStart    = time.Date(2026, 2, 4, 23, 0, 0, 0, time.UTC)
	tomorrowStart = time.Date(2026, 2, 5, 23, 0, 0, 0, time.UTC)
)

func TestClassifyOverdue(t *testing.T) {
	c := model.Chore{Status: model.ChoreStatusPending, Deadline: todayStart.Add(-time.Second)}
	if got := Classify(c, todayStart, tomorrowStart); got != BucketOverdue {
		t.Errorf("bucket = %q, want %q", got, BucketOverdue)
	}
}

func TestClassifyDueTodayBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		deadline time.Time
		want     Bucket
	}{
		{"at local midnight", todayStart, BucketDueToday},
		{"midday", todayStart.Add(12 * time.Hour), BucketDueToday},
		{"last second", tomorrowStart.Add(-time.Second), BucketDueToday},
		{"next midnight", tomorrowStart, BucketUpcoming},
	}
	for _, tt := range tests {
		c := model.Chore{Status: model.ChoreStatusPending, Deadline: tt.deadline}
		if got := Classify(c, todayStart, tomorrowStart); got != tt.want {
			t.Errorf("%s: bucket = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestClassifyClosed(t *testing.T) {
	for _, s := range []model.ChoreStatus{model.ChoreStatusCompleted, model.ChoreStatusCancelled} {
		c := model.Chore{Status: s, Deadline: todayStart.Add(-48 * time.Hour)}
		if got := Classify(c, todayStart, tomorrowStart); got != BucketClosed {
			t.Errorf("%s: bucket = %q, want %q", s, got, BucketClosed)
		}
	}
}

func TestAnnotate(t *testing.T) {
	chores := []model.Chore{
		{ID: "a", Status: model.ChoreStatusPending, Deadline: todayStart.Add(-time.Hour)},
		{ID: "b", Status: model.ChoreStatusPending, Deadline: tomorrowStart.Add(time.Hour)},
	}
	got := Annotate(chores, todayStart, tomorrowStart)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Bucket != BucketOverdue || got[1].Bucket != BucketUpcoming {
		t.Errorf("buckets = %q, %q", got[0].Bucket, got[1].Bucket)
	}
}

func TestValidStatus(t *testing.T) {
	if !ValidStatus(model.ChoreStatusPending) {
		t.Error("pending should be valid")
	}
	if ValidStatus("archived") {
		t.Error("archived should be invalid")
	}
}
