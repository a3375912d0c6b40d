package localtime

import (
	"errors"
	"testing"
	"time"
)

func berlin(t *testing.T) *Zone {
	t.Helper()
	z, err := Load("Europe/Berlin")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return z
}

func TestDateAndHour(t *testing.T) {
	z := berlin(t)

	// 23:30 UTC in winter is 00:30 the next day in Berlin
	at := time.Date(2026, 1, 14, 23, 30, 0, 0, time.UTC)
	if got := z.Date(at); got != "2026-01-15" {
		t.Errorf("date = %q, want %q", got, "2026-01-15")
	}
	if got := z.Hour(at); got != 0 {
		t.Errorf("hour = %d, want 0", got)
	}

	// Summer: UTC+2
	at = time.Date(2026, 7, 1, 16, 0, 0, 0, time.UTC)
	if got := z.Hour(at); got != 18 {
		t.Errorf("summer hour = %d, want 18", got)
	}
}

func TestMidnightUTC(t *testing.T) {
	z := berlin(t)

	tests := []struct {
		date string
		want time.Time
	}{
		{"2026-01-15", time.Date(2026, 1, 14, 23, 0, 0, 0, time.UTC)},
		{"2026-07-01", time.Date(2026, 6, 30, 22, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := z.MidnightUTC(tt.date)
		if err != nil {
			t.Fatalf("midnight %s: %v", tt.date, err)
		}
		if !got.Equal(tt.want) {
			t.Errorf("midnight(%s) = %v, want %v", tt.date, got, tt.want)
		}
	}
}

func TestDayBoundsAcrossDST(t *testing.T) {
	z := berlin(t)

	// Clocks spring forward on 2026-03-29: the local day lasts 23 hours
	start, end, err := z.DayBounds("2026-03-29")
	if err != nil {
		t.Fatalf("day bounds: %v", err)
	}
	if d := end.Sub(start); d != 23*time.Hour {
		t.Errorf("spring day length = %v, want 23h", d)
	}

	// Clocks fall back on 2026-10-25: 25 hours
	start, end, err = z.DayBounds("2026-10-25")
	if err != nil {
		t.Fatalf("day bounds: %v", err)
	}
	if d := end.Sub(start); d != 25*time.Hour {
		t.Errorf("autumn day length = %v, want 25h", d)
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2026-03-01", -7)
	if err != nil {
		t.Fatalf("add days: %v", err)
	}
	if got != "2026-02-22" {
		t.Errorf("add days = %q, want %q", got, "2026-02-22")
	}

	if _, err := AddDays("not-a-date", 1); !errors.Is(err, ErrBadDate) {
		t.Errorf("expected ErrBadDate, got %v", err)
	}
}

func TestKitchen(t *testing.T) {
	z := berlin(t)

	at := time.Date(2026, 1, 15, 13, 30, 0, 0, time.UTC)
	if got := z.Kitchen(at); got != "2:30 PM" {
		t.Errorf("kitchen = %q, want %q", got, "2:30 PM")
	}
}
