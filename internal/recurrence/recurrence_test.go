package recurrence

import (
	"errors"
	"testing"
	"time"
)

func TestParseFreqOnly(t *testing.T) {
	tests := []struct {
		input string
		freq  Freq
	}{
		{"FREQ=DAILY", Daily},
		{"FREQ=WEEKLY", Weekly},
		{"FREQ=MONTHLY", Monthly},
		{"RRULE:FREQ=weekly", Weekly},
	}
	for _, tt := range tests {
		r, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("parse %q: %v", tt.input, err)
		}
		if r.Freq != tt.freq {
			t.Errorf("parse %q: freq = %v, want %v", tt.input, r.Freq, tt.freq)
		}
		if r.Interval != 1 {
			t.Errorf("parse %q: interval = %d, want 1", tt.input, r.Interval)
		}
	}
}

func TestParseFull(t *testing.T) {
	r, err := Parse("FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,TH;UNTIL=20260430T000000Z;COUNT=10")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if r.Interval != 2 {
		t.Errorf("interval = %d, want 2", r.Interval)
	}
	if len(r.ByDay) != 2 || r.ByDay[0] != time.Monday || r.ByDay[1] != time.Thursday {
		t.Errorf("byday = %v, want [Monday Thursday]", r.ByDay)
	}
	if r.Until != "2026-04-30" {
		t.Errorf("until = %q, want %q", r.Until, "2026-04-30")
	}
	if r.Count != 10 {
		t.Errorf("count = %d, want 10", r.Count)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(""); !errors.Is(err, ErrEmptyRule) {
		t.Errorf("empty: err = %v, want ErrEmptyRule", err)
	}
	if _, err := Parse("INTERVAL=2"); !errors.Is(err, ErrMissingFreq) {
		t.Errorf("no freq: err = %v, want ErrMissingFreq", err)
	}

	bad := []string{
		"FREQ=HOURLY",
		"FREQ=DAILY;INTERVAL=0",
		"FREQ=WEEKLY;BYDAY=XX",
		"FREQ=DAILY;BYDAY=MO",
		"FREQ=DAILY;UNTIL=tomorrow",
		"FREQ=DAILY;WKST=MO",
		"FREQ",
	}
	for _, input := range bad {
		if _, err := Parse(input); err == nil {
			t.Errorf("parse %q: expected error", input)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	input := "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE;UNTIL=20260601"
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := r.String(); got != input {
		t.Errorf("string = %q, want %q", got, input)
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"FREQ=DAILY", "Daily"},
		{"FREQ=DAILY;INTERVAL=3", "Every 3 days"},
		{"FREQ=WEEKLY;BYDAY=TU,TH", "Weekly on Tue, Thu"},
		{"FREQ=WEEKLY;INTERVAL=2", "Every 2 weeks"},
		{"FREQ=MONTHLY", "Monthly"},
	}
	for _, tt := range tests {
		r, _ := Parse(tt.rule)
		if got := r.Describe(); got != tt.want {
			t.Errorf("describe %q = %q, want %q", tt.rule, got, tt.want)
		}
	}
}

func dates(ts []time.Time) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Format("2006-01-02")
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExpandDaily(t *testing.T) {
	first := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=DAILY;INTERVAL=2")

	got := dates(Expand(r, first, "2026-03-09"))
	want := []string{"2026-03-02", "2026-03-04", "2026-03-06", "2026-03-08"}
	if !equal(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestExpandWeeklyByDay(t *testing.T) {
	// Wednesday
	first := time.Date(2026, 3, 4, 17, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=WEEKLY;BYDAY=MO,WE,FR")

	got := dates(Expand(r, first, "2026-03-13"))
	want := []string{"2026-03-04", "2026-03-06", "2026-03-09", "2026-03-11", "2026-03-13"}
	if !equal(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestExpandFortnightly(t *testing.T) {
	first := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=WEEKLY;INTERVAL=2")

	got := dates(Expand(r, first, "2026-04-01"))
	want := []string{"2026-03-03", "2026-03-17", "2026-03-31"}
	if !equal(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestExpandMonthlySkipsShortMonths(t *testing.T) {
	first := time.Date(2026, 1, 31, 10, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=MONTHLY")

	got := dates(Expand(r, first, "2026-06-30"))
	want := []string{"2026-01-31", "2026-03-31", "2026-05-31"}
	if !equal(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestExpandCountAndUntil(t *testing.T) {
	first := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)

	r, _ := Parse("FREQ=DAILY;COUNT=3")
	if got := Expand(r, first, "2026-12-31"); len(got) != 3 {
		t.Errorf("count: len = %d, want 3", len(got))
	}

	r, _ = Parse("FREQ=DAILY;UNTIL=20260304")
	if got := dates(Expand(r, first, "2026-12-31")); !equal(got, []string{"2026-03-02", "2026-03-03", "2026-03-04"}) {
		t.Errorf("until: dates = %v", got)
	}
}

func TestExpandWithoutEndReturnsFirst(t *testing.T) {
	first := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=DAILY")

	got := Expand(r, first, "")
	if len(got) != 1 || !got[0].Equal(first) {
		t.Errorf("got %v, want only the first occurrence", got)
	}
}

func TestExpandCountWithoutEnd(t *testing.T) {
	first := time.Date(2026, 3, 2, 17, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=WEEKLY;COUNT=3")

	want := []string{"2026-03-02", "2026-03-09", "2026-03-16"}
	if got := dates(Expand(r, first, "")); !equal(got, want) {
		t.Errorf("dates = %v, want %v", got, want)
	}
}

func TestExpandCap(t *testing.T) {
	first := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	r, _ := Parse("FREQ=DAILY")

	if got := Expand(r, first, "2030-01-01"); len(got) != MaxInstances {
		t.Errorf("len = %d, want %d", len(got), MaxInstances)
	}
}

func TestExpandKeepsWallClockAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	first := time.Date(2026, 3, 27, 18, 0, 0, 0, loc)
	r, _ := Parse("FREQ=DAILY")

	for _, occ := range Expand(r, first, "2026-03-31") {
		if occ.Hour() != 18 {
			t.Errorf("%s: hour = %d, want 18", occ.Format(time.RFC3339), occ.Hour())
		}
	}
}
