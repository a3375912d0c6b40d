package recurrence

import "time"

// MaxInstances caps how many copies a single recurring event may produce.
const MaxInstances = 366

// Expand lists occurrence start times of a recurring event, beginning with
// first itself. Occurrences keep first's wall-clock time in first's location
// and run through endDate (local YYYY-MM-DD, inclusive), the rule's UNTIL, or
// its COUNT, whichever comes first. With none of those only first is returned.
func Expand(rule Rule, first time.Time, endDate string) []time.Time {
	last := endDate
	if rule.Until != "" && (last == "" || rule.Until < last) {
		last = rule.Until
	}
	if last == "" && rule.Count == 0 {
		return []time.Time{first}
	}

	limit := MaxInstances
	if rule.Count > 0 && rule.Count < limit {
		limit = rule.Count
	}
	interval := max(rule.Interval, 1)

	past := func(t time.Time) bool {
		return last != "" && t.Format("2006-01-02") > last
	}
	var out []time.Time
	emit := func(t time.Time) bool {
		if past(t) || len(out) >= limit {
			return false
		}
		out = append(out, t)
		return true
	}

	switch rule.Freq {
	case Daily:
		for i := 0; emit(first.AddDate(0, 0, i*interval)); i++ {
		}

	case Weekly:
		days := rule.ByDay
		if len(days) == 0 {
			days = []time.Weekday{first.Weekday()}
		}
		monday := first.AddDate(0, 0, -mondayOffset(first.Weekday()))
		for week := 0; ; week += interval {
			weekStart := monday.AddDate(0, 0, week*7)
			if past(weekStart) || len(out) >= limit {
				break
			}
			for offset := 0; offset < 7; offset++ {
				day := weekStart.AddDate(0, 0, offset)
				if day.Before(first) || !containsDay(days, day.Weekday()) {
					continue
				}
				if !emit(day) {
					break
				}
			}
		}

	case Monthly:
		y, m, d := first.Date()
		for i := 0; ; i += interval {
			// Months without this day (e.g. the 31st) are skipped.
			next := time.Date(y, m+time.Month(i), d, first.Hour(), first.Minute(), first.Second(), 0, first.Location())
			if next.Day() != d {
				if past(next) {
					break
				}
				continue
			}
			if !emit(next) {
				break
			}
		}
	}

	return out
}

func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func containsDay(days []time.Weekday, wd time.Weekday) bool {
	for _, d := range days {
		if d == wd {
			return true
		}
	}
	return false
}
