// Package compliance scores a player's day: did they log wellness, log every
// scheduled training session, and complete mobility work.
package compliance

import "github.com/dukerupert/touchline/internal/model"

type Light string

const (
	LightGreen  Light = "green"
	LightYellow Light = "yellow"
	LightRed    Light = "red"
	LightGray   Light = "gray"
)

type Result struct {
	Light                Light `json:"light"`
	WellnessCompleted    bool  `json:"wellness_completed"`
	ActivityLogsCount    int   `json:"activity_logs_count"`
	ActivityLogsRequired int   `json:"activity_logs_required"`
	MobilityCompleted    bool  `json:"mobility_completed"`
	MobilityRequired     bool  `json:"mobility_required"`
	Points               int   `json:"points"`
}

// requiresActivityLog holds the event types a player must log a session for.
var requiresActivityLog = map[model.EventType]bool{
	model.EventTeamTraining:       true,
	model.EventIndividualTraining: true,
	model.EventGym:                true,
	model.EventMatch:              true,
	model.EventTournament:         true,
	model.EventTraining:           true,
}

// RequiresActivityLog reports whether events of type t create a logging requirement.
func RequiresActivityLog(t model.EventType) bool {
	return requiresActivityLog[t]
}

// Calculate scores one player's calendar day. The caller filters all three
// inputs to that player and date.
func Calculate(events []model.CalendarEvent, wellness []model.WellnessLog, loads []model.TrainingLoad) Result {
	var r Result

	for _, e := range events {
		if requiresActivityLog[e.Type] {
			r.ActivityLogsRequired++
		}
	}
	r.MobilityRequired = r.ActivityLogsRequired > 0
	r.WellnessCompleted = len(wellness) > 0
	r.ActivityLogsCount = len(loads)
	for _, l := range loads {
		if l.MobilityCompleted {
			r.MobilityCompleted = true
			break
		}
	}

	// Logged sessions earn points uncapped; only the light caps them.
	r.Points = boolInt(r.WellnessCompleted) + r.ActivityLogsCount + boolInt(r.MobilityCompleted)
	r.Light = light(r)
	return r
}

func light(r Result) Light {
	if r.ActivityLogsRequired == 0 {
		return LightGray
	}

	done := min(r.ActivityLogsCount, r.ActivityLogsRequired) + boolInt(r.MobilityCompleted)
	needed := r.ActivityLogsRequired + boolInt(r.MobilityRequired)

	switch {
	case done >= needed:
		return LightGreen
	case done == 0:
		return LightRed
	default:
		return LightYellow
	}
}

// ForPlayer returns the events that apply to playerID.
func ForPlayer(events []model.CalendarEvent, playerID string) []model.CalendarEvent {
	var out []model.CalendarEvent
	for _, e := range events {
		if e.AppliesTo(playerID) {
			out = append(out, e)
		}
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
