package model

import (
	"slices"
	"time"
)

type EventType string

const (
	EventTeamTraining       EventType = "team_training"
	EventIndividualTraining EventType = "individual_training"
	EventGym                EventType = "gym"
	EventMatch              EventType = "match"
	EventTournament         EventType = "tournament"
	EventTraining           EventType = "training"
	EventSchool             EventType = "school"
	EventMeeting            EventType = "meeting"
	EventLogistics          EventType = "logistics"
	EventTravel             EventType = "travel"
	EventRecovery           EventType = "recovery"
	EventMedical            EventType = "medical"
	EventMedia              EventType = "media"
	EventOther              EventType = "other"
)

// EventTypes lists every known event type in display order.
var EventTypes = []EventType{
	EventTeamTraining, EventIndividualTraining, EventGym, EventMatch,
	EventTournament, EventTraining, EventSchool, EventMeeting, EventLogistics,
	EventTravel, EventRecovery, EventMedical, EventMedia, EventOther,
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	return slices.Contains(EventTypes, t)
}

// Label returns a human-readable name, e.g. "Team training".
func (t EventType) Label() string {
	switch t {
	case EventTeamTraining:
		return "Team training"
	case EventIndividualTraining:
		return "Individual training"
	case EventGym:
		return "Gym"
	case EventMatch:
		return "Match"
	case EventTournament:
		return "Tournament"
	case EventTraining:
		return "Training"
	case EventSchool:
		return "School"
	case EventMeeting:
		return "Meeting"
	case EventLogistics:
		return "Logistics"
	case EventTravel:
		return "Travel"
	case EventRecovery:
		return "Recovery"
	case EventMedical:
		return "Medical"
	case EventMedia:
		return "Media"
	}
	return "Event"
}

type CalendarEvent struct {
	ID                string    `json:"id"`
	Title             string    `json:"title"`
	Type              EventType `json:"type"`
	Date              string    `json:"date"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	Location          string    `json:"location"`
	Attendees         []string  `json:"attendees"`
	RecurrenceRule    string    `json:"recurrence_rule,omitempty"`
	RecurrenceEndDate string    `json:"recurrence_end_date,omitempty"`
	ParentEventID     *string   `json:"parent_event_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// AppliesTo reports whether the event concerns the given player. An event
// without attendees applies to every player.
func (e CalendarEvent) AppliesTo(playerID string) bool {
	return len(e.Attendees) == 0 || slices.Contains(e.Attendees, playerID)
}
