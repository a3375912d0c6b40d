package push

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
)

// Candidate is one notification intended for one player. It is delivered to
// every subscription the player holds.
type Candidate struct {
	PlayerID    string
	Type        string
	ReferenceID string
	Payload     Payload
}

type dedupKey struct {
	player, typ, ref string
}

func (c Candidate) key() dedupKey {
	return dedupKey{c.PlayerID, c.Type, c.ReferenceID}
}

// sentSet holds the (player, type, reference) keys already logged today.
type sentSet map[dedupKey]struct{}

func newSentSet(entries []model.NotificationLogEntry) sentSet {
	set := make(sentSet, len(entries))
	for _, e := range entries {
		set[dedupKey{e.PlayerID, e.Type, e.ReferenceID}] = struct{}{}
	}
	return set
}

// filter drops candidates already sent today and duplicates within cands,
// keeping the first occurrence.
func (s sentSet) filter(cands []Candidate) []Candidate {
	seen := make(map[dedupKey]struct{}, len(cands))
	var out []Candidate
	for _, c := range cands {
		k := c.key()
		if _, ok := s[k]; ok {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, c)
	}
	return out
}

// buildEventCandidates broadcasts each event to every subscribed player.
func buildEventCandidates(typ string, events []model.CalendarEvent, players []string, zone *localtime.Zone) []Candidate {
	var out []Candidate
	for _, e := range events {
		p := eventPayload(typ, e, zone)
		for _, pid := range players {
			out = append(out, Candidate{PlayerID: pid, Type: typ, ReferenceID: e.ID, Payload: p})
		}
	}
	return out
}

func eventPayload(typ string, e model.CalendarEvent, zone *localtime.Zone) Payload {
	var title string
	switch typ {
	case model.NotifTypeEventTomorrow:
		title = "Tomorrow: " + e.Title
	case model.NotifTypeEventToday:
		title = "Today: " + e.Title
	default:
		title = "Starting soon: " + e.Title
	}

	body := fmt.Sprintf("%s at %s", e.Type.Label(), zone.Kitchen(e.StartTime))
	if e.Location != "" {
		body += ", " + e.Location
	}

	return Payload{
		Title: title,
		Body:  body,
		Tag:   typ + "-" + e.ID,
		Data:  PayloadData{URL: "/calendar?date=" + e.Date},
	}
}

// buildChoreCandidates targets each chore's assignee, skipping assignees
// without a subscription.
func buildChoreCandidates(typ string, chores []model.Chore, subscribed map[string]bool, zone *localtime.Zone) []Candidate {
	var out []Candidate
	for _, c := range chores {
		if !subscribed[c.AssignedTo] {
			continue
		}

		var title, body string
		if typ == model.NotifTypeChoreOverdue {
			title = "Overdue: " + c.Title
			body = fmt.Sprintf("Was due %s at %s", zone.Date(c.Deadline), zone.Kitchen(c.Deadline))
		} else {
			title = "Due today: " + c.Title
			body = "Due at " + zone.Kitchen(c.Deadline)
		}
		if d := strings.TrimSpace(c.Description); d != "" {
			body += ". " + d
		}

		out = append(out, Candidate{
			PlayerID:    c.AssignedTo,
			Type:        typ,
			ReferenceID: c.ID,
			Payload: Payload{
				Title: title,
				Body:  body,
				Tag:   typ + "-" + c.ID,
				Data:  PayloadData{URL: "/chores"},
			},
		})
	}
	return out
}

// buildWellnessCandidates reminds every subscribed player who has not logged today.
func buildWellnessCandidates(players []string, logged map[string]bool) []Candidate {
	var out []Candidate
	for _, pid := range players {
		if logged[pid] {
			continue
		}
		out = append(out, Candidate{
			PlayerID: pid,
			Type:     model.NotifTypeWellnessReminder,
			Payload: Payload{
				Title: "Wellness check-in",
				Body:  "How are you feeling today? Log sleep, energy, mood and soreness.",
				Tag:   model.NotifTypeWellnessReminder,
				Data:  PayloadData{URL: "/wellness"},
			},
		})
	}
	return out
}

func groupByPlayer(subs []model.PushSubscription) (map[string][]model.PushSubscription, []string) {
	byPlayer := make(map[string][]model.PushSubscription)
	for _, sub := range subs {
		byPlayer[sub.PlayerID] = append(byPlayer[sub.PlayerID], sub)
	}
	players := make([]string, 0, len(byPlayer))
	for pid := range byPlayer {
		players = append(players, pid)
	}
	sort.Strings(players)
	return byPlayer, players
}
