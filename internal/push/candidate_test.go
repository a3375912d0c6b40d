package push

import (
	"testing"
	"time"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/model"
)

func berlin(t *testing.T) *localtime.Zone {
	t.Helper()
	z, err := localtime.Load("Europe/Berlin")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return z
}

func TestBuildEventCandidatesBroadcasts(t *testing.T) {
	z := berlin(t)
	e := model.CalendarEvent{
		ID:        "e1",
		Title:     "U19 training",
		Type:      model.EventTeamTraining,
		Date:      "2026-02-05",
		StartTime: time.Date(2026, 2, 5, 13, 30, 0, 0, time.UTC),
		Location:  "Pitch 2",
		Attendees: []string{"p1"},
	}

	got := buildEventCandidates(model.NotifTypeEventToday, []model.CalendarEvent{e}, []string{"p1", "p2"}, z)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	c := got[1]
	if c.PlayerID != "p2" || c.ReferenceID != "e1" || c.Type != model.NotifTypeEventToday {
		t.Errorf("candidate = %+v", c)
	}
	if c.Payload.Title != "Today: U19 training" {
		t.Errorf("title = %q", c.Payload.Title)
	}
	if c.Payload.Body != "Team training at 2:30 PM, Pitch 2" {
		t.Errorf("body = %q", c.Payload.Body)
	}
	if c.Payload.Tag != "event_today-e1" {
		t.Errorf("tag = %q", c.Payload.Tag)
	}
	if c.Payload.Data.URL != "/calendar?date=2026-02-05" {
		t.Errorf("url = %q", c.Payload.Data.URL)
	}
}

func TestBuildChoreCandidates(t *testing.T) {
	z := berlin(t)
	chores := []model.Chore{
		{ID: "c1", Title: "Wash bibs", AssignedTo: "p1", Deadline: time.Date(2026, 2, 4, 17, 0, 0, 0, time.UTC)},
		{ID: "c2", Title: "Pump balls", AssignedTo: "p9", Deadline: time.Date(2026, 2, 4, 17, 0, 0, 0, time.UTC)},
	}

	got := buildChoreCandidates(model.NotifTypeChoreOverdue, chores, map[string]bool{"p1": true}, z)
	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1", len(got))
	}
	if got[0].Payload.Title != "Overdue: Wash bibs" {
		t.Errorf("title = %q", got[0].Payload.Title)
	}
	if got[0].Payload.Body != "Was due 2026-02-04 at 6:00 PM" {
		t.Errorf("body = %q", got[0].Payload.Body)
	}
}

func TestBuildWellnessCandidates(t *testing.T) {
	got := buildWellnessCandidates([]string{"p1", "p2", "p3"}, map[string]bool{"p2": true})
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if c.ReferenceID != "" {
			t.Errorf("reference = %q, want empty", c.ReferenceID)
		}
		if c.PlayerID == "p2" {
			t.Error("player who already logged should not be reminded")
		}
	}
}

func TestSentSetFilter(t *testing.T) {
	set := newSentSet([]model.NotificationLogEntry{
		{PlayerID: "p1", Type: model.NotifTypeEventSoon, ReferenceID: "e1", SentDate: "2026-02-05"},
	})
	cands := []Candidate{
		{PlayerID: "p1", Type: model.NotifTypeEventSoon, ReferenceID: "e1"},
		{PlayerID: "p1", Type: model.NotifTypeEventToday, ReferenceID: "e1"},
		{PlayerID: "p1", Type: model.NotifTypeEventToday, ReferenceID: "e1"},
		{PlayerID: "p2", Type: model.NotifTypeEventSoon, ReferenceID: "e1"},
	}

	got := set.filter(cands)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2", len(got))
	}
	if got[0].Type != model.NotifTypeEventToday || got[1].PlayerID != "p2" {
		t.Errorf("filtered = %+v", got)
	}
}

func TestGroupByPlayer(t *testing.T) {
	byPlayer, players := groupByPlayer([]model.PushSubscription{
		{ID: "a", PlayerID: "p2"},
		{ID: "b", PlayerID: "p1"},
		{ID: "c", PlayerID: "p2"},
	})
	if !equal(players, []string{"p1", "p2"}) {
		t.Errorf("players = %v", players)
	}
	if len(byPlayer["p2"]) != 2 {
		t.Errorf("p2 subscriptions = %d, want 2", len(byPlayer["p2"]))
	}
}
