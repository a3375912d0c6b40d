package compliance

import (
	"context"
	"fmt"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/metrics"
	"github.com/dukerupert/touchline/internal/model"
)

type EventReader interface {
	ListByDate(ctx context.Context, date string) ([]model.CalendarEvent, error)
}

type WellnessReader interface {
	ListByPlayerDate(ctx context.Context, playerID, date string) ([]model.WellnessLog, error)
	ListByDate(ctx context.Context, date string) ([]model.WellnessLog, error)
}

type TrainingLoadReader interface {
	ListByPlayerDate(ctx context.Context, playerID, date string) ([]model.TrainingLoad, error)
	ListByDate(ctx context.Context, date string) ([]model.TrainingLoad, error)
}

type PlayerReader interface {
	ListActive(ctx context.Context) ([]model.Player, error)
}

// DayResult is a Result for a specific date.
type DayResult struct {
	Date string `json:"date"`
	Result
}

// PlayerResult is a Result for a specific player.
type PlayerResult struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Result
}

// Service loads a player's records for a day and scores them.
type Service struct {
	events  EventReader
	logs    WellnessReader
	loads   TrainingLoadReader
	players PlayerReader
	metrics *metrics.Manager
}

func NewService(events EventReader, logs WellnessReader, loads TrainingLoadReader, players PlayerReader, m *metrics.Manager) *Service {
	return &Service{events: events, logs: logs, loads: loads, players: players, metrics: m}
}

// Day scores one player on one local date.
func (s *Service) Day(ctx context.Context, playerID, date string) (Result, error) {
	if !localtime.ValidDate(date) {
		return Result{}, fmt.Errorf("%w: %q", localtime.ErrBadDate, date)
	}

	events, err := s.events.ListByDate(ctx, date)
	if err != nil {
		return Result{}, fmt.Errorf("list events: %w", err)
	}
	logs, err := s.logs.ListByPlayerDate(ctx, playerID, date)
	if err != nil {
		return Result{}, fmt.Errorf("list wellness logs: %w", err)
	}
	loads, err := s.loads.ListByPlayerDate(ctx, playerID, date)
	if err != nil {
		return Result{}, fmt.Errorf("list training loads: %w", err)
	}

	r := Calculate(ForPlayer(events, playerID), logs, loads)
	s.metrics.ObserveCompliance(string(r.Light))
	return r, nil
}

// Week scores the seven days ending on endDate, oldest first.
func (s *Service) Week(ctx context.Context, playerID, endDate string) ([]DayResult, error) {
	start, err := localtime.AddDays(endDate, -6)
	if err != nil {
		return nil, err
	}

	days := make([]DayResult, 0, 7)
	for i := 0; i < 7; i++ {
		date, _ := localtime.AddDays(start, i)
		r, err := s.Day(ctx, playerID, date)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", date, err)
		}
		days = append(days, DayResult{Date: date, Result: r})
	}
	return days, nil
}

// Team scores every active player on one date.
func (s *Service) Team(ctx context.Context, date string) ([]PlayerResult, error) {
	if !localtime.ValidDate(date) {
		return nil, fmt.Errorf("%w: %q", localtime.ErrBadDate, date)
	}

	players, err := s.players.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	events, err := s.events.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	logs, err := s.logs.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list wellness logs: %w", err)
	}
	loads, err := s.loads.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list training loads: %w", err)
	}

	logsByPlayer := make(map[string][]model.WellnessLog)
	for _, l := range logs {
		logsByPlayer[l.PlayerID] = append(logsByPlayer[l.PlayerID], l)
	}
	loadsByPlayer := make(map[string][]model.TrainingLoad)
	for _, l := range loads {
		loadsByPlayer[l.PlayerID] = append(loadsByPlayer[l.PlayerID], l)
	}

	results := make([]PlayerResult, 0, len(players))
	for _, p := range players {
		r := Calculate(ForPlayer(events, p.ID), logsByPlayer[p.ID], loadsByPlayer[p.ID])
		s.metrics.ObserveCompliance(string(r.Light))
		results = append(results, PlayerResult{PlayerID: p.ID, PlayerName: p.Name, Result: r})
	}
	return results, nil
}
