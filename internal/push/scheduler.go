package push

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/metrics"
	"github.com/dukerupert/touchline/internal/model"
)

const (
	soonFrom = 45 * time.Minute
	soonTo   = 75 * time.Minute

	// writeTimeout bounds the log, expiry and cleanup writes that run after
	// delivery, detached from the caller's context.
	writeTimeout = 30 * time.Second
)

// SubscriptionStore holds push subscriptions and the daily notification log.
type SubscriptionStore interface {
	ListAll(ctx context.Context) ([]model.PushSubscription, error)
	DeleteSubscriptions(ctx context.Context, ids []string) (int, error)
	ListSentOn(ctx context.Context, date string) ([]model.NotificationLogEntry, error)
	RecordSent(ctx context.Context, entries []model.NotificationLogEntry) error
	CleanupBefore(ctx context.Context, date string) (int, error)
}

type EventSource interface {
	ListStartingBetween(ctx context.Context, from, until time.Time) ([]model.CalendarEvent, error)
}

type ChoreSource interface {
	ListPendingDueBefore(ctx context.Context, t time.Time) ([]model.Chore, error)
	ListPendingDueBetween(ctx context.Context, from, until time.Time) ([]model.Chore, error)
}

type WellnessSource interface {
	PlayersWithLog(ctx context.Context, date string, playerIDs []string) (map[string]bool, error)
}

// Stores groups the data sources a pass reads and writes.
type Stores struct {
	Push     SubscriptionStore
	Events   EventSource
	Chores   ChoreSource
	Wellness WellnessSource
}

type SchedulerConfig struct {
	Interval    time.Duration
	Concurrency int
	// RetentionDays is how many days of notification log are kept.
	RetentionDays int
	// LogOnlyDelivered leaves candidates unlogged when every attempt failed
	// transiently, so a later pass retries them.
	LogOnlyDelivered bool
}

// Summary reports the totals of one notification pass.
type Summary struct {
	Sent          int `json:"sent"`
	Expired       int `json:"expired"`
	Notifications int `json:"notifications"`
	Hour          int `json:"hour"`
}

// Scheduler builds reminder candidates from calendar, chore and wellness
// data and delivers them to every subscription of the target player.
type Scheduler struct {
	mu      sync.RWMutex
	sender  Sender
	stores  Stores
	zone    *localtime.Zone
	cfg     SchedulerConfig
	metrics *metrics.Manager
	logger  *slog.Logger
	now     func() time.Time
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewScheduler(sender Sender, stores Stores, zone *localtime.Zone, cfg SchedulerConfig, m *metrics.Manager, logger *slog.Logger) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = 7
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sender:  sender,
		stores:  stores,
		zone:    zone,
		cfg:     cfg,
		metrics: m,
		logger:  logger.With("component", "push_scheduler"),
		now:     time.Now,
	}
}

// Start runs a pass every interval until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sum := s.RunPass(ctx)
				s.logger.Info("notification pass finished",
					"sent", sum.Sent, "expired", sum.Expired,
					"notifications", sum.Notifications, "hour", sum.Hour)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunPass performs one notification pass. It never fails; problems are
// logged and the affected rule or attempt is skipped.
func (s *Scheduler) RunPass(ctx context.Context) Summary {
	started := time.Now()
	now := s.now()
	today := s.zone.Date(now)
	sum := Summary{Hour: s.zone.Hour(now)}

	var candidates, suppressed int
	defer func() {
		s.metrics.ObservePass(metrics.PassStats{
			Candidates: candidates,
			Suppressed: suppressed,
			Expired:    sum.Expired,
			LocalHour:  sum.Hour,
			Duration:   time.Since(started),
			Finished:   time.Now(),
		})
	}()

	subs, err := s.stores.Push.ListAll(ctx)
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return sum
	}
	if len(subs) == 0 {
		return sum
	}
	byPlayer, players := groupByPlayer(subs)

	logged, err := s.stores.Push.ListSentOn(ctx, today)
	if err != nil {
		s.logger.Error("load notification log", "date", today, "error", err)
		return sum
	}
	sent := newSentSet(logged)

	all := s.collect(ctx, now, today, sum.Hour, players)
	fresh := sent.filter(all)
	candidates = len(all)
	suppressed = len(all) - len(fresh)
	sum.Notifications = len(fresh)

	outcomes := s.deliver(ctx, fresh, byPlayer)

	// Deliveries already happened; the log must be written even if the
	// caller has gone away, or the next pass sends them again.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	var entries []model.NotificationLogEntry
	gone := make(map[string]struct{})
	for i, c := range fresh {
		anyOK := len(outcomes[i]) == 0
		for _, o := range outcomes[i] {
			switch o.result.Kind {
			case Delivered:
				sum.Sent++
				anyOK = true
			case EndpointGone:
				gone[o.subID] = struct{}{}
				anyOK = true
			}
		}
		if s.cfg.LogOnlyDelivered && !anyOK {
			continue
		}
		entries = append(entries, model.NotificationLogEntry{
			PlayerID:    c.PlayerID,
			Type:        c.Type,
			ReferenceID: c.ReferenceID,
			SentDate:    today,
		})
	}

	if err := s.stores.Push.RecordSent(wctx, entries); err != nil {
		s.metrics.ObserveLogWriteFailure()
		s.logger.Warn("record notification log", "entries", len(entries), "error", err)
	}

	sum.Expired = len(gone)
	if len(gone) > 0 {
		ids := make([]string, 0, len(gone))
		for id := range gone {
			ids = append(ids, id)
		}
		if _, err := s.stores.Push.DeleteSubscriptions(wctx, ids); err != nil {
			s.logger.Error("delete expired subscriptions", "count", len(ids), "error", err)
		}
	}

	s.cleanup(wctx, today)
	return sum
}

func (s *Scheduler) collect(ctx context.Context, now time.Time, today string, hour int, players []string) []Candidate {
	var out []Candidate

	todayStart, tomorrowStart, err := s.zone.DayBounds(today)
	if err != nil {
		s.logger.Error("compute day bounds", "date", today, "error", err)
		return nil
	}
	tomorrow, err := localtime.AddDays(today, 1)
	if err != nil {
		s.logger.Error("compute day bounds", "date", today, "error", err)
		return nil
	}

	if hour >= 18 && hour < 21 {
		from, until, err := s.zone.DayBounds(tomorrow)
		if err == nil {
			var events []model.CalendarEvent
			events, err = s.stores.Events.ListStartingBetween(ctx, from, until)
			out = append(out, buildEventCandidates(model.NotifTypeEventTomorrow, events, players, s.zone)...)
		}
		s.ruleFailed(model.NotifTypeEventTomorrow, err)
	}

	if hour >= 7 && hour < 9 {
		events, err := s.stores.Events.ListStartingBetween(ctx, todayStart, tomorrowStart)
		out = append(out, buildEventCandidates(model.NotifTypeEventToday, events, players, s.zone)...)
		s.ruleFailed(model.NotifTypeEventToday, err)
	}

	from, to := now.Add(soonFrom), now.Add(soonTo)
	events, err := s.stores.Events.ListStartingBetween(ctx, from, to.Add(time.Second))
	var soon []model.CalendarEvent
	for _, e := range events {
		if !e.StartTime.Before(from) && !e.StartTime.After(to) {
			soon = append(soon, e)
		}
	}
	out = append(out, buildEventCandidates(model.NotifTypeEventSoon, soon, players, s.zone)...)
	s.ruleFailed(model.NotifTypeEventSoon, err)

	if hour >= 8 && hour < 10 {
		subscribed := make(map[string]bool, len(players))
		for _, pid := range players {
			subscribed[pid] = true
		}

		overdue, err := s.stores.Chores.ListPendingDueBefore(ctx, todayStart)
		out = append(out, buildChoreCandidates(model.NotifTypeChoreOverdue, overdue, subscribed, s.zone)...)
		s.ruleFailed(model.NotifTypeChoreOverdue, err)

		due, err := s.stores.Chores.ListPendingDueBetween(ctx, todayStart, tomorrowStart)
		out = append(out, buildChoreCandidates(model.NotifTypeChoreDue, due, subscribed, s.zone)...)
		s.ruleFailed(model.NotifTypeChoreDue, err)
	}

	if (hour >= 8 && hour < 10) || (hour >= 18 && hour < 20) {
		logged, err := s.stores.Wellness.PlayersWithLog(ctx, today, players)
		if err == nil {
			out = append(out, buildWellnessCandidates(players, logged)...)
		}
		s.ruleFailed(model.NotifTypeWellnessReminder, err)
	}

	return out
}

func (s *Scheduler) ruleFailed(rule string, err error) {
	if err == nil {
		return
	}
	s.metrics.ObserveRuleFailure(rule)
	s.logger.Warn("notification rule skipped", "rule", rule, "error", err)
}

type attemptResult struct {
	subID  string
	result Outcome
}

// deliver sends every candidate to each of its player's subscriptions
// concurrently and returns the outcomes indexed like cands.
func (s *Scheduler) deliver(ctx context.Context, cands []Candidate, byPlayer map[string][]model.PushSubscription) [][]attemptResult {
	results := make([][]attemptResult, len(cands))
	var g errgroup.Group
	g.SetLimit(s.cfg.Concurrency)

	for i, c := range cands {
		subs := byPlayer[c.PlayerID]
		results[i] = make([]attemptResult, len(subs))
		for j, sub := range subs {
			g.Go(func() error {
				o := s.sender.Deliver(ctx, sub, c.Payload)
				results[i][j] = attemptResult{subID: sub.ID, result: o}
				return nil
			})
		}
	}
	g.Wait()

	for i, c := range cands {
		for _, r := range results[i] {
			s.metrics.ObserveDelivery(r.result.Kind.String())
			switch r.result.Kind {
			case EndpointGone:
				s.logger.Info("push subscription gone", "subscription_id", r.subID, "player_id", c.PlayerID)
			case TransientFailure:
				s.logger.Warn("push delivery failed",
					"subscription_id", r.subID, "player_id", c.PlayerID,
					"type", c.Type, "error", r.result.Err)
			}
		}
	}
	return results
}

func (s *Scheduler) cleanup(ctx context.Context, today string) {
	cutoff, err := localtime.AddDays(today, -s.cfg.RetentionDays)
	if err != nil {
		s.logger.Error("compute log cutoff", "error", err)
		return
	}
	n, err := s.stores.Push.CleanupBefore(ctx, cutoff)
	if err != nil {
		s.logger.Warn("cleanup notification log", "before", cutoff, "error", err)
		return
	}
	if n > 0 {
		s.logger.Debug("cleaned notification log", "before", cutoff, "deleted", n)
	}
}
