package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/touchline/internal/compliance"
	"github.com/dukerupert/touchline/internal/config"
	"github.com/dukerupert/touchline/internal/handler"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/metrics"
	"github.com/dukerupert/touchline/internal/middleware"
	"github.com/dukerupert/touchline/internal/push"
	"github.com/dukerupert/touchline/internal/store"
	ws "github.com/dukerupert/touchline/internal/websocket"
)

type Server struct {
	cfg           *config.Config
	hub           *ws.Hub
	metrics       *metrics.Manager
	playerH       *handler.PlayerHandler
	eventH        *handler.CalendarEventHandler
	wellnessH     *handler.WellnessHandler
	choreH        *handler.ChoreHandler
	complianceH   *handler.ComplianceHandler
	pushH         *handler.PushHandler
	cronH         *handler.CronHandler
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, zone *localtime.Zone, pushSvc *push.Service, m *metrics.Manager, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger)

	playerStore := store.NewPlayerStore(db)
	eventStore := store.NewEventStore(db)
	wellnessStore := store.NewWellnessStore(db)
	loadStore := store.NewTrainingLoadStore(db)
	choreStore := store.NewChoreStore(db)
	pushStore := store.NewPushStore(db)

	complianceSvc := compliance.NewService(eventStore, wellnessStore, loadStore, playerStore, m)

	// Without VAPID keys nothing can be delivered, so no scheduler is built
	// and the cron endpoint answers 503.
	var pushSched *push.Scheduler
	var runner handler.PassRunner
	if pushSvc.Enabled() {
		pushSched = push.NewScheduler(pushSvc, push.Stores{
			Push:     pushStore,
			Events:   eventStore,
			Chores:   choreStore,
			Wellness: wellnessStore,
		}, zone, push.SchedulerConfig{
			Interval:         cfg.SchedulerInterval,
			Concurrency:      cfg.PushConcurrency,
			RetentionDays:    cfg.LogRetentionDays,
			LogOnlyDelivered: cfg.PushLogOnlyDelivered,
		}, m, logger)
		runner = pushSched
	}

	return &Server{
		cfg:           cfg,
		hub:           hub,
		metrics:       m,
		playerH:       handler.NewPlayerHandler(playerStore, hub, logger.With("component", "player")),
		eventH:        handler.NewCalendarEventHandler(eventStore, playerStore, zone, hub, logger.With("component", "calendar")),
		wellnessH:     handler.NewWellnessHandler(wellnessStore, loadStore, playerStore, zone, hub, logger.With("component", "wellness")),
		choreH:        handler.NewChoreHandler(choreStore, playerStore, zone, hub, logger.With("component", "chore")),
		complianceH:   handler.NewComplianceHandler(complianceSvc, playerStore, zone, logger.With("component", "compliance")),
		pushH:         handler.NewPushHandler(pushStore, playerStore, pushSvc, hub, logger.With("component", "push_handler")),
		cronH:         handler.NewCronHandler(runner, hub, logger.With("component", "cron")),
		rateLimiter:   middleware.NewRateLimiter(),
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the notification scheduler, or nil when push is not
// configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", s.metrics.Handler())

	// The secret check runs before the handler touches any data.
	cron := middleware.RequireSecret(s.cfg.CronSecret)(http.HandlerFunc(s.cronH.Notifications))
	outerMux.Handle("POST /api/cron/notifications", s.rateLimited(cron))

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)
	outerMux.Handle("/", middleware.RequireToken(s.cfg.APIToken)(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"), s.metrics)(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	return middleware.RateLimit(s.rateLimiter, keyFunc, s.cfg.CronRateLimit, time.Minute)(h)
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Players
	mux.HandleFunc("POST /api/players", s.playerH.Create)
	mux.HandleFunc("GET /api/players", s.playerH.List)
	mux.HandleFunc("GET /api/players/{id}", s.playerH.Get)
	mux.HandleFunc("PUT /api/players/{id}", s.playerH.Update)
	mux.HandleFunc("DELETE /api/players/{id}", s.playerH.Delete)

	// Calendar events
	mux.HandleFunc("POST /api/events", s.eventH.Create)
	mux.HandleFunc("GET /api/events", s.eventH.List)
	mux.HandleFunc("GET /api/events/{id}", s.eventH.Get)
	mux.HandleFunc("PUT /api/events/{id}", s.eventH.Update)
	mux.HandleFunc("DELETE /api/events/{id}", s.eventH.Delete)

	// Wellness and training load
	mux.HandleFunc("POST /api/wellness", s.wellnessH.CreateWellness)
	mux.HandleFunc("GET /api/wellness", s.wellnessH.ListWellness)
	mux.HandleFunc("POST /api/training-loads", s.wellnessH.CreateTrainingLoad)
	mux.HandleFunc("GET /api/training-loads", s.wellnessH.ListTrainingLoads)

	// Chores
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("PUT /api/chores/{id}/status", s.choreH.UpdateStatus)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)

	// Compliance
	mux.HandleFunc("GET /api/players/{id}/compliance", s.complianceH.Day)
	mux.HandleFunc("GET /api/players/{id}/compliance/week", s.complianceH.Week)
	mux.HandleFunc("GET /api/compliance", s.complianceH.Team)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("POST /api/push/test", s.pushH.SendTest)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, nil))
}
