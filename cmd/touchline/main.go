package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/touchline/internal/config"
	"github.com/dukerupert/touchline/internal/database"
	"github.com/dukerupert/touchline/internal/localtime"
	"github.com/dukerupert/touchline/internal/logging"
	"github.com/dukerupert/touchline/internal/metrics"
	"github.com/dukerupert/touchline/internal/push"
	"github.com/dukerupert/touchline/internal/server"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "vapid" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("generate keys: %v", err)
		}
		fmt.Printf("TOUCHLINE_VAPID_PUBLIC_KEY=%s\nTOUCHLINE_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	zone, err := localtime.Load(cfg.Timezone)
	if err != nil {
		logger.Error("load timezone", "error", err)
		os.Exit(1)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	m := metrics.NewManager()
	pushSvc := push.NewService(push.Config{
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		Subject:         cfg.VAPIDSubject,
		TTL:             cfg.PushTTL,
	})
	if !pushSvc.Enabled() {
		logger.Warn("VAPID keys not set, push notifications disabled (run `touchline vapid` to generate)")
	}

	srv := server.New(db, cfg, zone, pushSvc, m, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go srv.RateLimiter().RunCleanup(ctx, 5*time.Minute)

	if sched := srv.PushScheduler(); sched != nil && cfg.SchedulerEnabled {
		sched.Start(ctx)
		defer sched.Stop()
		logger.Info("notification scheduler started", "interval", cfg.SchedulerInterval)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("touchline listening", "addr", cfg.Addr, "timezone", cfg.Timezone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
}
