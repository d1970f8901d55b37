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

	"github.com/SherClockHolmes/webpush-go"
	"github.com/redis/go-redis/v9"

	"power100-experience-backend/config"
	"power100-experience-backend/internal/agenda"
	"power100-experience-backend/internal/api"
	"power100-experience-backend/internal/concierge"
	"power100-experience-backend/internal/db"
	"power100-experience-backend/internal/notification"
	"power100-experience-backend/internal/refresh"
	"power100-experience-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "tpx-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	var webpushOptions *webpush.Options
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
	} else {
		logger.Println("VAPID keys are not configured; admin push alerts disabled")
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	notifier := refresh.NewRedisNotifier(rdb, cfg.Redis.Channel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := notifier.Ping(ctx); err != nil {
		logger.Fatalf("failed to reach redis at %s: %v", cfg.Redis.Addr, err)
	}

	appStore := store.NewGormStore(gormDB, notifier,
		time.Duration(cfg.Timeline.LookaheadMinutes)*time.Minute)
	logger.Println("data store initialized")

	// Alert worker pool for admin dashboard push notifications
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, webpushOptions)
	pool.Start(ctx)

	// View refresher: consumes change notifications, sweeps on an interval
	refresher := refresh.NewRefresher(rdb, cfg.Redis.Channel, appStore, cfg.Refresher,
		func(eventID int64, reason string) {
			pool.Dispatch(notification.Alert{EventID: eventID, Kind: "refresh_failure", Message: reason})
		})
	go refresher.Run(ctx)

	generator := agenda.NewGenerator(appStore, cfg.Timeline)
	conciergeRouter := concierge.NewRouter(concierge.NewMachine(), appStore)

	handler := api.NewHandler(appStore, generator, conciergeRouter, pool, webpushOptions)
	router := api.NewRouter(handler, &cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
