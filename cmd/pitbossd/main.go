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

	"pitboss-backend/config"
	"pitboss-backend/internal/api"
	"pitboss-backend/internal/db"
	"pitboss-backend/internal/notification"
	"pitboss-backend/internal/rotation"
	"pitboss-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "pitboss-backend ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Push.PublicKey == "" || cfg.Push.PrivateKey == "" {
		logger.Fatalf("VAPID keys must be configured. Please generate them and add them to your config file.")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	manager := rotation.NewManager(appStore)
	scorer := rotation.NewScorer(appStore)
	sweeper := rotation.NewSweeper(appStore, scorer, manager, cfg.Rotation.AllowReuse)

	rotMonitor := rotation.NewRotationMonitor(appStore, manager,
		cfg.Rotation.Limit, cfg.Rotation.Warning, cfg.Rotation.Countdown, cfg.Rotation.BreakMinutes)
	breakMonitor := rotation.NewBreakMonitor(appStore, manager)

	alertPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	alertPool.Start(ctx)
	rotMonitor.SetNotifier(alertPool.Dispatch)

	go sweeper.RunSweep(ctx, cfg.Rotation.SweepInterval)
	go rotMonitor.Run(ctx, cfg.Rotation.PollInterval)
	go breakMonitor.Run(ctx, cfg.Rotation.PollInterval)

	handler := api.NewHandler(appStore, manager, scorer, sweeper, rotMonitor, &webpushOptions)
	router := api.NewRouter(handler)
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
