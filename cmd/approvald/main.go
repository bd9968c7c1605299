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

	"request-approval-backend/config"
	"request-approval-backend/internal/api"
	"request-approval-backend/internal/db"
	"request-approval-backend/internal/maintenance"
	"request-approval-backend/internal/notification"
	"request-approval-backend/internal/push"
	"request-approval-backend/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "approvald ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Auth.AdminPassword == "" {
		logger.Fatalf("admin password must be configured (auth.admin_password or ADMIN_PASSWORD)")
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	// Initialize the FCM gateway
	gateway, err := push.NewFCMGateway(ctx, cfg.Push.CredentialsFile)
	if err != nil {
		logger.Fatalf("failed to initialize push gateway: %v", err)
	}
	logger.Println("push gateway initialized")

	notifier := notification.NewNotifier(appStore, gateway, cfg.Push.Timeout)

	// Broadcasts run on a background pool; request creation never waits.
	dispatcher := notification.NewDispatcher(cfg.WorkerPool.Size, notifier)
	dispatcher.Start(ctx)

	maint := maintenance.NewService(appStore, cfg.Backup.Dir)

	// Initialize router
	router := api.NewRouter(cfg, appStore, notifier, dispatcher, maint)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
