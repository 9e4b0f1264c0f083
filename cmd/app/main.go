package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Khodkerutuja/WaitlistWizard/internal/config"
	"github.com/Khodkerutuja/WaitlistWizard/internal/db"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/notify"
	"github.com/Khodkerutuja/WaitlistWizard/internal/server"
)

func main() {
	logger.Init()
	logger.Info("Starting WaitlistWizard application")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	notifications := notify.New(cfg.RedisAddr)
	defer notifications.Close()
	logger.Info("Notification service initialized")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go notifications.Start(ctx)

	srv := server.New(database, cfg, notifications)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
