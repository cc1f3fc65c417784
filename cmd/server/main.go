package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/health-risk-server/internal/api"
	"github.com/health-risk-server/internal/config"
	"github.com/health-risk-server/internal/domain"
	"github.com/health-risk-server/internal/history"
	"github.com/health-risk-server/internal/scoring"
	"github.com/health-risk-server/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "health-risk-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configManager, err := config.NewManager()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := configManager.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)

	thresholds, err := config.LoadThresholds(cfg.Thresholds.Path)
	if err != nil {
		return fmt.Errorf("failed to load thresholds: %w", err)
	}

	scorer, err := scoring.NewCompositeScorer(thresholds)
	if err != nil {
		return fmt.Errorf("failed to build scorer: %w", err)
	}

	store, err := newStore(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to open assessment store: %w", err)
	}
	defer store.Close()

	assessor, err := service.NewAssessmentService(logger, scorer, store, cfg.Cache)
	if err != nil {
		return fmt.Errorf("failed to build assessment service: %w", err)
	}

	server := api.NewServer(cfg, logger, assessor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host":   cfg.Server.Host,
		"port":   cfg.Server.Port,
		"driver": cfg.Database.Driver,
	}).Info("Starting health risk server")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

func newStore(cfg *domain.DatabaseConfig) (history.Store, error) {
	switch cfg.Driver {
	case "postgres":
		return history.NewPostgresStoreFromURL(cfg.URL, cfg)
	default:
		return history.NewSQLiteStore(cfg.Path)
	}
}
