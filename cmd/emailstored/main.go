package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/weedbox/emailstore"
	"github.com/weedbox/emailstore/internal/config"
	"github.com/weedbox/emailstore/internal/di"
	"go.uber.org/zap"
)

func main() {
	// Optional .env file feeding the EMAILSTORE_ environment variables
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Printf("Failed to load .env file: %v\n", err)
		os.Exit(1)
	}

	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	spamCfg config.SpamConfig,
	repo emailstore.EmailRepository,
	classifier *emailstore.SpamClassifier,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := classifier.ScheduleClassification(ctx, spamCfg.ClassifyInterval); err != nil {
		return err
	}
	logger.Info("Spam classification scheduled",
		zap.Duration("interval", spamCfg.ClassifyInterval),
		zap.Int("filter_addresses", classifier.Filters().Len()))

	<-ctx.Done()
	logger.Info("Shutting down...")

	classifier.StopSchedule()

	// Close any resources that need closing
	if closer, ok := repo.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close email repository", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
