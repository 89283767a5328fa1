package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/di"
	"github.com/Eklavya-kapoor/armor-api/internal/ports"
)

func main() {
	// Load .env if present; API keys for classifier providers usually
	// arrive this way in development.
	_ = godotenv.Load()

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
	hosts []ports.Host,
	classifier core.TextClassifier,
	assessmentStore core.AssessmentStore,
) error {
	defer logger.Sync()

	// Start the hosts
	for _, host := range hosts {
		if err := host.Start(); err != nil {
			logger.Fatal("Failed to start host", zap.Error(err))
			return err
		}
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	for _, host := range hosts {
		if err := host.Stop(); err != nil {
			logger.Error("Failed to stop host", zap.Error(err))
		}
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	// Stop the store if needed
	if stopper, ok := assessmentStore.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
