package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/factory"
	"github.com/Eklavya-kapoor/armor-api/internal/logging"
	"github.com/Eklavya-kapoor/armor-api/internal/ports"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
	"github.com/Eklavya-kapoor/armor-api/internal/trust"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewHostFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *textutil.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register classifier chain
	if err := container.Provide(func(f *factory.ClassifierFactory) (core.TextClassifier, error) {
		return f.CreateClassifier()
	}); err != nil {
		return nil, err
	}

	// Register assessment store
	if err := container.Provide(func(f *factory.StoreFactory) (core.AssessmentStore, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) (time.Duration, error) {
		return f.GetStoreTTL()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.StoreFactory) bool {
		return f.IsStoreEnabled()
	}); err != nil {
		return nil, err
	}

	// Register feature extractor and risk scorer
	if err := container.Provide(core.NewFeatureExtractor); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) *core.RiskScorer {
		scoring := cfg.GetScoring()
		return core.NewRiskScorer(scoring.Weights, scoring.MediumThreshold, scoring.HighThreshold)
	}); err != nil {
		return nil, err
	}

	// Register trusted-domain checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *trust.Checker {
		return trust.NewChecker(cfg.GetScoring().TrustedDomains, logger)
	}); err != nil {
		return nil, err
	}

	// Register max text length
	if err := container.Provide(func(cfg *config.Config) int {
		return cfg.GetClassifier().MaxTextLength
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(core.NewScanService); err != nil {
		return nil, err
	}

	// Register hosts
	if err := container.Provide(func(f *factory.HostFactory) ([]ports.Host, error) {
		return f.CreateHosts()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
