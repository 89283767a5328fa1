package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/adapters/bedrock"
	"github.com/Eklavya-kapoor/armor-api/internal/adapters/gemini"
	"github.com/Eklavya-kapoor/armor-api/internal/adapters/openai"
	"github.com/Eklavya-kapoor/armor-api/internal/adapters/stub"
	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// ClassifierFactory creates the classifier chain
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *textutil.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *textutil.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier builds the fallback chain: primary provider, then the
// configured fallback provider, terminated by the rule-based stub. When a
// provider cannot be constructed at startup the chain simply starts
// further down; the stub guarantees the chain is never empty.
func (f *ClassifierFactory) CreateClassifier() (core.TextClassifier, error) {
	classifierCfg := f.cfg.GetClassifier()

	chain := make([]core.TextClassifier, 0, 3)

	if primary, err := f.createProvider(classifierCfg.Provider); err != nil {
		f.logger.Warn("Primary classifier unavailable, starting degraded",
			zap.String("provider", classifierCfg.Provider),
			zap.Error(err))
	} else {
		chain = append(chain, primary)
	}

	if classifierCfg.FallbackProvider != "" && classifierCfg.FallbackProvider != classifierCfg.Provider {
		if fallback, err := f.createProvider(classifierCfg.FallbackProvider); err != nil {
			f.logger.Warn("Fallback classifier unavailable",
				zap.String("provider", classifierCfg.FallbackProvider),
				zap.Error(err))
		} else {
			chain = append(chain, fallback)
		}
	}

	chain = append(chain, stub.NewRuleStubClassifier())

	return core.NewFallbackClassifier(
		chain,
		classifierCfg.InferenceTimeout,
		classifierCfg.Serialize,
		f.logger,
	), nil
}

// createProvider creates a single classifier by provider name
func (f *ClassifierFactory) createProvider(provider string) (core.TextClassifier, error) {
	switch provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "stub":
		return stub.NewRuleStubClassifier(), nil
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", provider)
	}
}
