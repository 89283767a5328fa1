package gemini

import (
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// Factory creates new instances of GeminiClassifier
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *textutil.TextProcessor
}

// NewFactory creates a new factory for GeminiClassifier instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *textutil.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new GeminiClassifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewGeminiClassifier(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}
