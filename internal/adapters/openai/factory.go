package openai

import (
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/config"
	"github.com/Eklavya-kapoor/armor-api/internal/core"
	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// Factory creates new instances of OpenAIClassifier
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *textutil.TextProcessor
}

// NewFactory creates a new factory for OpenAIClassifier instances
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *textutil.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new OpenAIClassifier
func (f *Factory) CreateClassifier() (core.TextClassifier, error) {
	openaiCfg := f.cfg.GetOpenAI()

	client := openai.NewClient(openaiCfg.APIKey)

	return NewOpenAIClassifier(
		client,
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}
