package factory

import (
	"go.uber.org/zap"

	"github.com/Eklavya-kapoor/armor-api/internal/textutil"
)

// TextProcessorFactory creates text processors
type TextProcessorFactory struct {
	logger *zap.Logger
}

// NewTextProcessorFactory creates a new TextProcessorFactory
func NewTextProcessorFactory(logger *zap.Logger) *TextProcessorFactory {
	return &TextProcessorFactory{
		logger: logger,
	}
}

// CreateTextProcessor creates a new TextProcessor
func (f *TextProcessorFactory) CreateTextProcessor() *textutil.TextProcessor {
	return textutil.NewTextProcessor(f.logger)
}
