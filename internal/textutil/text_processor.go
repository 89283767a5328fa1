package textutil

import (
	"unicode/utf8"

	"go.uber.org/zap"
)

// TextProcessor provides utilities for preparing message text
type TextProcessor struct {
	logger *zap.Logger
}

// NewTextProcessor creates a new TextProcessor
func NewTextProcessor(logger *zap.Logger) *TextProcessor {
	return &TextProcessor{
		logger: logger,
	}
}

// Truncate cuts text to the specified maximum byte size at a valid UTF-8
// boundary. Truncation is silent: the result carries no marker, so scoring
// stays a pure function of the retained prefix.
func (tp *TextProcessor) Truncate(text string, maxSize int) string {
	if maxSize <= 0 || len(text) <= maxSize {
		return text
	}

	truncated := text[:maxSize]
	for !utf8.ValidString(truncated) && len(truncated) > 0 {
		truncated = truncated[:len(truncated)-1]
	}

	tp.logger.Debug("Text truncated",
		zap.Int("original_size", len(text)),
		zap.Int("truncated_size", len(truncated)),
		zap.Int("max_size", maxSize))

	return truncated
}

// SanitizeUTF8 ensures the string contains only valid UTF-8 characters
func (tp *TextProcessor) SanitizeUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	result := make([]rune, 0, len(text))
	for i, r := range text {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(text[i:])
			if size == 1 {
				continue
			}
		}
		result = append(result, r)
	}

	return string(result)
}

// Process truncates and sanitizes text in one operation
func (tp *TextProcessor) Process(text string, maxSize int) string {
	return tp.SanitizeUTF8(tp.Truncate(text, maxSize))
}
