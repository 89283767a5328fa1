package core

import (
	"context"
)

// TextClassifier defines the interface for pretrained text classifiers
type TextClassifier interface {
	// Classify analyzes a text and returns a normalized (label, confidence) verdict
	Classify(ctx context.Context, text string) (*ClassifierResult, error)
}

// AssessmentStore defines the interface for caching scan outcomes
type AssessmentStore interface {
	// Get retrieves a cached assessment by content hash
	Get(ctx context.Context, contentHash string) (*StoredAssessment, error)

	// Set stores an assessment
	Set(ctx context.Context, entry *StoredAssessment) error

	// Delete removes an assessment
	Delete(ctx context.Context, contentHash string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
