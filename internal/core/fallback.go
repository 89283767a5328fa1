package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FallbackClassifier chains classifiers in priority order. Every inference
// error or timeout falls through to the next classifier; the last element
// is expected to be infallible (the rule-based stub), so Classify never
// returns an error to the orchestrator.
type FallbackClassifier struct {
	chain   []TextClassifier
	timeout time.Duration
	logger  *zap.Logger

	// Some inference backends cannot serve concurrent calls. When
	// serialize is set, calls block on a single-slot lock instead of
	// overlapping.
	serialize bool
	mu        sync.Mutex
}

// NewFallbackClassifier creates a classifier chain. The chain must be
// non-empty and terminate in a classifier that cannot fail.
func NewFallbackClassifier(chain []TextClassifier, timeout time.Duration, serialize bool, logger *zap.Logger) *FallbackClassifier {
	return &FallbackClassifier{
		chain:     chain,
		timeout:   timeout,
		serialize: serialize,
		logger:    logger,
	}
}

// Classify runs the chain until a classifier produces a result. No retries
// are performed: a failed or slow backend degrades immediately rather than
// adding load.
func (f *FallbackClassifier) Classify(ctx context.Context, text string) (*ClassifierResult, error) {
	if f.serialize {
		f.mu.Lock()
		defer f.mu.Unlock()
	}

	var lastErr error
	for i, classifier := range f.chain {
		result, err := f.classifyOne(ctx, classifier, text)
		if err == nil {
			if i > 0 {
				result.Degraded = true
				f.logger.Warn("Classifier degraded to fallback",
					zap.Int("chain_position", i),
					zap.String("model", result.ModelUsed),
					zap.NamedError("cause", lastErr))
			}
			return result, nil
		}
		lastErr = err
		f.logger.Warn("Classifier failed, trying next in chain",
			zap.Int("chain_position", i),
			zap.Error(err))
	}

	// Unreachable when the chain ends in the stub; still return a neutral
	// verdict rather than an error.
	return &ClassifierResult{
		Label:      LabelBenign,
		Confidence: 0.5,
		ModelUsed:  "none",
		Degraded:   true,
	}, nil
}

// Close releases any chain members that hold client connections.
func (f *FallbackClassifier) Close() error {
	var firstErr error
	for _, classifier := range f.chain {
		if closer, ok := classifier.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// classifyOne runs a single classifier under the configured inference
// budget.
func (f *FallbackClassifier) classifyOne(ctx context.Context, classifier TextClassifier, text string) (*ClassifierResult, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	type outcome struct {
		result *ClassifierResult
		err    error
	}
	ch := make(chan outcome, 1)
	go func() {
		result, err := classifier.Classify(ctx, text)
		ch <- outcome{result: result, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return nil, out.err
		}
		out.result.Confidence = clamp01(out.result.Confidence)
		return out.result, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
