package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFallbackPrimarySucceeds(t *testing.T) {
	primary := &fixedClassifier{
		result: &ClassifierResult{Label: LabelScam, Confidence: 0.9, ModelUsed: "primary"},
	}
	chain := NewFallbackClassifier(
		[]TextClassifier{primary, &fixedClassifier{err: errors.New("must not be reached")}},
		time.Second, false, zap.NewNop())

	result, err := chain.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, "primary", result.ModelUsed)
	assert.False(t, result.Degraded, "first chain element is not a degradation")
}

func TestFallbackOnError(t *testing.T) {
	chain := NewFallbackClassifier([]TextClassifier{
		&fixedClassifier{err: errors.New("backend unavailable")},
		&fixedClassifier{result: &ClassifierResult{Label: LabelBenign, Confidence: 0.7, ModelUsed: "secondary"}},
	}, time.Second, false, zap.NewNop())

	result, err := chain.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, "secondary", result.ModelUsed)
	assert.True(t, result.Degraded, "any fallback position marks the verdict degraded")
}

func TestFallbackOnTimeout(t *testing.T) {
	slow := &fixedClassifier{
		result: &ClassifierResult{Label: LabelScam, Confidence: 0.9, ModelUsed: "slow"},
		delay:  time.Second,
	}
	chain := NewFallbackClassifier([]TextClassifier{
		slow,
		&fixedClassifier{result: &ClassifierResult{Label: LabelBenign, Confidence: 0.5, ModelUsed: "fast"}},
	}, 20*time.Millisecond, false, zap.NewNop())

	start := time.Now()
	result, err := chain.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, "fast", result.ModelUsed)
	assert.True(t, result.Degraded)
	assert.Less(t, time.Since(start), 500*time.Millisecond, "slow backend is abandoned, not awaited")
}

func TestFallbackExhaustedChain(t *testing.T) {
	chain := NewFallbackClassifier([]TextClassifier{
		&fixedClassifier{err: errors.New("first down")},
		&fixedClassifier{err: errors.New("second down")},
	}, time.Second, false, zap.NewNop())

	result, err := chain.Classify(context.Background(), "some text")
	require.NoError(t, err, "an exhausted chain yields a neutral verdict, not an error")
	assert.Equal(t, LabelBenign, result.Label)
	assert.Equal(t, 0.5, result.Confidence)
	assert.True(t, result.Degraded)
}

func TestFallbackClampsConfidence(t *testing.T) {
	chain := NewFallbackClassifier([]TextClassifier{
		&fixedClassifier{result: &ClassifierResult{Label: LabelScam, Confidence: 3.7, ModelUsed: "wild"}},
	}, time.Second, false, zap.NewNop())

	result, err := chain.Classify(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, 1.0, result.Confidence)
}

// countingClassifier records the peak number of overlapping calls.
type countingClassifier struct {
	mu      sync.Mutex
	active  int
	peak    int
	result  *ClassifierResult
	holdFor time.Duration
}

func (c *countingClassifier) Classify(_ context.Context, _ string) (*ClassifierResult, error) {
	c.mu.Lock()
	c.active++
	if c.active > c.peak {
		c.peak = c.active
	}
	c.mu.Unlock()

	time.Sleep(c.holdFor)

	c.mu.Lock()
	c.active--
	c.mu.Unlock()

	out := *c.result
	return &out, nil
}

func TestFallbackSerializesInference(t *testing.T) {
	backend := &countingClassifier{
		result:  &ClassifierResult{Label: LabelBenign, Confidence: 0.5, ModelUsed: "serial"},
		holdFor: 10 * time.Millisecond,
	}
	chain := NewFallbackClassifier([]TextClassifier{backend}, time.Second, true, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := chain.Classify(context.Background(), "some text")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, 1, backend.peak, "serialized chains never overlap inference calls")
}
