package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

func TestDefaults(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	classifier := cfg.GetClassifier()
	assert.Equal(t, "bedrock", classifier.Provider)
	assert.Equal(t, "openai", classifier.FallbackProvider)
	assert.Equal(t, 1000, classifier.MaxTextLength)
	assert.Equal(t, 5*time.Second, classifier.InferenceTimeout)
	assert.False(t, classifier.Serialize)

	scoring := cfg.GetScoring()
	assert.Equal(t, core.DefaultMediumThreshold, scoring.MediumThreshold)
	assert.Equal(t, core.DefaultHighThreshold, scoring.HighThreshold)
	assert.Empty(t, scoring.TrustedDomains)

	assert.Equal(t, "memory", cfg.GetString("store.type"))
	assert.False(t, cfg.GetBool("store.enabled"))
	assert.Equal(t, "0.0.0.0:8080", cfg.GetString("server.listen_address"))
	assert.False(t, cfg.GetBool("smtp.enabled"))
}

func TestDefaultWeightTable(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())

	weights := cfg.GetScoring().Weights
	require.NotEmpty(t, weights)
	assert.Equal(t, core.DefaultWeights()["urgency_keywords"], weights["urgency_keywords"])
	assert.Equal(t, core.DefaultWeights()["sender_is_email"], weights["sender_is_email"])
}

func TestOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.provider", "gemini")
	v.Set("classifier.inference_timeout", "250ms")
	v.Set("scoring.medium_threshold", 0.5)
	v.Set("scoring.trusted_domains", []string{"example.com"})
	cfg := NewFromViper(v)

	classifier := cfg.GetClassifier()
	assert.Equal(t, "gemini", classifier.Provider)
	assert.Equal(t, 250*time.Millisecond, classifier.InferenceTimeout)

	scoring := cfg.GetScoring()
	assert.Equal(t, 0.5, scoring.MediumThreshold)
	assert.Equal(t, []string{"example.com"}, scoring.TrustedDomains)
}

func TestInvalidDurationFallsBack(t *testing.T) {
	v := NewEmptyViper()
	v.Set("classifier.inference_timeout", "not a duration")
	cfg := NewFromViper(v)

	assert.Equal(t, 5*time.Second, cfg.GetClassifier().InferenceTimeout)
}

func TestGetStringMapFloat64(t *testing.T) {
	v := NewEmptyViper()
	v.Set("scoring.weights", map[string]float64{"has_urls": 0.3, "urgency_keywords": 0.1})
	cfg := NewFromViper(v)

	weights := cfg.GetStringMapFloat64("scoring.weights")
	assert.Equal(t, 0.3, weights["has_urls"])
	assert.Equal(t, 0.1, weights["urgency_keywords"])

	assert.Nil(t, cfg.GetStringMapFloat64("scoring.missing_key"))
}
