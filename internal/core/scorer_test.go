package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultScorer() *RiskScorer {
	return NewRiskScorer(nil, DefaultMediumThreshold, DefaultHighThreshold)
}

func TestScoreBaseFromClassifier(t *testing.T) {
	scorer := defaultScorer()
	none := FeatureSet{}

	// A threat label keeps the classifier confidence as the base.
	threat := scorer.Score(none, &ClassifierResult{Label: LabelScam, Confidence: 0.8})
	assert.InDelta(t, 0.8, threat.RiskScore, 1e-9)

	// A benign label inverts it.
	benign := scorer.Score(none, &ClassifierResult{Label: LabelBenign, Confidence: 0.8})
	assert.InDelta(t, 0.2, benign.RiskScore, 1e-9)

	// Suspicious counts as a threat class.
	suspicious := scorer.Score(none, &ClassifierResult{Label: LabelSuspicious, Confidence: 0.6})
	assert.InDelta(t, 0.6, suspicious.RiskScore, 1e-9)
}

func TestScoreStaysInBounds(t *testing.T) {
	scorer := defaultScorer()

	// Every positively weighted feature saturated at once.
	loaded := FeatureSet{}
	for feature := range DefaultWeights() {
		loaded[feature] = 10
	}
	high := scorer.Score(loaded, &ClassifierResult{Label: LabelScam, Confidence: 1.0})
	assert.LessOrEqual(t, high.RiskScore, 1.0)
	assert.GreaterOrEqual(t, high.RiskScore, 0.0)
	assert.Equal(t, RiskLevelHigh, high.RiskLevel)

	// A protective feature on a zero base cannot go below zero.
	low := scorer.Score(
		FeatureSet{"sender_is_email": 1},
		&ClassifierResult{Label: LabelBenign, Confidence: 1.0},
	)
	assert.Equal(t, 0.0, low.RiskScore)
	assert.Equal(t, RiskLevelLow, low.RiskLevel)
}

func TestScoreDeterministic(t *testing.T) {
	scorer := defaultScorer()
	features := FeatureSet{
		"urgency_keywords":  3,
		"has_urls":          1,
		"sender_suspicious": 1,
		"sender_is_email":   1,
		"uppercase_ratio":   0.4,
	}
	verdict := &ClassifierResult{Label: LabelSuspicious, Confidence: 0.55}

	first := scorer.Score(features, verdict)
	for i := 0; i < 50; i++ {
		again := scorer.Score(features, verdict)
		require.Equal(t, first.RiskScore, again.RiskScore)
		require.Equal(t, first.Explanation, again.Explanation)
	}
}

func TestScoreCountSaturation(t *testing.T) {
	scorer := defaultScorer()
	verdict := &ClassifierResult{Label: LabelBenign, Confidence: 0.5}

	five := scorer.Score(FeatureSet{"urgency_keywords": 5}, verdict)
	fifty := scorer.Score(FeatureSet{"urgency_keywords": 50}, verdict)
	assert.Equal(t, five.RiskScore, fifty.RiskScore, "counts saturate at the normalizer cap")

	one := scorer.Score(FeatureSet{"urgency_keywords": 1}, verdict)
	two := scorer.Score(FeatureSet{"urgency_keywords": 2}, verdict)
	assert.Less(t, one.RiskScore, two.RiskScore, "more hits mean more risk below the cap")
}

func TestTierThresholds(t *testing.T) {
	scorer := defaultScorer()

	assert.Equal(t, RiskLevelLow, scorer.Tier(0))
	assert.Equal(t, RiskLevelLow, scorer.Tier(DefaultMediumThreshold-0.001))
	assert.Equal(t, RiskLevelMedium, scorer.Tier(DefaultMediumThreshold))
	assert.Equal(t, RiskLevelMedium, scorer.Tier(DefaultHighThreshold-0.001))
	assert.Equal(t, RiskLevelHigh, scorer.Tier(DefaultHighThreshold))
	assert.Equal(t, RiskLevelHigh, scorer.Tier(1))
}

func TestScoreLevelMatchesTier(t *testing.T) {
	scorer := defaultScorer()

	cases := []FeatureSet{
		{},
		{"has_urls": 1},
		{"urgency_keywords": 5, "threat_keywords": 2},
		{"sender_mismatch": 1, "suspicious_url_count": 2},
	}
	for _, features := range cases {
		for _, conf := range []float64{0.1, 0.5, 0.9} {
			assessment := scorer.Score(features, &ClassifierResult{Label: LabelScam, Confidence: conf})
			assert.Equal(t, scorer.Tier(assessment.RiskScore), assessment.RiskLevel)
		}
	}
}

func TestExplanationOrderedByMagnitude(t *testing.T) {
	scorer := defaultScorer()

	assessment := scorer.Score(
		FeatureSet{"urgency_keywords": 5, "has_urls": 1, "sender_suspicious": 1},
		&ClassifierResult{Label: LabelBenign, Confidence: 0.5},
	)

	// urgency at the cap contributes 0.18, sender_suspicious 0.15,
	// has_urls 0.12.
	require.Len(t, assessment.Explanation, 3)
	assert.Equal(t, "Urgency language detected (+0.18 risk)", assessment.Explanation[0])
	assert.Equal(t, "Suspicious sender address (+0.15 risk)", assessment.Explanation[1])
	assert.Equal(t, "Contains links (+0.12 risk)", assessment.Explanation[2])
}

func TestExplanationSkipsNoise(t *testing.T) {
	scorer := defaultScorer()

	// One exclamation mark contributes 0.06/5 = 0.012, below the floor.
	assessment := scorer.Score(
		FeatureSet{"exclamation_count": 1},
		&ClassifierResult{Label: LabelBenign, Confidence: 0.9},
	)

	require.Len(t, assessment.Explanation, 1)
	assert.Equal(t, "No notable risk features; classifier-only assessment", assessment.Explanation[0])
	assert.Greater(t, assessment.RiskScore, 0.1, "small contributions still move the score")
}

func TestExplanationIncludesProtectiveFactors(t *testing.T) {
	scorer := defaultScorer()

	assessment := scorer.Score(
		FeatureSet{"sender_is_email": 1, "has_urls": 1},
		&ClassifierResult{Label: LabelScam, Confidence: 0.5},
	)

	joined := strings.Join(assessment.Explanation, "\n")
	assert.Contains(t, joined, "Sender is a plain email address (-0.05 risk)")
	assert.Contains(t, joined, "Contains links (+0.12 risk)")
}

func TestScoreCarriesClassifierMetadata(t *testing.T) {
	scorer := defaultScorer()

	assessment := scorer.Score(FeatureSet{}, &ClassifierResult{
		Label:      LabelScam,
		Confidence: 0.7,
		ModelUsed:  "anthropic.claude-v2",
		Degraded:   true,
	})

	assert.Equal(t, "anthropic.claude-v2", assessment.ModelUsed)
	assert.True(t, assessment.Degraded)
	assert.False(t, assessment.AnalyzedAt.IsZero())
}

func TestConfiguredWeightsAndThresholds(t *testing.T) {
	scorer := NewRiskScorer(map[string]float64{"has_urls": 0.5}, 0.2, 0.4)

	assessment := scorer.Score(
		FeatureSet{"has_urls": 1, "urgency_keywords": 5},
		&ClassifierResult{Label: LabelBenign, Confidence: 1.0},
	)

	// Only the configured weight applies; urgency has no entry.
	assert.InDelta(t, 0.5, assessment.RiskScore, 1e-9)
	assert.Equal(t, RiskLevelHigh, assessment.RiskLevel)
}
