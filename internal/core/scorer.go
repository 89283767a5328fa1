package core

import (
	"fmt"
	"sort"
	"time"
)

// Tier thresholds and the weight table are configuration; these are the
// shipped defaults.
const (
	DefaultMediumThreshold = 0.34
	DefaultHighThreshold   = 0.67

	// Count-valued features are normalized by this cap before weighting so
	// that repeated lexicon hits saturate instead of stacking without bound.
	countNormalizer = 5.0

	// Contributions below this magnitude are applied but not explained.
	minExplainedContribution = 0.02
)

// DefaultWeights returns the versioned default feature weight table.
// Weights are per-feature adjustments in a bounded range; negative weights
// are protective factors.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		"urgency_keywords":     0.18,
		"threat_keywords":      0.20,
		"personal_keywords":    0.22,
		"money_keywords":       0.15,
		"action_keywords":      0.10,
		"trust_keywords":       0.08,
		"suspicious_url_count": 0.25,
		"has_urls":             0.12,
		"has_contact_info":     0.08,
		"uppercase_ratio":      0.10,
		"exclamation_count":    0.06,
		"caps_lock_words":      0.08,
		"sender_suspicious":    0.15,
		"sender_mismatch":      0.20,
		"mixed_script":         0.10,
		"sender_is_email":      -0.05,
	}
}

// ratioFeatures already carry values in [0,1] and are weighted as-is.
// Boolean flags are 0/1 and pass through the same path; every other
// weighted feature is a count and saturates at countNormalizer.
var ratioFeatures = map[string]bool{
	"uppercase_ratio":      true,
	"digit_ratio":          true,
	"has_urls":             true,
	"has_contact_info":     true,
	"sender_suspicious":    true,
	"sender_mismatch":      true,
	"sender_is_email":      true,
	"sender_has_numbers":   true,
	"sender_is_phone":      true,
	"mixed_script":         true,
	"has_urgency_keywords": true,
	"has_money_keywords":   true,
	"has_trust_keywords":   true,
	"has_action_keywords":  true,
	"has_threat_keywords":  true,
	"has_personal_keywords": true,
}

// featureDescriptions maps weighted feature names to the phrasing used in
// explanations.
var featureDescriptions = map[string]string{
	"urgency_keywords":     "Urgency language detected",
	"threat_keywords":      "Threatening language detected",
	"personal_keywords":    "Requests personal information",
	"money_keywords":       "Monetary bait detected",
	"action_keywords":      "Pressure to act detected",
	"trust_keywords":       "References a trusted institution",
	"suspicious_url_count": "Contains suspicious links",
	"has_urls":             "Contains links",
	"has_contact_info":     "Contains contact information",
	"uppercase_ratio":      "Excessive capitalization",
	"exclamation_count":    "Excessive exclamation marks",
	"caps_lock_words":      "All-caps words",
	"sender_suspicious":    "Suspicious sender address",
	"sender_mismatch":      "Sender identity does not match its domain",
	"mixed_script":         "Mixed-language content",
	"sender_is_email":      "Sender is a plain email address",
}

// RiskScorer combines a classifier verdict with extracted features into a
// calibrated risk assessment.
type RiskScorer struct {
	weights         map[string]float64
	mediumThreshold float64
	highThreshold   float64
}

// NewRiskScorer creates a new risk scorer. A nil weight table selects the
// defaults.
func NewRiskScorer(weights map[string]float64, mediumThreshold, highThreshold float64) *RiskScorer {
	if weights == nil {
		weights = DefaultWeights()
	}
	if mediumThreshold <= 0 || highThreshold <= mediumThreshold {
		mediumThreshold = DefaultMediumThreshold
		highThreshold = DefaultHighThreshold
	}
	return &RiskScorer{
		weights:         weights,
		mediumThreshold: mediumThreshold,
		highThreshold:   highThreshold,
	}
}

type contribution struct {
	feature string
	amount  float64
}

// Score computes the final risk assessment from the classifier result and
// the feature set. Timing is filled in by the orchestrator.
func (s *RiskScorer) Score(features FeatureSet, classifier *ClassifierResult) *RiskAssessment {
	// Base score: classifier confidence if it flagged a threat class,
	// otherwise the complement.
	base := classifier.Confidence
	if !classifier.IsThreat() {
		base = 1 - classifier.Confidence
	}
	score := clamp01(base)

	// Fixed iteration order keeps scoring deterministic: with clipping
	// after every step, the order of adjustments is observable.
	names := make([]string, 0, len(s.weights))
	for feature := range s.weights {
		names = append(names, feature)
	}
	sort.Strings(names)

	contributions := make([]contribution, 0, len(names))
	for _, feature := range names {
		value, ok := features[feature]
		if !ok || value == 0 {
			continue
		}
		amount := s.weights[feature] * normalizeFeature(feature, value)
		// Clip after every step so stacked features cannot run away.
		score = clamp01(score + amount)
		contributions = append(contributions, contribution{feature: feature, amount: amount})
	}

	return &RiskAssessment{
		RiskScore:   score,
		RiskLevel:   s.Tier(score),
		Explanation: s.explain(contributions),
		Features:    features,
		Degraded:    classifier.Degraded,
		ModelUsed:   classifier.ModelUsed,
		AnalyzedAt:  time.Now(),
	}
}

// Tier maps a score to its discrete risk level using the configured
// thresholds.
func (s *RiskScorer) Tier(score float64) RiskLevel {
	switch {
	case score >= s.highThreshold:
		return RiskLevelHigh
	case score >= s.mediumThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// explain builds the ordered explanation list: one entry per significant
// contribution, largest magnitude first.
func (s *RiskScorer) explain(contributions []contribution) []string {
	sort.SliceStable(contributions, func(i, j int) bool {
		return abs(contributions[i].amount) > abs(contributions[j].amount)
	})

	explanation := make([]string, 0, len(contributions))
	for _, c := range contributions {
		if abs(c.amount) < minExplainedContribution {
			continue
		}
		desc, ok := featureDescriptions[c.feature]
		if !ok {
			desc = c.feature
		}
		explanation = append(explanation, fmt.Sprintf("%s (%+.2f risk)", desc, c.amount))
	}

	if len(explanation) == 0 {
		explanation = append(explanation, "No notable risk features; classifier-only assessment")
	}
	return explanation
}

// normalizeFeature maps a raw feature value into [0,1]: flags and ratios
// pass through, counts saturate at countNormalizer.
func normalizeFeature(name string, value float64) float64 {
	if value < 0 {
		return 0
	}
	if ratioFeatures[name] {
		return clamp01(value)
	}
	return clamp01(value / countNormalizer)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
