package core

import (
	"errors"
	"strings"
	"time"
)

// Classifier labels form a small closed set. Anything that is not benign
// is treated as a threat class by the scorer.
const (
	LabelScam       = "scam"
	LabelSuspicious = "suspicious"
	LabelBenign     = "benign"
)

// RiskLevel is the discrete tier derived from a risk score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ErrEmptyText is returned when a scan request contains no analyzable text.
var ErrEmptyText = errors.New("text is empty or whitespace-only")

// NormalizeLabel maps free-form classifier labels onto the closed label
// set. Unknown threat-like labels collapse to scam; anything else is
// benign.
func NormalizeLabel(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case LabelScam, "spam", "phishing", "fraud", "malicious":
		return LabelScam
	case LabelSuspicious:
		return LabelSuspicious
	default:
		return LabelBenign
	}
}

// ScanRequest represents a message submitted for risk analysis
type ScanRequest struct {
	Text     string         `json:"text"`
	Sender   string         `json:"sender,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// FeatureSet is a flat mapping of named signals extracted from a message.
// Boolean flags are encoded as 0/1, counts as whole numbers and ratios as
// values in [0,1]. A FeatureSet is built once per request and never
// mutated after extraction.
type FeatureSet map[string]float64

// Has reports whether the named feature fired (non-zero).
func (f FeatureSet) Has(name string) bool {
	return f[name] != 0
}

// ClassifierResult represents the normalized verdict of a text classifier
type ClassifierResult struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	ModelUsed  string  `json:"model_used"`
	Degraded   bool    `json:"degraded"`
}

// IsThreat reports whether the label indicates a threat class.
func (r *ClassifierResult) IsThreat() bool {
	return r.Label != LabelBenign
}

// RiskAssessment is the terminal artifact returned to the caller. It is
// not mutated after construction.
type RiskAssessment struct {
	RiskScore        float64    `json:"risk_score"`
	RiskLevel        RiskLevel  `json:"risk_level"`
	Explanation      []string   `json:"explanation"`
	Features         FeatureSet `json:"features"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	Degraded         bool       `json:"degraded"`
	ModelUsed        string     `json:"model_used,omitempty"`
	AnalyzedAt       time.Time  `json:"analyzed_at"`
}

// StoredAssessment is a cached scan outcome keyed by message content hash.
type StoredAssessment struct {
	ContentHash string
	RiskScore   float64
	RiskLevel   RiskLevel
	Degraded    bool
	LastSeen    time.Time
	ExpiresAt   time.Time
}
