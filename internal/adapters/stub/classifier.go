package stub

import (
	"context"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// RuleStubClassifier is the terminal fallback in the classifier chain. It
// returns a neutral benign verdict for every input so that a scan always
// completes, with the risk signal carried entirely by the feature-based
// adjustments.
type RuleStubClassifier struct{}

// NewRuleStubClassifier creates the rule-based stub classifier
func NewRuleStubClassifier() *RuleStubClassifier {
	return &RuleStubClassifier{}
}

// Classify returns the deterministic neutral verdict. It never fails.
func (c *RuleStubClassifier) Classify(_ context.Context, _ string) (*core.ClassifierResult, error) {
	return &core.ClassifierResult{
		Label:      core.LabelBenign,
		Confidence: 0.5,
		ModelUsed:  "rule-stub",
		Degraded:   true,
	}, nil
}
