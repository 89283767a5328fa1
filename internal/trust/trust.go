package trust

import (
	"strings"

	"go.uber.org/zap"
)

// Checker reports whether a sender belongs to a trusted domain. Messages
// from trusted domains short-circuit the scoring pipeline with a minimal
// risk verdict.
type Checker struct {
	domains []string
	logger  *zap.Logger
}

// NewChecker creates a new trusted-domain checker
func NewChecker(domains []string, logger *zap.Logger) *Checker {
	normalized := make([]string, len(domains))
	for i, domain := range domains {
		normalized[i] = strings.ToLower(strings.TrimSpace(domain))
	}

	if len(normalized) > 0 && logger != nil {
		logger.Info("Initialized trusted-domain checker", zap.Strings("domains", normalized))
	}

	return &Checker{
		domains: normalized,
		logger:  logger,
	}
}

// IsTrusted checks if the sender's domain is in the trusted set. Senders
// that are not email addresses are never trusted.
func (c *Checker) IsTrusted(sender string) bool {
	if len(c.domains) == 0 {
		return false
	}

	parts := strings.Split(sender, "@")
	if len(parts) != 2 {
		return false
	}
	domain := strings.ToLower(parts[1])

	for _, trusted := range c.domains {
		if trusted == domain {
			if c.logger != nil {
				c.logger.Debug("Sender domain is trusted",
					zap.String("domain", domain),
					zap.String("sender", sender))
			}
			return true
		}
	}

	return false
}
