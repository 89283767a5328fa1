package ports

import (
	"context"

	"github.com/Eklavya-kapoor/armor-api/internal/core"
)

// Host defines the interface for transports that feed messages into the
// scan pipeline (HTTP API, SMTP gateway).
type Host interface {
	// Scan submits a request to the pipeline and returns the assessment
	Scan(ctx context.Context, req *core.ScanRequest) (*core.RiskAssessment, error)

	// Start starts the host
	Start() error

	// Stop stops the host
	Stop() error
}
