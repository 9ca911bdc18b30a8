// Package in defines the inbound ports of the core.
package in

import (
	"context"

	"quickmail_server/core/domain"
)

// AnalysisService is the single entry point the API layer uses to run the
// email analysis pipeline.
type AnalysisService interface {
	Analyze(ctx context.Context, input domain.RawEmailInput) (*domain.AnalysisRecord, error)
}
