// Package out defines the outbound ports of the core.
package out

import (
	"context"

	"quickmail_server/core/domain"
)

// Classifier is the external classification capability. Given the normalized
// token text and the raw prompt text, it returns a category and a confidence
// in [0,1]. Implementations perform no retries; the orchestrator owns the
// retry policy.
type Classifier interface {
	Classify(ctx context.Context, normalizedText, rawText string) (domain.ClassificationResult, error)
}
