package out

import (
	"context"

	"quickmail_server/core/domain"
)

// AnalysisPage is one page of stored analysis records.
type AnalysisPage struct {
	Records []*domain.AnalysisRecord
	Total   int64
	Page    int
	PerPage int
}

// AnalysisRepository persists completed analysis records. Soft-deleted
// records stay in storage but are excluded from listings.
type AnalysisRepository interface {
	Save(ctx context.Context, record *domain.AnalysisRecord) (string, error)
	List(ctx context.Context, page, perPage int) (*AnalysisPage, error)
	SoftDelete(ctx context.Context, id string) error
}
