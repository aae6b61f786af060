package repositories

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// ReportingReader defines the aggregate read operations behind reports.
type ReportingReader interface {
	// ListConfirmedOperations retrieves the agency's CONFIRMED operations in
	// the date range, optionally filtered by seller.
	ListConfirmedOperations(ctx context.Context, agencyID string, from, to time.Time, sellerID string) ([]domain.Operation, error)
}
