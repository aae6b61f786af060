package services

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// MarginsView selects how the margins report is grouped.
type MarginsView string

const (
	MarginsBySeller MarginsView = "seller"
	MarginsByMonth  MarginsView = "monthly"
)

// ReportingSvcFacade defines the read-only aggregate reports.
type ReportingSvcFacade interface {
	// MarginsReport aggregates the agency's CONFIRMED operations in the date
	// range, grouped by seller or by month, with amounts normalized to USD
	// through the exchange-rate resolver.
	MarginsReport(ctx context.Context, agencyID string, userID string, from, to time.Time, sellerID string, view MarginsView) ([]domain.MarginRow, error)
}
