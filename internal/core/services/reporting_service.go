package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
)

// reportingService builds aggregate reports over confirmed operations.
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingReader
	rateService   portssvc.ExchangeRateSvcFacade
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingReader, rateService portssvc.ExchangeRateSvcFacade, authorizer portssvc.AgencyAuthorizerSvc) portssvc.ReportingSvcFacade {
	return &reportingService{
		BaseService:   BaseService{AgencyAuthorizer: authorizer},
		reportingRepo: reportingRepo,
		rateService:   rateService,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// MarginsReport aggregates CONFIRMED operations grouped by seller or by
// month. Mixed-currency books normalize through the rate resolved for each
// operation's date, so ARS and USD operations land in the same USD columns.
func (s *reportingService) MarginsReport(ctx context.Context, agencyID string, userID string, from, to time.Time, sellerID string, view portssvc.MarginsView) ([]domain.MarginRow, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: dateTo cannot precede dateFrom", apperrors.ErrValidation)
	}
	if view == "" {
		view = portssvc.MarginsBySeller
	}

	ops, err := s.reportingRepo.ListConfirmedOperations(ctx, agencyID, truncateToDate(from), truncateToDate(to), sellerID)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return []domain.MarginRow{}, nil
	}

	dates := make([]time.Time, len(ops))
	for i, op := range ops {
		dates[i] = op.OperationDate
	}
	rates, err := s.rateService.ResolveRatesBatch(ctx, agencyID, dates)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*domain.MarginRow)
	for _, op := range ops {
		var key string
		switch view {
		case portssvc.MarginsByMonth:
			key = op.OperationDate.Format("2006-01")
		default:
			key = op.SellerID
		}

		resolved := rates[truncateToDate(op.OperationDate)]
		saleUSD, err := domain.ConvertToUSD(op.SaleAmount, op.Currency, resolved.Rate)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize operation %s: %w", op.OperationID, err)
		}
		costUSD, err := domain.ConvertToUSD(op.CostAmount, op.Currency, resolved.Rate)
		if err != nil {
			return nil, fmt.Errorf("failed to normalize operation %s: %w", op.OperationID, err)
		}

		row, ok := groups[key]
		if !ok {
			row = &domain.MarginRow{Group: key}
			groups[key] = row
		}
		row.OperationCount++
		row.SaleUSD = row.SaleUSD.Add(saleUSD)
		row.CostUSD = row.CostUSD.Add(costUSD)
		row.MarginUSD = row.MarginUSD.Add(saleUSD.Sub(costUSD))
	}

	rows := make([]domain.MarginRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Group < rows[j].Group })
	return rows, nil
}
