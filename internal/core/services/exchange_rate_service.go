package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// exchangeRateService provides business logic for ARS/USD exchange rates,
// including the resolution chain every money conversion goes through.
type exchangeRateService struct {
	BaseService
	rateRepo     portsrepo.ExchangeRateRepositoryFacade
	fallbackRate decimal.Decimal
}

// NewExchangeRateService creates a new exchange rate service. fallbackRate is
// the configured last-resort ARS/USD rate.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, authorizer portssvc.AgencyAuthorizerSvc, fallbackRate decimal.Decimal) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		BaseService:  BaseService{AgencyAuthorizer: authorizer},
		rateRepo:     rateRepo,
		fallbackRate: fallbackRate,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// truncateToDate normalizes a timestamp to midnight UTC, the granularity of
// the exchange_rates table.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateExchangeRate records the rate for a date. One row per agency per day.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, agencyID string, req dto.CreateExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		AgencyID:       agencyID,
		RateDate:       truncateToDate(req.RateDate),
		Rate:           req.Rate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		return nil, fmt.Errorf("failed to create exchange rate: %w", err)
	}
	return &rate, nil
}

// ListRates retrieves the agency's stored rates in a date range.
func (s *exchangeRateService) ListRates(ctx context.Context, agencyID string, userID string, from, to time.Time) ([]domain.ExchangeRate, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.rateRepo.ListRates(ctx, agencyID, truncateToDate(from), truncateToDate(to))
}

// ResolveRate resolves the ARS/USD rate for a date. The chain is: exact date
// match, nearest prior date, latest stored rate, configured fallback. The
// fallback leg logs a warning and tags the result so callers can record the
// degraded provenance.
func (s *exchangeRateService) ResolveRate(ctx context.Context, agencyID string, date time.Time) (*domain.ResolvedRate, error) {
	day := truncateToDate(date)

	exact, err := s.rateRepo.FindRateByDate(ctx, agencyID, day)
	if err == nil {
		return &domain.ResolvedRate{Rate: exact.Rate, Source: domain.RateSourceExact, RateDate: exact.RateDate}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve exchange rate: %w", err)
	}

	prior, err := s.rateRepo.FindNearestPriorRate(ctx, agencyID, day)
	if err == nil {
		return &domain.ResolvedRate{Rate: prior.Rate, Source: domain.RateSourceNearestPrior, RateDate: prior.RateDate}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve exchange rate: %w", err)
	}

	// No rate on or before the date; the first recorded rate may still be
	// after it.
	latest, err := s.rateRepo.FindLatestRate(ctx, agencyID)
	if err == nil {
		return &domain.ResolvedRate{Rate: latest.Rate, Source: domain.RateSourceLatest, RateDate: latest.RateDate}, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve exchange rate: %w", err)
	}

	s.LogWarn(ctx, "no exchange rates recorded, using configured fallback",
		"agency_id", agencyID,
		"date", day.Format("2006-01-02"),
		"fallback_rate", s.fallbackRate.String())
	return &domain.ResolvedRate{Rate: s.fallbackRate, Source: domain.RateSourceFallback}, nil
}

// ResolveRatesBatch resolves rates for multiple dates with two queries: one
// batched on-or-before lookup, one latest-rate lookup for the dates the first
// query missed.
func (s *exchangeRateService) ResolveRatesBatch(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ResolvedRate, error) {
	days := make([]time.Time, 0, len(dates))
	seen := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		day := truncateToDate(d)
		if _, ok := seen[day]; !ok {
			seen[day] = struct{}{}
			days = append(days, day)
		}
	}

	found, err := s.rateRepo.FindRatesOnOrBefore(ctx, agencyID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-resolve exchange rates: %w", err)
	}

	result := make(map[time.Time]domain.ResolvedRate, len(days))
	var missing []time.Time
	for _, day := range days {
		if er, ok := found[day]; ok {
			source := domain.RateSourceNearestPrior
			if er.RateDate.Equal(day) {
				source = domain.RateSourceExact
			}
			result[day] = domain.ResolvedRate{Rate: er.Rate, Source: source, RateDate: er.RateDate}
		} else {
			missing = append(missing, day)
		}
	}

	if len(missing) > 0 {
		latest, err := s.rateRepo.FindLatestRate(ctx, agencyID)
		switch {
		case err == nil:
			for _, day := range missing {
				result[day] = domain.ResolvedRate{Rate: latest.Rate, Source: domain.RateSourceLatest, RateDate: latest.RateDate}
			}
		case errors.Is(err, apperrors.ErrNotFound):
			s.LogWarn(ctx, "no exchange rates recorded, using configured fallback for batch",
				"agency_id", agencyID, "missing_dates", len(missing))
			for _, day := range missing {
				result[day] = domain.ResolvedRate{Rate: s.fallbackRate, Source: domain.RateSourceFallback}
			}
		default:
			return nil, fmt.Errorf("failed to batch-resolve exchange rates: %w", err)
		}
	}

	return result, nil
}
