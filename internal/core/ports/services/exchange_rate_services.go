package services

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// ExchangeRateReaderSvc defines read operations for exchange rate data
type ExchangeRateReaderSvc interface {
	// ListRates retrieves the agency's stored rates in a date range.
	ListRates(ctx context.Context, agencyID string, userID string, from, to time.Time) ([]domain.ExchangeRate, error)

	// ResolveRate resolves the ARS/USD rate for a date: exact match, then
	// nearest prior date, then the latest stored rate, then the configured
	// fallback.
	ResolveRate(ctx context.Context, agencyID string, date time.Time) (*domain.ResolvedRate, error)

	// ResolveRatesBatch resolves rates for multiple dates in a bounded number
	// of queries, keyed by date.
	ResolveRatesBatch(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ResolvedRate, error)
}

// ExchangeRateWriterSvc defines write operations for exchange rate data
type ExchangeRateWriterSvc interface {
	// CreateExchangeRate records the rate for a date; one row per agency per
	// day, duplicates rejected.
	CreateExchangeRate(ctx context.Context, agencyID string, req dto.CreateExchangeRateRequest, userID string) (*domain.ExchangeRate, error)
}

// ExchangeRateSvcFacade combines all exchange-rate service interfaces
type ExchangeRateSvcFacade interface {
	ExchangeRateReaderSvc
	ExchangeRateWriterSvc
}
