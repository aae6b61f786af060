package repositories

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// ExchangeRateReader defines read operations for exchange rate data
type ExchangeRateReader interface {
	// FindRateByDate retrieves the rate row for the exact date.
	FindRateByDate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error)

	// FindNearestPriorRate retrieves the rate row with the greatest date
	// strictly before the given date.
	FindNearestPriorRate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error)

	// FindLatestRate retrieves the most recent rate row of the agency.
	FindLatestRate(ctx context.Context, agencyID string) (*domain.ExchangeRate, error)

	// FindRatesOnOrBefore retrieves, for each requested date, the best
	// available rate row on or before it, in a bounded number of queries.
	FindRatesOnOrBefore(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ExchangeRate, error)

	// ListRates retrieves the agency's rate rows in a date range, oldest first.
	ListRates(ctx context.Context, agencyID string, from, to time.Time) ([]domain.ExchangeRate, error)
}

// ExchangeRateWriter defines write operations for exchange rate data
type ExchangeRateWriter interface {
	// SaveExchangeRate persists a new exchange rate row.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}

// ExchangeRateRepositoryFacade combines all exchange-rate repository interfaces.
type ExchangeRateRepositoryFacade interface {
	ExchangeRateReader
	ExchangeRateWriter
}
