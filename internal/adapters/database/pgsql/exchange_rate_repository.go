package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxExchangeRateRepository struct {
	BaseRepository
}

// newPgxExchangeRateRepository creates a new repository for exchange rate data.
func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, agency_id, rate_date, rate, created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (*domain.ExchangeRate, error) {
	var er domain.ExchangeRate
	err := row.Scan(
		&er.ExchangeRateID,
		&er.AgencyID,
		&er.RateDate,
		&er.Rate,
		&er.CreatedAt,
		&er.CreatedBy,
		&er.LastUpdatedAt,
		&er.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &er, nil
}

// SaveExchangeRate inserts a rate row. One row per agency per date.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := r.Pool.Exec(ctx, query,
		rate.ExchangeRateID,
		rate.AgencyID,
		rate.RateDate,
		rate.Rate,
		rate.CreatedAt,
		rate.CreatedBy,
		rate.LastUpdatedAt,
		rate.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: rate for %s already recorded", apperrors.ErrDuplicate, rate.RateDate.Format("2006-01-02"))
		}
		return fmt.Errorf("failed to save exchange rate: %w", err)
	}
	return nil
}

// FindRateByDate retrieves the rate row for the exact date.
func (r *PgxExchangeRateRepository) FindRateByDate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error) {
	query := `SELECT ` + exchangeRateColumns + ` FROM exchange_rates WHERE agency_id = $1 AND rate_date = $2;`
	er, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, agencyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find exchange rate for %s: %w", date.Format("2006-01-02"), err)
	}
	return er, nil
}

// FindNearestPriorRate retrieves the newest rate row strictly before date.
func (r *PgxExchangeRateRepository) FindNearestPriorRate(ctx context.Context, agencyID string, date time.Time) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE agency_id = $1 AND rate_date < $2
		ORDER BY rate_date DESC
		LIMIT 1;
	`
	er, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, agencyID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find prior exchange rate for %s: %w", date.Format("2006-01-02"), err)
	}
	return er, nil
}

// FindLatestRate retrieves the most recent rate row of the agency.
func (r *PgxExchangeRateRepository) FindLatestRate(ctx context.Context, agencyID string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE agency_id = $1
		ORDER BY rate_date DESC
		LIMIT 1;
	`
	er, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest exchange rate: %w", err)
	}
	return er, nil
}

// FindRatesOnOrBefore retrieves, for each requested date, the newest rate row
// on or before it. One query via a lateral join against the distinct dates.
func (r *PgxExchangeRateRepository) FindRatesOnOrBefore(ctx context.Context, agencyID string, dates []time.Time) (map[time.Time]domain.ExchangeRate, error) {
	if len(dates) == 0 {
		return map[time.Time]domain.ExchangeRate{}, nil
	}
	query := `
		SELECT d.wanted, er.exchange_rate_id, er.agency_id, er.rate_date, er.rate,
		       er.created_at, er.created_by, er.last_updated_at, er.last_updated_by
		FROM unnest($2::date[]) AS d(wanted)
		JOIN LATERAL (
			SELECT *
			FROM exchange_rates
			WHERE agency_id = $1 AND rate_date <= d.wanted
			ORDER BY rate_date DESC
			LIMIT 1
		) er ON true;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to batch-resolve exchange rates: %w", err)
	}
	defer rows.Close()

	result := make(map[time.Time]domain.ExchangeRate, len(dates))
	for rows.Next() {
		var wanted time.Time
		var er domain.ExchangeRate
		err := rows.Scan(
			&wanted,
			&er.ExchangeRateID,
			&er.AgencyID,
			&er.RateDate,
			&er.Rate,
			&er.CreatedAt,
			&er.CreatedBy,
			&er.LastUpdatedAt,
			&er.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan batch rate row: %w", err)
		}
		result[wanted] = er
	}
	return result, rows.Err()
}

// ListRates retrieves the agency's rate rows in a date range, oldest first.
func (r *PgxExchangeRateRepository) ListRates(ctx context.Context, agencyID string, from, to time.Time) ([]domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE agency_id = $1 AND rate_date BETWEEN $2 AND $3
		ORDER BY rate_date;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	defer rows.Close()

	var rates []domain.ExchangeRate
	for rows.Next() {
		er, err := scanExchangeRate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate row: %w", err)
		}
		rates = append(rates, *er)
	}
	return rates, rows.Err()
}
