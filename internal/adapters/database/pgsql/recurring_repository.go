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

type PgxRecurringRepository struct {
	BaseRepository
}

// newPgxRecurringRepository creates a new repository for recurring payment
// schedules.
func newPgxRecurringRepository(pool *pgxpool.Pool) portsrepo.RecurringRepositoryFacade {
	return &PgxRecurringRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.RecurringRepositoryFacade = (*PgxRecurringRepository)(nil)

const recurringColumns = `recurring_id, agency_id, operator_name, concept, currency, amount, frequency, next_due_date, start_date, end_date, is_active, account_id, created_at, created_by, last_updated_at, last_updated_by`

func scanRecurring(row pgx.Row) (*domain.RecurringPayment, error) {
	var rec domain.RecurringPayment
	err := row.Scan(
		&rec.RecurringID,
		&rec.AgencyID,
		&rec.OperatorName,
		&rec.Concept,
		&rec.Currency,
		&rec.Amount,
		&rec.Frequency,
		&rec.NextDueDate,
		&rec.StartDate,
		&rec.EndDate,
		&rec.IsActive,
		&rec.AccountID,
		&rec.CreatedAt,
		&rec.CreatedBy,
		&rec.LastUpdatedAt,
		&rec.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveRecurring inserts a new schedule.
func (r *PgxRecurringRepository) SaveRecurring(ctx context.Context, rec domain.RecurringPayment) error {
	query := `
		INSERT INTO recurring_payments (` + recurringColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.Pool.Exec(ctx, query,
		rec.RecurringID,
		rec.AgencyID,
		rec.OperatorName,
		rec.Concept,
		rec.Currency,
		rec.Amount,
		rec.Frequency,
		rec.NextDueDate,
		rec.StartDate,
		rec.EndDate,
		rec.IsActive,
		rec.AccountID,
		rec.CreatedAt,
		rec.CreatedBy,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: recurring payment %s already exists", apperrors.ErrDuplicate, rec.RecurringID)
		}
		return fmt.Errorf("failed to save recurring payment %s: %w", rec.RecurringID, err)
	}
	return nil
}

// FindRecurringByID retrieves a schedule by its ID.
func (r *PgxRecurringRepository) FindRecurringByID(ctx context.Context, recurringID string) (*domain.RecurringPayment, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_payments WHERE recurring_id = $1;`
	rec, err := scanRecurring(r.Pool.QueryRow(ctx, query, recurringID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find recurring payment by ID %s: %w", recurringID, err)
	}
	return rec, nil
}

// ListRecurring retrieves all schedules of an agency.
func (r *PgxRecurringRepository) ListRecurring(ctx context.Context, agencyID string) ([]domain.RecurringPayment, error) {
	query := `SELECT ` + recurringColumns + ` FROM recurring_payments WHERE agency_id = $1 ORDER BY next_due_date;`
	rows, err := r.Pool.Query(ctx, query, agencyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring payments of agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	var recs []domain.RecurringPayment
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recurring payment row: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// UpdateRecurring updates an existing schedule.
func (r *PgxRecurringRepository) UpdateRecurring(ctx context.Context, rec domain.RecurringPayment) error {
	query := `
		UPDATE recurring_payments
		SET operator_name = $2, concept = $3, amount = $4, end_date = $5,
		    is_active = $6, account_id = $7, last_updated_at = $8, last_updated_by = $9
		WHERE recurring_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		rec.RecurringID,
		rec.OperatorName,
		rec.Concept,
		rec.Amount,
		rec.EndDate,
		rec.IsActive,
		rec.AccountID,
		rec.LastUpdatedAt,
		rec.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update recurring payment %s: %w", rec.RecurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteRecurring removes a schedule.
func (r *PgxRecurringRepository) DeleteRecurring(ctx context.Context, recurringID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM recurring_payments WHERE recurring_id = $1;`, recurringID)
	if err != nil {
		return fmt.Errorf("failed to delete recurring payment %s: %w", recurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindDueForUpdate selects and locks the agency's due schedules inside the
// given transaction. SKIP LOCKED lets two concurrent run-due triggers split
// the rows instead of deadlocking.
func (r *PgxRecurringRepository) FindDueForUpdate(ctx context.Context, tx pgx.Tx, agencyID string, today time.Time) ([]domain.RecurringPayment, error) {
	query := `
		SELECT ` + recurringColumns + `
		FROM recurring_payments
		WHERE agency_id = $1 AND is_active
		  AND next_due_date <= $2 AND start_date <= $2
		  AND (end_date IS NULL OR end_date >= $2)
		ORDER BY next_due_date
		FOR UPDATE SKIP LOCKED;
	`
	rows, err := tx.Query(ctx, query, agencyID, today)
	if err != nil {
		return nil, fmt.Errorf("failed to lock due recurring payments: %w", err)
	}
	defer rows.Close()

	var recs []domain.RecurringPayment
	for rows.Next() {
		rec, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan due recurring payment row: %w", err)
		}
		recs = append(recs, *rec)
	}
	return recs, rows.Err()
}

// AdvanceNextDueInTx moves a schedule's next due date inside the given
// transaction.
func (r *PgxRecurringRepository) AdvanceNextDueInTx(ctx context.Context, tx pgx.Tx, recurringID string, nextDue time.Time, updatedBy string, now time.Time) error {
	query := `
		UPDATE recurring_payments
		SET next_due_date = $2, last_updated_at = $3, last_updated_by = $4
		WHERE recurring_id = $1;
	`
	tag, err := tx.Exec(ctx, query, recurringID, nextDue, now, updatedBy)
	if err != nil {
		return fmt.Errorf("failed to advance next due date of %s: %w", recurringID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
