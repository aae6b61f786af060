package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxMovementRepository struct {
	BaseRepository
}

// newPgxMovementRepository creates a new repository for ledger movement data.
func newPgxMovementRepository(pool *pgxpool.Pool) portsrepo.MovementRepositoryFacade {
	return &PgxMovementRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

const movementColumns = `movement_id, agency_id, account_id, type, concept, currency, amount_original, exchange_rate, amount_usd_equivalent, operation_id, lead_id, seller_id, notes, created_at, created_by, last_updated_at, last_updated_by`

func scanMovement(row pgx.Row) (*domain.LedgerMovement, error) {
	var m domain.LedgerMovement
	err := row.Scan(
		&m.MovementID,
		&m.AgencyID,
		&m.AccountID,
		&m.Type,
		&m.Concept,
		&m.Currency,
		&m.AmountOriginal,
		&m.ExchangeRate,
		&m.AmountUSDEquivalent,
		&m.OperationID,
		&m.LeadID,
		&m.SellerID,
		&m.Notes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindMovementByID retrieves a movement by its ID.
func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, movementID string) (*domain.LedgerMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM ledger_movements WHERE movement_id = $1;`
	m, err := scanMovement(r.Pool.QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find movement by ID %s: %w", movementID, err)
	}
	return m, nil
}

// ListMovementsByAccount retrieves a page of an account's movements, newest first.
func (r *PgxMovementRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements
		WHERE account_id = $1
		ORDER BY created_at DESC, movement_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of account %s: %w", accountID, err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

// ListMovementsByOperation retrieves all movements linked to an operation.
func (r *PgxMovementRepository) ListMovementsByOperation(ctx context.Context, operationID string) ([]domain.LedgerMovement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements
		WHERE operation_id = $1
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements of operation %s: %w", operationID, err)
	}
	defer rows.Close()
	return collectMovements(rows)
}

func collectMovements(rows pgx.Rows) ([]domain.LedgerMovement, error) {
	var movements []domain.LedgerMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, *m)
	}
	return movements, rows.Err()
}

// SumSignedAmountsByAccount aggregates the signed movement amounts of one
// account in its native currency.
func (r *PgxMovementRepository) SumSignedAmountsByAccount(ctx context.Context, accountID string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type IN ('EXPENSE', 'FX_LOSS') THEN -amount_original ELSE amount_original END), 0)
		FROM ledger_movements
		WHERE account_id = $1;
	`
	var sum decimal.Decimal
	if err := r.Pool.QueryRow(ctx, query, accountID).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum movements of account %s: %w", accountID, err)
	}
	return sum, nil
}

// SumSignedAmountsByAccounts aggregates signed movement amounts for many
// accounts in one query.
func (r *PgxMovementRepository) SumSignedAmountsByAccounts(ctx context.Context, accountIDs []string) (map[string]decimal.Decimal, error) {
	if len(accountIDs) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	query := `
		SELECT account_id,
		       COALESCE(SUM(CASE WHEN type IN ('EXPENSE', 'FX_LOSS') THEN -amount_original ELSE amount_original END), 0)
		FROM ledger_movements
		WHERE account_id = ANY($1)
		GROUP BY account_id;
	`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements by accounts: %w", err)
	}
	defer rows.Close()

	sums := make(map[string]decimal.Decimal, len(accountIDs))
	for rows.Next() {
		var accountID string
		var sum decimal.Decimal
		if err := rows.Scan(&accountID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan movement sum row: %w", err)
		}
		sums[accountID] = sum
	}
	return sums, rows.Err()
}

// SaveMovements inserts the movements atomically in a fresh transaction.
func (r *PgxMovementRepository) SaveMovements(ctx context.Context, movements []domain.LedgerMovement, versions map[string]int64) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.SaveMovementsInTx(ctx, tx, movements, versions); err != nil {
		return err
	}
	return r.Commit(ctx, tx)
}

// SaveMovementsInTx inserts the movements and bumps each affected account's
// version inside the given transaction. A version bump that hits zero rows
// means the account changed underneath the caller and surfaces ErrConflict.
func (r *PgxMovementRepository) SaveMovementsInTx(ctx context.Context, tx pgx.Tx, movements []domain.LedgerMovement, versions map[string]int64) error {
	for accountID, version := range versions {
		tag, err := tx.Exec(ctx, `
			UPDATE financial_accounts
			SET version = version + 1
			WHERE account_id = $1 AND version = $2;
		`, accountID, version)
		if err != nil {
			return fmt.Errorf("failed to bump version of account %s: %w", accountID, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: account %s was modified concurrently", apperrors.ErrConflict, accountID)
		}
	}

	batch := &pgx.Batch{}
	insertQuery := `
		INSERT INTO ledger_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	for _, m := range movements {
		batch.Queue(insertQuery,
			m.MovementID,
			m.AgencyID,
			m.AccountID,
			m.Type,
			m.Concept,
			m.Currency,
			m.AmountOriginal,
			m.ExchangeRate,
			m.AmountUSDEquivalent,
			m.OperationID,
			m.LeadID,
			m.SellerID,
			m.Notes,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}
	results := tx.SendBatch(ctx, batch)
	defer results.Close()
	for range movements {
		if _, err := results.Exec(); err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: duplicate movement ID", apperrors.ErrDuplicate)
			}
			return fmt.Errorf("failed to insert movement: %w", err)
		}
	}
	return results.Close()
}
