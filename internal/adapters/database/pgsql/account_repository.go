package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for financial account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, agency_id, name, account_type, currency, initial_balance, description, is_active, version, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row pgx.Row) (*domain.FinancialAccount, error) {
	var acc domain.FinancialAccount
	err := row.Scan(
		&acc.AccountID,
		&acc.AgencyID,
		&acc.Name,
		&acc.AccountType,
		&acc.Currency,
		&acc.InitialBalance,
		&acc.Description,
		&acc.IsActive,
		&acc.Version,
		&acc.CreatedAt,
		&acc.CreatedBy,
		&acc.LastUpdatedAt,
		&acc.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.FinancialAccount) error {
	query := `
		INSERT INTO financial_accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.AgencyID,
		account.Name,
		account.AccountType,
		account.Currency,
		account.InitialBalance,
		account.Description,
		account.IsActive,
		account.Version,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, account.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.FinancialAccount{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM financial_accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	defer rows.Close()

	accountsMap := make(map[string]domain.FinancialAccount, len(accountIDs))
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accountsMap[acc.AccountID] = *acc
	}
	return accountsMap, rows.Err()
}

// ListAccounts retrieves the accounts of an agency.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, agencyID string, includeInactive bool) ([]domain.FinancialAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM financial_accounts
		WHERE agency_id = $1 AND (is_active OR $2)
		ORDER BY created_at;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts of agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	var accounts []domain.FinancialAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	return accounts, rows.Err()
}

// CountAccounts reports how many accounts an agency has.
func (r *PgxAccountRepository) CountAccounts(ctx context.Context, agencyID string) (int, error) {
	var count int
	err := r.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM financial_accounts WHERE agency_id = $1;`, agencyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count accounts of agency %s: %w", agencyID, err)
	}
	return count, nil
}

// UpdateAccount updates an account's mutable fields with an optimistic
// version check. The update only lands when the stored version still matches
// the one the caller read.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.FinancialAccount) error {
	query := `
		UPDATE financial_accounts
		SET name = $2, description = $3, is_active = $4,
		    version = version + 1, last_updated_at = $5, last_updated_by = $6
		WHERE account_id = $1 AND version = $7;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.Description,
		account.IsActive,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
		account.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update account %s: %w", account.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		// Either the row is gone or someone updated it first.
		if _, findErr := r.FindAccountByID(ctx, account.AccountID); findErr != nil {
			return findErr
		}
		return fmt.Errorf("%w: account %s was modified concurrently", apperrors.ErrConflict, account.AccountID)
	}
	return nil
}

// DeleteAccountWithMovements hard-deletes all movements of the account and
// then the account row, in one transaction. Returns the movement count.
func (r *PgxAccountRepository) DeleteAccountWithMovements(ctx context.Context, accountID string) (int64, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM ledger_movements WHERE account_id = $1;`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete movements of account %s: %w", accountID, err)
	}
	deleted := tag.RowsAffected()

	accTag, err := tx.Exec(ctx, `DELETE FROM financial_accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if accTag.RowsAffected() == 0 {
		return 0, apperrors.ErrNotFound
	}

	if err := r.Commit(ctx, tx); err != nil {
		return 0, err
	}
	return deleted, nil
}

// DeleteAccount deletes an account row that has no remaining movements.
func (r *PgxAccountRepository) DeleteAccount(ctx context.Context, accountID string) error {
	tag, err := r.Pool.Exec(ctx, `DELETE FROM financial_accounts WHERE account_id = $1;`, accountID)
	if err != nil {
		return fmt.Errorf("failed to delete account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
