package repositories

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// AccountReader defines read operations for financial account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.FinancialAccount, error)

	// FindAccountsByIDs retrieves multiple accounts by their IDs.
	FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.FinancialAccount, error)

	// ListAccounts retrieves the accounts of an agency.
	ListAccounts(ctx context.Context, agencyID string, includeInactive bool) ([]domain.FinancialAccount, error)

	// CountAccounts reports how many accounts an agency has.
	CountAccounts(ctx context.Context, agencyID string) (int, error)
}

// AccountWriter defines write operations for financial account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.FinancialAccount) error

	// UpdateAccount updates an existing account's details with an optimistic
	// version check; returns apperrors.ErrConflict when the version is stale.
	UpdateAccount(ctx context.Context, account domain.FinancialAccount) error

	// DeleteAccountWithMovements hard-deletes all ledger movements of the
	// account and then the account row, in one transaction. It returns the
	// number of deleted movements.
	DeleteAccountWithMovements(ctx context.Context, accountID string) (int64, error)

	// DeleteAccount deletes an account row that has no remaining movements.
	DeleteAccount(ctx context.Context, accountID string) error
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
