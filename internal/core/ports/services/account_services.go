package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// AccountReaderSvc defines read operations for account data
type AccountReaderSvc interface {
	// GetAccountByID retrieves a specific account by its unique identifier.
	GetAccountByID(ctx context.Context, agencyID string, accountID string, userID string) (*domain.FinancialAccount, error)

	// ListAccounts retrieves the accounts of an agency.
	ListAccounts(ctx context.Context, agencyID string, userID string, includeInactive bool) ([]domain.FinancialAccount, error)
}

// AccountWriterSvc defines write operations for account data
type AccountWriterSvc interface {
	// CreateAccount persists a new account.
	CreateAccount(ctx context.Context, agencyID string, req dto.CreateAccountRequest, userID string) (*domain.FinancialAccount, error)

	// UpdateAccount updates an existing account's details.
	UpdateAccount(ctx context.Context, agencyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.FinancialAccount, error)

	// DeleteAccount runs the account deletion state machine: refuse when the
	// balance is non-zero and nothing says where the money goes, transfer
	// then delete when transferToAccountID is set, and for the last account
	// require a short-lived confirmation token before hard-deleting the
	// movements with it.
	DeleteAccount(ctx context.Context, agencyID string, accountID string, userID string, transferToAccountID string, confirmationToken string) (*dto.DeleteAccountResult, error)
}

// AccountCalculatorSvc defines balance operations for account data
type AccountCalculatorSvc interface {
	// CalculateAccountBalance derives one account's balance from its initial
	// balance and the signed sum of its movements.
	CalculateAccountBalance(ctx context.Context, agencyID string, accountID string, userID string) (decimal.Decimal, error)

	// CalculateAccountBalances derives balances for all the agency's
	// accounts in a fixed number of queries, keyed by account ID.
	CalculateAccountBalances(ctx context.Context, agencyID string, userID string) (map[string]decimal.Decimal, error)
}

// AccountTransferSvc moves money between two accounts of the same agency.
type AccountTransferSvc interface {
	// Transfer posts an EXPENSE leg on the source and an INCOME leg on the
	// destination in one transaction. Cross-currency transfers convert
	// through the rate resolver and post an FX_GAIN/FX_LOSS leg when the two
	// sides differ by more than one cent USD.
	Transfer(ctx context.Context, agencyID string, req dto.TransferRequest, userID string) (*dto.TransferResponse, error)
}

// AccountSvcFacade combines all account-related service interfaces
// This is a facade for clients that need access to all operations
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	AccountCalculatorSvc
	AccountTransferSvc
}
