package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateAccountRequest defines the data needed to create a financial account.
type CreateAccountRequest struct {
	Name           string             `json:"name" binding:"required"`
	AccountType    domain.AccountType `json:"accountType" binding:"required,oneof=CASH BANK CARD ASSET"`
	Currency       domain.Currency    `json:"currency" binding:"required,currency"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	Description    string             `json:"description"`
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Pointers distinguish zero-value updates from fields not provided.
type UpdateAccountRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// AccountResponse defines the data returned for a financial account.
type AccountResponse struct {
	AccountID      string             `json:"accountID"`
	AgencyID       string             `json:"agencyID"`
	Name           string             `json:"name"`
	AccountType    domain.AccountType `json:"accountType"`
	Currency       domain.Currency    `json:"currency"`
	InitialBalance decimal.Decimal    `json:"initialBalance"`
	Description    string             `json:"description"`
	IsActive       bool               `json:"isActive"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
	LastUpdatedAt  time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy  string             `json:"lastUpdatedBy"`
}

// ToAccountResponse converts a domain.FinancialAccount to AccountResponse.
func ToAccountResponse(acc *domain.FinancialAccount) AccountResponse {
	return AccountResponse{
		AccountID:      acc.AccountID,
		AgencyID:       acc.AgencyID,
		Name:           acc.Name,
		AccountType:    acc.AccountType,
		Currency:       acc.Currency,
		InitialBalance: acc.InitialBalance,
		Description:    acc.Description,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt,
		CreatedBy:      acc.CreatedBy,
		LastUpdatedAt:  acc.LastUpdatedAt,
		LastUpdatedBy:  acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of accounts to response DTOs.
func ToListAccountResponse(accounts []domain.FinancialAccount) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}

// AccountBalanceResponse defines the data returned for a balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Currency  domain.Currency `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
}

// TransferRequest defines the data needed to move money between two accounts.
type TransferRequest struct {
	FromAccountID string          `json:"fromAccountID" binding:"required"`
	ToAccountID   string          `json:"toAccountID" binding:"required"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	Concept       string          `json:"concept"`
	// Date the transfer settles on; used for rate resolution on
	// cross-currency transfers. Defaults to today.
	Date *time.Time `json:"date"`
}

// TransferResponse reports the movements a transfer created.
type TransferResponse struct {
	FromMovementID string           `json:"fromMovementID"`
	ToMovementID   string           `json:"toMovementID"`
	FXMovementID   *string          `json:"fxMovementID,omitempty"`
	FXAmountUSD    *decimal.Decimal `json:"fxAmountUSD,omitempty"`
}

// DeleteAccountResult reports how an account-delete request resolved.
type DeleteAccountResult struct {
	Deleted               bool    `json:"deleted"`
	RequiresConfirmation  bool    `json:"requiresConfirmation,omitempty"`
	ConfirmationToken     string  `json:"confirmationToken,omitempty"`
	DeletedMovementsCount int64   `json:"deletedMovementsCount"`
	TransferredTo         *string `json:"transferredTo,omitempty"`
}
