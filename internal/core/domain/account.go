package domain

import "github.com/shopspring/decimal"

// AccountType classifies a financial account by where the money sits.
type AccountType string

const (
	Cash  AccountType = "CASH"
	Bank  AccountType = "BANK"
	Card  AccountType = "CARD"
	Asset AccountType = "ASSET"
)

// FinancialAccount represents an agency-owned pool of money in a single
// currency. The current balance is never persisted: it is always derived as
// initial_balance plus the signed sum of the account's ledger movements.
type FinancialAccount struct {
	AccountID      string          `json:"accountID"` // Primary Key (UUID)
	AgencyID       string          `json:"agencyID"`
	Name           string          `json:"name"`
	AccountType    AccountType     `json:"accountType"`
	Currency       Currency        `json:"currency"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Description    string          `json:"description"`
	IsActive       bool            `json:"isActive"`
	Version        int64           `json:"version"` // optimistic concurrency guard
	AuditFields
}
