package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MovementType indicates how a ledger movement affects its account balance.
type MovementType string

const (
	Income  MovementType = "INCOME"
	Expense MovementType = "EXPENSE"
	FXGain  MovementType = "FX_GAIN"
	FXLoss  MovementType = "FX_LOSS"
)

// Sign returns the multiplier the movement type applies to the account
// balance: INCOME and FX_GAIN add, EXPENSE and FX_LOSS subtract.
func (t MovementType) Sign() decimal.Decimal {
	switch t {
	case Expense, FXLoss:
		return decimal.NewFromInt(-1)
	default:
		return decimal.NewFromInt(1)
	}
}

// LedgerMovement is an immutable-once-created ledger row against a financial
// account. AmountUSDEquivalent normalizes the original amount to USD, the
// system's base unit; for ARS movements it is AmountOriginal / ExchangeRate,
// for USD movements it equals AmountOriginal and ExchangeRate is nil.
type LedgerMovement struct {
	MovementID          string           `json:"movementID"` // Primary Key (UUID)
	AgencyID            string           `json:"agencyID"`
	AccountID           string           `json:"accountID"`
	Type                MovementType     `json:"type"`
	Concept             string           `json:"concept"`
	Currency            Currency         `json:"currency"`
	AmountOriginal      decimal.Decimal  `json:"amountOriginal"`
	ExchangeRate        *decimal.Decimal `json:"exchangeRate,omitempty"` // ARS per USD, nil for USD movements
	AmountUSDEquivalent decimal.Decimal  `json:"amountUSDEquivalent"`
	OperationID         *string          `json:"operationID,omitempty"`
	LeadID              *string          `json:"leadID,omitempty"`
	SellerID            *string          `json:"sellerID,omitempty"`
	Notes               string           `json:"notes"`
	AuditFields
}

// SignedAmount returns the movement's contribution to the account balance in
// the account's native currency.
func (m LedgerMovement) SignedAmount() decimal.Decimal {
	return m.AmountOriginal.Mul(m.Type.Sign())
}

// ConvertToUSD is the single place the USD-equivalence rule lives: ARS
// amounts divide by the ARS-per-USD rate, USD amounts pass through untouched.
// Every ledger write goes through this function so call sites cannot drift.
func ConvertToUSD(amount decimal.Decimal, currency Currency, rate decimal.Decimal) (decimal.Decimal, error) {
	switch currency {
	case USD:
		return amount, nil
	case ARS:
		if rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero, fmt.Errorf("exchange rate must be positive to convert ARS, got %s", rate)
		}
		return amount.DivRound(rate, 6), nil
	default:
		return decimal.Zero, fmt.Errorf("unsupported currency %q", currency)
	}
}
