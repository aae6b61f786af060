package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateMovementRequest defines the data needed to register a ledger movement.
type CreateMovementRequest struct {
	AccountID      string              `json:"accountID" binding:"required"`
	MovementType   domain.MovementType `json:"movementType" binding:"required,oneof=INCOME EXPENSE"`
	Concept        string              `json:"concept" binding:"required"`
	Currency       domain.Currency     `json:"currency" binding:"required,currency"`
	AmountOriginal decimal.Decimal     `json:"amountOriginal" binding:"required"`
	// ExchangeRate overrides the resolved rate for ARS movements.
	ExchangeRate *decimal.Decimal `json:"exchangeRate"`
	// Date the movement applies to; drives rate resolution. Defaults to today.
	Date        *time.Time `json:"date"`
	OperationID *string    `json:"operationID"`
	LeadID      *string    `json:"leadID"`
	SellerID    *string    `json:"sellerID"`
	Notes       string     `json:"notes"`
}

// MovementResponse defines the data returned for a ledger movement.
type MovementResponse struct {
	MovementID         string              `json:"movementID"`
	AgencyID           string              `json:"agencyID"`
	AccountID          string              `json:"accountID"`
	MovementType       domain.MovementType `json:"movementType"`
	Concept            string              `json:"concept"`
	Currency           domain.Currency     `json:"currency"`
	AmountOriginal     decimal.Decimal     `json:"amountOriginal"`
	ExchangeRate       *decimal.Decimal    `json:"exchangeRate,omitempty"`
	AmountUSDEquivalent decimal.Decimal    `json:"amountUSDEquivalent"`
	OperationID        *string             `json:"operationID,omitempty"`
	LeadID             *string             `json:"leadID,omitempty"`
	SellerID           *string             `json:"sellerID,omitempty"`
	Notes              string              `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	CreatedBy          string              `json:"createdBy"`
}

// ToMovementResponse converts a domain.LedgerMovement to MovementResponse.
func ToMovementResponse(m *domain.LedgerMovement) MovementResponse {
	return MovementResponse{
		MovementID:          m.MovementID,
		AgencyID:            m.AgencyID,
		AccountID:           m.AccountID,
		MovementType:        m.Type,
		Concept:             m.Concept,
		Currency:            m.Currency,
		AmountOriginal:      m.AmountOriginal,
		ExchangeRate:        m.ExchangeRate,
		AmountUSDEquivalent: m.AmountUSDEquivalent,
		OperationID:         m.OperationID,
		LeadID:              m.LeadID,
		SellerID:            m.SellerID,
		Notes:               m.Notes,
		CreatedAt:           m.CreatedAt,
		CreatedBy:           m.CreatedBy,
	}
}

// ToListMovementResponse converts a slice of movements to response DTOs.
func ToListMovementResponse(movements []domain.LedgerMovement) []MovementResponse {
	res := make([]MovementResponse, len(movements))
	for i := range movements {
		res[i] = ToMovementResponse(&movements[i])
	}
	return res
}
