package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateOperationRequest defines the data needed to create a sale operation.
type CreateOperationRequest struct {
	LeadID            *string         `json:"leadID"`
	Currency          domain.Currency `json:"currency" binding:"required,currency"`
	SaleAmount        decimal.Decimal `json:"saleAmount" binding:"required"`
	CostAmount        decimal.Decimal `json:"costAmount" binding:"required"`
	Region            string          `json:"region" binding:"required"`
	SellerID          string          `json:"sellerID" binding:"required"`
	SecondarySellerID *string         `json:"secondarySellerID"`
	OperationDate     time.Time       `json:"operationDate" binding:"required" time_format:"2006-01-02"`
}

// UpdateOperationRequest defines the fields that may change on a draft operation.
type UpdateOperationRequest struct {
	LeadID            *string          `json:"leadID"`
	SaleAmount        *decimal.Decimal `json:"saleAmount"`
	CostAmount        *decimal.Decimal `json:"costAmount"`
	Region            *string          `json:"region"`
	SellerID          *string          `json:"sellerID"`
	SecondarySellerID *string          `json:"secondarySellerID"`
	OperationDate     *time.Time       `json:"operationDate" time_format:"2006-01-02"`
}

// OperationResponse defines the data returned for an operation.
type OperationResponse struct {
	OperationID       string                 `json:"operationID"`
	AgencyID          string                 `json:"agencyID"`
	LeadID            *string                `json:"leadID,omitempty"`
	Status            domain.OperationStatus `json:"status"`
	Currency          domain.Currency        `json:"currency"`
	SaleAmount        decimal.Decimal        `json:"saleAmount"`
	CostAmount        decimal.Decimal        `json:"costAmount"`
	MarginAmount      decimal.Decimal        `json:"marginAmount"`
	Region            string                 `json:"region"`
	SellerID          string                 `json:"sellerID"`
	SecondarySellerID *string                `json:"secondarySellerID,omitempty"`
	OperationDate     time.Time              `json:"operationDate"`
	CreatedAt         time.Time              `json:"createdAt"`
	CreatedBy         string                 `json:"createdBy"`
	LastUpdatedAt     time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy     string                 `json:"lastUpdatedBy"`
}

// ToOperationResponse converts a domain.Operation to OperationResponse.
func ToOperationResponse(op *domain.Operation) OperationResponse {
	return OperationResponse{
		OperationID:       op.OperationID,
		AgencyID:          op.AgencyID,
		LeadID:            op.LeadID,
		Status:            op.Status,
		Currency:          op.Currency,
		SaleAmount:        op.SaleAmount,
		CostAmount:        op.CostAmount,
		MarginAmount:      op.MarginAmount,
		Region:            op.Region,
		SellerID:          op.SellerID,
		SecondarySellerID: op.SecondarySellerID,
		OperationDate:     op.OperationDate,
		CreatedAt:         op.CreatedAt,
		CreatedBy:         op.CreatedBy,
		LastUpdatedAt:     op.LastUpdatedAt,
		LastUpdatedBy:     op.LastUpdatedBy,
	}
}

// ToListOperationResponse converts a slice of operations to response DTOs.
func ToListOperationResponse(ops []domain.Operation) []OperationResponse {
	res := make([]OperationResponse, len(ops))
	for i := range ops {
		res[i] = ToOperationResponse(&ops[i])
	}
	return res
}

// CreatePaymentRequest defines the data needed to register a payment on an operation.
type CreatePaymentRequest struct {
	Direction    domain.PaymentDirection    `json:"direction" binding:"required,oneof=INCOME EXPENSE"`
	Counterparty domain.PaymentCounterparty `json:"counterparty" binding:"required,oneof=CUSTOMER OPERATOR"`
	Currency     domain.Currency            `json:"currency" binding:"required,currency"`
	Amount       decimal.Decimal            `json:"amount" binding:"required"`
	DueDate      time.Time                  `json:"dueDate" binding:"required" time_format:"2006-01-02"`
}

// UpdatePaymentStatusRequest changes a payment's settlement state. AccountID
// is required when the new status is PAID: the ledger movement posts there.
type UpdatePaymentStatusRequest struct {
	Status    domain.PaymentStatus `json:"status" binding:"required,oneof=PENDING PAID CANCELLED"`
	AccountID *string              `json:"accountID"`
	PaidAt    *time.Time           `json:"paidAt" time_format:"2006-01-02"`
}

// PaymentResponse defines the data returned for an operation payment.
type PaymentResponse struct {
	PaymentID    string                     `json:"paymentID"`
	AgencyID     string                     `json:"agencyID"`
	OperationID  *string                    `json:"operationID,omitempty"`
	Direction    domain.PaymentDirection    `json:"direction"`
	Counterparty domain.PaymentCounterparty `json:"counterparty"`
	Status       domain.PaymentStatus       `json:"status"`
	Currency     domain.Currency            `json:"currency"`
	Amount       decimal.Decimal            `json:"amount"`
	DueDate      time.Time                  `json:"dueDate"`
	PaidAt       *time.Time                 `json:"paidAt,omitempty"`
	AccountID    *string                    `json:"accountID,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt"`
	CreatedBy    string                     `json:"createdBy"`
}

// ToPaymentResponse converts a domain.Payment to PaymentResponse.
func ToPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		PaymentID:    p.PaymentID,
		AgencyID:     p.AgencyID,
		OperationID:  p.OperationID,
		Direction:    p.Direction,
		Counterparty: p.Counterparty,
		Status:       p.Status,
		Currency:     p.Currency,
		Amount:       p.Amount,
		DueDate:      p.DueDate,
		PaidAt:       p.PaidAt,
		AccountID:    p.AccountID,
		CreatedAt:    p.CreatedAt,
		CreatedBy:    p.CreatedBy,
	}
}

// ToListPaymentResponse converts a slice of payments to response DTOs.
func ToListPaymentResponse(payments []domain.Payment) []PaymentResponse {
	res := make([]PaymentResponse, len(payments))
	for i := range payments {
		res[i] = ToPaymentResponse(&payments[i])
	}
	return res
}
