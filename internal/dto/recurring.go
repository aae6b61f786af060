package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateRecurringPaymentRequest defines the data needed to schedule a
// recurring operator payment.
type CreateRecurringPaymentRequest struct {
	OperatorName string                    `json:"operatorName" binding:"required"`
	Concept      string                    `json:"concept" binding:"required"`
	Currency     domain.Currency           `json:"currency" binding:"required,currency"`
	Amount       decimal.Decimal           `json:"amount" binding:"required"`
	Frequency    domain.RecurringFrequency `json:"frequency" binding:"required,oneof=WEEKLY BIWEEKLY MONTHLY QUARTERLY YEARLY"`
	StartDate    time.Time                 `json:"startDate" binding:"required" time_format:"2006-01-02"`
	EndDate      *time.Time                `json:"endDate" time_format:"2006-01-02"`
	AccountID    *string                   `json:"accountID"`
}

// UpdateRecurringPaymentRequest defines the fields that may change on a schedule.
type UpdateRecurringPaymentRequest struct {
	OperatorName *string          `json:"operatorName"`
	Concept      *string          `json:"concept"`
	Amount       *decimal.Decimal `json:"amount"`
	EndDate      *time.Time       `json:"endDate" time_format:"2006-01-02"`
	IsActive     *bool            `json:"isActive"`
	AccountID    *string          `json:"accountID"`
}

// RecurringPaymentResponse defines the data returned for a recurring schedule.
type RecurringPaymentResponse struct {
	RecurringID   string                    `json:"recurringID"`
	AgencyID      string                    `json:"agencyID"`
	OperatorName  string                    `json:"operatorName"`
	Concept       string                    `json:"concept"`
	Currency      domain.Currency           `json:"currency"`
	Amount        decimal.Decimal           `json:"amount"`
	Frequency     domain.RecurringFrequency `json:"frequency"`
	NextDueDate   time.Time                 `json:"nextDueDate"`
	StartDate     time.Time                 `json:"startDate"`
	EndDate       *time.Time                `json:"endDate,omitempty"`
	IsActive      bool                      `json:"isActive"`
	AccountID     *string                   `json:"accountID,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	CreatedBy     string                    `json:"createdBy"`
	LastUpdatedAt time.Time                 `json:"lastUpdatedAt"`
	LastUpdatedBy string                    `json:"lastUpdatedBy"`
}

// ToRecurringPaymentResponse converts a domain.RecurringPayment to its DTO.
func ToRecurringPaymentResponse(rp *domain.RecurringPayment) RecurringPaymentResponse {
	return RecurringPaymentResponse{
		RecurringID:   rp.RecurringID,
		AgencyID:      rp.AgencyID,
		OperatorName:  rp.OperatorName,
		Concept:       rp.Concept,
		Currency:      rp.Currency,
		Amount:        rp.Amount,
		Frequency:     rp.Frequency,
		NextDueDate:   rp.NextDueDate,
		StartDate:     rp.StartDate,
		EndDate:       rp.EndDate,
		IsActive:      rp.IsActive,
		AccountID:     rp.AccountID,
		CreatedAt:     rp.CreatedAt,
		CreatedBy:     rp.CreatedBy,
		LastUpdatedAt: rp.LastUpdatedAt,
		LastUpdatedBy: rp.LastUpdatedBy,
	}
}

// ToListRecurringPaymentResponse converts a slice of schedules to response DTOs.
func ToListRecurringPaymentResponse(rps []domain.RecurringPayment) []RecurringPaymentResponse {
	res := make([]RecurringPaymentResponse, len(rps))
	for i := range rps {
		res[i] = ToRecurringPaymentResponse(&rps[i])
	}
	return res
}

// RunDueResponse reports the outcome of a due-generation run.
type RunDueResponse struct {
	GeneratedPaymentIDs []string `json:"generatedPaymentIDs"`
	GeneratedCount      int      `json:"generatedCount"`
}
