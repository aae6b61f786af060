package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreatePlanRequest defines the data needed to register a subscription plan.
type CreatePlanRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice" binding:"required"`
	Currency     domain.Currency `json:"currency" binding:"required,currency"`
	Features     string          `json:"features"`
}

// PlanResponse defines the data returned for a subscription plan.
type PlanResponse struct {
	PlanID       string          `json:"planID"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	Currency     domain.Currency `json:"currency"`
	Features     string          `json:"features"`
	IsActive     bool            `json:"isActive"`
}

// ToPlanResponse converts a domain.SubscriptionPlan to PlanResponse.
func ToPlanResponse(p *domain.SubscriptionPlan) PlanResponse {
	return PlanResponse{
		PlanID:       p.PlanID,
		Code:         p.Code,
		Name:         p.Name,
		MonthlyPrice: p.MonthlyPrice,
		Currency:     p.Currency,
		Features:     p.Features,
		IsActive:     p.IsActive,
	}
}

// ToListPlanResponse converts a slice of plans to response DTOs.
func ToListPlanResponse(plans []domain.SubscriptionPlan) []PlanResponse {
	res := make([]PlanResponse, len(plans))
	for i := range plans {
		res[i] = ToPlanResponse(&plans[i])
	}
	return res
}

// SubscriptionResponse defines the data returned for an agency subscription.
type SubscriptionResponse struct {
	SubscriptionID     string                    `json:"subscriptionID"`
	AgencyID           string                    `json:"agencyID"`
	PlanID             string                    `json:"planID"`
	Status             domain.SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time                 `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time                 `json:"currentPeriodEnd"`
	CreatedAt          time.Time                 `json:"createdAt"`
	LastUpdatedAt      time.Time                 `json:"lastUpdatedAt"`
}

// ToSubscriptionResponse converts a domain.Subscription to SubscriptionResponse.
func ToSubscriptionResponse(s *domain.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SubscriptionID:     s.SubscriptionID,
		AgencyID:           s.AgencyID,
		PlanID:             s.PlanID,
		Status:             s.Status,
		CurrentPeriodStart: s.CurrentPeriodStart,
		CurrentPeriodEnd:   s.CurrentPeriodEnd,
		CreatedAt:          s.CreatedAt,
		LastUpdatedAt:      s.LastUpdatedAt,
	}
}

// PlanChangePreviewRequest asks what switching to a new plan would cost today.
type PlanChangePreviewRequest struct {
	NewPlanID string `json:"newPlanID" binding:"required"`
}

// ChangePlanRequest defines the data needed to move a subscription to a new
// plan. ConfirmationToken is required when the change is a downgrade.
type ChangePlanRequest struct {
	NewPlanID         string `json:"newPlanID" binding:"required"`
	ConfirmationToken string `json:"confirmationToken"`
}

// PlanChangePreviewResponse reports the prorated cost of switching plans today.
type PlanChangePreviewResponse struct {
	CurrentPlanID        string          `json:"currentPlanID"`
	NewPlanID            string          `json:"newPlanID"`
	IsUpgrade            bool            `json:"isUpgrade"`
	Credit               decimal.Decimal `json:"credit"`
	NewCost              decimal.Decimal `json:"newCost"`
	Charge               decimal.Decimal `json:"charge"`
	DaysInPeriod         int             `json:"daysInPeriod"`
	DaysRemaining        int             `json:"daysRemaining"`
	RequiresConfirmation bool            `json:"requiresConfirmation"`
	ConfirmationToken    string          `json:"confirmationToken,omitempty"`
}

// BillingEventResponse defines the data returned for a billing history entry.
type BillingEventResponse struct {
	EventID        string                  `json:"eventID"`
	AgencyID       string                  `json:"agencyID"`
	SubscriptionID string                  `json:"subscriptionID"`
	EventType      domain.BillingEventType `json:"eventType"`
	Amount         *decimal.Decimal        `json:"amount,omitempty"`
	Currency       domain.Currency         `json:"currency"`
	Details        string                  `json:"details,omitempty"`
	CreatedAt      time.Time               `json:"createdAt"`
}

// ToBillingEventResponse converts a domain.BillingEvent to BillingEventResponse.
func ToBillingEventResponse(e *domain.BillingEvent) BillingEventResponse {
	return BillingEventResponse{
		EventID:        e.EventID,
		AgencyID:       e.AgencyID,
		SubscriptionID: e.SubscriptionID,
		EventType:      e.EventType,
		Amount:         e.Amount,
		Currency:       e.Currency,
		Details:        e.Details,
		CreatedAt:      e.CreatedAt,
	}
}

// ToListBillingEventResponse converts a slice of events to response DTOs.
func ToListBillingEventResponse(events []domain.BillingEvent) []BillingEventResponse {
	res := make([]BillingEventResponse, len(events))
	for i := range events {
		res[i] = ToBillingEventResponse(&events[i])
	}
	return res
}
