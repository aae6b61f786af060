package services

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// PlanSvc defines operations on the platform plan catalogue
type PlanSvc interface {
	// ListPlans retrieves the active plan catalogue. Public.
	ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)

	// CreatePlan registers a new plan. Platform administration only.
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest, userID string) (*domain.SubscriptionPlan, error)
}

// SubscriptionSvc defines operations on agency subscriptions
type SubscriptionSvc interface {
	// GetSubscription retrieves the agency's subscription.
	GetSubscription(ctx context.Context, agencyID string, userID string) (*domain.Subscription, error)

	// PreviewPlanChange computes the day-prorated cost of switching to a new
	// plan today, without changing anything. Downgrades get a confirmation
	// token the change-plan call must echo back.
	PreviewPlanChange(ctx context.Context, agencyID string, req dto.PlanChangePreviewRequest, userID string) (*dto.PlanChangePreviewResponse, error)

	// ChangePlan moves the subscription to the new plan, writing the plan
	// change and any prorated charge as billing events in one transaction.
	// Downgrades require a valid confirmation token.
	ChangePlan(ctx context.Context, agencyID string, req dto.ChangePlanRequest, userID string) (*domain.Subscription, error)

	// ListBillingEvents retrieves the agency's billing history, newest first.
	ListBillingEvents(ctx context.Context, agencyID string, userID string, limit, offset int) ([]domain.BillingEvent, error)
}

// BillingSvcFacade combines plan and subscription service interfaces
type BillingSvcFacade interface {
	PlanSvc
	SubscriptionSvc
}
