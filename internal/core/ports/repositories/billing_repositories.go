package repositories

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// PlanReader defines read operations for subscription plan data
type PlanReader interface {
	// FindPlanByID retrieves a specific plan.
	FindPlanByID(ctx context.Context, planID string) (*domain.SubscriptionPlan, error)

	// ListPlans retrieves the active plan catalogue.
	ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error)
}

// PlanWriter defines write operations for subscription plan data
type PlanWriter interface {
	// SavePlan persists a new plan.
	SavePlan(ctx context.Context, plan domain.SubscriptionPlan) error
}

// SubscriptionReader defines read operations for subscription data
type SubscriptionReader interface {
	// FindSubscriptionByAgency retrieves the agency's subscription.
	FindSubscriptionByAgency(ctx context.Context, agencyID string) (*domain.Subscription, error)
}

// SubscriptionWriter defines write operations for subscription data
type SubscriptionWriter interface {
	// SaveSubscription persists a new subscription.
	SaveSubscription(ctx context.Context, sub domain.Subscription) error

	// ChangePlan updates the subscription's plan and appends the billing
	// events in one transaction.
	ChangePlan(ctx context.Context, sub domain.Subscription, events []domain.BillingEvent) error
}

// BillingEventReader defines read operations for billing event data
type BillingEventReader interface {
	// ListBillingEvents retrieves an agency's billing events, newest first.
	ListBillingEvents(ctx context.Context, agencyID string, limit, offset int) ([]domain.BillingEvent, error)
}

// BillingRepositoryFacade combines all billing repository interfaces.
type BillingRepositoryFacade interface {
	PlanReader
	PlanWriter
	SubscriptionReader
	SubscriptionWriter
	BillingEventReader
}
