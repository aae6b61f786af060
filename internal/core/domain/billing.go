package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionPlan is a platform-global price tier agencies subscribe to.
type SubscriptionPlan struct {
	PlanID       string          `json:"planID"` // Primary Key (UUID)
	Code         string          `json:"code"`   // stable identifier, e.g. "PRO"
	Name         string          `json:"name"`
	MonthlyPrice decimal.Decimal `json:"monthlyPrice"`
	Currency     Currency        `json:"currency"`
	Features     string          `json:"features"`
	IsActive     bool            `json:"isActive"`
	AuditFields
}

// SubscriptionStatus is the lifecycle state of an agency subscription.
type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

// Subscription binds an agency to a plan for a billing period.
type Subscription struct {
	SubscriptionID     string             `json:"subscriptionID"` // Primary Key (UUID)
	AgencyID           string             `json:"agencyID"`
	PlanID             string             `json:"planID"`
	Status             SubscriptionStatus `json:"status"`
	CurrentPeriodStart time.Time          `json:"currentPeriodStart"`
	CurrentPeriodEnd   time.Time          `json:"currentPeriodEnd"`
	AuditFields
}

// BillingEventType classifies entries in the billing audit trail.
type BillingEventType string

const (
	EventPlanUpgrade    BillingEventType = "PLAN_UPGRADE"
	EventPlanDowngrade  BillingEventType = "PLAN_DOWNGRADE"
	EventProratedCharge BillingEventType = "PRORATED_CHARGE"
	EventRenewal        BillingEventType = "RENEWAL"
)

// BillingEvent records one billing-relevant fact about a subscription.
type BillingEvent struct {
	EventID        string           `json:"eventID"` // Primary Key (UUID)
	AgencyID       string           `json:"agencyID"`
	SubscriptionID string           `json:"subscriptionID"`
	EventType      BillingEventType `json:"eventType"`
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Currency       Currency         `json:"currency"`
	Details        string           `json:"details"`
	AuditFields
}

// ProrationResult is the day-prorated cost breakdown of a mid-cycle plan
// change.
type ProrationResult struct {
	Credit        decimal.Decimal `json:"credit"`  // unused value of the current plan
	NewCost       decimal.Decimal `json:"newCost"` // prorated cost of the new plan
	Charge        decimal.Decimal `json:"charge"`  // max(newCost-credit, 0); zero on downgrade
	DaysInPeriod  int             `json:"daysInPeriod"`
	DaysRemaining int             `json:"daysRemaining"`
	IsUpgrade     bool            `json:"isUpgrade"`
}
