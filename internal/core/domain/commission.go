package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommissionRuleType scopes a rule to seller payouts or agency retention.
type CommissionRuleType string

const (
	RuleSeller CommissionRuleType = "SELLER"
	RuleAgency CommissionRuleType = "AGENCY"
)

// CommissionBasis determines how a rule's value is applied to an operation.
type CommissionBasis string

const (
	BasisFixedPercentage CommissionBasis = "FIXED_PERCENTAGE"
	BasisFixedAmount     CommissionBasis = "FIXED_AMOUNT"
)

// CommissionRule is a dated, optionally region-scoped payout rule. A rule
// with a region only matches operations for that region and wins over a
// general (nil-region) rule; among equally specific matches the most recent
// ValidFrom wins.
type CommissionRule struct {
	RuleID   string             `json:"ruleID"` // Primary Key (UUID)
	AgencyID string             `json:"agencyID"`
	RuleType CommissionRuleType `json:"ruleType"`
	Basis    CommissionBasis    `json:"basis"`
	// Value is a percentage for FIXED_PERCENTAGE, an absolute amount in the
	// operation's currency for FIXED_AMOUNT.
	Value     decimal.Decimal `json:"value"`
	Region    *string         `json:"region,omitempty"` // nil matches any region
	ValidFrom time.Time       `json:"validFrom"`
	ValidTo   *time.Time      `json:"validTo,omitempty"` // nil means open-ended
	AuditFields
}

// CommissionRecordStatus is the payout state of a commission record.
type CommissionRecordStatus string

const (
	CommissionPending CommissionRecordStatus = "PENDING"
	CommissionPaid    CommissionRecordStatus = "PAID"
)

// CommissionRecord is the materialized commission for one (operation, seller)
// pair. Recalculation upserts by that pair, so repeated runs are idempotent.
type CommissionRecord struct {
	RecordID    string                 `json:"recordID"` // Primary Key (UUID)
	AgencyID    string                 `json:"agencyID"`
	OperationID string                 `json:"operationID"`
	SellerID    string                 `json:"sellerID"`
	Amount      decimal.Decimal        `json:"amount"`
	Percentage  decimal.Decimal        `json:"percentage"` // effective percentage of margin, for display
	RuleID      string                 `json:"ruleID"`
	Status      CommissionRecordStatus `json:"status"`
	AuditFields
}

// CommissionResult is the computed commission for an operation before it is
// persisted as records.
type CommissionResult struct {
	TotalCommission     decimal.Decimal `json:"totalCommission"`
	Percentage          decimal.Decimal `json:"percentage"`
	PrimaryCommission   decimal.Decimal `json:"primaryCommission"`
	SecondaryCommission decimal.Decimal `json:"secondaryCommission"`
	RuleID              string          `json:"ruleID,omitempty"`
}

// IsZero reports whether the computation produced no commission, either
// because preconditions failed or because no rule matched.
func (r CommissionResult) IsZero() bool {
	return r.TotalCommission.IsZero()
}
