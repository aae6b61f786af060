package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateCommissionRuleRequest defines the data needed to create a commission rule.
type CreateCommissionRuleRequest struct {
	RuleType domain.CommissionRuleType `json:"ruleType" binding:"required,oneof=SELLER AGENCY"`
	Basis    domain.CommissionBasis    `json:"basis" binding:"required,oneof=FIXED_PERCENTAGE FIXED_AMOUNT"`
	// Value is a percentage (0-100) for FIXED_PERCENTAGE or a USD amount
	// for FIXED_AMOUNT.
	Value     decimal.Decimal `json:"value" binding:"required"`
	Region    *string         `json:"region"`
	ValidFrom time.Time       `json:"validFrom" binding:"required" time_format:"2006-01-02"`
	ValidTo   *time.Time      `json:"validTo" time_format:"2006-01-02"`
}

// UpdateCommissionRuleRequest defines the fields that may change on a rule.
type UpdateCommissionRuleRequest struct {
	Value   *decimal.Decimal `json:"value"`
	ValidTo *time.Time       `json:"validTo" time_format:"2006-01-02"`
}

// CommissionRuleResponse defines the data returned for a commission rule.
type CommissionRuleResponse struct {
	RuleID        string                    `json:"ruleID"`
	AgencyID      string                    `json:"agencyID"`
	RuleType      domain.CommissionRuleType `json:"ruleType"`
	Basis         domain.CommissionBasis    `json:"basis"`
	Value         decimal.Decimal           `json:"value"`
	Region        *string                   `json:"region,omitempty"`
	ValidFrom     time.Time                 `json:"validFrom"`
	ValidTo       *time.Time                `json:"validTo,omitempty"`
	CreatedAt     time.Time                 `json:"createdAt"`
	CreatedBy     string                    `json:"createdBy"`
	LastUpdatedAt time.Time                 `json:"lastUpdatedAt"`
	LastUpdatedBy string                    `json:"lastUpdatedBy"`
}

// ToCommissionRuleResponse converts a domain.CommissionRule to CommissionRuleResponse.
func ToCommissionRuleResponse(r *domain.CommissionRule) CommissionRuleResponse {
	return CommissionRuleResponse{
		RuleID:        r.RuleID,
		AgencyID:      r.AgencyID,
		RuleType:      r.RuleType,
		Basis:         r.Basis,
		Value:         r.Value,
		Region:        r.Region,
		ValidFrom:     r.ValidFrom,
		ValidTo:       r.ValidTo,
		CreatedAt:     r.CreatedAt,
		CreatedBy:     r.CreatedBy,
		LastUpdatedAt: r.LastUpdatedAt,
		LastUpdatedBy: r.LastUpdatedBy,
	}
}

// ToListCommissionRuleResponse converts a slice of rules to response DTOs.
func ToListCommissionRuleResponse(rules []domain.CommissionRule) []CommissionRuleResponse {
	res := make([]CommissionRuleResponse, len(rules))
	for i := range rules {
		res[i] = ToCommissionRuleResponse(&rules[i])
	}
	return res
}

// CommissionRecordResponse defines the data returned for a calculated commission.
type CommissionRecordResponse struct {
	RecordID      string                        `json:"recordID"`
	AgencyID      string                        `json:"agencyID"`
	OperationID   string                        `json:"operationID"`
	SellerID      string                        `json:"sellerID"`
	Amount        decimal.Decimal               `json:"amount"`
	Percentage    decimal.Decimal               `json:"percentage"`
	RuleID        string                        `json:"ruleID"`
	Status        domain.CommissionRecordStatus `json:"status"`
	CreatedAt     time.Time                     `json:"createdAt"`
	LastUpdatedAt time.Time                     `json:"lastUpdatedAt"`
}

// ToCommissionRecordResponse converts a domain.CommissionRecord to its DTO.
func ToCommissionRecordResponse(r *domain.CommissionRecord) CommissionRecordResponse {
	return CommissionRecordResponse{
		RecordID:      r.RecordID,
		AgencyID:      r.AgencyID,
		OperationID:   r.OperationID,
		SellerID:      r.SellerID,
		Amount:        r.Amount,
		Percentage:    r.Percentage,
		RuleID:        r.RuleID,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt,
		LastUpdatedAt: r.LastUpdatedAt,
	}
}

// ToListCommissionRecordResponse converts a slice of records to response DTOs.
func ToListCommissionRecordResponse(records []domain.CommissionRecord) []CommissionRecordResponse {
	res := make([]CommissionRecordResponse, len(records))
	for i := range records {
		res[i] = ToCommissionRecordResponse(&records[i])
	}
	return res
}
