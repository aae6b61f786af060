package services

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// CommissionRuleSvc defines CRUD operations for commission rules
type CommissionRuleSvc interface {
	// CreateRule persists a new commission rule.
	CreateRule(ctx context.Context, agencyID string, req dto.CreateCommissionRuleRequest, userID string) (*domain.CommissionRule, error)

	// ListRules retrieves all rules of an agency.
	ListRules(ctx context.Context, agencyID string, userID string) ([]domain.CommissionRule, error)

	// UpdateRule updates a rule's value or validity end.
	UpdateRule(ctx context.Context, agencyID string, ruleID string, req dto.UpdateCommissionRuleRequest, userID string) (*domain.CommissionRule, error)

	// DeleteRule removes a rule. Existing records keep their rule reference.
	DeleteRule(ctx context.Context, agencyID string, ruleID string, userID string) error
}

// CommissionCalculatorSvc computes and materializes commissions
type CommissionCalculatorSvc interface {
	// CalculateForOperation computes the commission for an operation without
	// persisting anything. The result is zero when the operation is not
	// CONFIRMED, a customer INCOME payment is unpaid, or no rule matches.
	CalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.CommissionResult, error)

	// RecalculateForOperation recomputes the operation's commission and
	// upserts the per-seller records idempotently.
	RecalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error)

	// ListRecordsByOperation retrieves the materialized records of an operation.
	ListRecordsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error)

	// ListRecordsBySeller retrieves a seller's records in an agency.
	ListRecordsBySeller(ctx context.Context, agencyID string, sellerID string, userID string) ([]domain.CommissionRecord, error)
}

// CommissionSvcFacade combines all commission service interfaces
type CommissionSvcFacade interface {
	CommissionRuleSvc
	CommissionCalculatorSvc
}
