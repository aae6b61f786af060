package repositories

import (
	"context"
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CommissionRuleReader defines read operations for commission rule data
type CommissionRuleReader interface {
	// FindRuleByID retrieves a specific rule.
	FindRuleByID(ctx context.Context, ruleID string) (*domain.CommissionRule, error)

	// ListRules retrieves all rules of an agency.
	ListRules(ctx context.Context, agencyID string) ([]domain.CommissionRule, error)

	// FindActiveRules retrieves the rules of the given type whose validity
	// window contains asOf, ordered by most recent ValidFrom first.
	FindActiveRules(ctx context.Context, agencyID string, ruleType domain.CommissionRuleType, asOf time.Time) ([]domain.CommissionRule, error)
}

// CommissionRuleWriter defines write operations for commission rule data
type CommissionRuleWriter interface {
	// SaveRule persists a new commission rule.
	SaveRule(ctx context.Context, rule domain.CommissionRule) error

	// UpdateRule updates an existing commission rule.
	UpdateRule(ctx context.Context, rule domain.CommissionRule) error

	// DeleteRule removes a commission rule.
	DeleteRule(ctx context.Context, ruleID string) error
}

// CommissionRecordReader defines read operations for commission record data
type CommissionRecordReader interface {
	// ListRecordsByOperation retrieves the commission records of an operation.
	ListRecordsByOperation(ctx context.Context, operationID string) ([]domain.CommissionRecord, error)

	// ListRecordsBySeller retrieves a seller's commission records in an agency.
	ListRecordsBySeller(ctx context.Context, agencyID, sellerID string) ([]domain.CommissionRecord, error)
}

// CommissionRecordWriter defines write operations for commission record data
type CommissionRecordWriter interface {
	// UpsertRecords inserts or updates records keyed by (operation_id,
	// seller_id) atomically, and removes stale records of the operation for
	// sellers not in the new set.
	UpsertRecords(ctx context.Context, operationID string, records []domain.CommissionRecord) error
}

// CommissionRepositoryFacade combines all commission repository interfaces.
type CommissionRepositoryFacade interface {
	CommissionRuleReader
	CommissionRuleWriter
	CommissionRecordReader
	CommissionRecordWriter
}
