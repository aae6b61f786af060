package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

var oneHundred = decimal.NewFromInt(100)

// commissionService manages commission rules and computes seller commissions
// for confirmed, fully customer-paid operations.
type commissionService struct {
	BaseService
	commissionRepo portsrepo.CommissionRepositoryFacade
	operationRepo  portsrepo.OperationReader
	paymentRepo    portsrepo.PaymentReader
	splitRatio     decimal.Decimal
}

// NewCommissionService creates a new commission service. splitRatio is the
// primary seller's share when an operation carries a secondary seller.
func NewCommissionService(commissionRepo portsrepo.CommissionRepositoryFacade, operationRepo portsrepo.OperationReader, paymentRepo portsrepo.PaymentReader, authorizer portssvc.AgencyAuthorizerSvc, splitRatio decimal.Decimal) portssvc.CommissionSvcFacade {
	return &commissionService{
		BaseService:    BaseService{AgencyAuthorizer: authorizer},
		commissionRepo: commissionRepo,
		operationRepo:  operationRepo,
		paymentRepo:    paymentRepo,
		splitRatio:     splitRatio,
	}
}

var _ portssvc.CommissionSvcFacade = (*commissionService)(nil)

func (s *commissionService) CreateRule(ctx context.Context, agencyID string, req dto.CreateCommissionRuleRequest, userID string) (*domain.CommissionRule, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if req.Value.IsNegative() {
		return nil, fmt.Errorf("%w: rule value cannot be negative", apperrors.ErrValidation)
	}
	if req.Basis == domain.BasisFixedPercentage && req.Value.GreaterThan(oneHundred) {
		return nil, fmt.Errorf("%w: percentage cannot exceed 100", apperrors.ErrValidation)
	}
	if req.ValidTo != nil && req.ValidTo.Before(req.ValidFrom) {
		return nil, fmt.Errorf("%w: validTo cannot precede validFrom", apperrors.ErrValidation)
	}
	// A blank region means "applies everywhere"; store it as the absence of
	// a region so matching never has to special-case the empty string.
	region := req.Region
	if region != nil && *region == "" {
		region = nil
	}

	now := time.Now().UTC()
	rule := domain.CommissionRule{
		RuleID:    uuid.NewString(),
		AgencyID:  agencyID,
		RuleType:  req.RuleType,
		Basis:     req.Basis,
		Value:     req.Value,
		Region:    region,
		ValidFrom: req.ValidFrom,
		ValidTo:   req.ValidTo,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.commissionRepo.SaveRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("failed to create commission rule: %w", err)
	}
	return &rule, nil
}

func (s *commissionService) ListRules(ctx context.Context, agencyID string, userID string) ([]domain.CommissionRule, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.commissionRepo.ListRules(ctx, agencyID)
}

func (s *commissionService) getOwnedRule(ctx context.Context, agencyID, ruleID string) (*domain.CommissionRule, error) {
	rule, err := s.commissionRepo.FindRuleByID(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if rule.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return rule, nil
}

func (s *commissionService) UpdateRule(ctx context.Context, agencyID string, ruleID string, req dto.UpdateCommissionRuleRequest, userID string) (*domain.CommissionRule, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	rule, err := s.getOwnedRule(ctx, agencyID, ruleID)
	if err != nil {
		return nil, err
	}

	if req.Value != nil {
		if req.Value.IsNegative() {
			return nil, fmt.Errorf("%w: rule value cannot be negative", apperrors.ErrValidation)
		}
		rule.Value = *req.Value
	}
	if req.ValidTo != nil {
		if req.ValidTo.Before(rule.ValidFrom) {
			return nil, fmt.Errorf("%w: validTo cannot precede validFrom", apperrors.ErrValidation)
		}
		rule.ValidTo = req.ValidTo
	}
	rule.LastUpdatedAt = time.Now().UTC()
	rule.LastUpdatedBy = userID

	if err := s.commissionRepo.UpdateRule(ctx, *rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *commissionService) DeleteRule(ctx context.Context, agencyID string, ruleID string, userID string) error {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.getOwnedRule(ctx, agencyID, ruleID); err != nil {
		return err
	}
	return s.commissionRepo.DeleteRule(ctx, ruleID)
}

// pickRule selects the applicable SELLER rule for an operation: a rule whose
// region matches the operation's wins over a general (nil- or blank-region)
// rule, and among equally specific candidates the most recent ValidFrom wins.
// Returns nil when no rule matches.
func pickRule(rules []domain.CommissionRule, region string) *domain.CommissionRule {
	var best *domain.CommissionRule
	bestSpecific := false
	for i := range rules {
		r := &rules[i]
		specific := r.Region != nil && *r.Region != ""
		if specific && *r.Region != region {
			continue
		}
		switch {
		case best == nil:
			best, bestSpecific = r, specific
		case specific && !bestSpecific:
			best, bestSpecific = r, specific
		case specific == bestSpecific && r.ValidFrom.After(best.ValidFrom):
			best = r
		}
	}
	return best
}

// customerFullyPaid reports whether every CUSTOMER-direction INCOME payment
// of the operation is PAID. An operation with no customer income payments at
// all does not qualify.
func customerFullyPaid(payments []domain.Payment) bool {
	sawCustomerIncome := false
	for _, p := range payments {
		if p.Counterparty != domain.CounterpartyCustomer || p.Direction != domain.PaymentIncome {
			continue
		}
		if p.Status == domain.PaymentCancelled {
			continue
		}
		sawCustomerIncome = true
		if p.Status != domain.PaymentPaid {
			return false
		}
	}
	return sawCustomerIncome
}

// computeCommission evaluates the rule against the operation's margin and
// splits the total between primary and secondary sellers when one exists.
// The primary's share is the configured ratio; rounding leftovers go to the
// primary so the parts always sum to the total.
func (s *commissionService) computeCommission(op *domain.Operation, rule *domain.CommissionRule) domain.CommissionResult {
	var total, percentage decimal.Decimal
	switch rule.Basis {
	case domain.BasisFixedPercentage:
		percentage = rule.Value
		total = op.MarginAmount.Mul(rule.Value).Div(oneHundred).Round(2)
	case domain.BasisFixedAmount:
		total = rule.Value.Round(2)
		if !op.MarginAmount.IsZero() {
			percentage = rule.Value.Mul(oneHundred).DivRound(op.MarginAmount, 2)
		}
	}

	result := domain.CommissionResult{
		TotalCommission: total,
		Percentage:      percentage,
		RuleID:          rule.RuleID,
	}
	if op.SecondarySellerID == nil {
		result.PrimaryCommission = total
		return result
	}
	secondary := total.Mul(decimal.NewFromInt(1).Sub(s.splitRatio)).Round(2)
	result.SecondaryCommission = secondary
	result.PrimaryCommission = total.Sub(secondary)
	return result
}

// CalculateForOperation computes the operation's commission without
// persisting. A zero result is not an error: it means preconditions failed
// or no rule matched.
func (s *commissionService) CalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.CommissionResult, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	result, _, err := s.calculate(ctx, agencyID, operationID)
	return result, err
}

func (s *commissionService) calculate(ctx context.Context, agencyID, operationID string) (*domain.CommissionResult, *domain.Operation, error) {
	op, err := s.operationRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, nil, err
	}
	if op.AgencyID != agencyID {
		return nil, nil, apperrors.ErrNotFound
	}

	if op.Status != domain.OperationConfirmed {
		return &domain.CommissionResult{}, op, nil
	}
	payments, err := s.paymentRepo.ListPaymentsByOperation(ctx, operationID)
	if err != nil {
		return nil, nil, err
	}
	if !customerFullyPaid(payments) {
		return &domain.CommissionResult{}, op, nil
	}

	// The rule window is evaluated at the calculation date, not the
	// operation date: recalculation applies whatever rule is in force when
	// the commission is actually computed.
	rules, err := s.commissionRepo.FindActiveRules(ctx, agencyID, domain.RuleSeller, truncateToDate(time.Now().UTC()))
	if err != nil {
		return nil, nil, err
	}
	rule := pickRule(rules, op.Region)
	if rule == nil {
		s.LogWarn(ctx, "no commission rule matches confirmed operation",
			"operation_id", operationID, "region", op.Region)
		return &domain.CommissionResult{}, op, nil
	}

	result := s.computeCommission(op, rule)
	return &result, op, nil
}

// RecalculateForOperation recomputes the commission and materializes one
// record per seller, upserting by (operation, seller) so repeated runs are
// idempotent. A zero result clears the operation's records.
func (s *commissionService) RecalculateForOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	result, op, err := s.calculate(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}

	var records []domain.CommissionRecord
	if !result.IsZero() {
		now := time.Now().UTC()
		audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
		records = append(records, domain.CommissionRecord{
			RecordID:    uuid.NewString(),
			AgencyID:    agencyID,
			OperationID: operationID,
			SellerID:    op.SellerID,
			Amount:      result.PrimaryCommission,
			Percentage:  result.Percentage,
			RuleID:      result.RuleID,
			Status:      domain.CommissionPending,
			AuditFields: audit,
		})
		if op.SecondarySellerID != nil {
			records = append(records, domain.CommissionRecord{
				RecordID:    uuid.NewString(),
				AgencyID:    agencyID,
				OperationID: operationID,
				SellerID:    *op.SecondarySellerID,
				Amount:      result.SecondaryCommission,
				Percentage:  result.Percentage,
				RuleID:      result.RuleID,
				Status:      domain.CommissionPending,
				AuditFields: audit,
			})
		}
	}

	if err := s.commissionRepo.UpsertRecords(ctx, operationID, records); err != nil {
		return nil, fmt.Errorf("failed to upsert commission records: %w", err)
	}
	return records, nil
}

func (s *commissionService) ListRecordsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.CommissionRecord, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	op, err := s.operationRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return s.commissionRepo.ListRecordsByOperation(ctx, operationID)
}

func (s *commissionService) ListRecordsBySeller(ctx context.Context, agencyID string, sellerID string, userID string) ([]domain.CommissionRecord, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.commissionRepo.ListRecordsBySeller(ctx, agencyID, sellerID)
}
