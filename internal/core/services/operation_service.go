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

// operationService manages sale operations and their payments. Settling a
// payment posts the matching ledger movement in the same transaction and
// refreshes the operation's commission records.
type operationService struct {
	BaseService
	operationRepo portsrepo.OperationRepositoryFacade
	movementRepo  portsrepo.MovementWriter
	accountRepo   portsrepo.AccountReader
	rateService   portssvc.ExchangeRateSvcFacade
	commissionSvc portssvc.CommissionCalculatorSvc
}

// NewOperationService creates a new operation service.
func NewOperationService(operationRepo portsrepo.OperationRepositoryFacade, movementRepo portsrepo.MovementWriter, accountRepo portsrepo.AccountReader, rateService portssvc.ExchangeRateSvcFacade, commissionSvc portssvc.CommissionCalculatorSvc, authorizer portssvc.AgencyAuthorizerSvc) portssvc.OperationSvcFacade {
	return &operationService{
		BaseService:   BaseService{AgencyAuthorizer: authorizer},
		operationRepo: operationRepo,
		movementRepo:  movementRepo,
		accountRepo:   accountRepo,
		rateService:   rateService,
		commissionSvc: commissionSvc,
	}
}

var _ portssvc.OperationSvcFacade = (*operationService)(nil)

func (s *operationService) getOwnedOperation(ctx context.Context, agencyID, operationID string) (*domain.Operation, error) {
	op, err := s.operationRepo.FindOperationByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return op, nil
}

func (s *operationService) GetOperationByID(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.getOwnedOperation(ctx, agencyID, operationID)
}

func (s *operationService) ListOperations(ctx context.Context, agencyID string, userID string, limit, offset int) ([]domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.operationRepo.ListOperations(ctx, agencyID, limit, offset)
}

func (s *operationService) CreateOperation(ctx context.Context, agencyID string, req dto.CreateOperationRequest, userID string) (*domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	if req.SaleAmount.IsNegative() || req.CostAmount.IsNegative() {
		return nil, fmt.Errorf("%w: sale and cost amounts cannot be negative", apperrors.ErrValidation)
	}
	if req.SecondarySellerID != nil && *req.SecondarySellerID == req.SellerID {
		return nil, fmt.Errorf("%w: secondary seller must differ from primary seller", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	op := domain.Operation{
		OperationID:       uuid.NewString(),
		AgencyID:          agencyID,
		LeadID:            req.LeadID,
		Status:            domain.OperationDraft,
		Currency:          req.Currency,
		SaleAmount:        req.SaleAmount,
		CostAmount:        req.CostAmount,
		MarginAmount:      req.SaleAmount.Sub(req.CostAmount),
		Region:            req.Region,
		SellerID:          req.SellerID,
		SecondarySellerID: req.SecondarySellerID,
		OperationDate:     req.OperationDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.operationRepo.SaveOperation(ctx, op); err != nil {
		return nil, fmt.Errorf("failed to create operation: %w", err)
	}
	return &op, nil
}

func (s *operationService) UpdateOperation(ctx context.Context, agencyID string, operationID string, req dto.UpdateOperationRequest, userID string) (*domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	op, err := s.getOwnedOperation(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != domain.OperationDraft {
		return nil, fmt.Errorf("%w: only DRAFT operations can be edited", apperrors.ErrValidation)
	}

	if req.LeadID != nil {
		op.LeadID = req.LeadID
	}
	if req.SaleAmount != nil {
		op.SaleAmount = *req.SaleAmount
	}
	if req.CostAmount != nil {
		op.CostAmount = *req.CostAmount
	}
	if req.Region != nil {
		op.Region = *req.Region
	}
	if req.SellerID != nil {
		op.SellerID = *req.SellerID
	}
	if req.SecondarySellerID != nil {
		op.SecondarySellerID = req.SecondarySellerID
	}
	if req.OperationDate != nil {
		op.OperationDate = *req.OperationDate
	}
	op.MarginAmount = op.SaleAmount.Sub(op.CostAmount)
	op.LastUpdatedAt = time.Now().UTC()
	op.LastUpdatedBy = userID

	if op.SecondarySellerID != nil && *op.SecondarySellerID == op.SellerID {
		return nil, fmt.Errorf("%w: secondary seller must differ from primary seller", apperrors.ErrValidation)
	}

	if err := s.operationRepo.UpdateOperation(ctx, *op); err != nil {
		return nil, err
	}
	return op, nil
}

func (s *operationService) ConfirmOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	op, err := s.getOwnedOperation(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status != domain.OperationDraft {
		return nil, fmt.Errorf("%w: only DRAFT operations can be confirmed", apperrors.ErrValidation)
	}

	op.Status = domain.OperationConfirmed
	op.LastUpdatedAt = time.Now().UTC()
	op.LastUpdatedBy = userID
	if err := s.operationRepo.UpdateOperation(ctx, *op); err != nil {
		return nil, err
	}

	s.recalculateCommissions(ctx, agencyID, operationID, userID)
	return op, nil
}

func (s *operationService) CancelOperation(ctx context.Context, agencyID string, operationID string, userID string) (*domain.Operation, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	op, err := s.getOwnedOperation(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status == domain.OperationCancelled {
		return op, nil
	}

	op.Status = domain.OperationCancelled
	op.LastUpdatedAt = time.Now().UTC()
	op.LastUpdatedBy = userID
	if err := s.operationRepo.UpdateOperation(ctx, *op); err != nil {
		return nil, err
	}

	s.recalculateCommissions(ctx, agencyID, operationID, userID)
	return op, nil
}

// recalculateCommissions refreshes the operation's commission records after a
// lifecycle change. A recalculation failure does not fail the primary write;
// the records are refreshed again on the next settlement event.
func (s *operationService) recalculateCommissions(ctx context.Context, agencyID, operationID, userID string) {
	if _, err := s.commissionSvc.RecalculateForOperation(ctx, agencyID, operationID, userID); err != nil {
		s.LogError(ctx, err, "commission recalculation failed", "operation_id", operationID)
	}
}

func (s *operationService) CreatePayment(ctx context.Context, agencyID string, operationID string, req dto.CreatePaymentRequest, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	op, err := s.getOwnedOperation(ctx, agencyID, operationID)
	if err != nil {
		return nil, err
	}
	if op.Status == domain.OperationCancelled {
		return nil, fmt.Errorf("%w: cannot add payments to a cancelled operation", apperrors.ErrValidation)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		PaymentID:    uuid.NewString(),
		AgencyID:     agencyID,
		OperationID:  &op.OperationID,
		Direction:    req.Direction,
		Counterparty: req.Counterparty,
		Status:       domain.PaymentPending,
		Currency:     req.Currency,
		Amount:       req.Amount,
		DueDate:      req.DueDate,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.operationRepo.SavePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

func (s *operationService) ListPaymentsByOperation(ctx context.Context, agencyID string, operationID string, userID string) ([]domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	if _, err := s.getOwnedOperation(ctx, agencyID, operationID); err != nil {
		return nil, err
	}
	return s.operationRepo.ListPaymentsByOperation(ctx, operationID)
}

func (s *operationService) ListPayments(ctx context.Context, agencyID string, userID string, status *domain.PaymentStatus, limit, offset int) ([]domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.operationRepo.ListPayments(ctx, agencyID, status, limit, offset)
}

func (s *operationService) UpdatePaymentStatus(ctx context.Context, agencyID string, paymentID string, req dto.UpdatePaymentStatusRequest, userID string) (*domain.Payment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	payment, err := s.operationRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if payment.Status == req.Status {
		return payment, nil
	}
	if payment.Status == domain.PaymentPaid {
		return nil, fmt.Errorf("%w: a settled payment cannot change status, its ledger movement is already posted", apperrors.ErrValidation)
	}

	if req.Status == domain.PaymentPaid {
		return s.settlePayment(ctx, agencyID, payment, req, userID)
	}

	payment.Status = req.Status
	payment.LastUpdatedAt = time.Now().UTC()
	payment.LastUpdatedBy = userID
	if err := s.operationRepo.UpdatePaymentStatus(ctx, paymentID, req.Status, userID); err != nil {
		return nil, err
	}
	return payment, nil
}

// settlePayment marks a payment PAID and posts the matching ledger movement
// against the settlement account, both inside one transaction. The
// operation's commissions are recalculated afterwards: a newly paid customer
// payment may complete the fully-paid precondition.
func (s *operationService) settlePayment(ctx context.Context, agencyID string, payment *domain.Payment, req dto.UpdatePaymentStatusRequest, userID string) (*domain.Payment, error) {
	if req.AccountID == nil || *req.AccountID == "" {
		return nil, fmt.Errorf("%w: accountID is required to mark a payment PAID", apperrors.ErrValidation)
	}
	account, err := s.accountRepo.FindAccountByID(ctx, *req.AccountID)
	if err != nil {
		return nil, err
	}
	if account.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	if account.Currency != payment.Currency {
		return nil, fmt.Errorf("%w: settlement account currency %s does not match payment currency %s", apperrors.ErrValidation, account.Currency, payment.Currency)
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}

	var rate *decimal.Decimal
	notes := ""
	if payment.Currency == domain.ARS {
		resolved, err := s.rateService.ResolveRate(ctx, agencyID, paidAt)
		if err != nil {
			return nil, err
		}
		r := resolved.Rate
		rate = &r
		if resolved.Source == domain.RateSourceFallback {
			notes = fmt.Sprintf("rate %s from configured fallback", resolved.Rate)
		}
	}
	amountUSD, err := domain.ConvertToUSD(payment.Amount, payment.Currency, derefOrZero(rate))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
	}

	movementType := domain.Income
	if payment.Direction == domain.PaymentExpense {
		movementType = domain.Expense
	}
	concept := fmt.Sprintf("%s payment settled", payment.Counterparty)

	now := time.Now().UTC()
	movement := domain.LedgerMovement{
		MovementID:          uuid.NewString(),
		AgencyID:            agencyID,
		AccountID:           account.AccountID,
		Type:                movementType,
		Concept:             concept,
		Currency:            payment.Currency,
		AmountOriginal:      payment.Amount,
		ExchangeRate:        rate,
		AmountUSDEquivalent: amountUSD,
		OperationID:         payment.OperationID,
		Notes:               notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	payment.Status = domain.PaymentPaid
	payment.PaidAt = &paidAt
	payment.AccountID = &account.AccountID
	payment.LastUpdatedAt = now
	payment.LastUpdatedBy = userID

	tx, err := s.operationRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin settlement transaction: %w", err)
	}
	defer func() { _ = s.operationRepo.Rollback(ctx, tx) }()

	versions := map[string]int64{account.AccountID: account.Version}
	if err := s.movementRepo.SaveMovementsInTx(ctx, tx, []domain.LedgerMovement{movement}, versions); err != nil {
		return nil, err
	}
	if err := s.operationRepo.UpdatePaymentSettlementInTx(ctx, tx, *payment); err != nil {
		return nil, err
	}
	if err := s.operationRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit settlement transaction: %w", err)
	}

	if payment.OperationID != nil {
		s.recalculateCommissions(ctx, agencyID, *payment.OperationID, userID)
	}
	return payment, nil
}
