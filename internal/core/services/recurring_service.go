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

// recurringService manages recurring operator payment schedules and the
// generation pass an external daily scheduler triggers.
type recurringService struct {
	BaseService
	recurringRepo portsrepo.RecurringRepositoryFacade
	paymentRepo   portsrepo.PaymentWriter
}

// NewRecurringService creates a new recurring payment service.
func NewRecurringService(recurringRepo portsrepo.RecurringRepositoryFacade, paymentRepo portsrepo.PaymentWriter, authorizer portssvc.AgencyAuthorizerSvc) portssvc.RecurringSvcFacade {
	return &recurringService{
		BaseService:   BaseService{AgencyAuthorizer: authorizer},
		recurringRepo: recurringRepo,
		paymentRepo:   paymentRepo,
	}
}

var _ portssvc.RecurringSvcFacade = (*recurringService)(nil)

func (s *recurringService) getOwnedRecurring(ctx context.Context, agencyID, recurringID string) (*domain.RecurringPayment, error) {
	rec, err := s.recurringRepo.FindRecurringByID(ctx, recurringID)
	if err != nil {
		return nil, err
	}
	if rec.AgencyID != agencyID {
		return nil, apperrors.ErrNotFound
	}
	return rec, nil
}

func (s *recurringService) GetRecurringByID(ctx context.Context, agencyID string, recurringID string, userID string) (*domain.RecurringPayment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.getOwnedRecurring(ctx, agencyID, recurringID)
}

func (s *recurringService) ListRecurring(ctx context.Context, agencyID string, userID string) ([]domain.RecurringPayment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.recurringRepo.ListRecurring(ctx, agencyID)
}

func (s *recurringService) CreateRecurring(ctx context.Context, agencyID string, req dto.CreateRecurringPaymentRequest, userID string) (*domain.RecurringPayment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return nil, fmt.Errorf("%w: endDate cannot precede startDate", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rec := domain.RecurringPayment{
		RecurringID:  uuid.NewString(),
		AgencyID:     agencyID,
		OperatorName: req.OperatorName,
		Concept:      req.Concept,
		Currency:     req.Currency,
		Amount:       req.Amount,
		Frequency:    req.Frequency,
		NextDueDate:  req.StartDate,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		IsActive:     true,
		AccountID:    req.AccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.recurringRepo.SaveRecurring(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create recurring payment: %w", err)
	}
	return &rec, nil
}

func (s *recurringService) UpdateRecurring(ctx context.Context, agencyID string, recurringID string, req dto.UpdateRecurringPaymentRequest, userID string) (*domain.RecurringPayment, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	rec, err := s.getOwnedRecurring(ctx, agencyID, recurringID)
	if err != nil {
		return nil, err
	}

	if req.OperatorName != nil {
		rec.OperatorName = *req.OperatorName
	}
	if req.Concept != nil {
		rec.Concept = *req.Concept
	}
	if req.Amount != nil {
		if req.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
		}
		rec.Amount = *req.Amount
	}
	if req.EndDate != nil {
		if req.EndDate.Before(rec.StartDate) {
			return nil, fmt.Errorf("%w: endDate cannot precede startDate", apperrors.ErrValidation)
		}
		rec.EndDate = req.EndDate
	}
	if req.IsActive != nil {
		rec.IsActive = *req.IsActive
	}
	if req.AccountID != nil {
		rec.AccountID = req.AccountID
	}
	rec.LastUpdatedAt = time.Now().UTC()
	rec.LastUpdatedBy = userID

	if err := s.recurringRepo.UpdateRecurring(ctx, *rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *recurringService) DeleteRecurring(ctx context.Context, agencyID string, recurringID string, userID string) error {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return err
	}
	if _, err := s.getOwnedRecurring(ctx, agencyID, recurringID); err != nil {
		return err
	}
	return s.recurringRepo.DeleteRecurring(ctx, recurringID)
}

// RunDue generates the operator EXPENSE payments for every schedule due on
// or before today. The due rows are locked FOR UPDATE for the duration of
// the transaction, so a scheduler retry or a concurrent trigger sees either
// the lock or the already-advanced due date, never a double generation. A
// schedule more than one period behind generates one payment per missed
// period.
func (s *recurringService) RunDue(ctx context.Context, agencyID string, userID string, today time.Time) (*dto.RunDueResponse, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, writerRoles...); err != nil {
		return nil, err
	}
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	tx, err := s.recurringRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin generation transaction: %w", err)
	}
	defer func() { _ = s.recurringRepo.Rollback(ctx, tx) }()

	due, err := s.recurringRepo.FindDueForUpdate(ctx, tx, agencyID, today)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	resp := &dto.RunDueResponse{GeneratedPaymentIDs: []string{}}
	for _, rec := range due {
		nextDue := rec.NextDueDate
		for rec.IsDue(today) && !nextDue.After(today) {
			if rec.EndDate != nil && nextDue.After(*rec.EndDate) {
				break
			}
			payment := domain.Payment{
				PaymentID:    uuid.NewString(),
				AgencyID:     agencyID,
				Direction:    domain.PaymentExpense,
				Counterparty: domain.CounterpartyOperator,
				Status:       domain.PaymentPending,
				Currency:     rec.Currency,
				Amount:       rec.Amount,
				DueDate:      nextDue,
				AccountID:    rec.AccountID,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if err := s.paymentRepo.SavePaymentInTx(ctx, tx, payment); err != nil {
				return nil, fmt.Errorf("failed to generate payment for schedule %s: %w", rec.RecurringID, err)
			}
			resp.GeneratedPaymentIDs = append(resp.GeneratedPaymentIDs, payment.PaymentID)
			nextDue = rec.Frequency.Advance(nextDue)
		}
		if !nextDue.Equal(rec.NextDueDate) {
			if err := s.recurringRepo.AdvanceNextDueInTx(ctx, tx, rec.RecurringID, nextDue, userID, now); err != nil {
				return nil, fmt.Errorf("failed to advance schedule %s: %w", rec.RecurringID, err)
			}
		}
	}

	if err := s.recurringRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit generation transaction: %w", err)
	}
	resp.GeneratedCount = len(resp.GeneratedPaymentIDs)
	s.LogInfo(ctx, "recurring generation pass finished",
		"agency_id", agencyID, "generated", resp.GeneratedCount, "schedules_due", len(due))
	return resp, nil
}
