package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
	"github.com/travesia-app/travesia-backend/internal/utils"
	"github.com/travesia-app/travesia-backend/pkg/config"
)

const downgradeTokenPurpose = "downgrade-plan"

// billingService manages the plan catalogue, agency subscriptions and the
// day-prorated plan change flow.
type billingService struct {
	BaseService
	billingRepo portsrepo.BillingRepositoryFacade
	cfg         *config.Config
}

// NewBillingService creates a new billing service.
func NewBillingService(billingRepo portsrepo.BillingRepositoryFacade, authorizer portssvc.AgencyAuthorizerSvc, cfg *config.Config) portssvc.BillingSvcFacade {
	return &billingService{
		BaseService: BaseService{AgencyAuthorizer: authorizer},
		billingRepo: billingRepo,
		cfg:         cfg,
	}
}

var _ portssvc.BillingSvcFacade = (*billingService)(nil)

func (s *billingService) ListPlans(ctx context.Context) ([]domain.SubscriptionPlan, error) {
	return s.billingRepo.ListPlans(ctx)
}

// isPlatformAdmin reports whether the user may manage the platform-global
// plan catalogue. Plans are not agency-scoped, so the agency authorizer does
// not apply here; the allow-list comes from configuration.
func (s *billingService) isPlatformAdmin(userID string) bool {
	for _, id := range s.cfg.PlatformAdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *billingService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest, userID string) (*domain.SubscriptionPlan, error) {
	if !s.isPlatformAdmin(userID) {
		return nil, fmt.Errorf("%w: plan management requires platform admin rights", apperrors.ErrForbidden)
	}
	if req.MonthlyPrice.IsNegative() {
		return nil, fmt.Errorf("%w: monthly price cannot be negative", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	plan := domain.SubscriptionPlan{
		PlanID:       uuid.NewString(),
		Code:         req.Code,
		Name:         req.Name,
		MonthlyPrice: req.MonthlyPrice,
		Currency:     req.Currency,
		Features:     req.Features,
		IsActive:     true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.billingRepo.SavePlan(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create plan: %w", err)
	}
	return &plan, nil
}

func (s *billingService) GetSubscription(ctx context.Context, agencyID string, userID string) (*domain.Subscription, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.billingRepo.FindSubscriptionByAgency(ctx, agencyID)
}

// prorate computes the straight-line, calendar-day proration of changing
// from currentPrice to newPrice with daysRemaining left of a daysInPeriod
// billing period. Upgrades are charged the prorated difference; downgrades
// charge nothing.
func prorate(currentPrice, newPrice decimal.Decimal, periodStart, periodEnd, today time.Time) domain.ProrationResult {
	start := truncateToDate(periodStart)
	end := truncateToDate(periodEnd)
	day := truncateToDate(today)

	daysInPeriod := int(end.Sub(start).Hours() / 24)
	if daysInPeriod < 1 {
		daysInPeriod = 1
	}
	daysRemaining := int(end.Sub(day).Hours() / 24)
	if daysRemaining < 0 {
		daysRemaining = 0
	}
	if daysRemaining > daysInPeriod {
		daysRemaining = daysInPeriod
	}

	days := decimal.NewFromInt(int64(daysInPeriod))
	remaining := decimal.NewFromInt(int64(daysRemaining))
	credit := currentPrice.Div(days).Mul(remaining).Round(2)
	newCost := newPrice.Div(days).Mul(remaining).Round(2)

	result := domain.ProrationResult{
		Credit:        credit,
		NewCost:       newCost,
		DaysInPeriod:  daysInPeriod,
		DaysRemaining: daysRemaining,
		IsUpgrade:     newPrice.GreaterThan(currentPrice),
		Charge:        decimal.Zero,
	}
	if result.IsUpgrade {
		charge := newCost.Sub(credit)
		if charge.IsNegative() {
			charge = decimal.Zero
		}
		result.Charge = charge
	}
	return result
}

// previewChange loads the subscription and both plans and runs the proration.
func (s *billingService) previewChange(ctx context.Context, agencyID, newPlanID string) (*domain.Subscription, *domain.SubscriptionPlan, domain.ProrationResult, error) {
	var zero domain.ProrationResult
	sub, err := s.billingRepo.FindSubscriptionByAgency(ctx, agencyID)
	if err != nil {
		return nil, nil, zero, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, nil, zero, fmt.Errorf("%w: subscription is not active", apperrors.ErrValidation)
	}
	if sub.PlanID == newPlanID {
		return nil, nil, zero, fmt.Errorf("%w: already subscribed to this plan", apperrors.ErrValidation)
	}

	currentPlan, err := s.billingRepo.FindPlanByID(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, zero, err
	}
	newPlan, err := s.billingRepo.FindPlanByID(ctx, newPlanID)
	if err != nil {
		return nil, nil, zero, err
	}
	if !newPlan.IsActive {
		return nil, nil, zero, fmt.Errorf("%w: plan %s is not available", apperrors.ErrValidation, newPlan.Code)
	}

	proration := prorate(currentPlan.MonthlyPrice, newPlan.MonthlyPrice, sub.CurrentPeriodStart, sub.CurrentPeriodEnd, time.Now().UTC())
	return sub, newPlan, proration, nil
}

func (s *billingService) PreviewPlanChange(ctx context.Context, agencyID string, req dto.PlanChangePreviewRequest, userID string) (*dto.PlanChangePreviewResponse, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	sub, newPlan, proration, err := s.previewChange(ctx, agencyID, req.NewPlanID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanChangePreviewResponse{
		CurrentPlanID: sub.PlanID,
		NewPlanID:     newPlan.PlanID,
		IsUpgrade:     proration.IsUpgrade,
		Credit:        proration.Credit,
		NewCost:       proration.NewCost,
		Charge:        proration.Charge,
		DaysInPeriod:  proration.DaysInPeriod,
		DaysRemaining: proration.DaysRemaining,
	}
	if !proration.IsUpgrade {
		token, err := utils.GenerateConfirmationToken(downgradeTokenPurpose, agencyID+":"+newPlan.PlanID, s.cfg.JWTSecret, s.cfg.DeleteConfirmationTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to issue confirmation token: %w", err)
		}
		resp.RequiresConfirmation = true
		resp.ConfirmationToken = token
	}
	return resp, nil
}

func (s *billingService) ChangePlan(ctx context.Context, agencyID string, req dto.ChangePlanRequest, userID string) (*domain.Subscription, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, domain.RoleAdmin); err != nil {
		return nil, err
	}
	sub, newPlan, proration, err := s.previewChange(ctx, agencyID, req.NewPlanID)
	if err != nil {
		return nil, err
	}

	if !proration.IsUpgrade {
		// Downgrades drop plan features and are gated behind an explicit
		// confirmation step.
		if req.ConfirmationToken == "" {
			return nil, fmt.Errorf("%w: downgrading requires a confirmation token, preview the change first", apperrors.ErrValidation)
		}
		if err := utils.ValidateConfirmationToken(req.ConfirmationToken, downgradeTokenPurpose, agencyID+":"+newPlan.PlanID, s.cfg.JWTSecret); err != nil {
			if errors.Is(err, utils.ErrConfirmationMismatch) {
				return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err)
			}
			return nil, fmt.Errorf("%w: invalid or expired confirmation token", apperrors.ErrValidation)
		}
	}

	now := time.Now().UTC()
	oldPlanID := sub.PlanID
	sub.PlanID = newPlan.PlanID
	sub.LastUpdatedAt = now
	sub.LastUpdatedBy = userID

	changeType := domain.EventPlanUpgrade
	if !proration.IsUpgrade {
		changeType = domain.EventPlanDowngrade
	}
	audit := domain.AuditFields{CreatedAt: now, CreatedBy: userID, LastUpdatedAt: now, LastUpdatedBy: userID}
	events := []domain.BillingEvent{{
		EventID:        uuid.NewString(),
		AgencyID:       agencyID,
		SubscriptionID: sub.SubscriptionID,
		EventType:      changeType,
		Currency:       newPlan.Currency,
		Details:        fmt.Sprintf("plan change %s -> %s", oldPlanID, newPlan.PlanID),
		AuditFields:    audit,
	}}
	if proration.Charge.IsPositive() {
		charge := proration.Charge
		events = append(events, domain.BillingEvent{
			EventID:        uuid.NewString(),
			AgencyID:       agencyID,
			SubscriptionID: sub.SubscriptionID,
			EventType:      domain.EventProratedCharge,
			Amount:         &charge,
			Currency:       newPlan.Currency,
			Details:        fmt.Sprintf("prorated charge for %d of %d days", proration.DaysRemaining, proration.DaysInPeriod),
			AuditFields:    audit,
		})
	}

	if err := s.billingRepo.ChangePlan(ctx, *sub, events); err != nil {
		return nil, fmt.Errorf("failed to change plan: %w", err)
	}
	s.LogInfo(ctx, "subscription plan changed",
		"agency_id", agencyID, "from_plan", oldPlanID, "to_plan", newPlan.PlanID,
		"charge", proration.Charge.String())
	return sub, nil
}

func (s *billingService) ListBillingEvents(ctx context.Context, agencyID string, userID string, limit, offset int) ([]domain.BillingEvent, error) {
	if err := s.AuthorizeUser(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.billingRepo.ListBillingEvents(ctx, agencyID, limit, offset)
}
