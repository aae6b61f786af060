package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
	portssvc "github.com/travesia-app/travesia-backend/internal/core/ports/services"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// agencyService implements portssvc.AgencySvcFacade.
type agencyService struct {
	BaseService
	agencyRepo  portsrepo.AgencyRepositoryFacade
	billingRepo portsrepo.BillingRepositoryFacade
}

// NewAgencyService creates the agency service. Agency creation provisions the
// starting subscription, hence the billing repository dependency.
func NewAgencyService(agencyRepo portsrepo.AgencyRepositoryFacade, billingRepo portsrepo.BillingRepositoryFacade) portssvc.AgencySvcFacade {
	return &agencyService{
		agencyRepo:  agencyRepo,
		billingRepo: billingRepo,
	}
}

var _ portssvc.AgencySvcFacade = (*agencyService)(nil)

// AuthorizeUserAction returns the user's membership when their role is one of
// the required roles.
func (s *agencyService) AuthorizeUserAction(ctx context.Context, agencyID string, userID string, requiredRoles ...domain.UserAgencyRole) (*domain.UserAgency, error) {
	membership, err := s.agencyRepo.FindUserAgencyRole(ctx, userID, agencyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: user is not a member of this agency", apperrors.ErrForbidden)
		}
		return nil, fmt.Errorf("failed to check agency membership: %w", err)
	}
	if membership.Role == domain.RoleRemoved {
		return nil, fmt.Errorf("%w: user was removed from this agency", apperrors.ErrForbidden)
	}
	for _, role := range requiredRoles {
		if membership.Role == role {
			return membership, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s cannot perform this action", apperrors.ErrForbidden, membership.Role)
}

// CreateAgency persists the agency, makes the creator ADMIN and opens an
// active subscription on the requested plan.
func (s *agencyService) CreateAgency(ctx context.Context, req dto.CreateAgencyRequest, userID string) (*domain.Agency, error) {
	plan, err := s.billingRepo.FindPlanByID(ctx, req.PlanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: plan %s does not exist", apperrors.ErrValidation, req.PlanID)
		}
		return nil, fmt.Errorf("failed to validate plan: %w", err)
	}

	now := time.Now().UTC()
	agency := domain.Agency{
		AgencyID:            uuid.NewString(),
		Name:                req.Name,
		Description:         req.Description,
		DefaultCurrencyCode: req.DefaultCurrencyCode,
		IsActive:            true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.agencyRepo.SaveAgency(ctx, agency); err != nil {
		return nil, fmt.Errorf("failed to create agency: %w", err)
	}

	membership := domain.UserAgency{
		UserID:   userID,
		AgencyID: agency.AgencyID,
		Role:     domain.RoleAdmin,
		JoinedAt: now,
	}
	if err := s.agencyRepo.AddUserToAgency(ctx, membership); err != nil {
		return nil, fmt.Errorf("failed to add creator to agency: %w", err)
	}

	periodEnd := now.AddDate(0, 1, 0)
	sub := domain.Subscription{
		SubscriptionID:     uuid.NewString(),
		AgencyID:           agency.AgencyID,
		PlanID:             plan.PlanID,
		Status:             domain.SubscriptionActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   periodEnd,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := s.billingRepo.SaveSubscription(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to open subscription for agency: %w", err)
	}

	s.LogInfo(ctx, "agency created", "agency_id", agency.AgencyID, "plan_id", plan.PlanID)
	return &agency, nil
}

// GetAgencyByID retrieves an agency after verifying membership.
func (s *agencyService) GetAgencyByID(ctx context.Context, agencyID string, userID string) (*domain.Agency, error) {
	if _, err := s.AuthorizeUserAction(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.agencyRepo.FindAgencyByID(ctx, agencyID)
}

// ListUserAgencies retrieves the agencies the user belongs to.
func (s *agencyService) ListUserAgencies(ctx context.Context, userID string) ([]domain.Agency, error) {
	return s.agencyRepo.ListUserAgencies(ctx, userID)
}

// ListAgencyUsers retrieves the memberships of an agency.
func (s *agencyService) ListAgencyUsers(ctx context.Context, agencyID string, userID string) ([]domain.UserAgency, error) {
	if _, err := s.AuthorizeUserAction(ctx, agencyID, userID, anyRole...); err != nil {
		return nil, err
	}
	return s.agencyRepo.ListAgencyUsers(ctx, agencyID)
}

// AddUserToAgency adds a user to the agency. Admin only.
func (s *agencyService) AddUserToAgency(ctx context.Context, agencyID string, req dto.AddUserToAgencyRequest, adminUserID string) error {
	if _, err := s.AuthorizeUserAction(ctx, agencyID, adminUserID, domain.RoleAdmin); err != nil {
		return err
	}
	membership := domain.UserAgency{
		UserID:   req.UserID,
		AgencyID: agencyID,
		Role:     req.Role,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.agencyRepo.AddUserToAgency(ctx, membership); err != nil {
		return fmt.Errorf("failed to add user to agency: %w", err)
	}
	s.LogInfo(ctx, "user added to agency", "agency_id", agencyID, "user_id", req.UserID, "role", string(req.Role))
	return nil
}
