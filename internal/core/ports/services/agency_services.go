package services

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
	"github.com/travesia-app/travesia-backend/internal/dto"
)

// AgencyReaderSvc defines read operations for agency data
type AgencyReaderSvc interface {
	// GetAgencyByID retrieves a specific agency, verifying membership.
	GetAgencyByID(ctx context.Context, agencyID string, userID string) (*domain.Agency, error)

	// ListUserAgencies retrieves the agencies the user belongs to.
	ListUserAgencies(ctx context.Context, userID string) ([]domain.Agency, error)

	// ListAgencyUsers retrieves the memberships of an agency.
	ListAgencyUsers(ctx context.Context, agencyID string, userID string) ([]domain.UserAgency, error)
}

// AgencyWriterSvc defines write operations for agency data
type AgencyWriterSvc interface {
	// CreateAgency persists a new agency with the creator as ADMIN and an
	// active subscription on the requested plan.
	CreateAgency(ctx context.Context, req dto.CreateAgencyRequest, userID string) (*domain.Agency, error)

	// AddUserToAgency adds a user to an agency with the given role. Only
	// admins may do this.
	AddUserToAgency(ctx context.Context, agencyID string, req dto.AddUserToAgencyRequest, adminUserID string) error
}

// AgencyAuthorizerSvc verifies a user's role within an agency.
type AgencyAuthorizerSvc interface {
	// AuthorizeUserAction returns the user's membership if their role is one
	// of the required roles; apperrors.ErrForbidden otherwise.
	AuthorizeUserAction(ctx context.Context, agencyID string, userID string, requiredRoles ...domain.UserAgencyRole) (*domain.UserAgency, error)
}

// AgencySvcFacade combines all agency-related service interfaces
type AgencySvcFacade interface {
	AgencyReaderSvc
	AgencyWriterSvc
	AgencyAuthorizerSvc
}
