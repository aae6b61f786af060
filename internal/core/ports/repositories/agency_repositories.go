package repositories

import (
	"context"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// AgencyReader defines read operations for agency data
type AgencyReader interface {
	// FindAgencyByID retrieves a specific agency by its unique identifier.
	FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error)

	// ListUserAgencies retrieves all agencies the given user belongs to.
	ListUserAgencies(ctx context.Context, userID string) ([]domain.Agency, error)

	// FindUserAgencyRole retrieves the membership of a user in an agency.
	FindUserAgencyRole(ctx context.Context, userID, agencyID string) (*domain.UserAgency, error)

	// ListAgencyUsers retrieves all memberships of an agency.
	ListAgencyUsers(ctx context.Context, agencyID string) ([]domain.UserAgency, error)
}

// AgencyWriter defines write operations for agency data
type AgencyWriter interface {
	// SaveAgency persists a new agency.
	SaveAgency(ctx context.Context, agency domain.Agency) error

	// AddUserToAgency persists a user membership in an agency.
	AddUserToAgency(ctx context.Context, membership domain.UserAgency) error
}

// AgencyRepositoryFacade combines all agency-related repository interfaces.
type AgencyRepositoryFacade interface {
	AgencyReader
	AgencyWriter
}
