package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/travesia-app/travesia-backend/internal/apperrors"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
	portsrepo "github.com/travesia-app/travesia-backend/internal/core/ports/repositories"
)

type PgxAgencyRepository struct {
	BaseRepository
}

// newPgxAgencyRepository creates a new repository for agency data.
func newPgxAgencyRepository(pool *pgxpool.Pool) portsrepo.AgencyRepositoryFacade {
	return &PgxAgencyRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AgencyRepositoryFacade = (*PgxAgencyRepository)(nil)

const agencyColumns = `agency_id, name, description, default_currency_code, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanAgency(row pgx.Row) (*domain.Agency, error) {
	var a domain.Agency
	err := row.Scan(
		&a.AgencyID,
		&a.Name,
		&a.Description,
		&a.DefaultCurrencyCode,
		&a.IsActive,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// SaveAgency inserts a new agency.
func (r *PgxAgencyRepository) SaveAgency(ctx context.Context, agency domain.Agency) error {
	query := `
		INSERT INTO agencies (` + agencyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		agency.AgencyID,
		agency.Name,
		agency.Description,
		agency.DefaultCurrencyCode,
		agency.IsActive,
		agency.CreatedAt,
		agency.CreatedBy,
		agency.LastUpdatedAt,
		agency.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: agency %s already exists", apperrors.ErrDuplicate, agency.AgencyID)
		}
		return fmt.Errorf("failed to save agency %s: %w", agency.AgencyID, err)
	}
	return nil
}

// FindAgencyByID retrieves an agency by its ID.
func (r *PgxAgencyRepository) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	query := `SELECT ` + agencyColumns + ` FROM agencies WHERE agency_id = $1;`
	agency, err := scanAgency(r.Pool.QueryRow(ctx, query, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find agency by ID %s: %w", agencyID, err)
	}
	return agency, nil
}

// ListUserAgencies retrieves all agencies a user is an active member of.
func (r *PgxAgencyRepository) ListUserAgencies(ctx context.Context, userID string) ([]domain.Agency, error) {
	query := `
		SELECT a.agency_id, a.name, a.description, a.default_currency_code, a.is_active,
		       a.created_at, a.created_by, a.last_updated_at, a.last_updated_by
		FROM agencies a
		JOIN agency_users au ON au.agency_id = a.agency_id
		WHERE au.user_id = $1 AND au.role != $2
		ORDER BY a.created_at;
	`
	rows, err := r.Pool.Query(ctx, query, userID, domain.RoleRemoved)
	if err != nil {
		return nil, fmt.Errorf("failed to list agencies for user %s: %w", userID, err)
	}
	defer rows.Close()

	var agencies []domain.Agency
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency row: %w", err)
		}
		agencies = append(agencies, *agency)
	}
	return agencies, rows.Err()
}

// FindUserAgencyRole retrieves the membership row of a user in an agency.
func (r *PgxAgencyRepository) FindUserAgencyRole(ctx context.Context, userID, agencyID string) (*domain.UserAgency, error) {
	query := `
		SELECT au.user_id, u.name, au.agency_id, au.role, au.joined_at
		FROM agency_users au
		JOIN users u ON u.user_id = au.user_id
		WHERE au.user_id = $1 AND au.agency_id = $2;
	`
	var ua domain.UserAgency
	err := r.Pool.QueryRow(ctx, query, userID, agencyID).Scan(
		&ua.UserID,
		&ua.UserName,
		&ua.AgencyID,
		&ua.Role,
		&ua.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership of user %s in agency %s: %w", userID, agencyID, err)
	}
	return &ua, nil
}

// ListAgencyUsers retrieves all memberships of an agency.
func (r *PgxAgencyRepository) ListAgencyUsers(ctx context.Context, agencyID string) ([]domain.UserAgency, error) {
	query := `
		SELECT au.user_id, u.name, au.agency_id, au.role, au.joined_at
		FROM agency_users au
		JOIN users u ON u.user_id = au.user_id
		WHERE au.agency_id = $1 AND au.role != $2
		ORDER BY au.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, agencyID, domain.RoleRemoved)
	if err != nil {
		return nil, fmt.Errorf("failed to list users of agency %s: %w", agencyID, err)
	}
	defer rows.Close()

	var memberships []domain.UserAgency
	for rows.Next() {
		var ua domain.UserAgency
		if err := rows.Scan(&ua.UserID, &ua.UserName, &ua.AgencyID, &ua.Role, &ua.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan membership row: %w", err)
		}
		memberships = append(memberships, ua)
	}
	return memberships, rows.Err()
}

// AddUserToAgency inserts a membership row.
func (r *PgxAgencyRepository) AddUserToAgency(ctx context.Context, membership domain.UserAgency) error {
	query := `
		INSERT INTO agency_users (user_id, agency_id, role, joined_at)
		VALUES ($1, $2, $3, $4);
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.AgencyID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: user %s is already a member of agency %s", apperrors.ErrDuplicate, membership.UserID, membership.AgencyID)
		}
		return fmt.Errorf("failed to add user %s to agency %s: %w", membership.UserID, membership.AgencyID, err)
	}
	return nil
}
