package domain

import "time"

// Agency represents a tenant: a travel agency with its own accounts, ledger,
// operations and billing subscription.
type Agency struct {
	AgencyID            string   `json:"agencyID"` // Primary Key (UUID)
	Name                string   `json:"name"`
	Description         string   `json:"description"`
	DefaultCurrencyCode Currency `json:"defaultCurrencyCode"`
	IsActive            bool     `json:"isActive"`
	AuditFields
}

// UserAgencyRole defines the possible roles a user can have within an agency.
type UserAgencyRole string

const (
	RoleAdmin    UserAgencyRole = "ADMIN"
	RoleMember   UserAgencyRole = "MEMBER"
	RoleReadOnly UserAgencyRole = "READONLY"
	RoleRemoved  UserAgencyRole = "REMOVED" // for users removed from the agency
)

// UserAgency represents the membership of a User in an Agency.
type UserAgency struct {
	UserID   string         `json:"userID"`
	UserName string         `json:"userName"`
	AgencyID string         `json:"agencyID"`
	Role     UserAgencyRole `json:"role"`
	JoinedAt time.Time      `json:"joinedAt"`
}
