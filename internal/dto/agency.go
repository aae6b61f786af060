package dto

import (
	"time"

	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateAgencyRequest defines the data needed to create a new agency.
type CreateAgencyRequest struct {
	Name                string          `json:"name" binding:"required"`
	Description         string          `json:"description"`
	DefaultCurrencyCode domain.Currency `json:"defaultCurrencyCode" binding:"required,currency"`
	// PlanID selects the subscription plan the agency starts on.
	PlanID string `json:"planID" binding:"required"`
}

// AgencyResponse defines the data returned for an agency.
type AgencyResponse struct {
	AgencyID            string          `json:"agencyID"`
	Name                string          `json:"name"`
	Description         string          `json:"description"`
	DefaultCurrencyCode domain.Currency `json:"defaultCurrencyCode"`
	IsActive            bool            `json:"isActive"`
	CreatedAt           time.Time       `json:"createdAt"`
	CreatedBy           string          `json:"createdBy"`
	LastUpdatedAt       time.Time       `json:"lastUpdatedAt"`
	LastUpdatedBy       string          `json:"lastUpdatedBy"`
}

// ToAgencyResponse converts a domain.Agency to AgencyResponse.
func ToAgencyResponse(a *domain.Agency) AgencyResponse {
	return AgencyResponse{
		AgencyID:            a.AgencyID,
		Name:                a.Name,
		Description:         a.Description,
		DefaultCurrencyCode: a.DefaultCurrencyCode,
		IsActive:            a.IsActive,
		CreatedAt:           a.CreatedAt,
		CreatedBy:           a.CreatedBy,
		LastUpdatedAt:       a.LastUpdatedAt,
		LastUpdatedBy:       a.LastUpdatedBy,
	}
}

// ToListAgencyResponse converts a slice of agencies to response DTOs.
func ToListAgencyResponse(agencies []domain.Agency) []AgencyResponse {
	res := make([]AgencyResponse, len(agencies))
	for i := range agencies {
		res[i] = ToAgencyResponse(&agencies[i])
	}
	return res
}

// AddUserToAgencyRequest defines the data needed to add a user to an agency.
type AddUserToAgencyRequest struct {
	UserID string                `json:"userID" binding:"required"`
	Role   domain.UserAgencyRole `json:"role" binding:"required,oneof=ADMIN MEMBER READONLY"`
}

// AgencyUserResponse defines the data returned for an agency membership.
type AgencyUserResponse struct {
	UserID   string                `json:"userID"`
	UserName string                `json:"userName"`
	AgencyID string                `json:"agencyID"`
	Role     domain.UserAgencyRole `json:"role"`
	JoinedAt time.Time             `json:"joinedAt"`
}

// ToAgencyUserResponse converts a domain.UserAgency to AgencyUserResponse.
func ToAgencyUserResponse(ua *domain.UserAgency) AgencyUserResponse {
	return AgencyUserResponse{
		UserID:   ua.UserID,
		UserName: ua.UserName,
		AgencyID: ua.AgencyID,
		Role:     ua.Role,
		JoinedAt: ua.JoinedAt,
	}
}

// ToListAgencyUserResponse converts a slice of memberships to response DTOs.
func ToListAgencyUserResponse(uas []domain.UserAgency) []AgencyUserResponse {
	res := make([]AgencyUserResponse, len(uas))
	for i := range uas {
		res[i] = ToAgencyUserResponse(&uas[i])
	}
	return res
}
