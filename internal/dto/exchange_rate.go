package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

// CreateExchangeRateRequest defines the data needed to record a daily ARS/USD rate.
type CreateExchangeRateRequest struct {
	RateDate time.Time       `json:"rateDate" binding:"required" time_format:"2006-01-02"`
	Rate     decimal.Decimal `json:"rate" binding:"required"`
}

// ExchangeRateResponse defines the data returned for a stored exchange rate.
type ExchangeRateResponse struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	AgencyID       string          `json:"agencyID"`
	RateDate       time.Time       `json:"rateDate"`
	Rate           decimal.Decimal `json:"rate"`
	CreatedAt      time.Time       `json:"createdAt"`
	CreatedBy      string          `json:"createdBy"`
}

// ToExchangeRateResponse converts a domain.ExchangeRate to ExchangeRateResponse.
func ToExchangeRateResponse(r *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: r.ExchangeRateID,
		AgencyID:       r.AgencyID,
		RateDate:       r.RateDate,
		Rate:           r.Rate,
		CreatedAt:      r.CreatedAt,
		CreatedBy:      r.CreatedBy,
	}
}

// ToListExchangeRateResponse converts a slice of rates to response DTOs.
func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	res := make([]ExchangeRateResponse, len(rates))
	for i := range rates {
		res[i] = ToExchangeRateResponse(&rates[i])
	}
	return res
}

// ResolvedRateResponse reports the rate chosen for a date and where it came from.
type ResolvedRateResponse struct {
	Rate   decimal.Decimal   `json:"rate"`
	Source domain.RateSource `json:"source"`
	// RateDate is zero when the rate came from the configured fallback.
	RateDate time.Time `json:"rateDate,omitempty"`
}

// ToResolvedRateResponse converts a domain.ResolvedRate to ResolvedRateResponse.
func ToResolvedRateResponse(r *domain.ResolvedRate) ResolvedRateResponse {
	return ResolvedRateResponse{
		Rate:     r.Rate,
		Source:   r.Source,
		RateDate: r.RateDate,
	}
}
