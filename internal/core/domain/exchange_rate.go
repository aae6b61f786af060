package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSource records where a resolved rate came from, so callers can note
// degraded lookups in the movement's audit trail.
type RateSource string

const (
	RateSourceExact        RateSource = "EXACT"
	RateSourceNearestPrior RateSource = "NEAREST_PRIOR"
	RateSourceLatest       RateSource = "LATEST"
	RateSourceFallback     RateSource = "FALLBACK"
)

// ExchangeRate stores the ARS-per-USD conversion rate for a specific date.
// The table is sparse: rates are entered manually or fetched daily, so not
// every calendar day has a row.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"` // Primary Key (UUID)
	AgencyID       string          `json:"agencyID"`
	RateDate       time.Time       `json:"rateDate"` // date only, one row per agency per day
	Rate           decimal.Decimal `json:"rate"`     // ARS per USD
	AuditFields
}

// ResolvedRate is the outcome of a rate lookup, carrying the fallback
// provenance alongside the numeric rate.
type ResolvedRate struct {
	Rate   decimal.Decimal `json:"rate"`
	Source RateSource      `json:"source"`
	// RateDate is the date of the row the rate came from; zero for FALLBACK.
	RateDate time.Time `json:"rateDate,omitempty"`
}
