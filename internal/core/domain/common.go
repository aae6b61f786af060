package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID reference
}

// Currency is one of the two settlement currencies the ledger supports.
// USD is the base unit: every movement stores a USD-normalized equivalent.
type Currency string

const (
	ARS Currency = "ARS"
	USD Currency = "USD"
)

// Valid reports whether c is a supported currency code.
func (c Currency) Valid() bool {
	return c == ARS || c == USD
}
