package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecurringFrequency is how often a recurring operator payment falls due.
type RecurringFrequency string

const (
	FrequencyWeekly    RecurringFrequency = "WEEKLY"
	FrequencyBiweekly  RecurringFrequency = "BIWEEKLY"
	FrequencyMonthly   RecurringFrequency = "MONTHLY"
	FrequencyQuarterly RecurringFrequency = "QUARTERLY"
	FrequencyYearly    RecurringFrequency = "YEARLY"
)

// Advance returns the due date that follows from, using calendar arithmetic
// for monthly and longer frequencies rather than fixed day counts.
func (f RecurringFrequency) Advance(from time.Time) time.Time {
	switch f {
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// RecurringPayment is a template that generates operator expense payments on
// a schedule. Generation is triggered externally (a daily scheduler hitting
// the run-due endpoint); there is no in-process timer.
type RecurringPayment struct {
	RecurringID  string             `json:"recurringID"` // Primary Key (UUID)
	AgencyID     string             `json:"agencyID"`
	OperatorName string             `json:"operatorName"`
	Concept      string             `json:"concept"`
	Currency     Currency           `json:"currency"`
	Amount       decimal.Decimal    `json:"amount"`
	Frequency    RecurringFrequency `json:"frequency"`
	NextDueDate  time.Time          `json:"nextDueDate"`
	StartDate    time.Time          `json:"startDate"`
	EndDate      *time.Time         `json:"endDate,omitempty"`
	IsActive     bool               `json:"isActive"`
	AccountID    *string            `json:"accountID,omitempty"`
	AuditFields
}

// IsDue reports whether the recurring payment should generate on today.
func (r RecurringPayment) IsDue(today time.Time) bool {
	if !r.IsActive {
		return false
	}
	if r.NextDueDate.After(today) {
		return false
	}
	if r.StartDate.After(today) {
		return false
	}
	if r.EndDate != nil && r.EndDate.Before(today) {
		return false
	}
	return true
}
