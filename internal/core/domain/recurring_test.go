package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRecurringFrequency_Advance(t *testing.T) {
	from := date(2024, time.January, 31)

	tests := []struct {
		name      string
		frequency domain.RecurringFrequency
		want      time.Time
	}{
		{name: "weekly adds seven days", frequency: domain.FrequencyWeekly, want: date(2024, time.February, 7)},
		{name: "biweekly adds fourteen days", frequency: domain.FrequencyBiweekly, want: date(2024, time.February, 14)},
		// Jan 31 + 1 month normalizes through February.
		{name: "monthly uses calendar arithmetic", frequency: domain.FrequencyMonthly, want: date(2024, time.March, 2)},
		{name: "quarterly adds three months", frequency: domain.FrequencyQuarterly, want: date(2024, time.May, 1)},
		{name: "yearly adds one year", frequency: domain.FrequencyYearly, want: date(2025, time.January, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.frequency.Advance(from)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}

func TestRecurringPayment_IsDue(t *testing.T) {
	today := date(2024, time.March, 15)
	end := date(2024, time.February, 1)

	base := domain.RecurringPayment{
		NextDueDate: date(2024, time.March, 10),
		StartDate:   date(2024, time.January, 1),
		IsActive:    true,
	}

	tests := []struct {
		name   string
		modify func(r *domain.RecurringPayment)
		want   bool
	}{
		{name: "due when next due date passed", modify: func(r *domain.RecurringPayment) {}, want: true},
		{name: "due on the exact due date", modify: func(r *domain.RecurringPayment) { r.NextDueDate = today }, want: true},
		{name: "not due before next due date", modify: func(r *domain.RecurringPayment) { r.NextDueDate = date(2024, time.April, 1) }, want: false},
		{name: "inactive schedule never due", modify: func(r *domain.RecurringPayment) { r.IsActive = false }, want: false},
		{name: "not due before start date", modify: func(r *domain.RecurringPayment) { r.StartDate = date(2024, time.April, 1) }, want: false},
		{name: "expired schedule not due", modify: func(r *domain.RecurringPayment) { r.EndDate = &end }, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := base
			tt.modify(&rec)
			assert.Equal(t, tt.want, rec.IsDue(today))
		})
	}
}
