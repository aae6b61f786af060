package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/travesia-app/travesia-backend/internal/core/domain"
)

func TestMovementType_Sign(t *testing.T) {
	tests := []struct {
		name         string
		movementType domain.MovementType
		want         int64
	}{
		{name: "income is positive", movementType: domain.Income, want: 1},
		{name: "fx gain is positive", movementType: domain.FXGain, want: 1},
		{name: "expense is negative", movementType: domain.Expense, want: -1},
		{name: "fx loss is negative", movementType: domain.FXLoss, want: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.movementType.Sign().Equal(decimal.NewFromInt(tt.want)))
		})
	}
}

func TestLedgerMovement_SignedAmount(t *testing.T) {
	income := domain.LedgerMovement{Type: domain.Income, AmountOriginal: decimal.NewFromInt(250)}
	expense := domain.LedgerMovement{Type: domain.Expense, AmountOriginal: decimal.NewFromInt(250)}

	assert.True(t, income.SignedAmount().Equal(decimal.NewFromInt(250)))
	assert.True(t, expense.SignedAmount().Equal(decimal.NewFromInt(-250)))
}

func TestConvertToUSD(t *testing.T) {
	tests := []struct {
		name     string
		amount   decimal.Decimal
		currency domain.Currency
		rate     decimal.Decimal
		want     decimal.Decimal
		wantErr  bool
	}{
		{
			name:     "USD passes through untouched",
			amount:   decimal.NewFromInt(1234),
			currency: domain.USD,
			rate:     decimal.Zero,
			want:     decimal.NewFromInt(1234),
		},
		{
			name:     "ARS divides by the rate",
			amount:   decimal.NewFromInt(900000),
			currency: domain.ARS,
			rate:     decimal.NewFromInt(900),
			want:     decimal.NewFromInt(1000),
		},
		{
			name:     "ARS rounds to six decimals",
			amount:   decimal.NewFromInt(100),
			currency: domain.ARS,
			rate:     decimal.NewFromInt(3),
			want:     decimal.RequireFromString("33.333333"),
		},
		{
			name:     "ARS with zero rate fails",
			amount:   decimal.NewFromInt(100),
			currency: domain.ARS,
			rate:     decimal.Zero,
			wantErr:  true,
		},
		{
			name:     "ARS with negative rate fails",
			amount:   decimal.NewFromInt(100),
			currency: domain.ARS,
			rate:     decimal.NewFromInt(-900),
			wantErr:  true,
		},
		{
			name:     "unknown currency fails",
			amount:   decimal.NewFromInt(100),
			currency: domain.Currency("EUR"),
			rate:     decimal.NewFromInt(1),
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ConvertToUSD(tt.amount, tt.currency, tt.rate)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %s, want %s", got, tt.want)
		})
	}
}
