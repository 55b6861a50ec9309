package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateMonthlyInstallment(t *testing.T) {
	tests := []struct {
		name      string
		principal decimal.Decimal
		rate      decimal.Decimal
		months    int
		expected  decimal.Decimal
	}{
		{
			name:      "one year at 12 percent",
			principal: decimal.NewFromInt(1200000),
			rate:      decimal.NewFromInt(12),
			months:    12,
			expected:  decimal.NewFromInt(112000), // (1,200,000 + 144,000) / 12
		},
		{
			name:      "six months at 10 percent",
			principal: decimal.NewFromInt(600000),
			rate:      decimal.NewFromInt(10),
			months:    6,
			expected:  decimal.NewFromInt(105000), // (600,000 + 30,000) / 6
		},
		{
			name:      "zero interest rate",
			principal: decimal.NewFromInt(500000),
			rate:      decimal.Zero,
			months:    10,
			expected:  decimal.NewFromInt(50000),
		},
		{
			name:      "rounds to cents",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.Zero,
			months:    3,
			expected:  decimal.RequireFromString("333.33"),
		},
		{
			name:      "zero term",
			principal: decimal.NewFromInt(1000),
			rate:      decimal.NewFromInt(5),
			months:    0,
			expected:  decimal.Zero,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateMonthlyInstallment(tt.principal, tt.rate, tt.months)
			assert.True(t, result.Equal(tt.expected),
				"Expected %v, but got %v", tt.expected, result)
		})
	}
}

func TestCalculateDueDate(t *testing.T) {
	baseDate := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		months   int
		expected time.Time
	}{
		{name: "one month", months: 1, expected: time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)},
		{name: "one year", months: 12, expected: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		{name: "eighteen months", months: 18, expected: time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CalculateDueDate(baseDate, tt.months))
		})
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(time.Date(2024, 12, 20, 13, 45, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), end)
}

func TestRatio(t *testing.T) {
	assert.True(t, Ratio(1, 4, 4).Equal(decimal.RequireFromString("0.25")))
	assert.True(t, Ratio(1, 3, 4).Equal(decimal.RequireFromString("0.3333")))
	assert.True(t, Ratio(5, 0, 4).Equal(decimal.Zero))
}

func TestIsDateOverdue(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, IsDateOverdue(now.AddDate(0, 0, -1), now))
	assert.False(t, IsDateOverdue(now.AddDate(0, 0, 1), now))
	assert.False(t, IsDateOverdue(now, now))
}
