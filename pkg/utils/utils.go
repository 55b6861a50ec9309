package utils

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	hundred      = decimal.NewFromInt(100)
	monthsInYear = decimal.NewFromInt(12)
)

// CalculateMonthlyInstallment calculates the flat-rate monthly installment
// Formula: (Principal + Principal * Rate/100 * Months/12) / Months
func CalculateMonthlyInstallment(principal decimal.Decimal, annualRatePercent decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	term := decimal.NewFromInt(int64(months))
	totalInterest := principal.Mul(annualRatePercent).Div(hundred).Mul(term).Div(monthsInYear)
	totalAmount := principal.Add(totalInterest)

	// Round to 2 decimal places
	return totalAmount.Div(term).Round(2)
}

// CalculateDueDate returns the final due date of a loan disbursed on start
func CalculateDueDate(start time.Time, termMonths int) time.Time {
	return start.AddDate(0, termMonths, 0)
}

// MonthBounds returns the first instant of t's calendar month and the first
// instant of the next month, in t's location.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}

// Ratio divides num by den rounded to places, returning zero when den is zero
func Ratio(num, den int64, places int32) decimal.Decimal {
	if den == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(num).DivRound(decimal.NewFromInt(den), places)
}

// IsDateOverdue checks if a due date is before now
func IsDateOverdue(dueDate, now time.Time) bool {
	return now.After(dueDate)
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
