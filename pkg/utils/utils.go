package utils

import (
	"github.com/shopspring/decimal"
)

// Monetary precision: loan amounts and customer scores are stored with 2
// fractional digits, payment and allocation amounts with 10. Allocation
// never rounds mid-run; rounding happens once at the storage boundary.
const (
	LoanAmountPlaces = 2
	PaymentPlaces    = 10
)

// RoundLoanAmount rounds a loan amount or score to its storage precision.
func RoundLoanAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(LoanAmountPlaces)
}

// RoundPaymentAmount rounds a payment or allocation amount to its storage
// precision.
func RoundPaymentAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(PaymentPlaces)
}

// MinDecimal returns the smaller of two decimals.
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThanOrEqual(b) {
		return a
	}
	return b
}

// SumOutstanding sums the outstanding balance over the given loans'
// balances, returning zero for an empty slice.
func SumOutstanding(balances []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b)
	}
	return total
}

// DecimalFromString converts string to decimal.Decimal
func DecimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
