package service

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// averageTicket is total/transactions rounded to cents, zero without transactions.
func averageTicket(total decimal.Decimal, transactions int64) decimal.Decimal {
	if transactions <= 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(transactions)).Round(2)
}

// percentOf returns part/whole*100 rounded to two places, zero when whole is zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func requireNonNegative(field string, d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("%s must be >= 0", field)
	}
	return nil
}

func requirePositive(field string, d decimal.Decimal) error {
	if !d.IsPositive() {
		return invalid("%s must be > 0", field)
	}
	return nil
}
