package utils

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale is the number of fractional digits of the smallest currency unit (kopiyka)
const AmountScale = 2

// MaxAmountIntegerDigits matches the integer part of the numeric(20,2) money columns
const MaxAmountIntegerDigits = 18

// MaxAmount is the exclusive upper bound of any stored amount
var MaxAmount = decimal.New(1, MaxAmountIntegerDigits)

// ErrMalformedAmount is returned for text that is not a plain decimal with at most two fractional digits
var ErrMalformedAmount = errors.New("amount must be digits with an optional two-digit fraction")

var amountPattern = regexp.MustCompile(`^\d+([.,]\d{1,2})?$`)

// FormatAmount renders an amount the way it is sent to and signed for the provider
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}

// ParseAmount parses user-typed amounts, accepting a decimal comma ("150,50").
// Signs, exponents and more than two fractional digits are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrMalformedAmount
	}
	return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
}

// InAmountRange reports whether amount is below MaxAmount. The exponent is checked
// first so that values such as 1e20000000 are rejected without being rescaled.
func InAmountRange(amount decimal.Decimal) bool {
	exp := amount.Exponent()
	if exp > MaxAmountIntegerDigits || exp < -(MaxAmountIntegerDigits+AmountScale) {
		return false
	}
	return amount.LessThan(MaxAmount)
}

// HasMinorUnitScale reports whether the amount has no digits below the smallest currency unit
func HasMinorUnitScale(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(AmountScale))
}

// ShareOf returns amount*rate rounded half-up to the smallest currency unit.
// decimal.Round rounds half away from zero, which is half-up for the positive amounts used here.
func ShareOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(AmountScale)
}
