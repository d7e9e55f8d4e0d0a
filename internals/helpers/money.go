package helper

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var currencySymbols = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"idr": "Rp",
}

// FormatMinor renders an amount in minor units, e.g. 5000 usd -> "$50.00".
func FormatMinor(amount int64, currency string) string {
	value := decimal.New(amount, -2).StringFixed(2)
	cur := strings.ToLower(currency)
	if sym, ok := currencySymbols[cur]; ok {
		return sym + value
	}
	return strings.ToUpper(cur) + " " + value
}

// ErrAmountOverflow is returned for values that do not fit an int64 of minor units.
var ErrAmountOverflow = errors.New("amount out of range")

var maxMinor = decimal.NewFromInt(1 << 53)

const (
	maxMajorInputLen = 64
	maxMajorExponent = 20
)

// ParseMajor converts a decimal string in major units to minor units,
// rounding half away from zero. "25.5" -> 2550.
func ParseMajor(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxMajorInputLen {
		return 0, ErrAmountOverflow
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, err
	}
	// rescaling a huge exponent allocates a matching big.Int
	if exp := d.Exponent(); exp > maxMajorExponent || exp < -maxMajorExponent {
		return 0, ErrAmountOverflow
	}
	minor := d.Shift(2).Round(0)
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, ErrAmountOverflow
	}
	return minor.IntPart(), nil
}
