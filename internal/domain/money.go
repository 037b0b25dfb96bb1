package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in minor currency units (paise). It is stored as a plain
// number and rendered in JSON as a decimal number of whole units, e.g. 100.00.
type Money int64

// MaxMoney bounds any single amount accepted from a client: ₹1,00,00,000.
const MaxMoney = Money(10_000_000_00)

var maxMinor = decimal.NewFromInt(int64(MaxMoney))

// Rupees converts a whole-unit amount to Money.
func Rupees(n int64) Money { return Money(n * 100) }

// ParseMoney parses a decimal amount of whole units ("250", "99.5") into Money.
// More than two fractional digits are rejected, as is anything beyond MaxMoney
// in either direction.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, ErrBadRequest)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimals: %w", s, ErrBadRequest)
	}
	if minor.Abs().GreaterThan(maxMinor) {
		return 0, fmt.Errorf("amount %q exceeds %s: %w", s, MaxMoney, ErrBadRequest)
	}
	return Money(minor.IntPart()), nil
}

// Decimal returns the amount in whole units.
func (m Money) Decimal() decimal.Decimal { return decimal.New(int64(m), -2) }

func (m Money) String() string { return m.Decimal().StringFixed(2) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Money) UnmarshalJSON(b []byte) error {
	parsed, err := ParseMoney(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
