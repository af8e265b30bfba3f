// Package types provides the value types shared across haulage.
package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency every haulage amount is kept in unless a
// caller says otherwise.
const DefaultCurrency = "inr"

// MaxAmount is the largest magnitude, in minor units, that a rate, advance,
// line amount, bill total or payment may carry.
const MaxAmount int64 = 1_000_000_000_000_000

// ErrOutOfRange is returned by the checked operations when a result would
// pass MaxAmount.
var ErrOutOfRange = errors.New("money: amount out of range")

// Money represents a monetary value in the smallest currency unit.
// All arithmetic is integer-only. Decimal input is converted once, at the
// edge, through Parse.
//
// Examples:
//   - INR(18000) = ₹180.00 (18000 paise)
//   - Rupees(250) = ₹250.00
type Money struct {
	Amount   int64  `json:"amount"`   // Smallest unit (paise for INR)
	Currency string `json:"currency"` // ISO 4217 lowercase: "inr"
}

// INR creates a Money value in Indian Rupees from paise.
func INR(paise int64) Money { return Money{Amount: paise, Currency: DefaultCurrency} }

// Rupees creates a Money value from a whole number of rupees.
func Rupees(r int64) Money { return INR(r * 100) }

// Zero returns a zero Money value in the specified currency.
func Zero(currency string) Money { return Money{Amount: 0, Currency: strings.ToLower(currency)} }

// Parse converts a decimal string in major units ("1250.5", "-3") into Money.
// Fractions beyond the currency's minor unit are rounded half away from zero.
func Parse(s, currency string) (Money, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return Money{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	places := int32(currencyDecimals(currency))
	minor := d.Round(places).Shift(places)
	if !minor.Equal(decimal.NewFromInt(minor.IntPart())) {
		return Money{}, fmt.Errorf("money: parse %q: out of range", s)
	}
	return Money{Amount: minor.IntPart(), Currency: currency}, nil
}

// ParseINR is Parse with the rupee currency.
func ParseINR(s string) (Money, error) { return Parse(s, DefaultCurrency) }

// MustParseINR is like ParseINR but panics on error. Use for literals.
func MustParseINR(s string) Money {
	m, err := ParseINR(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Amount, -int32(currencyDecimals(m.Currency)))
}

// Add adds two Money values. Panics if currencies don't match.
func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount + other.Amount, Currency: m.currency()}
}

// Subtract subtracts another Money value. Panics if currencies don't match.
func (m Money) Subtract(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount - other.Amount, Currency: m.currency()}
}

// Multiply multiplies the Money by a quantity.
func (m Money) Multiply(qty int64) Money {
	return Money{Amount: m.Amount * qty, Currency: m.currency()}
}

// MultiplyChecked is Multiply that fails with ErrOutOfRange instead of
// passing MaxAmount in either direction.
func (m Money) MultiplyChecked(qty int64) (Money, error) {
	product := decimal.NewFromInt(m.Amount).Mul(decimal.NewFromInt(qty))
	if product.Abs().GreaterThan(decimal.NewFromInt(MaxAmount)) {
		return Money{}, fmt.Errorf("%w: %s x %d", ErrOutOfRange, m, qty)
	}
	return Money{Amount: product.IntPart(), Currency: m.currency()}, nil
}

// AddChecked is Add that fails with ErrOutOfRange when the sum passes
// MaxAmount. Both operands must already be within MaxAmount.
func (m Money) AddChecked(other Money) (Money, error) {
	sum := m.Add(other)
	if sum.Amount > MaxAmount || sum.Amount < -MaxAmount {
		return Money{}, fmt.Errorf("%w: %s + %s", ErrOutOfRange, m, other)
	}
	return sum, nil
}

// Negate returns the negative of the Money value.
func (m Money) Negate() Money {
	return Money{Amount: -m.Amount, Currency: m.currency()}
}

// FloorZero returns m, or zero in the same currency when m is negative.
func (m Money) FloorZero() Money {
	if m.Amount < 0 {
		return Zero(m.currency())
	}
	return m
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.Amount == 0 }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.Amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.Amount < 0 }

// Equal returns true if both values have the same amount and currency.
func (m Money) Equal(other Money) bool {
	return m.Amount == other.Amount && m.currency() == other.currency()
}

// LessThan returns true if this Money is less than other. Panics if currencies don't match.
func (m Money) LessThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount < other.Amount
}

// GreaterThan returns true if this Money is greater than other. Panics if currencies don't match.
func (m Money) GreaterThan(other Money) bool {
	m.assertSameCurrency(other)
	return m.Amount > other.Amount
}

// Min returns the smaller of two Money values. Panics if currencies don't match.
func (m Money) Min(other Money) Money {
	m.assertSameCurrency(other)
	if m.Amount < other.Amount {
		return m
	}
	return other
}

// Max returns the larger of two Money values. Panics if currencies don't match.
func (m Money) Max(other Money) Money {
	m.assertSameCurrency(other)
	if m.Amount > other.Amount {
		return m
	}
	return other
}

// FormatMajor returns the major unit string without symbol or grouping:
// "180.00" for INR(18000).
func (m Money) FormatMajor() string {
	return m.Decimal().StringFixed(int32(currencyDecimals(m.Currency)))
}

// String returns a display string with the currency symbol. Rupee amounts
// use lakh/crore digit grouping: INR(12345600) is "₹1,23,456.00".
func (m Money) String() string {
	major := m.FormatMajor()
	sign := ""
	if strings.HasPrefix(major, "-") {
		sign, major = "-", major[1:]
	}
	intPart, frac, _ := strings.Cut(major, ".")
	if m.currency() == "inr" {
		intPart = groupIndian(intPart)
	} else {
		intPart = groupThousands(intPart)
	}
	if frac != "" {
		intPart += "." + frac
	}
	return sign + currencySymbol(m.currency()) + intPart
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		Display  string `json:"display"`
	}{
		Amount:   m.Amount,
		Currency: m.currency(),
		Display:  m.String(),
	})
}

// UnmarshalJSON accepts either the object form written by MarshalJSON or a
// decimal string in rupees ("1250.50").
func (m *Money) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseINR(s)
		if err != nil {
			return err
		}
		*m = parsed
		return nil
	}
	var raw struct {
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = Money{Amount: raw.Amount, Currency: strings.ToLower(raw.Currency)}
	if m.Currency == "" {
		m.Currency = DefaultCurrency
	}
	return nil
}

// currency treats the zero value as rupees so that uninitialised totals can
// be added to real amounts.
func (m Money) currency() string {
	if m.Currency == "" {
		return DefaultCurrency
	}
	return m.Currency
}

func (m Money) assertSameCurrency(other Money) {
	if m.currency() != other.currency() {
		panic(fmt.Sprintf("money: currency mismatch: %s != %s", m.currency(), other.currency()))
	}
}

func currencySymbol(currency string) string {
	symbols := map[string]string{
		"inr": "₹",
		"usd": "$",
		"eur": "€",
		"gbp": "£",
	}
	if sym, ok := symbols[strings.ToLower(currency)]; ok {
		return sym
	}
	return strings.ToUpper(currency) + " "
}

func currencyDecimals(currency string) int {
	switch strings.ToLower(currency) {
	case "jpy", "krw", "vnd":
		return 0
	default:
		return 2
	}
}

// groupIndian inserts separators after the last three digits and then every two.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var parts []string
	for len(digits) > 3 {
		parts = append([]string{digits[len(digits)-3:]}, parts...)
		digits = digits[:len(digits)-3]
	}
	return strings.Join(append([]string{digits}, parts...), ",")
}

// Sum calculates the sum of multiple Money values. All must have the same
// currency. An empty call returns zero rupees.
func Sum(values ...Money) Money {
	result := Zero(DefaultCurrency)
	if len(values) > 0 {
		result = Zero(values[0].currency())
	}
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}
