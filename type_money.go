package statement

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money represents a monetary value in a given currency.
type Money struct {
	value decimal.Decimal // as major unit value
	cur   string
}

func M[T float32 | float64 | int | int32 | int64 | decimal.Decimal](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// currency returns the money's currency metadata (fraction digits, symbol).
func (m Money) currency() money.Currency {
	// the Money constructor guarantees a never nil currency
	return *money.New(0, m.cur).Currency()
}

// String returns the string representation of the money value.
func (m Money) String() string {
	cur := m.currency()
	dec := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.Round(0).IntPart())
}

func (m Money) Currency() string        { return m.cur }
func (m Money) Equal(n Money) bool      { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool            { return m.value.IsZero() }
func (m Money) IsPositive() bool        { return m.value.IsPositive() }
func (m Money) IsNegative() bool        { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool   { return m.value.LessThan(n.value) }
func (m Money) Neg() Money              { return Money{value: m.value.Neg(), cur: m.cur} }
func (m Money) Abs() Money              { return Money{value: m.value.Abs(), cur: m.cur} }
func (m Money) Mul(n Quantity) Money    { return Money{value: m.value.Mul(n.value), cur: m.cur} }
func (m Money) Div(n Quantity) Money    { return Money{value: m.value.Div(n.value), cur: m.cur} }
func (m Money) Value() decimal.Decimal  { return m.value }
func (m Money) SameCurrency(n Money) bool { return m.cur == n.cur }

// binary operators.
func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(A, B Money) string {
	if A.cur == "" {
		return B.cur
	}
	if B.cur == "" {
		return A.cur
	}
	if A.cur != B.cur {
		panic("currency mismatch " + A.cur + "!=" + B.cur)
	}
	return A.cur
}

// Round returns the value rounded to the currency's minor unit.
func (m Money) Round() Money {
	return Money{value: m.value.Round(int32(m.currency().Fraction)), cur: m.cur}
}

// halfMinorUnit returns half of the currency's smallest representable
// amount, the rounding tolerance used when reconciling derived values.
func (m Money) halfMinorUnit() decimal.Decimal {
	frac := int32(m.currency().Fraction)
	return decimal.New(5, -frac-1)
}

// WithinTolerance reports whether m and n differ by at most half a minor
// unit of m's currency. Both values must share a currency.
func (m Money) WithinTolerance(n Money) bool {
	if m.cur != n.cur {
		return false
	}
	return m.value.Sub(n.value).Abs().LessThanOrEqual(m.halfMinorUnit())
}

// MarshalJSON implements the json.Marshaler interface for Money.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.value.Round(int32(m.currency().Fraction)))
	return w.MarshalJSON()
}
