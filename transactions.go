package statement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TxType is a typed string identifying the kind of a finalized transaction.
type TxType string

// The closed set of transaction kinds the engine can emit.
const (
	TypePurchase       TxType = "purchase"
	TypeSale           TxType = "sale"
	TypeDividend       TxType = "dividend"
	TypeInterest       TxType = "interest"
	TypeInterestCharge TxType = "interest-charge"
	TypeFee            TxType = "fee"
	TypeTax            TxType = "tax"
	TypeDeposit        TxType = "deposit"
	TypeWithdrawal     TxType = "withdrawal"
	TypeUnsupported    TxType = "unsupported"
)

// ParseTxType parses a string into a TxType.
func ParseTxType(s string) (TxType, error) {
	switch t := TxType(s); t {
	case TypePurchase, TypeSale, TypeDividend, TypeInterest, TypeInterestCharge,
		TypeFee, TypeTax, TypeDeposit, TypeWithdrawal, TypeUnsupported:
		return t, nil
	default:
		return "", fmt.Errorf("unknown transaction type: %q", s)
	}
}

// IsShareBased reports whether the type moves securities, and therefore
// requires a share quantity and a security reference at finalization.
func (t TxType) IsShareBased() bool {
	switch t {
	case TypePurchase, TypeSale, TypeDividend:
		return true
	default:
		return false
	}
}

// UnitKind identifies the role of a monetary component inside a transaction.
type UnitKind string

const (
	UnitTax   UnitKind = "tax"
	UnitFee   UnitKind = "fee"
	UnitGross UnitKind = "gross"
)

// Unit is a monetary component of a transaction: a tax deduction, a fee, or
// the gross value. When the component's native currency differs from the
// transaction's settlement currency, Forex carries the native-currency value
// and Rate the exchange rate such that Forex ≈ Rate × Value.
type Unit struct {
	Kind  UnitKind
	Value Money
	Forex Money           // zero when the unit is in the settlement currency
	Rate  decimal.Decimal // zero when Forex is zero
}

// HasForex reports whether the unit carries a foreign currency pair.
func (u Unit) HasForex() bool { return u.Forex.Currency() != "" }

// MarshalJSON implements the json.Marshaler interface for Unit.
func (u Unit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("kind", u.Kind)
	w.Append("value", u.Value)
	if u.HasForex() {
		w.Append("forex", u.Forex)
		w.Append("rate", u.Rate)
	}
	return w.MarshalJSON()
}

// Transaction is a finalized, normalized statement entry.
//
// The type tag selects which fields are meaningful: share-based types carry
// Shares and Security, cash movements carry neither. Units decompose the
// settlement amount into gross value, fees and taxes; the reconciliation identity
// is enforced at finalization and verified by [CheckCurrencies].
type Transaction struct {
	Type     TxType
	Date     time.Time
	Shares   Quantity
	Amount   Money
	Security *Security // nil for pure cash movements
	Units    []Unit
	Source   string // source name of the originating document
	Note     string // free-form annotation, e.g. "Referenz: 32484929"
}

// UnitSum returns the sum of all units of the given kind, in the settlement
// currency. The zero Money (weak currency) is returned when no unit matches.
func (t *Transaction) UnitSum(kind UnitKind) Money {
	sum := Money{cur: t.Amount.Currency()}
	for _, u := range t.Units {
		if u.Kind == kind {
			sum = sum.Add(u.Value)
		}
	}
	return sum
}

// Unit returns the first unit of the given kind, if any.
func (t *Transaction) Unit(kind UnitKind) (Unit, bool) {
	for _, u := range t.Units {
		if u.Kind == kind {
			return u, true
		}
	}
	return Unit{}, false
}

// GrossValue returns the gross unit value if present, and otherwise derives
// it from the settlement amount and the deduction units per the type's
// direction.
func (t *Transaction) GrossValue() Money {
	if u, ok := t.Unit(UnitGross); ok {
		return u.Value
	}
	return deriveGross(t.Type, t.Amount, t.UnitSum(UnitTax), t.UnitSum(UnitFee))
}

func (t *Transaction) Equal(o *Transaction) bool {
	if t.Type != o.Type || !t.Date.Equal(o.Date) || !t.Shares.Equal(o.Shares) ||
		!t.Amount.Equal(o.Amount) || !t.Security.Equal(o.Security) ||
		t.Source != o.Source || t.Note != o.Note || len(t.Units) != len(o.Units) {
		return false
	}
	for i, u := range t.Units {
		v := o.Units[i]
		if u.Kind != v.Kind || !u.Value.Equal(v.Value) || !u.Forex.Equal(v.Forex) || !u.Rate.Equal(v.Rate) {
			return false
		}
	}
	return true
}

// MarshalJSON implements the json.Marshaler interface for Transaction.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("type", t.Type)
	w.Append("date", t.Date.Format("2006-01-02T15:04"))
	if t.Type.IsShareBased() || !t.Shares.IsZero() {
		w.Append("shares", t.Shares)
	}
	w.EmbedFrom(t.Amount)
	if t.Security != nil {
		w.Append("security", t.Security)
	}
	if len(t.Units) > 0 {
		w.Append("units", t.Units)
	}
	w.Optional("source", t.Source)
	w.Optional("note", t.Note)
	return w.MarshalJSON()
}
