package statement

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Match holds the named captures of a rule trigger for one occurrence.
type Match map[string]string

// Get returns the capture for a group name, or "" when the group did not
// participate in the match.
func (m Match) Get(name string) string { return m[name] }

// AssembleFunc turns the captures of one trigger occurrence into mutations
// of the extraction context's open drafts.
type AssembleFunc func(ctx *Context, m Match) error

// Rule is one declarative extraction unit: a trigger pattern with named
// capture groups, applied to blocks of one type, feeding an assembler.
//
// Rules of the same category are mutually exclusive on a block: the first
// one (by ascending priority, then declaration order) whose trigger matches
// consumes the block for that category. Rules of different categories are
// independent and may each match their own span of the same block.
type Rule struct {
	Category string
	Block    string // block type this rule applies to
	Trigger  *regexp.Regexp
	Priority int
	Repeat   bool // apply the assembler once per occurrence, not just the first
	Assemble AssembleFunc
}

// apply runs the rule's assembler over the block text. It reports whether
// the trigger matched at all.
func (r *Rule) apply(ctx *Context, text string) (bool, error) {
	matches := r.Trigger.FindAllStringSubmatch(text, -1)
	if matches == nil {
		return false, nil
	}
	if !r.Repeat {
		matches = matches[:1]
	}
	names := r.Trigger.SubexpNames()
	for _, sub := range matches {
		m := make(Match, len(names))
		for i, name := range names {
			if name != "" && sub[i] != "" {
				m[name] = sub[i]
			}
		}
		if err := r.Assemble(ctx, m); err != nil {
			return true, err
		}
	}
	return true, nil
}

// All combines several assemblers into one, applied in order.
func All(fns ...AssembleFunc) AssembleFunc {
	return func(ctx *Context, m Match) error {
		for _, fn := range fns {
			if err := fn(ctx, m); err != nil {
				return err
			}
		}
		return nil
	}
}

// --- Declarative assemblers ---
//
// These cover the recurring statement fields so that issuer catalogs remain
// data. Odd layouts can still plug a hand-written AssembleFunc.

// SetType fixes the transaction type of the open draft.
func SetType(t TxType) AssembleFunc {
	return func(ctx *Context, _ Match) error {
		ctx.Tx().Type = t
		return nil
	}
}

// SetUnsupported marks the open draft as a recognized but unsupported
// transaction, carrying a human readable reason for the caller's report.
func SetUnsupported(reason string) AssembleFunc {
	return func(ctx *Context, _ Match) error {
		tx := ctx.Tx()
		tx.Type = TypeUnsupported
		tx.Failure = reason
		return nil
	}
}

// Date captures the transaction date using a time layout.
func Date(group, layout string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(group)
		if v == "" {
			return nil
		}
		d, err := time.Parse(layout, v)
		if err != nil {
			return fmt.Errorf("cannot parse date %q with layout %q: %w", v, layout, err)
		}
		ctx.Tx().Date = d
		return nil
	}
}

// Shares captures the share quantity.
func Shares(group string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(group)
		if v == "" {
			return nil
		}
		d, err := ParseDecimal(v)
		if err != nil {
			return fmt.Errorf("cannot parse share quantity %q: %w", v, err)
		}
		ctx.Tx().Shares = Q(d)
		return nil
	}
}

// Amount captures the settlement amount and its currency. currencyGroup may
// be empty, in which case the context's default currency applies.
func Amount(valueGroup, currencyGroup string) AssembleFunc {
	return moneyAssembler(valueGroup, currencyGroup, func(tx *TransactionDraft, m Money) {
		tx.Amount = m
	})
}

// Gross captures the gross value in the settlement currency.
func Gross(valueGroup, currencyGroup string) AssembleFunc {
	return moneyAssembler(valueGroup, currencyGroup, func(tx *TransactionDraft, m Money) {
		tx.Gross = m
	})
}

// ForexGross captures the gross value in the security's native currency,
// for trades settled in a different currency.
func ForexGross(valueGroup, currencyGroup string) AssembleFunc {
	return moneyAssembler(valueGroup, currencyGroup, func(tx *TransactionDraft, m Money) {
		tx.GrossForex = m
	})
}

// Tax appends a tax unit.
func Tax(valueGroup, currencyGroup string) AssembleFunc {
	return unitAssembler(UnitTax, valueGroup, currencyGroup)
}

// Fee appends a fee unit.
func Fee(valueGroup, currencyGroup string) AssembleFunc {
	return unitAssembler(UnitFee, valueGroup, currencyGroup)
}

// ExchangeRate captures the explicit exchange rate of a forex pair.
func ExchangeRate(group string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(group)
		if v == "" {
			return nil
		}
		d, err := ParseDecimal(v)
		if err != nil {
			return fmt.Errorf("cannot parse exchange rate %q: %w", v, err)
		}
		ctx.Tx().Rate = d
		return nil
	}
}

// Identity captures security identity fields. Group names are fixed:
// 'isin', 'wkn', 'ticker', 'name', 'currency'; absent groups are skipped.
func Identity() AssembleFunc {
	return func(ctx *Context, m Match) error {
		sec := ctx.Security()
		if v := m.Get("isin"); v != "" {
			if err := ValidateISIN(v); err != nil {
				return fmt.Errorf("invalid ISIN %q: %w", v, err)
			}
			sec.ISIN = v
		}
		if v := m.Get("wkn"); v != "" {
			sec.WKN = v
		}
		if v := m.Get("ticker"); v != "" {
			sec.Ticker = v
		}
		if v := m.Get("name"); v != "" {
			sec.Name = strings.TrimSpace(v)
		}
		if v := m.Get("currency"); v != "" {
			sec.Currency = v
		}
		return nil
	}
}

// DefaultCurrency records the document's account currency in the context.
func DefaultCurrency(group string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		if v := m.Get(group); v != "" {
			ctx.SetDefaultCurrency(v)
		}
		return nil
	}
}

// Note appends an annotation to the open draft, e.g. "Referenz: 32484929".
// The captured value is prefixed and stored; repeated notes are joined with
// " | " like the original statements chain them.
func Note(prefix, group string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(group)
		if v == "" {
			return nil
		}
		tx := ctx.Tx()
		note := prefix + v
		if tx.Note != "" {
			note = tx.Note + " | " + note
		}
		tx.Note = note
		return nil
	}
}

// Remember stores a capture as a named scratch value on the context, so a
// later block can pick it up (e.g. a reference number from a header block).
func Remember(name, group string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		if v := m.Get(group); v != "" {
			ctx.Set(name, v)
		}
		return nil
	}
}

// RecallNote copies a previously remembered scratch value into the draft's
// note, with a prefix.
func RecallNote(prefix, name string) AssembleFunc {
	return func(ctx *Context, _ Match) error {
		v, ok := ctx.Get(name)
		if !ok {
			return nil
		}
		tx := ctx.Tx()
		note := prefix + v
		if tx.Note != "" {
			note = tx.Note + " | " + note
		}
		tx.Note = note
		return nil
	}
}

func moneyAssembler(valueGroup, currencyGroup string, set func(*TransactionDraft, Money)) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(valueGroup)
		if v == "" {
			return nil
		}
		d, err := ParseDecimal(v)
		if err != nil {
			return fmt.Errorf("cannot parse amount %q: %w", v, err)
		}
		c := m.Get(currencyGroup)
		if c == "" {
			c = ctx.DefaultCurrency()
		}
		set(ctx.Tx(), M(d, c))
		return nil
	}
}

func unitAssembler(kind UnitKind, valueGroup, currencyGroup string) AssembleFunc {
	return func(ctx *Context, m Match) error {
		v := m.Get(valueGroup)
		if v == "" {
			return nil
		}
		d, err := ParseDecimal(v)
		if err != nil {
			return fmt.Errorf("cannot parse %s unit %q: %w", kind, v, err)
		}
		if d.IsZero() {
			return nil
		}
		c := m.Get(currencyGroup)
		if c == "" {
			c = ctx.DefaultCurrency()
		}
		tx := ctx.Tx()
		tx.Units = append(tx.Units, Unit{Kind: kind, Value: M(d, c)})
		return nil
	}
}

// ParseDecimal parses an amount in the formats observed across issuer
// statements: "2900.60", "2'900.60" (Swiss), "1,234.56", "1.234,56"
// (continental). When both separators occur, the rightmost one is the
// decimal mark.
//
// A lone dot is always read as the decimal mark: "1.234" is one point two
// three four. A catalog for a statement using "." purely to group thousands
// must capture the grouped and fractional parts separately, the way it
// already owns its date layouts.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, " ", "")

	dot := strings.LastIndexByte(s, '.')
	comma := strings.LastIndexByte(s, ',')
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// continental: '.' groups thousands, ',' marks decimals
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		// anglo: ',' groups thousands
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		// a lone comma is a decimal mark
		s = strings.Replace(s, ",", ".", 1)
	}
	return decimal.NewFromString(s)
}
