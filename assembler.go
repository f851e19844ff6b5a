package statement

import (
	"github.com/shopspring/decimal"
)

// impliedRatePrecision is the scale used when deriving a missing exchange
// rate from an amount pair.
const impliedRatePrecision = 10

// finalizeSecurity resolves the draft against the Resolver and returns the
// authoritative security. The second result reports whether the security was
// newly created (and therefore must be emitted before the transactions that
// reference it).
func finalizeSecurity(draft *SecurityDraft, defaultCurrency string, resolver Resolver) (*Security, bool, error) {
	sec := &Security{
		ISIN:     draft.ISIN,
		WKN:      draft.WKN,
		Ticker:   draft.Ticker,
		Name:     draft.Name,
		Currency: draft.Currency,
	}
	if sec.Currency == "" {
		sec.Currency = defaultCurrency
	}
	if err := ValidateCurrency(sec.Currency); err != nil {
		return nil, false, assemblyErrorf("security %q has no usable currency: %v", sec.Name, err)
	}
	if existing, ok := resolver.Resolve(sec); ok {
		// Keep the existing identity even when the document's captured
		// currency differs; the currency check downstream decides whether a
		// conversion is needed.
		return existing, false, nil
	}
	return resolver.Create(sec), true, nil
}

// finalizeTransaction enforces the monetary invariants on a completed draft
// and produces the immutable Transaction handed to the caller.
//
// The settlement amount and the gross value must reconcile through the tax
// and fee units with no residual:
//
//	purchase:                  amount = gross + Σtax + Σfee
//	sale, dividend, interest:  amount = gross − Σtax − Σfee
//	everything else:           amount = gross, no deduction units
//
// A forex gross pair must carry an explicit exchange rate or one derivable
// from the amount pair; pairs off by more than half a minor unit are
// rejected.
func finalizeTransaction(draft *TransactionDraft, sec *Security, source string) (Transaction, error) {
	if draft.Type == "" {
		return Transaction{}, assemblyErrorf("transaction type was never captured")
	}
	if draft.Date.IsZero() {
		return Transaction{}, assemblyErrorf("transaction date was never captured")
	}

	tx := Transaction{
		Type:     draft.Type,
		Date:     draft.Date,
		Shares:   draft.Shares,
		Security: sec,
		Source:   source,
		Note:     draft.Note,
	}

	if draft.Type == TypeUnsupported {
		// Zero amounts are legal for placeholders (e.g. an option expiry);
		// keep whatever was captured so the caller can display it.
		tx.Amount = draft.Amount
		if tx.Amount.Currency() == "" && sec != nil {
			tx.Amount = M(0, sec.Currency)
		}
		tx.Units = draft.Units
		return tx, nil
	}

	if draft.Amount.Currency() == "" {
		return Transaction{}, assemblyErrorf("settlement amount was never captured")
	}
	if draft.Type.IsShareBased() {
		if sec == nil {
			return Transaction{}, assemblyErrorf("%s requires a security", draft.Type)
		}
		if !draft.Shares.IsPositive() {
			return Transaction{}, assemblyErrorf("%s requires a positive share quantity, got %s", draft.Type, draft.Shares)
		}
	}
	tx.Amount = draft.Amount

	var taxes, fees Money
	taxes = Money{cur: tx.Amount.Currency()}
	fees = taxes
	for _, u := range draft.Units {
		if !u.Value.SameCurrency(tx.Amount) {
			return Transaction{}, assemblyErrorf("%s unit in %s does not match settlement currency %s",
				u.Kind, u.Value.Currency(), tx.Amount.Currency())
		}
		switch u.Kind {
		case UnitTax:
			taxes = taxes.Add(u.Value)
		case UnitFee:
			fees = fees.Add(u.Value)
		}
	}

	gross := draft.Gross
	if gross.Currency() == "" {
		gross = deriveGross(draft.Type, tx.Amount, taxes, fees)
	} else if !reconciles(draft.Type, tx.Amount, gross, taxes, fees) {
		return Transaction{}, assemblyErrorf("amount %s does not reconcile with gross %s, taxes %s and fees %s",
			tx.Amount, gross, taxes, fees)
	}

	unit, err := grossUnit(draft, sec, gross)
	if err != nil {
		return Transaction{}, err
	}
	if unit != nil {
		tx.Units = append(tx.Units, *unit)
	}
	tx.Units = append(tx.Units, draft.Units...)
	return tx, nil
}

// deriveGross computes the gross value from the settlement amount and the
// deduction sums, per the type's direction.
func deriveGross(t TxType, amount, taxes, fees Money) Money {
	switch t {
	case TypePurchase:
		return amount.Sub(taxes).Sub(fees)
	case TypeSale, TypeDividend, TypeInterest:
		return amount.Add(taxes).Add(fees)
	default:
		return amount
	}
}

// reconciles checks the bookkeeping identity for a captured gross value.
func reconciles(t TxType, amount, gross, taxes, fees Money) bool {
	switch t {
	case TypePurchase:
		return amount.Equal(gross.Add(taxes).Add(fees))
	case TypeSale, TypeDividend, TypeInterest:
		return amount.Equal(gross.Sub(taxes).Sub(fees))
	default:
		return amount.Equal(gross)
	}
}

// grossUnit builds the GROSS_VALUE unit with its forex pair when the draft
// or the resolved security implies one. It returns nil when the transaction
// is entirely in its settlement currency.
func grossUnit(draft *TransactionDraft, sec *Security, gross Money) (*Unit, error) {
	if draft.GrossForex.Currency() != "" {
		rate := draft.Rate
		if rate.IsZero() {
			if gross.IsZero() {
				return nil, assemblyErrorf("cannot derive exchange rate: gross value is zero")
			}
			rate = draft.GrossForex.Value().DivRound(gross.Value(), impliedRatePrecision)
		}
		// The pair must be internally consistent: forex ≈ rate × gross
		// within half a minor unit of the forex currency.
		expect := M(rate.Mul(gross.Value()), draft.GrossForex.Currency())
		if !draft.GrossForex.WithinTolerance(expect.Round()) {
			return nil, assemblyErrorf("forex gross %s diverges from rate %s × gross %s",
				draft.GrossForex, rate, gross)
		}
		return &Unit{Kind: UnitGross, Value: gross, Forex: draft.GrossForex, Rate: rate}, nil
	}

	// No forex captured, but the authoritative security settles in another
	// currency: record the converted gross when the document supplied a
	// rate, so the currency check downstream can accept the pair.
	if sec != nil && sec.Currency != "" && sec.Currency != gross.Currency() && !draft.Rate.IsZero() {
		forex := M(draft.Rate.Mul(gross.Value()), sec.Currency).Round()
		return &Unit{Kind: UnitGross, Value: gross, Forex: forex, Rate: draft.Rate}, nil
	}
	return nil, nil
}

// ImpliedRate computes the exchange rate of an amount pair, rounded to the
// fixed precision used across the engine.
func ImpliedRate(forex, settlement Money) decimal.Decimal {
	return forex.Value().DivRound(settlement.Value(), impliedRatePrecision)
}
