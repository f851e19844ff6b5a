package statement

import "fmt"

// CurrencyStatus is the verdict of the currency validation pass for one
// transaction.
type CurrencyStatus int

const (
	// StatusOK: the transaction books into the account as-is.
	StatusOK CurrencyStatus = iota
	// StatusNeedsConversion: the transaction is internally consistent but
	// settles in a currency other than the account's, so the caller must
	// convert it before booking.
	StatusNeedsConversion
	// StatusError: the transaction's currencies are internally inconsistent
	// and it must not be booked at all.
	StatusError
)

func (s CurrencyStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNeedsConversion:
		return "needs-conversion"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("CurrencyStatus(%d)", int(s))
	}
}

// CheckCurrencies validates a finalized transaction against a target account
// currency. It checks, in order of severity:
//
//   - every unit's value shares the transaction's settlement currency;
//   - a security settling in another currency is bridged by a gross unit
//     whose forex side carries the security's currency;
//   - forex pairs hold rate × value ≈ forex within half a minor unit;
//   - the settlement currency matches the account currency.
//
// The returned error describes the first inconsistency when the status is
// StatusError, and is nil otherwise. accountCurrency may be empty to skip
// the account-side check.
func CheckCurrencies(tx *Transaction, accountCurrency string) (CurrencyStatus, error) {
	if tx.Type == TypeUnsupported {
		return StatusOK, nil
	}
	settle := tx.Amount.Currency()
	if settle == "" {
		return StatusError, fmt.Errorf("transaction has no settlement currency")
	}

	for _, u := range tx.Units {
		if u.Value.Currency() != settle {
			return StatusError, fmt.Errorf("%s unit in %s does not match settlement currency %s",
				u.Kind, u.Value.Currency(), settle)
		}
		if !u.HasForex() {
			continue
		}
		if u.Forex.Currency() == settle {
			return StatusError, fmt.Errorf("%s unit forex side repeats the settlement currency %s", u.Kind, settle)
		}
		if u.Rate.IsZero() {
			return StatusError, fmt.Errorf("%s unit carries a forex value without an exchange rate", u.Kind)
		}
		expect := M(u.Rate.Mul(u.Value.Value()), u.Forex.Currency())
		if !u.Forex.WithinTolerance(expect.Round()) {
			return StatusError, fmt.Errorf("%s unit forex %s diverges from rate %s × value %s",
				u.Kind, u.Forex, u.Rate, u.Value)
		}
	}

	if sec := tx.Security; sec != nil && sec.Currency != "" && sec.Currency != settle {
		u, ok := tx.Unit(UnitGross)
		if !ok || !u.HasForex() || u.Forex.Currency() != sec.Currency {
			return StatusError, fmt.Errorf("security settles in %s but no gross forex pair bridges from %s",
				sec.Currency, settle)
		}
	}

	if accountCurrency != "" && settle != accountCurrency {
		return StatusNeedsConversion, nil
	}
	return StatusOK, nil
}
