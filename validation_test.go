package statement

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestCheckCurrencies(t *testing.T) {
	usd := &Security{ISIN: "US0378331005", Name: "APPLE ORD", Currency: "USD"}
	chf := &Security{ISIN: "US41753F1093", Name: "HARVEST CAPITAL CREDIT ORD", Currency: "CHF"}

	testCases := []struct {
		name    string
		tx      Transaction
		account string
		want    CurrencyStatus
	}{
		{
			name:    "settlement matches account",
			tx:      Transaction{Type: TypePurchase, Amount: M(2900.60, "USD"), Security: usd},
			account: "USD",
			want:    StatusOK,
		},
		{
			name:    "settlement differs from account",
			tx:      Transaction{Type: TypeDeposit, Amount: M(100, "EUR")},
			account: "CHF",
			want:    StatusNeedsConversion,
		},
		{
			name: "security currency bridged by a forex pair",
			tx: Transaction{
				Type: TypeDividend, Amount: M(19.60, "USD"), Security: chf,
				Units: []Unit{{
					Kind: UnitGross, Value: M(28.00, "USD"),
					Forex: M(27.37, "CHF"), Rate: decimal.RequireFromString("0.9775"),
				}},
			},
			account: "USD",
			want:    StatusOK,
		},
		{
			name:    "security currency with no bridge",
			tx:      Transaction{Type: TypeDividend, Amount: M(19.60, "USD"), Security: chf},
			account: "USD",
			want:    StatusError,
		},
		{
			name: "deduction unit in a foreign currency",
			tx: Transaction{
				Type: TypePurchase, Amount: M(100, "USD"), Security: usd,
				Units: []Unit{{Kind: UnitFee, Value: M(1, "CHF")}},
			},
			account: "USD",
			want:    StatusError,
		},
		{
			name: "forex pair off by more than the tolerance",
			tx: Transaction{
				Type: TypeDividend, Amount: M(19.60, "USD"), Security: chf,
				Units: []Unit{{
					Kind: UnitGross, Value: M(28.00, "USD"),
					Forex: M(27.50, "CHF"), Rate: decimal.RequireFromString("0.9775"),
				}},
			},
			account: "USD",
			want:    StatusError,
		},
		{
			name: "forex pair without a rate",
			tx: Transaction{
				Type: TypeDividend, Amount: M(19.60, "USD"), Security: chf,
				Units: []Unit{{Kind: UnitGross, Value: M(28.00, "USD"), Forex: M(27.37, "CHF")}},
			},
			account: "USD",
			want:    StatusError,
		},
		{
			name:    "unsupported entries are never checked",
			tx:      Transaction{Type: TypeUnsupported},
			account: "USD",
			want:    StatusOK,
		},
		{
			name: "empty account currency skips the account check",
			tx:   Transaction{Type: TypeDeposit, Amount: M(100, "EUR")},
			want: StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CheckCurrencies(&tc.tx, tc.account)
			if got != tc.want {
				t.Errorf("got %s (%v), want %s", got, err, tc.want)
			}
			if (got == StatusError) != (err != nil) {
				t.Errorf("error and status disagree: %s, %v", got, err)
			}
		})
	}
}
