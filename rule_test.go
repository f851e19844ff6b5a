package statement

import (
	"regexp"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimal(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"2900.60", "2900.6"},
		{"2'900.60", "2900.6"},
		{"1,234.56", "1234.56"},
		{"1.234,56", "1234.56"},
		{"1 234,56", "1234.56"},
		{"0.85", "0.85"},
		{"35'410.50", "35410.5"},
		{"19", "19"},
		// a lone dot is the decimal mark, never a thousands separator
		{"1.234", "1.234"},
	}
	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDecimal(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := decimal.RequireFromString(tc.want); !got.Equal(want) {
				t.Errorf("got %s, want %s", got, want)
			}
		})
	}

	if _, err := ParseDecimal("not a number"); err == nil {
		t.Error("expected an error for a non-numeric string")
	}
}

func TestRule_Apply(t *testing.T) {
	doc := NewDocument("t", "")

	t.Run("named captures feed the assembler", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		r := Rule{
			Trigger:  regexp.MustCompile(`(?m)^Betrag (?P<cur>[A-Z]{3}) (?P<amount>[\d'.]+)$`),
			Assemble: Amount("amount", "cur"),
		}
		ok, err := r.apply(ctx, "Betrag USD 2'900.60")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("rule should have matched")
		}
		if want := M(2900.60, "USD"); !ctx.Tx().Amount.Equal(want) {
			t.Errorf("got %s, want %s", ctx.Tx().Amount, want)
		}
	})

	t.Run("without repeat only the first occurrence applies", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		r := Rule{
			Trigger:  regexp.MustCompile(`(?m)^Gebühr (?P<fee>[\d.]+)$`),
			Assemble: Fee("fee", ""),
		}
		if _, err := r.apply(ctx, "Gebühr 1.00\nGebühr 2.00"); err != nil {
			t.Fatal(err)
		}
		if got := len(ctx.Tx().Units); got != 1 {
			t.Errorf("got %d units, want 1", got)
		}
	})

	t.Run("repeat applies once per occurrence", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		r := Rule{
			Repeat:   true,
			Trigger:  regexp.MustCompile(`(?m)^Gebühr (?P<fee>[\d.]+)$`),
			Assemble: Fee("fee", ""),
		}
		if _, err := r.apply(ctx, "Gebühr 1.00\nGebühr 2.00"); err != nil {
			t.Fatal(err)
		}
		if got := len(ctx.Tx().Units); got != 2 {
			t.Errorf("got %d units, want 2", got)
		}
	})

	t.Run("no match leaves the context untouched", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		r := Rule{Trigger: regexp.MustCompile(`nothing`), Assemble: SetType(TypeFee)}
		ok, err := r.apply(ctx, "some text")
		if err != nil || ok {
			t.Errorf("got ok=%v err=%v, want no match and no error", ok, err)
		}
	})
}

func TestAssemblers(t *testing.T) {
	doc := NewDocument("t", "")

	t.Run("date with layout", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		fn := Date("d", "02.01.2006")
		if err := fn(ctx, Match{"d": "05.08.2019"}); err != nil {
			t.Fatal(err)
		}
		if got := ctx.Tx().Date.Format("2006-01-02"); got != "2019-08-05" {
			t.Errorf("got %s, want 2019-08-05", got)
		}
		if err := fn(ctx, Match{"d": "not a date"}); err == nil {
			t.Error("expected an error for an unparseable date")
		}
	})

	t.Run("zero valued deduction units are skipped", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		if err := Tax("t", "")(ctx, Match{"t": "0.00"}); err != nil {
			t.Fatal(err)
		}
		if len(ctx.Tx().Units) != 0 {
			t.Error("a zero tax should not append a unit")
		}
	})

	t.Run("identity rejects an invalid isin", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		if err := Identity()(ctx, Match{"isin": "US0378331006"}); err == nil {
			t.Error("expected an error for a wrong check digit")
		}
	})

	t.Run("notes chain with a separator", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		note := Note("Referenz: ", "ref")
		if err := note(ctx, Match{"ref": "111"}); err != nil {
			t.Fatal(err)
		}
		if err := note(ctx, Match{"ref": "222"}); err != nil {
			t.Fatal(err)
		}
		if got, want := ctx.Tx().Note, "Referenz: 111 | Referenz: 222"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("remember and recall across drafts", func(t *testing.T) {
		ctx := NewContext(doc, "CHF")
		if err := Remember("ref", "r")(ctx, Match{"r": "32484929"}); err != nil {
			t.Fatal(err)
		}
		ctx.clearDrafts() // scratch values survive a finalization
		if err := RecallNote("Referenz: ", "ref")(ctx, nil); err != nil {
			t.Fatal(err)
		}
		if got, want := ctx.Tx().Note, "Referenz: 32484929"; got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
