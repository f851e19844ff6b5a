package statement

import (
	"encoding/json"
	"testing"
)

func TestJsonObjectWriter(t *testing.T) {
	t.Run("empty object", func(t *testing.T) {
		var w jsonObjectWriter
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if want := "{}"; string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("field order is preserved", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("type", "purchase")
		w.Append("shares", 15)
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"type":"purchase","shares":15}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("embed merges the nested object", func(t *testing.T) {
		var w jsonObjectWriter
		w.Append("kind", "transaction")
		w.Embed(json.RawMessage(`{"currency":"USD","amount":"2900.6"}`))
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"kind":"transaction","currency":"USD","amount":"2900.6"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("optional skips zero values", func(t *testing.T) {
		var w jsonObjectWriter
		w.Optional("note", "")
		w.Optional("source", "Kauf01.txt")
		got, err := w.MarshalJSON()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"source":"Kauf01.txt"}`
		if string(got) != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestTransaction_MarshalJSON(t *testing.T) {
	tx := Transaction{
		Type:     TypePurchase,
		Date:     day("2019-08-05"),
		Shares:   Q(15),
		Amount:   M(2900.60, "USD"),
		Security: &Security{ISIN: "US0378331005", Name: "APPLE ORD", Currency: "USD"},
		Units: []Unit{
			{Kind: UnitFee, Value: M(4.75, "USD")},
		},
		Source: "Kauf01.txt",
		Note:   "Referenz: 32484929",
	}
	got, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"purchase","date":"2019-08-05T00:00","shares":"15",` +
		`"currency":"USD","amount":"2900.6",` +
		`"security":{"isin":"US0378331005","name":"APPLE ORD","currency":"USD"},` +
		`"units":[{"kind":"fee","value":{"currency":"USD","amount":"4.75"}}],` +
		`"source":"Kauf01.txt","note":"Referenz: 32484929"}`
	if string(got) != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}
