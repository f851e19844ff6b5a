package statement

import (
	"sync"
	"testing"
)

func TestMemResolver_Resolve(t *testing.T) {
	apple := &Security{ISIN: "US0378331005", Ticker: "AAPL", Name: "APPLE ORD", Currency: "USD"}
	r := NewMemResolver(apple)

	t.Run("by isin", func(t *testing.T) {
		got, ok := r.Resolve(&Security{ISIN: "US0378331005", Name: "a different name"})
		if !ok || got != apple {
			t.Errorf("got %v, want the seeded security", got)
		}
	})
	t.Run("by ticker", func(t *testing.T) {
		got, ok := r.Resolve(&Security{Ticker: "AAPL"})
		if !ok || got != apple {
			t.Errorf("got %v, want the seeded security", got)
		}
	})
	t.Run("by name and currency", func(t *testing.T) {
		got, ok := r.Resolve(&Security{Name: "APPLE ORD", Currency: "USD"})
		if !ok || got != apple {
			t.Errorf("got %v, want the seeded security", got)
		}
	})
	t.Run("unknown", func(t *testing.T) {
		if _, ok := r.Resolve(&Security{ISIN: "DE000BASF111"}); ok {
			t.Error("resolved a security that was never registered")
		}
	})
}

func TestMemResolver_NamelessSecuritiesStayDistinct(t *testing.T) {
	// Identifier-only securities have no name+currency identity: two of
	// them sharing a currency must not dedup into one.
	r := NewMemResolver()
	apple := r.Create(&Security{ISIN: "US0378331005", Currency: "USD"})

	if got, ok := r.Resolve(&Security{ISIN: "US41753F1093", Currency: "USD"}); ok {
		t.Fatalf("distinct ISIN resolved to an existing security: %+v", got)
	}
	harvest := r.Create(&Security{ISIN: "US41753F1093", Currency: "USD"})
	if harvest == apple {
		t.Error("second nameless security deduped into the first")
	}
	if got := r.Created(); got != 2 {
		t.Errorf("created %d securities, want 2", got)
	}
}

func TestMemResolver_AtMostOneCreation(t *testing.T) {
	r := NewMemResolver()
	draft := Security{ISIN: "US41753F1093", Name: "HARVEST CAPITAL CREDIT ORD", Currency: "USD"}

	var wg sync.WaitGroup
	results := make([]*Security, 32)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := draft
			results[i] = r.Create(&d)
		}()
	}
	wg.Wait()

	if got := r.Created(); got != 1 {
		t.Fatalf("created %d securities, want exactly 1", got)
	}
	for i, s := range results {
		if s != results[0] {
			t.Errorf("goroutine %d got a different reference", i)
		}
	}
}
