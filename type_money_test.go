package statement

import (
	"encoding/json"
	"testing"
)

func TestMoney_Arithmetic(t *testing.T) {
	a := M(10.50, "CHF")
	b := M(2.25, "CHF")

	if got, want := a.Add(b), M(12.75, "CHF"); !got.Equal(want) {
		t.Errorf("Add: got %s, want %s", got, want)
	}
	if got, want := a.Sub(b), M(8.25, "CHF"); !got.Equal(want) {
		t.Errorf("Sub: got %s, want %s", got, want)
	}
	if got, want := a.Neg(), M(-10.50, "CHF"); !got.Equal(want) {
		t.Errorf("Neg: got %s, want %s", got, want)
	}
}

func TestMoney_WeakCurrency(t *testing.T) {
	// The zero Money acts as a neutral element so unit sums can start empty.
	var zero Money
	got := zero.Add(M(5, "USD"))
	if got.Currency() != "USD" {
		t.Errorf("weak currency: got %q, want USD", got.Currency())
	}

	defer func() {
		if recover() == nil {
			t.Error("adding CHF to USD should panic")
		}
	}()
	M(1, "CHF").Add(M(1, "USD"))
}

func TestMoney_Round(t *testing.T) {
	if got, want := M(1.006, "CHF").Round(), M(1.01, "CHF"); !got.Equal(want) {
		t.Errorf("Round: got %s, want %s", got, want)
	}
	// JPY has no minor unit.
	if got, want := M(100.4, "JPY").Round(), M(100, "JPY"); !got.Equal(want) {
		t.Errorf("Round JPY: got %s, want %s", got, want)
	}
}

func TestMoney_WithinTolerance(t *testing.T) {
	testCases := []struct {
		name string
		a, b Money
		want bool
	}{
		{"equal", M(27.37, "CHF"), M(27.37, "CHF"), true},
		{"half cent off", M(27.375, "CHF"), M(27.37, "CHF"), true},
		{"more than half cent off", M(27.376, "CHF"), M(27.37, "CHF"), false},
		{"currency mismatch", M(27.37, "CHF"), M(27.37, "USD"), false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.WithinTolerance(tc.b); got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMoney_MarshalJSON(t *testing.T) {
	got, err := json.Marshal(M(2900.60, "USD"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"currency":"USD","amount":"2900.6"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
