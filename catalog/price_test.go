package catalog

import (
	"testing"
)

func TestNewPrice_ParsesDecimalAmounts(t *testing.T) {
	t.Parallel()

	price, err := NewPrice("45.99", "USD")
	if err != nil {
		t.Fatalf("new price: %v", err)
	}
	if got := price.String(); got != "45.99 USD" {
		t.Fatalf("unexpected string: %q", got)
	}
}

func TestNewPrice_RejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewPrice("not-a-number", "USD"); err == nil {
		t.Fatal("expected error for malformed amount")
	}
	if _, err := NewPrice("10.00", ""); err == nil {
		t.Fatal("expected error for empty currency code")
	}
}

func TestPrice_EqualIgnoresScale(t *testing.T) {
	t.Parallel()

	a := MustPrice("25.0", "USD")
	b := MustPrice("25.00", "USD")
	if !a.Equal(b) {
		t.Fatalf("expected %s to equal %s", a, b)
	}

	c := MustPrice("25.00", "EUR")
	if a.Equal(c) {
		t.Fatalf("expected currency mismatch to break equality: %s vs %s", a, c)
	}
}

func TestPrice_IsZero(t *testing.T) {
	t.Parallel()

	if !(Price{}).IsZero() {
		t.Fatal("zero value should report IsZero")
	}
	if MustPrice("0.01", "USD").IsZero() {
		t.Fatal("non-zero price should not report IsZero")
	}
}
