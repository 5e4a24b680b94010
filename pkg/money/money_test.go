package money

import "testing"

func TestAddSameCurrency(t *testing.T) {
	a := MustNew("10.10", "USD")
	b := MustNew("0.90", "USD")
	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if sum.Format() != "11.00" {
		t.Errorf("expected 11.00, got %s", sum.Format())
	}
}

func TestAddCurrencyMismatch(t *testing.T) {
	a := MustNew("10.00", "USD")
	b := MustNew("10.00", "EUR")
	if _, err := a.Add(b); err == nil {
		t.Fatal("expected error adding USD to EUR")
	}
	if _, err := a.Sub(b); err == nil {
		t.Fatal("expected error subtracting EUR from USD")
	}
	if _, err := a.Cmp(b); err == nil {
		t.Fatal("expected error comparing USD to EUR")
	}
}

func TestNoFloatDrift(t *testing.T) {
	// 0.1 + 0.2 must be exactly 0.3
	a := MustNew("0.1", "USD")
	b := MustNew("0.2", "USD")
	sum, _ := a.Add(b)
	if !sum.Equal(MustNew("0.3", "USD")) {
		t.Errorf("expected exact 0.3, got %s", sum.Value.String())
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		value    string
		currency string
		want     string
	}{
		{"89.5", "USD", "89.50"},
		{"1200", "JPY", "1200"},
		{"0", "USD", "0.00"},
	}
	for _, tt := range tests {
		a := MustNew(tt.value, tt.currency)
		if got := a.Format(); got != tt.want {
			t.Errorf("Format(%s %s) = %s, want %s", tt.value, tt.currency, got, tt.want)
		}
	}
}

func TestRound(t *testing.T) {
	a := MustNew("10.005", "USD").Round()
	if a.Format() != "10.01" {
		t.Errorf("expected 10.01, got %s", a.Format())
	}
	j := MustNew("1200.4", "JPY").Round()
	if j.Format() != "1200" {
		t.Errorf("expected 1200, got %s", j.Format())
	}
}

func TestMulAndAbs(t *testing.T) {
	a := MustNew("9.99", "USD").Mul(3)
	if a.Format() != "29.97" {
		t.Errorf("expected 29.97, got %s", a.Format())
	}
	n := MustNew("-40.00", "USD")
	if !n.IsNegative() {
		t.Fatal("expected negative")
	}
	if n.Abs().Format() != "40.00" {
		t.Errorf("expected 40.00, got %s", n.Abs().Format())
	}
}

func TestNewRejectsGarbage(t *testing.T) {
	if _, err := New("not-a-number", "USD"); err == nil {
		t.Fatal("expected parse error")
	}
}
