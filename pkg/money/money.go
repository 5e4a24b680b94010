package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is an exact decimal amount in a single ISO 4217 currency.
// All arithmetic requires matching currency codes; mixing currencies is an error.
type Amount struct {
	Value    decimal.Decimal
	Currency string
}

// New parses a decimal string (e.g. "89.50") into an Amount.
func New(value, currency string) (Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Amount{}, fmt.Errorf("money: parse %q: %w", value, err)
	}
	return Amount{Value: d, Currency: currency}, nil
}

// MustNew is New for literals in tests and config defaults; panics on bad input.
func MustNew(value, currency string) Amount {
	a, err := New(value, currency)
	if err != nil {
		panic(err)
	}
	return a
}

// FromDecimal wraps an existing decimal in an Amount.
func FromDecimal(d decimal.Decimal, currency string) Amount {
	return Amount{Value: d, Currency: currency}
}

// Zero returns the zero amount in the given currency.
func Zero(currency string) Amount {
	return Amount{Value: decimal.Zero, Currency: currency}
}

func (a Amount) checkCurrency(b Amount) error {
	if a.Currency != b.Currency {
		return fmt.Errorf("money: currency mismatch %s vs %s", a.Currency, b.Currency)
	}
	return nil
}

func (a Amount) Add(b Amount) (Amount, error) {
	if err := a.checkCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency}, nil
}

func (a Amount) Sub(b Amount) (Amount, error) {
	if err := a.checkCurrency(b); err != nil {
		return Amount{}, err
	}
	return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency}, nil
}

// Mul multiplies by an integer quantity (line item totals).
func (a Amount) Mul(qty int64) Amount {
	return Amount{Value: a.Value.Mul(decimal.NewFromInt(qty)), Currency: a.Currency}
}

// Cmp returns -1, 0 or 1; error if currencies differ.
func (a Amount) Cmp(b Amount) (int, error) {
	if err := a.checkCurrency(b); err != nil {
		return 0, err
	}
	return a.Value.Cmp(b.Value), nil
}

func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

func (a Amount) GreaterThan(b Amount) (bool, error) {
	c, err := a.Cmp(b)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (a Amount) IsZero() bool     { return a.Value.IsZero() }
func (a Amount) IsPositive() bool { return a.Value.IsPositive() }
func (a Amount) IsNegative() bool { return a.Value.IsNegative() }

func (a Amount) Neg() Amount {
	return Amount{Value: a.Value.Neg(), Currency: a.Currency}
}

// Abs returns the absolute amount (IPN refund amounts arrive negative).
func (a Amount) Abs() Amount {
	return Amount{Value: a.Value.Abs(), Currency: a.Currency}
}

// zeroDecimalCurrencies are the currencies PayPal requires as whole units.
var zeroDecimalCurrencies = map[string]bool{
	"HUF": true,
	"JPY": true,
	"TWD": true,
}

// Decimals returns the number of decimal places PayPal accepts for the currency.
func Decimals(currency string) int32 {
	if zeroDecimalCurrencies[currency] {
		return 0
	}
	return 2
}

// Round rounds to the gateway-required precision for the amount's currency.
func (a Amount) Round() Amount {
	return Amount{Value: a.Value.Round(Decimals(a.Currency)), Currency: a.Currency}
}

// Format renders the amount as a wire value string, e.g. "89.50" or "1200" for JPY.
func (a Amount) Format() string {
	return a.Value.StringFixed(Decimals(a.Currency))
}

func (a Amount) String() string {
	return a.Format() + " " + a.Currency
}
