package models

import (
	"fmt"

	"paypalgw/pkg/money"
)

// Adjustment types. Tax and shipping get their own wire totals; everything
// else becomes an extra line item.
const (
	AdjustmentTax       = "tax"
	AdjustmentShipping  = "shipping"
	AdjustmentPromotion = "promotion"
	AdjustmentFee       = "fee"
)

// Order is the narrow read model handed over by the order system: items,
// adjustments and addresses, nothing else. Totals are already computed
// upstream; this core never calculates tax.
type Order struct {
	ID               string
	Email            string
	Currency         string
	Items            []OrderItem
	Adjustments      []Adjustment
	ShippingProfiles []Address
}

type OrderItem struct {
	Title     string
	UnitPrice money.Amount
	Quantity  int64
}

type Adjustment struct {
	Type   string
	Label  string
	Amount money.Amount
}

// Address is a shipping profile address on the order.
type Address struct {
	Name        string
	Street1     string
	Street2     string
	City        string
	State       string
	PostalCode  string
	CountryCode string
}

// GrandTotal sums items and adjustments in the order currency.
func (o *Order) GrandTotal() (money.Amount, error) {
	total := money.Zero(o.Currency)
	for _, item := range o.Items {
		t, err := total.Add(item.UnitPrice.Mul(item.Quantity))
		if err != nil {
			return money.Amount{}, fmt.Errorf("order %s: %w", o.ID, err)
		}
		total = t
	}
	for _, adj := range o.Adjustments {
		t, err := total.Add(adj.Amount)
		if err != nil {
			return money.Amount{}, fmt.Errorf("order %s: %w", o.ID, err)
		}
		total = t
	}
	return total, nil
}
