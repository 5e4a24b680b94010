package service

import (
	"fmt"
	"math/rand"
	"testing"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
)

func TestBuildBreakdownSplitsAdjustments(t *testing.T) {
	order := &models.Order{
		ID:       "order-7",
		Currency: "USD",
		Items: []models.OrderItem{
			{Title: "Widget", UnitPrice: money.MustNew("29.50", "USD"), Quantity: 2},
		},
		Adjustments: []models.Adjustment{
			{Type: models.AdjustmentTax, Label: "VAT", Amount: money.MustNew("5.00", "USD")},
			{Type: models.AdjustmentShipping, Label: "Shipping", Amount: money.MustNew("4.99", "USD")},
			{Type: models.AdjustmentPromotion, Label: "10% off", Amount: money.MustNew("-5.90", "USD")},
		},
	}
	b, _, err := BuildBreakdown(order, false)
	if err != nil {
		t.Fatalf("BuildBreakdown: %v", err)
	}
	if len(b.Lines) != 2 {
		t.Fatalf("lines = %d, want item plus promotion", len(b.Lines))
	}
	if b.Lines[1].Name != "10% off" || b.Lines[1].Quantity != 1 {
		t.Errorf("promotion line = %+v", b.Lines[1])
	}
	if b.ItemTotal.Format() != "53.10" {
		t.Errorf("item total = %s, want 53.10", b.ItemTotal.Format())
	}
	if b.Tax.Format() != "5.00" || b.Shipping.Format() != "4.99" {
		t.Errorf("tax/shipping = %s/%s", b.Tax.Format(), b.Shipping.Format())
	}
	if b.Total.Format() != "63.09" {
		t.Errorf("total = %s, want 63.09", b.Total.Format())
	}
}

// The breakdown must balance exactly for any order composition: PayPal
// rejects requests where item total, tax and shipping do not sum to AMT.
func TestBuildBreakdownBalancesRandomOrders(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cents := func() money.Amount {
		return money.MustNew(fmt.Sprintf("%d.%02d", rng.Intn(200), rng.Intn(100)), "USD")
	}

	for i := 0; i < 200; i++ {
		order := &models.Order{ID: fmt.Sprintf("order-%d", i), Currency: "USD"}
		for j := 0; j < 1+rng.Intn(5); j++ {
			order.Items = append(order.Items, models.OrderItem{
				Title:     fmt.Sprintf("item-%d", j),
				UnitPrice: cents(),
				Quantity:  1 + rng.Int63n(4),
			})
		}
		types := []string{models.AdjustmentTax, models.AdjustmentShipping, models.AdjustmentPromotion, models.AdjustmentFee}
		for j := 0; j < rng.Intn(4); j++ {
			typ := types[rng.Intn(len(types))]
			amt := cents()
			if typ == models.AdjustmentPromotion {
				amt = amt.Neg()
			}
			order.Adjustments = append(order.Adjustments, models.Adjustment{Type: typ, Label: typ, Amount: amt})
		}

		b, _, err := BuildBreakdown(order, false)
		if err != nil {
			t.Fatalf("order %d: %v", i, err)
		}

		lineSum := money.Zero("USD")
		for _, l := range b.Lines {
			s, err := lineSum.Add(l.Amount.Mul(l.Quantity))
			if err != nil {
				t.Fatalf("order %d: %v", i, err)
			}
			lineSum = s
		}
		if !lineSum.Equal(b.ItemTotal) {
			t.Fatalf("order %d: lines sum %s != item total %s", i, lineSum.Format(), b.ItemTotal.Format())
		}
		sum, _ := b.ItemTotal.Add(b.Tax)
		sum, _ = sum.Add(b.Shipping)
		if !sum.Equal(b.Total) {
			t.Fatalf("order %d: parts sum %s != total %s", i, sum.Format(), b.Total.Format())
		}
		grand, err := order.GrandTotal()
		if err != nil {
			t.Fatalf("order %d: %v", i, err)
		}
		if !b.Total.Equal(grand) {
			t.Fatalf("order %d: breakdown total %s != grand total %s", i, b.Total.Format(), grand.Format())
		}
	}
}

func TestBuildBreakdownAddressRules(t *testing.T) {
	addr := models.Address{Name: "A Buyer", Street1: "1 Main St", City: "Springfield", State: "OR", PostalCode: "97477", CountryCode: "US"}
	base := func(profiles ...models.Address) *models.Order {
		return &models.Order{
			ID:               "order-8",
			Currency:         "USD",
			Items:            []models.OrderItem{{Title: "Widget", UnitPrice: money.MustNew("10.00", "USD"), Quantity: 1}},
			ShippingProfiles: profiles,
		}
	}

	tests := []struct {
		name        string
		order       *models.Order
		sendAddress bool
		wantAddr    bool
	}{
		{"disabled", base(addr), false, false},
		{"one profile", base(addr), true, true},
		{"no profile", base(), true, false},
		{"two profiles", base(addr, addr), true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got, err := BuildBreakdown(tt.order, tt.sendAddress)
			if err != nil {
				t.Fatalf("BuildBreakdown: %v", err)
			}
			if (got != nil) != tt.wantAddr {
				t.Errorf("address = %+v, want present=%t", got, tt.wantAddr)
			}
			if got != nil && got.Street1 != "1 Main St" {
				t.Errorf("address mapped wrong: %+v", got)
			}
		})
	}
}

func TestBuildBreakdownCurrencyMismatch(t *testing.T) {
	order := &models.Order{
		ID:       "order-9",
		Currency: "USD",
		Items:    []models.OrderItem{{Title: "Widget", UnitPrice: money.MustNew("10.00", "EUR"), Quantity: 1}},
	}
	if _, _, err := BuildBreakdown(order, false); err == nil {
		t.Fatal("expected currency mismatch error")
	}
}
