package service

import (
	"fmt"

	"paypalgw/internal/models"
	"paypalgw/pkg/money"
	"paypalgw/pkg/paypal"
)

// BuildBreakdown maps an order onto the itemized breakdown PayPal expects:
// one line per item, one line per non-tax/non-shipping adjustment, with tax
// and shipping summed into their own totals. The parts sum exactly to the
// order grand total; anything else gets the request rejected by PayPal.
//
// The returned address is non-nil only when sendAddress is set and the order
// carries exactly one shipping profile; zero or multiple profiles suppress
// address transmission.
func BuildBreakdown(order *models.Order, sendAddress bool) (paypal.CheckoutBreakdown, *paypal.Address, error) {
	cur := order.Currency
	itemTotal := money.Zero(cur)
	tax := money.Zero(cur)
	shipping := money.Zero(cur)
	lines := make([]paypal.LineItem, 0, len(order.Items)+len(order.Adjustments))

	for _, item := range order.Items {
		lines = append(lines, paypal.LineItem{
			Name:     item.Title,
			Amount:   item.UnitPrice,
			Quantity: item.Quantity,
		})
		t, err := itemTotal.Add(item.UnitPrice.Mul(item.Quantity))
		if err != nil {
			return paypal.CheckoutBreakdown{}, nil, fmt.Errorf("order %s item %q: %w", order.ID, item.Title, err)
		}
		itemTotal = t
	}

	for _, adj := range order.Adjustments {
		switch adj.Type {
		case models.AdjustmentTax:
			t, err := tax.Add(adj.Amount)
			if err != nil {
				return paypal.CheckoutBreakdown{}, nil, fmt.Errorf("order %s tax: %w", order.ID, err)
			}
			tax = t
		case models.AdjustmentShipping:
			t, err := shipping.Add(adj.Amount)
			if err != nil {
				return paypal.CheckoutBreakdown{}, nil, fmt.Errorf("order %s shipping: %w", order.ID, err)
			}
			shipping = t
		default:
			// promotions, fees and the rest ride along as extra lines
			lines = append(lines, paypal.LineItem{
				Name:     adj.Label,
				Amount:   adj.Amount,
				Quantity: 1,
			})
			t, err := itemTotal.Add(adj.Amount)
			if err != nil {
				return paypal.CheckoutBreakdown{}, nil, fmt.Errorf("order %s adjustment %q: %w", order.ID, adj.Label, err)
			}
			itemTotal = t
		}
	}

	total, err := itemTotal.Add(tax)
	if err != nil {
		return paypal.CheckoutBreakdown{}, nil, err
	}
	total, err = total.Add(shipping)
	if err != nil {
		return paypal.CheckoutBreakdown{}, nil, err
	}

	var addr *paypal.Address
	if sendAddress && len(order.ShippingProfiles) == 1 {
		a := order.ShippingProfiles[0]
		addr = &paypal.Address{
			Name:        a.Name,
			Street1:     a.Street1,
			Street2:     a.Street2,
			City:        a.City,
			State:       a.State,
			PostalCode:  a.PostalCode,
			CountryCode: a.CountryCode,
		}
	}

	return paypal.CheckoutBreakdown{
		Lines:     lines,
		ItemTotal: itemTotal,
		Tax:       tax,
		Shipping:  shipping,
		Total:     total,
	}, addr, nil
}
