package paypal

import (
	"context"
	"strconv"

	"paypalgw/pkg/money"
	"paypalgw/pkg/nvp"
)

// LineItem is one itemized row of an Express Checkout payment request.
type LineItem struct {
	Name     string
	Amount   money.Amount // unit amount
	Quantity int64
}

// CheckoutBreakdown is the itemized total sent to PayPal. Its parts must sum
// exactly to Total or PayPal rejects the request.
type CheckoutBreakdown struct {
	Lines     []LineItem
	ItemTotal money.Amount
	Tax       money.Amount
	Shipping  money.Amount
	Total     money.Amount
}

// Address is a shipping address override for SetExpressCheckout.
type Address struct {
	Name        string
	Street1     string
	Street2     string
	City        string
	State       string
	PostalCode  string
	CountryCode string
}

// SetExpressCheckoutRequest initiates a checkout session at PayPal.
type SetExpressCheckoutRequest struct {
	Breakdown CheckoutBreakdown
	// Capture true sends PAYMENTACTION=Sale, false PAYMENTACTION=Authorization.
	Capture   bool
	OrderID   string
	ReturnURL string
	CancelURL string
	NotifyURL string
	// ShippingAddress nil suppresses address transmission (NOSHIPPING=1).
	ShippingAddress *Address
}

func paymentAction(capture bool) string {
	if capture {
		return "Sale"
	}
	return "Authorization"
}

// writeBreakdown writes the itemized fields. Line item indexes are contiguous
// from 0 across the NAME/AMT/QTY triples.
func writeBreakdown(req *nvp.Values, b CheckoutBreakdown) {
	req.Set("PAYMENTREQUEST_0_AMT", b.Total.Format())
	req.Set("PAYMENTREQUEST_0_CURRENCYCODE", b.Total.Currency)
	req.Set("PAYMENTREQUEST_0_ITEMAMT", b.ItemTotal.Format())
	if !b.Tax.IsZero() {
		req.Set("PAYMENTREQUEST_0_TAXAMT", b.Tax.Format())
	}
	if !b.Shipping.IsZero() {
		req.Set("PAYMENTREQUEST_0_SHIPPINGAMT", b.Shipping.Format())
	}
	for n, line := range b.Lines {
		req.SetIndexed("L_PAYMENTREQUEST_0_NAME", n, line.Name)
		req.SetIndexed("L_PAYMENTREQUEST_0_AMT", n, line.Amount.Format())
		req.SetIndexed("L_PAYMENTREQUEST_0_QTY", n, strconv.FormatInt(line.Quantity, 10))
	}
}

// SetExpressCheckout initiates the flow; the response carries TOKEN on success.
func (c *NVPClient) SetExpressCheckout(ctx context.Context, r SetExpressCheckoutRequest) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("RETURNURL", r.ReturnURL)
	req.Set("CANCELURL", r.CancelURL)
	if r.NotifyURL != "" {
		req.Set("PAYMENTREQUEST_0_NOTIFYURL", r.NotifyURL)
	}
	req.Set("PAYMENTREQUEST_0_PAYMENTACTION", paymentAction(r.Capture))
	if r.OrderID != "" {
		req.Set("PAYMENTREQUEST_0_INVNUM", r.OrderID)
	}
	writeBreakdown(req, r.Breakdown)
	if r.ShippingAddress != nil {
		a := r.ShippingAddress
		req.Set("ADDROVERRIDE", "1")
		req.Set("PAYMENTREQUEST_0_SHIPTONAME", a.Name)
		req.Set("PAYMENTREQUEST_0_SHIPTOSTREET", a.Street1)
		if a.Street2 != "" {
			req.Set("PAYMENTREQUEST_0_SHIPTOSTREET2", a.Street2)
		}
		req.Set("PAYMENTREQUEST_0_SHIPTOCITY", a.City)
		req.Set("PAYMENTREQUEST_0_SHIPTOSTATE", a.State)
		req.Set("PAYMENTREQUEST_0_SHIPTOZIP", a.PostalCode)
		req.Set("PAYMENTREQUEST_0_SHIPTOCOUNTRYCODE", a.CountryCode)
	} else {
		req.Set("NOSHIPPING", "1")
	}
	return c.DoRequest(ctx, "SetExpressCheckout", req)
}

// GetExpressCheckoutDetails resolves the payer after the buyer approved at
// PayPal; the response carries PAYERID and EMAIL.
func (c *NVPClient) GetExpressCheckoutDetails(ctx context.Context, token string) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("TOKEN", token)
	return c.DoRequest(ctx, "GetExpressCheckoutDetails", req)
}

// DoExpressCheckoutPaymentRequest finalizes an approved checkout session.
type DoExpressCheckoutPaymentRequest struct {
	Token   string
	PayerID string
	Amount  money.Amount
	Capture bool
}

// DoExpressCheckoutPayment finalizes the payment as a sale or an authorization
// per the configured capture intent.
func (c *NVPClient) DoExpressCheckoutPayment(ctx context.Context, r DoExpressCheckoutPaymentRequest) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("TOKEN", r.Token)
	req.Set("PAYERID", r.PayerID)
	req.Set("PAYMENTREQUEST_0_AMT", r.Amount.Format())
	req.Set("PAYMENTREQUEST_0_CURRENCYCODE", r.Amount.Currency)
	req.Set("PAYMENTREQUEST_0_PAYMENTACTION", paymentAction(r.Capture))
	return c.DoRequest(ctx, "DoExpressCheckoutPayment", req)
}

// DoCapture collects funds from a prior authorization.
func (c *NVPClient) DoCapture(ctx context.Context, authorizationID string, amount money.Amount) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("AUTHORIZATIONID", authorizationID)
	req.Set("AMT", amount.Format())
	req.Set("CURRENCYCODE", amount.Currency)
	req.Set("COMPLETETYPE", "Complete")
	return c.DoRequest(ctx, "DoCapture", req)
}

// DoVoid cancels an authorization without collecting funds.
func (c *NVPClient) DoVoid(ctx context.Context, authorizationID string) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("AUTHORIZATIONID", authorizationID)
	return c.DoRequest(ctx, "DoVoid", req)
}

// RefundTransaction refunds a captured transaction; full true omits AMT and
// lets PayPal refund the entire balance.
func (c *NVPClient) RefundTransaction(ctx context.Context, transactionID string, amount money.Amount, full bool) (*nvp.Values, error) {
	req := nvp.New()
	req.Set("TRANSACTIONID", transactionID)
	if full {
		req.Set("REFUNDTYPE", "Full")
	} else {
		req.Set("REFUNDTYPE", "Partial")
		req.Set("AMT", amount.Format())
		req.Set("CURRENCYCODE", amount.Currency)
	}
	return c.DoRequest(ctx, "RefundTransaction", req)
}
