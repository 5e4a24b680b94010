package paypal

import (
	"net/url"
	"strconv"
)

const (
	webscrLive    = "https://www.paypal.com/cgi-bin/webscr"
	webscrSandbox = "https://www.sandbox.paypal.com/cgi-bin/webscr"
)

// StandardConfig is the redirect-only Website Payments Standard setup: no API
// credentials, just the receiving business account.
type StandardConfig struct {
	Business string
	TestMode bool
}

// StandardClient builds the cart-upload redirect and parses the return POST.
type StandardClient struct {
	cfg StandardConfig
}

func NewStandardClient(cfg StandardConfig) *StandardClient {
	return &StandardClient{cfg: cfg}
}

// RedirectRequest describes the cart sent through the buyer's browser.
type RedirectRequest struct {
	Breakdown CheckoutBreakdown
	OrderID   string
	ReturnURL string
	CancelURL string
	NotifyURL string
}

// RedirectURL builds the _cart upload URL the buyer is sent to.
func (c *StandardClient) RedirectURL(r RedirectRequest) string {
	endpoint := webscrLive
	if c.cfg.TestMode {
		endpoint = webscrSandbox
	}
	q := url.Values{}
	q.Set("cmd", "_cart")
	q.Set("upload", "1")
	q.Set("business", c.cfg.Business)
	q.Set("currency_code", r.Breakdown.Total.Currency)
	q.Set("invoice", r.OrderID)
	q.Set("return", r.ReturnURL)
	q.Set("cancel_return", r.CancelURL)
	if r.NotifyURL != "" {
		q.Set("notify_url", r.NotifyURL)
	}
	for i, line := range r.Breakdown.Lines {
		n := strconv.Itoa(i + 1) // cart fields are 1-based
		q.Set("item_name_"+n, line.Name)
		q.Set("amount_"+n, line.Amount.Format())
		q.Set("quantity_"+n, strconv.FormatInt(line.Quantity, 10))
	}
	if !r.Breakdown.Tax.IsZero() {
		q.Set("tax_cart", r.Breakdown.Tax.Format())
	}
	if !r.Breakdown.Shipping.IsZero() {
		q.Set("shipping_1", r.Breakdown.Shipping.Format())
	}
	return endpoint + "?" + q.Encode()
}

// StandardReturn is what the buyer's browser POSTs back after payment.
// Unlike Express Checkout, Standard reads these fields directly.
type StandardReturn struct {
	TxnID         string
	PaymentStatus string
	Gross         string
	Currency      string
	PayerEmail    string
}

// ParseReturn extracts the transaction fields from the return POST form.
func ParseReturn(form url.Values) StandardReturn {
	return StandardReturn{
		TxnID:         form.Get("txn_id"),
		PaymentStatus: form.Get("payment_status"),
		Gross:         form.Get("mc_gross"),
		Currency:      form.Get("mc_currency"),
		PayerEmail:    form.Get("payer_email"),
	}
}
