package paypal

// REST /v1/payments resource shapes. Only fields this integration reads or
// writes are declared.

const (
	IntentSale      = "sale"
	IntentAuthorize = "authorize"

	StateApproved = "approved"
	StateFailed   = "failed"
)

// Amount is the REST money shape; values are pre-formatted wire strings.
type Amount struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type CreditCard struct {
	ID                 string `json:"id,omitempty"`
	Number             string `json:"number,omitempty"`
	Type               string `json:"type,omitempty"`
	ExpireMonth        int    `json:"expire_month,omitempty"`
	ExpireYear         int    `json:"expire_year,omitempty"`
	CVV2               string `json:"cvv2,omitempty"`
	FirstName          string `json:"first_name,omitempty"`
	LastName           string `json:"last_name,omitempty"`
	ExternalCustomerID string `json:"external_customer_id,omitempty"`
	State              string `json:"state,omitempty"`
}

type CreditCardToken struct {
	CreditCardID string `json:"credit_card_id"`
	Last4        string `json:"last4,omitempty"`
	Type         string `json:"type,omitempty"`
	ExpireMonth  int    `json:"expire_month,omitempty"`
	ExpireYear   int    `json:"expire_year,omitempty"`
}

type FundingInstrument struct {
	CreditCard      *CreditCard      `json:"credit_card,omitempty"`
	CreditCardToken *CreditCardToken `json:"credit_card_token,omitempty"`
}

type Payer struct {
	PaymentMethod      string              `json:"payment_method"`
	FundingInstruments []FundingInstrument `json:"funding_instruments,omitempty"`
}

type Sale struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	Amount        Amount `json:"amount"`
	ParentPayment string `json:"parent_payment,omitempty"`
}

type Authorization struct {
	ID         string `json:"id"`
	State      string `json:"state"`
	Amount     Amount `json:"amount"`
	ValidUntil string `json:"valid_until,omitempty"`
}

type Capture struct {
	ID             string `json:"id"`
	State          string `json:"state"`
	Amount         Amount `json:"amount"`
	IsFinalCapture bool   `json:"is_final_capture,omitempty"`
	ParentPayment  string `json:"parent_payment,omitempty"`
}

type Refund struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Amount    Amount `json:"amount"`
	SaleID    string `json:"sale_id,omitempty"`
	CaptureID string `json:"capture_id,omitempty"`
}

type RelatedResource struct {
	Sale          *Sale          `json:"sale,omitempty"`
	Authorization *Authorization `json:"authorization,omitempty"`
	Capture       *Capture       `json:"capture,omitempty"`
	Refund        *Refund        `json:"refund,omitempty"`
}

type Transaction struct {
	Amount           Amount            `json:"amount"`
	Description      string            `json:"description,omitempty"`
	InvoiceNumber    string            `json:"invoice_number,omitempty"`
	RelatedResources []RelatedResource `json:"related_resources,omitempty"`
}

// Payment is the top-level /v1/payments/payment resource.
type Payment struct {
	ID            string        `json:"id,omitempty"`
	Intent        string        `json:"intent"`
	State         string        `json:"state,omitempty"`
	Payer         Payer         `json:"payer"`
	Transactions  []Transaction `json:"transactions"`
	FailureReason string        `json:"failure_reason,omitempty"`
}

// apiError is the REST error envelope.
type apiError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// CaptureRequest is the body of POST /v1/payments/authorization/{id}/capture.
type CaptureRequest struct {
	Amount         Amount `json:"amount"`
	IsFinalCapture bool   `json:"is_final_capture"`
}

// RefundRequest is the body of the sale/capture refund sub-resources.
// An empty Amount refunds the full remaining balance.
type RefundRequest struct {
	Amount *Amount `json:"amount,omitempty"`
}

// AuthorizationID returns the authorization id buried in a fetched payment's
// related resources. PayPal does not return it directly at capture or void
// time, which forces the extra GET.
func (p *Payment) AuthorizationID() string {
	for _, tx := range p.Transactions {
		for _, rr := range tx.RelatedResources {
			if rr.Authorization != nil {
				return rr.Authorization.ID
			}
		}
	}
	return ""
}

// SaleID returns the sale id from related resources (intent=sale payments).
func (p *Payment) SaleID() string {
	for _, tx := range p.Transactions {
		for _, rr := range tx.RelatedResources {
			if rr.Sale != nil {
				return rr.Sale.ID
			}
		}
	}
	return ""
}

// CaptureID returns the capture id from related resources (captured
// intent=authorize payments).
func (p *Payment) CaptureID() string {
	for _, tx := range p.Transactions {
		for _, rr := range tx.RelatedResources {
			if rr.Capture != nil {
				return rr.Capture.ID
			}
		}
	}
	return ""
}
