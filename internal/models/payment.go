package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"paypalgw/pkg/money"
)

// Local payment states. A payment is created in StateNew and only ever moves
// through the legal transitions enforced by the service layer.
const (
	StateNew                      = "new"
	StateAuthorization            = "authorization"
	StateAuthorizationVoided      = "authorization_voided"
	StateAuthorizationExpired     = "authorization_expired"
	StateCaptureCompleted         = "capture_completed"
	StateCaptureRefunded          = "capture_refunded"
	StateCapturePartiallyRefunded = "capture_partially_refunded"
)

// Gateways driving a payment.
const (
	GatewayExpressCheckout = "paypal_ec"
	GatewayPaymentsPro     = "paypal_pro"
	GatewayStandard        = "paypal_standard"
)

// Payment intents (PaymentsPro refund branches on this).
const (
	IntentSale      = "sale"
	IntentAuthorize = "authorize"
)

// AuthorizationWindow is how long PayPal guarantees an authorization can
// still be captured.
const AuthorizationWindow = 29 * 24 * time.Hour

type Payment struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// LocalRef is the merchant-facing payment reference, assigned locally so
	// it exists before PayPal hands back any remote id.
	LocalRef       string          `gorm:"size:36;uniqueIndex" json:"local_ref"`
	OrderID        string          `gorm:"size:64;index" json:"order_id"`
	Gateway        string          `gorm:"size:32;not null" json:"gateway"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency       string          `gorm:"size:3;not null" json:"currency"`
	State          string          `gorm:"size:32;not null;index" json:"state"`
	RemoteID       string          `gorm:"size:64;index" json:"remote_id"`
	RemoteState    string          `gorm:"size:32" json:"remote_state"`
	Intent         string          `gorm:"size:16" json:"intent"`
	RefundedAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"refunded_amount"`
	AuthorizedAt   *time.Time      `json:"authorized_at"`
	ExpiresAt      *time.Time      `json:"expires_at"`
	CapturedAt     *time.Time      `json:"captured_at"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// AmountMoney returns the payment amount as a currency-safe Amount.
func (p *Payment) AmountMoney() money.Amount {
	return money.FromDecimal(p.Amount, p.Currency)
}

// RefundedMoney returns the cumulative refunded amount.
func (p *Payment) RefundedMoney() money.Amount {
	return money.FromDecimal(p.RefundedAmount, p.Currency)
}

// Balance is the amount still refundable: amount minus already refunded.
func (p *Payment) Balance() money.Amount {
	return money.FromDecimal(p.Amount.Sub(p.RefundedAmount), p.Currency)
}

// AuthorizationExpired reports whether the 29-day capture window has passed.
func (p *Payment) AuthorizationExpired(now time.Time) bool {
	if p.AuthorizedAt == nil {
		return false
	}
	return now.After(p.AuthorizedAt.Add(AuthorizationWindow))
}
