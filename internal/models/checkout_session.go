package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Checkout flows.
const (
	FlowExpressCheckout = "ec"
)

// CheckoutSession is the transient Express Checkout state attached to an
// order: created when SetExpressCheckout succeeds, consumed on return.
// The payer id stays empty until the buyer approves at PayPal.
type CheckoutSession struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   string          `gorm:"size:64;uniqueIndex;not null" json:"order_id"`
	Flow      string          `gorm:"size:8;not null" json:"flow"`
	Token     string          `gorm:"size:64;uniqueIndex;not null" json:"token"`
	PayerID   string          `gorm:"size:32" json:"payer_id"`
	Capture   bool            `gorm:"not null" json:"capture"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Currency  string          `gorm:"size:3;not null" json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (CheckoutSession) TableName() string {
	return "checkout_sessions"
}
