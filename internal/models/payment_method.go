package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentMethod is a card vaulted at PayPal (PaymentsPro only). Only the
// remote vault id and the masked last four digits are kept; the full PAN
// never touches storage.
type PaymentMethod struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	RemoteID    string         `gorm:"size:64;uniqueIndex;not null" json:"remote_id"`
	CardType    string         `gorm:"size:16" json:"card_type"`
	Last4       string         `gorm:"size:4;not null" json:"last4"`
	ExpireMonth int            `json:"expire_month"`
	ExpireYear  int            `json:"expire_year"`
	OwnerRef    string         `gorm:"size:64;index" json:"owner_ref"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (PaymentMethod) TableName() string {
	return "payment_methods"
}
