package model

import "time"

// Gift code lifecycle. A code moves available -> reserved exactly once when an
// order claims it, and reserved -> redeemed at most once. Expiry only applies
// to codes that were never sold.
const (
	CodeAvailable = "available"
	CodeReserved  = "reserved"
	CodeRedeemed  = "redeemed"
	CodeExpired   = "expired"
)

// GiftCode is a single redeemable voucher instance. The code string is unique
// across the whole store. OrderID is set when the allocator reserves the code;
// a code with a non-nil OrderID must never be deleted.
type GiftCode struct {
	ID        uint      `gorm:"primarykey" json:"gift_code_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProductID  uint       `gorm:"not null;index" json:"product_id"`
	Code       string     `gorm:"size:128;uniqueIndex;not null" json:"code"`
	Status     string     `gorm:"size:16;not null;default:'available';index" json:"status"`
	OrderID    *uint      `gorm:"index" json:"order_id,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

func (GiftCode) TableName() string { return "gift_codes" }
