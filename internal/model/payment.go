package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethodSimulated is the only method the storefront supports; there is
// no gateway integration, confirmation just flips the order to paid.
const PaymentMethodSimulated = "simulated"

// Payment records a confirmed payment. The unique order index makes a second
// confirmation of the same order fail at the constraint even if the status
// guard were ever bypassed.
type Payment struct {
	ID        uint      `gorm:"primarykey" json:"payment_id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID uint            `gorm:"not null;uniqueIndex" json:"order_id"`
	Amount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method  string          `gorm:"size:32;not null;default:'simulated'" json:"method"`
	PaidAt  time.Time       `gorm:"not null" json:"paid_at"`
}

func (Payment) TableName() string { return "payments" }
