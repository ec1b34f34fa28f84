package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status machine:
//
//	pending --payment confirmed--> paid
//	pending --admin action-------> cancelled
//	paid    --admin action-------> refunded
//
// No transition returns to pending.
const (
	OrderPending   = "pending"
	OrderPaid      = "paid"
	OrderCancelled = "cancelled"
	OrderRefunded  = "refunded"
)

// ValidOrderTransition reports whether an order may move from one status to
// another. Same-status updates are rejected too; callers treat them as
// already-processed.
func ValidOrderTransition(from, to string) bool {
	switch from {
	case OrderPending:
		return to == OrderPaid || to == OrderCancelled
	case OrderPaid:
		return to == OrderRefunded
	default:
		return false
	}
}

// Order is created in pending by the allocator with its items and reserved
// gift codes in one transaction.
type Order struct {
	ID        uint      `gorm:"primarykey" json:"order_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OrderNo    string          `gorm:"size:64;uniqueIndex;not null" json:"order_no"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	Status     string          `gorm:"size:16;not null;default:'pending';index" json:"status"`
	Items      []OrderItem     `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string { return "orders" }

// OrderItem is one cart line frozen at purchase time. Immutable after
// creation; UnitPrice is the product price at the moment the order was placed.
type OrderItem struct {
	ID        uint      `gorm:"primarykey" json:"order_item_id"`
	CreatedAt time.Time `json:"created_at"`

	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
}

func (OrderItem) TableName() string { return "order_items" }
