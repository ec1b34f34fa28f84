package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a purchasable gift-card product. Stock is not a column: it is
// the count of available gift codes and is computed where listings need it.
type Product struct {
	ID        uint           `gorm:"primarykey" json:"product_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name        string          `gorm:"size:128;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    string          `gorm:"size:512" json:"image_url"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CategoryID  uint            `gorm:"not null;index" json:"category_id"`
	Category    *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	// No default tag: gorm drops zero-valued fields that carry one, which
	// would turn Create(&Product{Active: false}) into an active row.
	Active bool `gorm:"not null" json:"is_active"`
}

func (Product) TableName() string { return "products" }
