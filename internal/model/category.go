package model

import "time"

// Category groups products. Deletable only while no product references it.
type Category struct {
	ID        uint      `gorm:"primarykey" json:"category_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"size:128;uniqueIndex;not null" json:"name"`
}

func (Category) TableName() string { return "categories" }
