package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User is a storefront account. PasswordHash holds a bcrypt digest and is
// never serialized.
type User struct {
	ID        uint           `gorm:"primarykey" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string `gorm:"size:128;not null" json:"name"`
	Email        string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:32;not null;default:'customer'" json:"role"`
}

func (User) TableName() string { return "users" }

// IsAdmin reports whether the account may use the admin surface.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
