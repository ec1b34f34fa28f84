package model

import "gorm.io/gorm"

// Migrate creates or updates every storefront table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Category{},
		&Product{},
		&GiftCode{},
		&Order{},
		&OrderItem{},
		&Payment{},
	)
}
