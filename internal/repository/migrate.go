package repository

import (
	"propertydesk/internal/domain"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the repositories use.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&userModel{},
		&roomModel{},
		&domain.Tenant{},
		&bookingModel{},
		&invoiceModel{},
		&invoiceItemModel{},
		&paymentModel{},
		&domain.ExchangeRate{},
		&domain.Task{},
	)
}
