package models

import "time"

// SettingsID is the primary key of the single store settings row.
const SettingsID = 1

// StoreSettings holds store-wide configuration editable by admins.
type StoreSettings struct {
	ID               uint      `json:"-" gorm:"primaryKey"`
	StoreName        string    `json:"store_name" gorm:"type:varchar(200)" validate:"required,max=200"`
	StoreDescription string    `json:"store_description" gorm:"type:text" validate:"omitempty,max=2000"`
	ContactEmail     string    `json:"contact_email" gorm:"type:varchar(255)" validate:"omitempty,email"`
	ContactPhone     string    `json:"contact_phone" gorm:"type:varchar(30)" validate:"omitempty,max=30"`
	Address          string    `json:"address" gorm:"type:text"`
	Currency         string    `json:"currency" gorm:"type:varchar(8);not null;default:INR" validate:"required,len=3"`
	TaxRate          float64   `json:"tax_rate" gorm:"not null;default:18" validate:"gte=0,lte=100"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultStoreSettings is what the store uses until an admin saves settings.
func DefaultStoreSettings() StoreSettings {
	return StoreSettings{
		ID:               SettingsID,
		StoreName:        "ELYF EVSPARE",
		StoreDescription: "Premium Electric Vehicle Spare Parts",
		ContactEmail:     "contact@elyfevspare.com",
		ContactPhone:     "+91 9876543210",
		Address:          "Mumbai, Maharashtra, India",
		Currency:         "INR",
		TaxRate:          18,
	}
}

// Analytics is the admin dashboard summary.
type Analytics struct {
	OrderStats
	TotalCustomers int64 `json:"total_customers"`
	TotalProducts  int64 `json:"total_products"`
}
