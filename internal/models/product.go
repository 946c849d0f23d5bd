package models

import "time"

// Category groups products in the catalog.
type Category struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" gorm:"type:varchar(100);not null" validate:"required,min=2,max=100"`
	Slug         string    `json:"slug" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=2,max=100"`
	ProductCount int64     `json:"product_count" gorm:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Product is a spare part offered in the store.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name          string    `json:"name" gorm:"type:varchar(200);not null" validate:"required,min=3,max=200"`
	SKU           string    `json:"sku" gorm:"column:sku;uniqueIndex;type:varchar(64);not null" validate:"required,max=64"`
	Description   string    `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	Price         float64   `json:"price" gorm:"not null" validate:"required,gt=0"`
	Unit          string    `json:"unit" gorm:"type:varchar(20);not null;default:PCS"`
	Image         string    `json:"image,omitempty" gorm:"type:text"`
	CategoryID    string    `json:"category_id" gorm:"type:varchar(36);index" validate:"omitempty,uuid"`
	Category      *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	StockQuantity int       `json:"stock_quantity" gorm:"not null;default:0" validate:"gte=0"`
	IsActive      bool      `json:"is_active" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductFilter narrows catalog listings. Zero values match everything.
type ProductFilter struct {
	CategorySlug string
	Search       string
	ActiveOnly   bool
}
