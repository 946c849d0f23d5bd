package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// OrderItem is a single line of an order, priced at the time of ordering.
type OrderItem struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID    string   `json:"order_id" gorm:"type:varchar(36);index;not null"`
	ProductID  string   `json:"product_id" gorm:"type:varchar(36);not null"`
	Product    *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Quantity   int      `json:"quantity" gorm:"not null"`
	UnitPrice  float64  `json:"unit_price" gorm:"not null"`
	TotalPrice float64  `json:"total_price" gorm:"not null"`
}

// Order represents a customer order.
type Order struct {
	ID              string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string      `json:"user_id" gorm:"type:varchar(36);index;not null"`
	User            *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items           []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal        float64     `json:"subtotal" gorm:"not null"`
	TaxAmount       float64     `json:"tax_amount" gorm:"not null"`
	TotalAmount     float64     `json:"total_amount" gorm:"not null"`
	ShippingAddress string      `json:"shipping_address" gorm:"type:text"`
	BillingAddress  string      `json:"billing_address" gorm:"type:text"`
	Notes           string      `json:"notes,omitempty" gorm:"type:text"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// OrderStats summarizes orders for the admin dashboard.
type OrderStats struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
}
