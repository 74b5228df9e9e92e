package models

import "time"

// Product is a storefront item managed from the admin dashboard.
type Product struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"` // decimal string as the backend serializes it
	Image       string    `json:"image"`
	Category    Category  `json:"category"`
	Stock       int       `json:"stock"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p Product) EntityID() uint { return p.ID }

// Order statuses as the backend reports them.
const (
	OrderPending   = "pending"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

// Order is a customer order listed in the admin dashboard.
type Order struct {
	ID            uint      `json:"id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	Total         string    `json:"total"`
	Status        string    `json:"status"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

func (o Order) EntityID() uint { return o.ID }
