package entity

import (
	"time"
)

// Product represents a product in the store. Prices are held in minor
// currency units (paise) so totals never touch floating point.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Stock       int    `json:"stock"`
	VendorID    string `json:"vendor_id"`
}

// CartLineItem is one product entry in a cart. A cart holds at most one
// line per product id; quantity carries the count.
type CartLineItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	ImageRef  string `json:"image_ref"`
	Quantity  int    `json:"quantity"`
}

// OrderItem is a line item within a placed order. The unit price is the
// server-side price at placement time, never the client's.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// Order represents a customer order.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	Total      int64       `json:"total"`
	PaymentRef string      `json:"payment_ref"`
	Status     string      `json:"status"` // "placed", "confirmed"
	CreatedAt  time.Time   `json:"created_at"`
}

// Review is a customer review attached to a product.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"` // 1..5
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Commands ---

// OrderLine is the client's view of an order line: product and quantity
// only. Prices are re-derived server-side.
type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrder is a command to create a new order. ClientTotal is the total
// the client computed; it is logged when it disagrees with the server's
// own pricing but never trusted.
type PlaceOrder struct {
	OrderID     string      `json:"order_id"`
	UserID      string      `json:"user_id"`
	Lines       []OrderLine `json:"lines"`
	PaymentRef  string      `json:"payment_ref"`
	ClientTotal int64       `json:"client_total"`
}

// --- Events ---

// OrderPlaced is emitted when an order is successfully placed.
type OrderPlaced struct {
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Items      []OrderItem `json:"items"`
	Total      int64       `json:"total"`
	PaymentRef string      `json:"payment_ref"`
	PlacedAt   time.Time   `json:"placed_at"`
}

// OrderConfirmed is emitted when an order is confirmed after payment
// verification downstream.
type OrderConfirmed struct {
	OrderID     string    `json:"order_id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
