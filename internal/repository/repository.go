package repository

import (
	"context"
	"errors"

	"github.com/artisans-corner/storefront/internal/entity"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrInsufficientStock is returned when an order asks for more units
	// than a product has left.
	ErrInsufficientStock = errors.New("repository: insufficient stock")
)

// ProductRepository handles persistence for products.
type ProductRepository interface {
	FindAll(ctx context.Context) ([]entity.Product, error)
	FindByID(ctx context.Context, id string) (entity.Product, error)
	Create(ctx context.Context, p entity.Product) error
	// Seed inserts initial products if none exist.
	Seed(ctx context.Context, products []entity.Product) error
}

// OrderRepository handles persistence for orders.
type OrderRepository interface {
	// Place writes the order, its items and the stock decrements in one
	// transaction. It reports created=false when the order id already
	// exists, so redelivered commands are idempotent.
	Place(ctx context.Context, o entity.Order) (created bool, err error)
	SetStatus(ctx context.Context, orderID, status string) error
	FindByID(ctx context.Context, orderID string) (entity.Order, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error)
	FindRecent(ctx context.Context, limit int) ([]entity.Order, error)
}

// ReviewRepository handles persistence for product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, r entity.Review) error
	FindByProduct(ctx context.Context, productID string) ([]entity.Review, error)
}
