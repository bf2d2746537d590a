package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/repository"
)

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new OrderRepository backed by Postgres.
func NewOrderRepository(db *sql.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Place(ctx context.Context, o entity.Order) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// ON CONFLICT makes a redelivered PlaceOrder command a no-op instead
	// of a duplicate key error.
	var inserted bool
	err = tx.QueryRowContext(ctx,
		"INSERT INTO orders (id, user_id, total, payment_ref, status, created_at) VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT (id) DO NOTHING RETURNING true",
		o.ID, o.UserID, o.Total, o.PaymentRef, o.Status, o.CreatedAt,
	).Scan(&inserted)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, name, unit_price, quantity) VALUES ($1, $2, $3, $4, $5)",
			o.ID, item.ProductID, item.Name, item.UnitPrice, item.Quantity,
		)
		if err != nil {
			return false, fmt.Errorf("failed to insert order item: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1",
			item.Quantity, item.ProductID,
		)
		if err != nil {
			return false, fmt.Errorf("failed to update stock for %s: %w", item.ProductID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return false, fmt.Errorf("failed to read stock update result: %w", err)
		}
		if affected == 0 {
			return false, fmt.Errorf("product %s: %w", item.ProductID, repository.ErrInsufficientStock)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *orderRepository) SetStatus(ctx context.Context, orderID, status string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE orders SET status = $1 WHERE id = $2", status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order %s status: %w", orderID, err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, orderID string) (entity.Order, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, total, payment_ref, status, created_at FROM orders WHERE id = $1", orderID)

	var o entity.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Total, &o.PaymentRef, &o.Status, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return entity.Order{}, repository.ErrNotFound
	}
	if err != nil {
		return entity.Order{}, fmt.Errorf("failed to scan order %s: %w", orderID, err)
	}

	if err := r.attachItems(ctx, &o); err != nil {
		return entity.Order{}, err
	}
	return o, nil
}

func (r *orderRepository) FindByUser(ctx context.Context, userID string, limit int) ([]entity.Order, error) {
	return r.findMany(ctx,
		"SELECT id, user_id, total, payment_ref, status, created_at FROM orders WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2",
		userID, limit)
}

func (r *orderRepository) FindRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	return r.findMany(ctx,
		"SELECT id, user_id, total, payment_ref, status, created_at FROM orders ORDER BY created_at DESC LIMIT $1",
		limit)
}

func (r *orderRepository) findMany(ctx context.Context, query string, args ...any) ([]entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		var o entity.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.PaymentRef, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %w", err)
	}

	for i := range orders {
		if err := r.attachItems(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *orderRepository) attachItems(ctx context.Context, o *entity.Order) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT product_id, name, unit_price, quantity FROM order_items WHERE order_id = $1 ORDER BY id",
		o.ID)
	if err != nil {
		return fmt.Errorf("failed to query items for order %s: %w", o.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Name, &item.UnitPrice, &item.Quantity); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}
