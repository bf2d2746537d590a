package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/repository"
)

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new ProductRepository backed by Postgres.
func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

const productColumns = "id, name, description, price, image_url, category, stock, vendor_id"

func (r *productRepository) FindAll(ctx context.Context) ([]entity.Product, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *productRepository) FindByID(ctx context.Context, id string) (entity.Product, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)

	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Stock, &p.VendorID)
	if err == sql.ErrNoRows {
		return entity.Product{}, repository.ErrNotFound
	}
	if err != nil {
		return entity.Product{}, fmt.Errorf("failed to scan product %s: %w", id, err)
	}
	return p, nil
}

func (r *productRepository) Create(ctx context.Context, p entity.Product) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO products (id, name, description, price, image_url, category, stock, vendor_id) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock, p.VendorID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert product %s: %w", p.ID, err)
	}
	return nil
}

func (r *productRepository) Seed(ctx context.Context, products []entity.Product) error {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil // already seeded
	}

	for _, p := range products {
		if err := r.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.ID, err)
		}
	}
	return nil
}

func scanProduct(rows *sql.Rows) (entity.Product, error) {
	var p entity.Product
	if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL, &p.Category, &p.Stock, &p.VendorID); err != nil {
		return entity.Product{}, fmt.Errorf("failed to scan product: %w", err)
	}
	return p, nil
}
