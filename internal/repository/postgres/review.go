package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/repository"
)

type reviewRepository struct {
	db *sql.DB
}

// NewReviewRepository creates a new ReviewRepository backed by Postgres.
func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, rev entity.Review) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, rev.Comment, rev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert review: %w", err)
	}
	return nil
}

func (r *reviewRepository) FindByProduct(ctx context.Context, productID string) ([]entity.Review, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, product_id, user_id, rating, comment, created_at FROM reviews WHERE product_id = $1 ORDER BY created_at DESC",
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews for %s: %w", productID, err)
	}
	defer rows.Close()

	var reviews []entity.Review
	for rows.Next() {
		var rev entity.Review
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &rev.Comment, &rev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	return reviews, rows.Err()
}
