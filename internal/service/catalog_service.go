package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artisans-corner/storefront/internal/catalog"
	"github.com/artisans-corner/storefront/internal/entity"
	"github.com/artisans-corner/storefront/internal/repository"
)

// CatalogService serves product lookups and reviews, and is where loose
// external product documents get normalized into cart line items.
type CatalogService struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
}

func NewCatalogService(products repository.ProductRepository, reviews repository.ReviewRepository) *CatalogService {
	return &CatalogService{
		products: products,
		reviews:  reviews,
	}
}

// Products returns all available products.
func (s *CatalogService) Products(ctx context.Context) ([]entity.Product, error) {
	return s.products.FindAll(ctx)
}

// Product returns one product by id.
func (s *CatalogService) Product(ctx context.Context, id string) (entity.Product, error) {
	return s.products.FindByID(ctx, id)
}

// LineItemFor builds the canonical cart line item for a catalog product.
func (s *CatalogService) LineItemFor(ctx context.Context, productID string) (entity.CartLineItem, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return entity.CartLineItem{}, err
	}
	return catalog.LineItem(p), nil
}

// CreateProduct adds a vendor's product to the catalog.
func (s *CatalogService) CreateProduct(ctx context.Context, p entity.Product) (entity.Product, error) {
	if p.Name == "" {
		return entity.Product{}, fmt.Errorf("product must have a name")
	}
	if p.Price < 0 {
		return entity.Product{}, fmt.Errorf("product price must not be negative")
	}
	if p.Stock < 0 {
		return entity.Product{}, fmt.Errorf("product stock must not be negative")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	if err := s.products.Create(ctx, p); err != nil {
		return entity.Product{}, err
	}
	return p, nil
}

// AddReview attaches a review to a product. Ratings outside 1..5 are
// rejected rather than clamped.
func (s *CatalogService) AddReview(ctx context.Context, productID, userID string, rating int, comment string) (entity.Review, error) {
	if rating < 1 || rating > 5 {
		return entity.Review{}, fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}

	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return entity.Review{}, err
	}

	rev := entity.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}
	if err := s.reviews.Create(ctx, rev); err != nil {
		return entity.Review{}, err
	}
	return rev, nil
}

// Reviews lists a product's reviews, newest first.
func (s *CatalogService) Reviews(ctx context.Context, productID string) ([]entity.Review, error) {
	return s.reviews.FindByProduct(ctx, productID)
}
