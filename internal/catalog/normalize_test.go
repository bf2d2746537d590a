package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artisans-corner/storefront/internal/entity"
)

func TestNormalizeLineItem(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want entity.CartLineItem
	}{
		{
			name: "canonical shape",
			raw: map[string]any{
				"id": "prod-001", "name": "Ceramic Vase",
				"unit_price": float64(250000), "image_ref": "x",
				"image": "https://img/vase.jpg",
			},
			want: entity.CartLineItem{ID: "prod-001", Name: "Ceramic Vase", UnitPrice: 250000, ImageRef: "https://img/vase.jpg", Quantity: 1},
		},
		{
			name: "mongo id and major-unit price",
			raw: map[string]any{
				"_id": "64fe0c", "name": "Silk Scarf", "price": 999.50,
				"imageUrl": "https://img/scarf.jpg",
			},
			want: entity.CartLineItem{ID: "64fe0c", Name: "Silk Scarf", UnitPrice: 99950, ImageRef: "https://img/scarf.jpg", Quantity: 1},
		},
		{
			name: "numeric id and images array",
			raw: map[string]any{
				"id": float64(7), "title": "Brass Diya", "price": float64(120),
				"images": []any{"https://img/diya-1.jpg", "https://img/diya-2.jpg"},
			},
			want: entity.CartLineItem{ID: "7", Name: "Brass Diya", UnitPrice: 12000, ImageRef: "https://img/diya-1.jpg", Quantity: 1},
		},
		{
			name: "image as array",
			raw: map[string]any{
				"id": "p1", "name": "Jute Rug", "price": float64(0),
				"image": []any{"https://img/rug.jpg"},
			},
			want: entity.CartLineItem{ID: "p1", Name: "Jute Rug", UnitPrice: 0, ImageRef: "https://img/rug.jpg", Quantity: 1},
		},
		{
			name: "missing price defaults to zero",
			raw:  map[string]any{"id": "p2", "name": "Mystery Box"},
			want: entity.CartLineItem{ID: "p2", Name: "Mystery Box", Quantity: 1},
		},
		{
			name: "negative price defaults to zero",
			raw:  map[string]any{"id": "p3", "price": -10.0},
			want: entity.CartLineItem{ID: "p3", Quantity: 1},
		},
		{
			name: "quantity in payload is ignored",
			raw:  map[string]any{"id": "p4", "quantity": float64(9)},
			want: entity.CartLineItem{ID: "p4", Quantity: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLineItem(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeLineItemMissingID(t *testing.T) {
	_, err := NormalizeLineItem(map[string]any{"name": "No ID"})
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestLineItemFromProduct(t *testing.T) {
	p := entity.Product{ID: "prod-001", Name: "Ceramic Vase", Price: 250000, ImageURL: "https://img/vase.jpg", Stock: 4}
	got := LineItem(p)
	assert.Equal(t, entity.CartLineItem{ID: "prod-001", Name: "Ceramic Vase", UnitPrice: 250000, ImageRef: "https://img/vase.jpg", Quantity: 1}, got)
}
