// Package catalog is the boundary between external product representations
// and the canonical cart line item. External documents arrive in several
// historical shapes (Mongo-style _id, image vs imageUrl vs images[0],
// major-unit float prices); normalization happens here once, at ingestion,
// instead of ad hoc at every call site.
package catalog

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/artisans-corner/storefront/internal/entity"
)

// ErrMissingID is returned when no usable product id can be resolved.
var ErrMissingID = errors.New("catalog: product document has no id")

// NormalizeLineItem maps a loosely-shaped product document into a
// canonical CartLineItem. A missing or unparseable price defaults to 0;
// quantity is always 1, the cart decides counts.
func NormalizeLineItem(raw map[string]any) (entity.CartLineItem, error) {
	id := firstString(raw, "id", "_id", "product_id", "productId")
	if id == "" {
		return entity.CartLineItem{}, ErrMissingID
	}

	return entity.CartLineItem{
		ID:        id,
		Name:      firstString(raw, "name", "title"),
		UnitPrice: resolvePrice(raw),
		ImageRef:  resolveImage(raw),
		Quantity:  1,
	}, nil
}

// LineItem converts a catalog product into a cart line item.
func LineItem(p entity.Product) entity.CartLineItem {
	return entity.CartLineItem{
		ID:        p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		ImageRef:  p.ImageURL,
		Quantity:  1,
	}
}

// resolvePrice finds a price in the document. unit_price and price_minor
// already carry minor units; a bare price field is in major units and gets
// shifted. Negative or malformed prices become 0.
func resolvePrice(raw map[string]any) int64 {
	for _, key := range []string{"unit_price", "price_minor"} {
		if minor, ok := asInt64(raw[key]); ok {
			if minor < 0 {
				return 0
			}
			return minor
		}
	}

	major, ok := asDecimal(raw["price"])
	if !ok || major.IsNegative() {
		return 0
	}
	return major.Shift(2).Round(0).IntPart()
}

// resolveImage mirrors the fallback chain the storefront UI used:
// image (string or first of array), imageUrl, image_url, images[0],
// image_urls[0].
func resolveImage(raw map[string]any) string {
	switch v := raw["image"].(type) {
	case string:
		if v != "" {
			return v
		}
	case []any:
		if s := firstOfArray(v); s != "" {
			return s
		}
	}

	if s := firstString(raw, "imageUrl", "image_url"); s != "" {
		return s
	}

	for _, key := range []string{"images", "image_urls", "imageUrls"} {
		if arr, ok := raw[key].([]any); ok {
			if s := firstOfArray(arr); s != "" {
				return s
			}
		}
	}
	return ""
}

func firstOfArray(arr []any) string {
	if len(arr) == 0 {
		return ""
	}
	s, _ := arr[0].(string)
	return s
}

// firstString returns the first key holding a non-empty string. Numeric
// ids are formatted, since some upstream documents use integer ids.
func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			return strconv.Itoa(v)
		case int64:
			return strconv.FormatInt(v, 10)
		}
	}
	return ""
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
	}
	return 0, false
}

func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}
