// File path: internal/recommend/types.go
package recommend

import (
	"context"
	"strconv"
	"strings"

	"github.com/nicodishanthj/shopsense/internal/search"
)

// Store is the relation-store capability the pipeline needs: create-or-replace
// materialization, best-effort drops, record batches and declarative reads.
type Store interface {
	CreateRelationAs(ctx context.Context, name, query string, args ...interface{}) error
	DropRelation(ctx context.Context, name string) error
	WriteRecords(ctx context.Context, name string, columns []string, rows [][]interface{}, overwrite bool) error
	QueryRelation(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error)
}

// Searcher is the hybrid search capability. The concrete client lives in
// internal/search; tests substitute fakes.
type Searcher interface {
	Search(ctx context.Context, service, query string, columns []string, limit int) (*search.Response, error)
	CatalogService() string
}

// Product is one recommendable catalog item as it flows through the pipeline.
// Numeric fields are pointers: unparseable feed values become nil instead of
// dropping the row.
type Product struct {
	ProductID     int64    `json:"product_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description,omitempty"`
	Highlights    string   `json:"highlights,omitempty"`
	Category1     string   `json:"category_1,omitempty"`
	Category2     string   `json:"category_2,omitempty"`
	Category3     string   `json:"category_3,omitempty"`
	MRP           *float64 `json:"mrp,omitempty"`
	ProductRating *float64 `json:"product_rating,omitempty"`
	SellerName    string   `json:"seller_name,omitempty"`
	SellerRating  *float64 `json:"seller_rating,omitempty"`
	ImageLinks    string   `json:"image_links,omitempty"`
}

// ContextItem is a catalog row joined with one of the user's interactions.
type ContextItem struct {
	Product
	UserID               int64  `json:"user_id"`
	InteractionType      string `json:"interaction_type"`
	InteractionTimestamp string `json:"interaction_timestamp"`
}

// RankedItem pairs a candidate with its similarity against the user context.
// Similarity is nil when no context was available to rank against.
type RankedItem struct {
	Product
	Similarity *float64 `json:"similarity,omitempty"`
}

// relationColumns is the fixed attribute projection used for staging
// relations and search requests.
var relationColumns = []string{
	"category_1", "category_2", "category_3", "description",
	"highlights", "image_links", "mrp", "product_id",
	"product_rating", "seller_name", "seller_rating", "title",
}

func productRow(p Product) []interface{} {
	return []interface{}{
		nullable(p.Category1), nullable(p.Category2), nullable(p.Category3), nullable(p.Description),
		nullable(p.Highlights), nullable(p.ImageLinks), floatValue(p.MRP), p.ProductID,
		floatValue(p.ProductRating), nullable(p.SellerName), floatValue(p.SellerRating), p.Title,
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func floatValue(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// productFromRecord maps a generic record (search hit or relation row) onto a
// Product. Rows without a parseable product id are rejected.
func productFromRecord(rec map[string]interface{}) (Product, bool) {
	id, ok := recordInt(rec, "product_id")
	if !ok {
		return Product{}, false
	}
	return Product{
		ProductID:     id,
		Title:         recordString(rec, "title"),
		Description:   recordString(rec, "description"),
		Highlights:    recordString(rec, "highlights"),
		Category1:     recordString(rec, "category_1"),
		Category2:     recordString(rec, "category_2"),
		Category3:     recordString(rec, "category_3"),
		MRP:           recordFloat(rec, "mrp"),
		ProductRating: recordFloat(rec, "product_rating"),
		SellerName:    recordString(rec, "seller_name"),
		SellerRating:  recordFloat(rec, "seller_rating"),
		ImageLinks:    recordString(rec, "image_links"),
	}, true
}

func recordString(rec map[string]interface{}, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return ""
	}
}

// recordFloat coerces numeric-looking values; anything unparseable becomes
// nil rather than failing the row.
func recordFloat(rec map[string]interface{}, key string) *float64 {
	switch v := rec[key].(type) {
	case float64:
		return &v
	case float32:
		f := float64(v)
		return &f
	case int64:
		f := float64(v)
		return &f
	case int:
		f := float64(v)
		return &f
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return &parsed
	default:
		return nil
	}
}

func recordInt(rec map[string]interface{}, key string) (int64, bool) {
	switch v := rec[key].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), true
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
