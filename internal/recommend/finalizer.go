// File path: internal/recommend/finalizer.go
package recommend

import (
	"context"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
)

// Finalizer produces the presentable recommendation set. The search service
// is the system's only textual relevance and snippet mechanism, so it runs a
// second time over the ranked staging relation; when that search errors or
// comes back empty the finalizer falls back to top-rated catalog rows. It
// always returns a set, empty only when the catalog itself is empty.
type Finalizer struct {
	search        Searcher
	store         Store
	fallbackLimit int
}

func NewFinalizer(searcher Searcher, store Store, fallbackLimit int) *Finalizer {
	if fallbackLimit <= 0 {
		fallbackLimit = 20
	}
	return &Finalizer{search: searcher, store: store, fallbackLimit: fallbackLimit}
}

// Finalize re-searches the ranked relation and stages the final set in the
// recommendations relation for display.
func (f *Finalizer) Finalize(ctx context.Context, scope *Scope, ranked []RankedItem, rewrittenQuery string, limit int) []Product {
	logger := common.Logger()
	if limit <= 0 {
		limit = 100
	}
	var final []Product
	if len(ranked) == 0 {
		logger.Info("recommend: ranked set empty, using catalog fallback", "scope", scope.ID())
		final = f.catalogFallback(ctx, scope)
	} else {
		resp, err := f.search.Search(ctx, scope.RankedTable(), rewrittenQuery, relationColumns, limit)
		if err != nil {
			logger.Warn("recommend: finalize search failed, using catalog fallback", "scope", scope.ID(), "error", err)
			final = f.catalogFallback(ctx, scope)
		} else {
			final = make([]Product, 0, len(resp.Results))
			seen := make(map[int64]bool, len(resp.Results))
			for _, rec := range resp.Results {
				product, ok := productFromRecord(map[string]interface{}(rec))
				if !ok || seen[product.ProductID] {
					continue
				}
				seen[product.ProductID] = true
				final = append(final, product)
				if len(final) >= limit {
					break
				}
			}
			if len(final) == 0 {
				logger.Info("recommend: finalize search empty, using catalog fallback", "scope", scope.ID())
				final = f.catalogFallback(ctx, scope)
			}
		}
	}
	if final == nil {
		final = []Product{}
	}
	f.stage(ctx, scope, final)
	return final
}

// catalogFallback returns top-rated catalog rows, ties broken randomly.
func (f *Finalizer) catalogFallback(ctx context.Context, scope *Scope) []Product {
	telemetry.RecordFallback("finalize")
	records, err := f.store.QueryRelation(ctx, `
                SELECT * FROM products
                ORDER BY product_rating DESC, RANDOM()
                LIMIT ?`, f.fallbackLimit)
	if err != nil {
		common.Logger().Error("recommend: catalog fallback failed", "scope", scope.ID(), "error", err)
		return []Product{}
	}
	products := make([]Product, 0, len(records))
	for _, rec := range records {
		if product, ok := productFromRecord(rec); ok {
			products = append(products, product)
		}
	}
	return products
}

func (f *Finalizer) stage(ctx context.Context, scope *Scope, final []Product) {
	if len(final) == 0 {
		return
	}
	rows := make([][]interface{}, 0, len(final))
	for _, p := range final {
		rows = append(rows, productRow(p))
	}
	if err := f.store.WriteRecords(ctx, scope.RecommendationsTable(), relationColumns, rows, true); err != nil {
		common.Logger().Warn("recommend: recommendation staging failed", "scope", scope.ID(), "error", err)
	}
}
