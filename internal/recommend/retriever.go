// File path: internal/recommend/retriever.go
package recommend

import (
	"context"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
)

// CandidateRetriever runs the hybrid search for the rewritten query and
// materializes the hits as the scoped candidates relation. One bad search
// response must not crash the pipeline, so every failure here degrades to an
// empty candidate set.
type CandidateRetriever struct {
	search Searcher
	store  Store
	limit  int
}

func NewCandidateRetriever(searcher Searcher, store Store, limit int) *CandidateRetriever {
	if limit <= 0 {
		limit = 100
	}
	return &CandidateRetriever{search: searcher, store: store, limit: limit}
}

// Retrieve returns at most the configured limit of deduplicated candidates.
// Numeric-looking attributes are coerced; unparseable values become nil.
func (r *CandidateRetriever) Retrieve(ctx context.Context, scope *Scope, rewrittenQuery string) []Product {
	logger := common.Logger()
	resp, err := r.search.Search(ctx, r.search.CatalogService(), rewrittenQuery, relationColumns, r.limit)
	if err != nil {
		logger.Warn("recommend: candidate search degraded to empty", "scope", scope.ID(), "error", err)
		telemetry.RecordFallback("retrieve")
		return nil
	}
	seen := make(map[int64]bool, len(resp.Results))
	candidates := make([]Product, 0, len(resp.Results))
	for _, rec := range resp.Results {
		product, ok := productFromRecord(map[string]interface{}(rec))
		if !ok {
			continue
		}
		if seen[product.ProductID] {
			continue
		}
		seen[product.ProductID] = true
		candidates = append(candidates, product)
		if len(candidates) >= r.limit {
			break
		}
	}
	if len(candidates) == 0 {
		logger.Info("recommend: candidate search returned no usable rows", "scope", scope.ID())
		return nil
	}
	rows := make([][]interface{}, 0, len(candidates))
	for _, p := range candidates {
		rows = append(rows, productRow(p))
	}
	if err := r.store.WriteRecords(ctx, scope.CandidatesTable(), relationColumns, rows, true); err != nil {
		logger.Warn("recommend: candidate staging failed", "scope", scope.ID(), "error", err)
	}
	logger.Debug("recommend: candidates retrieved", "scope", scope.ID(), "count", len(candidates))
	return candidates
}
