// File path: internal/recommend/ranker.go
package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
	"github.com/nicodishanthj/shopsense/internal/llm"
)

// ErrEmbedding marks an embedding or similarity computation failure. It is
// absorbed locally: the ranker degrades to a rating-ordered pass-through.
var ErrEmbedding = errors.New("embedding computation failed")

// Ranker embeds candidate and context titles, scores every candidate against
// every context row by cosine similarity, and keeps the best score per
// product. This cross join is the dominant cost of the pipeline; both sides
// are bounded by their configured limits.
type Ranker struct {
	provider llm.Provider
	store    Store
}

func NewRanker(provider llm.Provider, store Store) *Ranker {
	return &Ranker{provider: provider, store: store}
}

// Rank produces the ranked set: similarity strictly above threshold,
// deduplicated by product id keeping the maximum similarity, ordered
// similarity descending with nulls last, truncated to rankLimit.
//
// With no context rows similarity is undefined; candidates pass through
// unranked (nil similarity) so users without history still get results. On
// any embedding failure the ranker falls back to a rating-ordered
// pass-through with similarity fixed at zero.
func (r *Ranker) Rank(ctx context.Context, scope *Scope, candidates []Product, contextItems []ContextItem, threshold float64, rankLimit int) []RankedItem {
	rankLimit = clampRankLimit(rankLimit)
	if len(candidates) == 0 {
		return nil
	}
	logger := common.Logger()

	if len(contextItems) == 0 {
		logger.Info("recommend: no context, passing candidates through unranked", "scope", scope.ID())
		ranked := passthrough(candidates, nil)
		ranked = truncate(ranked, rankLimit)
		r.stage(ctx, scope, ranked)
		return ranked
	}

	candidateVecs, err := r.embedTitles(ctx, productTitles(candidates))
	if err == nil {
		var contextVecs [][]float32
		contextVecs, err = r.embedTitles(ctx, contextTitles(contextItems))
		if err == nil {
			ranked := scoreCandidates(candidates, candidateVecs, contextVecs, threshold)
			ranked = truncate(ranked, rankLimit)
			r.stage(ctx, scope, ranked)
			logger.Debug("recommend: candidates ranked", "scope", scope.ID(), "kept", len(ranked))
			return ranked
		}
	}

	logger.Warn("recommend: ranking degraded to rating order", "scope", scope.ID(), "error", err)
	telemetry.RecordFallback("rank")
	zero := 0.0
	ranked := passthrough(candidates, &zero)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ratingOf(ranked[i].Product) > ratingOf(ranked[j].Product)
	})
	ranked = truncate(ranked, rankLimit)
	r.stage(ctx, scope, ranked)
	return ranked
}

func clampRankLimit(limit int) int {
	if limit <= 0 || limit > hardRankCap {
		return hardRankCap
	}
	return limit
}

func productTitles(products []Product) []string {
	titles := make([]string, len(products))
	for i, p := range products {
		titles[i] = p.Title
	}
	return titles
}

func contextTitles(items []ContextItem) []string {
	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	return titles
}

// embedTitles embeds every title, including empty ones: a row with a missing
// title gets the embedding of the empty string, never skipped, so vector
// indexes stay aligned with row indexes.
func (r *Ranker) embedTitles(ctx context.Context, titles []string) ([][]float32, error) {
	vectors, err := r.provider.Embed(ctx, titles)
	telemetry.RecordEmbed(err)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vectors) != len(titles) {
		err := fmt.Errorf("%w: got %d vectors for %d titles", ErrEmbedding, len(vectors), len(titles))
		telemetry.RecordEmbed(err)
		return nil, err
	}
	return vectors, nil
}

// scoreCandidates computes the cosine cross join and keeps, per candidate,
// the maximum similarity over all context rows when it exceeds the threshold.
func scoreCandidates(candidates []Product, candidateVecs, contextVecs [][]float32, threshold float64) []RankedItem {
	best := make(map[int64]float64, len(candidates))
	order := make([]Product, 0, len(candidates))
	seen := make(map[int64]bool, len(candidates))
	for i, candidate := range candidates {
		var max float64
		scored := false
		for _, ctxVec := range contextVecs {
			sim := cosineSimilarity(ctxVec, candidateVecs[i])
			if !scored || sim > max {
				max = sim
				scored = true
			}
		}
		if !scored || max <= threshold {
			continue
		}
		if prev, ok := best[candidate.ProductID]; !ok || max > prev {
			best[candidate.ProductID] = max
		}
		if !seen[candidate.ProductID] {
			seen[candidate.ProductID] = true
			order = append(order, candidate)
		}
	}
	ranked := make([]RankedItem, 0, len(order))
	for _, candidate := range order {
		sim := best[candidate.ProductID]
		ranked = append(ranked, RankedItem{Product: candidate, Similarity: &sim})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].Similarity > *ranked[j].Similarity
	})
	return ranked
}

func passthrough(candidates []Product, sim *float64) []RankedItem {
	ranked := make([]RankedItem, 0, len(candidates))
	for _, candidate := range candidates {
		item := RankedItem{Product: candidate}
		if sim != nil {
			value := *sim
			item.Similarity = &value
		}
		ranked = append(ranked, item)
	}
	return ranked
}

func truncate(items []RankedItem, limit int) []RankedItem {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func ratingOf(p Product) float64 {
	if p.ProductRating == nil {
		return -1
	}
	return *p.ProductRating
}

// cosineSimilarity is computed in float64 over float32 vectors. Mismatched
// lengths and zero vectors score zero.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

var rankedColumns = append(append([]string{}, relationColumns...), "similarity")

func (r *Ranker) stage(ctx context.Context, scope *Scope, ranked []RankedItem) {
	if len(ranked) == 0 {
		return
	}
	rows := make([][]interface{}, 0, len(ranked))
	for _, item := range ranked {
		rows = append(rows, append(productRow(item.Product), floatValue(item.Similarity)))
	}
	if err := r.store.WriteRecords(ctx, scope.RankedTable(), rankedColumns, rows, true); err != nil {
		common.Logger().Warn("recommend: ranked staging failed", "scope", scope.ID(), "error", err)
	}
}
