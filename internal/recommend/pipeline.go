// File path: internal/recommend/pipeline.go
package recommend

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/common/telemetry"
	"github.com/nicodishanthj/shopsense/internal/llm"
)

// Pipeline wires the staged transformations that turn a raw shopper query
// into an ordered product list: query rewrite, context build, hybrid
// retrieval, similarity ranking and finalization, all inside a per-user
// relation scope.
//
// Only a failed query rewrite aborts a run; every other stage absorbs its
// failures and hands the next stage a defined fallback, so callers always
// receive a (possibly generic) recommendation set.
type Pipeline struct {
	store     Store
	rewriter  *Rewriter
	contexts  *ContextBuilder
	retriever *CandidateRetriever
	ranker    *Ranker
	finalizer *Finalizer
	cache     ResultCache
	cfg       Config
}

func New(store Store, provider llm.Provider, searcher Searcher, cache ResultCache, cfg Config) *Pipeline {
	cfg.applyDefaults()
	return &Pipeline{
		store:     store,
		rewriter:  NewRewriter(provider),
		contexts:  NewContextBuilder(store, cfg.ContextLimit),
		retriever: NewCandidateRetriever(searcher, store, cfg.CandidateLimit),
		ranker:    NewRanker(provider, store),
		finalizer: NewFinalizer(searcher, store, cfg.FallbackLimit),
		cache:     cache,
		cfg:       cfg,
	}
}

// Config returns the effective pipeline limits.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Recommend runs the full pipeline for one (user, query) pair. Runs for
// different users may execute concurrently; two concurrent runs for the same
// user contend for the same scoped relations and must be serialized by the
// caller.
func (p *Pipeline) Recommend(ctx context.Context, userID int64, query string) ([]Product, error) {
	logger := common.Logger()
	start := time.Now()
	scopeKey := fmt.Sprintf("u%d", userID)

	cacheKey := CacheKey(scopeKey, query)
	if p.cache != nil {
		if cached, ok := p.cache.Get(ctx, cacheKey); ok {
			telemetry.RecordCacheHit()
			logger.Debug("recommend: served from cache", "scope", scopeKey)
			return cached, nil
		}
	}

	var final []Product
	err := WithScope(ctx, p.store, scopeKey, func(scope *Scope) error {
		var (
			rewritten    string
			contextItems []ContextItem
		)
		// The rewrite and the context build depend only on the raw inputs,
		// so they run concurrently. A context failure is absorbed; a rewrite
		// failure aborts the run.
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			spanCtx := telemetry.StartSpan(gctx, "rewrite")
			defer telemetry.FinishSpan(spanCtx)
			result, err := p.rewriter.Rewrite(gctx, query)
			if err != nil {
				return err
			}
			rewritten = result
			return nil
		})
		g.Go(func() error {
			spanCtx := telemetry.StartSpan(gctx, "context")
			defer telemetry.FinishSpan(spanCtx)
			items, err := p.contexts.Build(gctx, scope, userID)
			if err != nil {
				logger.Warn("recommend: context build failed, continuing without personalization",
					"scope", scope.ID(), "error", err)
				telemetry.RecordFallback("context")
				return nil
			}
			contextItems = items
			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		candidates := p.retriever.Retrieve(ctx, scope, rewritten)
		ranked := p.ranker.Rank(ctx, scope, candidates, contextItems, p.cfg.SimilarityThreshold, p.cfg.RankLimit)
		final = p.finalizer.Finalize(ctx, scope, ranked, rewritten, p.cfg.FinalLimit)
		return nil
	})
	telemetry.RecordPipeline(time.Since(start))
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		p.cache.Set(ctx, cacheKey, final)
	}
	logger.Info("recommend: pipeline complete", "scope", scopeKey, "results", len(final), "elapsed", time.Since(start))
	return final, nil
}
