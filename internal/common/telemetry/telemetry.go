// File path: internal/common/telemetry/telemetry.go
package telemetry

import (
	"context"
	"expvar"
	"sync"
	"time"

	"github.com/nicodishanthj/shopsense/internal/common"
)

type spanKey struct{}

type span struct {
	name  string
	start time.Time
}

var (
	initOnce sync.Once

	pipelineTotal     *expvar.Int
	pipelineLatencyMS *expvar.Int

	rewriteTotal    *expvar.Int
	rewriteFailures *expvar.Int

	searchTotal    *expvar.Int
	searchFailures *expvar.Int

	embedTotal    *expvar.Int
	embedFailures *expvar.Int

	fallbackTotal *expvar.Map
	cacheHits     *expvar.Int
)

func ensureInit() {
	initOnce.Do(func() {
		pipelineTotal = expvar.NewInt("shopsense_pipeline_total")
		pipelineLatencyMS = expvar.NewInt("shopsense_pipeline_latency_ms")
		rewriteTotal = expvar.NewInt("shopsense_rewrite_total")
		rewriteFailures = expvar.NewInt("shopsense_rewrite_failures")
		searchTotal = expvar.NewInt("shopsense_search_total")
		searchFailures = expvar.NewInt("shopsense_search_failures")
		embedTotal = expvar.NewInt("shopsense_embed_total")
		embedFailures = expvar.NewInt("shopsense_embed_failures")
		fallbackTotal = expvar.NewMap("shopsense_fallback_total")
		cacheHits = expvar.NewInt("shopsense_cache_hits")
	})
}

// RecordPipeline notes a completed pipeline run and its wall-clock latency.
func RecordPipeline(elapsed time.Duration) {
	ensureInit()
	pipelineTotal.Add(1)
	pipelineLatencyMS.Set(elapsed.Milliseconds())
}

// RecordRewrite counts a query-rewrite attempt.
func RecordRewrite(err error) {
	ensureInit()
	rewriteTotal.Add(1)
	if err != nil {
		rewriteFailures.Add(1)
	}
}

// RecordSearch counts a hybrid-search call.
func RecordSearch(err error) {
	ensureInit()
	searchTotal.Add(1)
	if err != nil {
		searchFailures.Add(1)
	}
}

// RecordEmbed counts an embedding call.
func RecordEmbed(err error) {
	ensureInit()
	embedTotal.Add(1)
	if err != nil {
		embedFailures.Add(1)
	}
}

// RecordFallback counts a degraded path taken by the named stage.
func RecordFallback(stage string) {
	ensureInit()
	fallbackTotal.Add(stage, 1)
}

// RecordCacheHit counts a recommendation served from the result cache.
func RecordCacheHit() {
	ensureInit()
	cacheHits.Add(1)
}

// StartSpan records the start of a named stage on the context. The returned
// context carries the span for FinishSpan.
func StartSpan(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, spanKey{}, span{name: name, start: time.Now()})
}

// FinishSpan logs the elapsed time of the span carried by the context, if any.
func FinishSpan(ctx context.Context) {
	sp, ok := ctx.Value(spanKey{}).(span)
	if !ok {
		return
	}
	common.Logger().Debug("telemetry: stage complete", "stage", sp.name, "elapsed", time.Since(sp.start))
}
