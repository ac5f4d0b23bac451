// File path: internal/recommend/finalizer_test.go
package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/nicodishanthj/shopsense/internal/search"
)

func rankedItems(ids ...int64) []RankedItem {
	items := make([]RankedItem, 0, len(ids))
	for _, id := range ids {
		sim := 0.9
		items = append(items, RankedItem{Product: Product{ProductID: id, Title: "p"}, Similarity: &sim})
	}
	return items
}

func TestFinalizeSearchesRankedRelation(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	scope := testScope(t, store, "u7")
	searcher.responses[scope.RankedTable()] = &search.Response{Results: []search.Record{
		catalogRecord(3, "three", 4.0),
		catalogRecord(3, "three again", 4.0),
		catalogRecord(1, "one", 3.0),
	}}

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), scope, rankedItems(1, 3), "shoes", 10)
	if len(final) != 2 {
		t.Fatalf("expected deduplicated final set of 2, got %d: %s", len(final), productIDs(final))
	}
	if final[0].ProductID != 3 || final[1].ProductID != 1 {
		t.Errorf("expected search order preserved, got %s", productIDs(final))
	}
	if searcher.callCount() != 1 {
		t.Errorf("expected one finalize search, got %d", searcher.callCount())
	}
	if searcher.calls[0].service != scope.RankedTable() {
		t.Errorf("finalize searched %q, want ranked relation %q", searcher.calls[0].service, scope.RankedTable())
	}
	if _, ok := store.writes[scope.RecommendationsTable()]; !ok {
		t.Error("final set was not staged")
	}
}

func TestFinalizeHonorsLimit(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	scope := testScope(t, store, "u7")
	searcher.responses[scope.RankedTable()] = &search.Response{Results: []search.Record{
		catalogRecord(1, "one", 4.0),
		catalogRecord(2, "two", 3.9),
		catalogRecord(3, "three", 3.8),
	}}

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), scope, rankedItems(1, 2, 3), "q", 2)
	if len(final) != 2 {
		t.Fatalf("expected limit of 2, got %d", len(final))
	}
}

func TestFinalizeEmptyRankedUsesCatalogFallback(t *testing.T) {
	store := newFakeStore()
	store.queryRecords = []map[string]interface{}{
		catalogRecord(9, "top rated", 4.8),
		catalogRecord(8, "runner up", 4.5),
	}
	searcher := newFakeSearcher()

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), testScope(t, store, "u7"), nil, "q", 10)
	if len(final) != 2 {
		t.Fatalf("expected catalog fallback rows, got %d", len(final))
	}
	if final[0].ProductID != 9 {
		t.Errorf("unexpected fallback rows: %s", productIDs(final))
	}
	if searcher.callCount() != 0 {
		t.Errorf("expected no search call for empty ranked set, got %d", searcher.callCount())
	}
}

func TestFinalizeSearchFailureUsesCatalogFallback(t *testing.T) {
	store := newFakeStore()
	store.queryRecords = []map[string]interface{}{catalogRecord(9, "top rated", 4.8)}
	searcher := newFakeSearcher()
	scope := testScope(t, store, "u7")
	searcher.errs[scope.RankedTable()] = errors.New("search service down")

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), scope, rankedItems(1), "q", 10)
	if len(final) != 1 || final[0].ProductID != 9 {
		t.Fatalf("expected fallback row, got %s", productIDs(final))
	}
}

func TestFinalizeSearchEmptyUsesCatalogFallback(t *testing.T) {
	store := newFakeStore()
	store.queryRecords = []map[string]interface{}{catalogRecord(9, "top rated", 4.8)}
	searcher := newFakeSearcher()
	scope := testScope(t, store, "u7")
	searcher.responses[scope.RankedTable()] = &search.Response{}

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), scope, rankedItems(1), "q", 10)
	if len(final) != 1 || final[0].ProductID != 9 {
		t.Fatalf("expected fallback row, got %s", productIDs(final))
	}
}

func TestFinalizeEmptyCatalogReturnsEmptySet(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()

	finalizer := NewFinalizer(searcher, store, 20)
	final := finalizer.Finalize(context.Background(), testScope(t, store, "u7"), nil, "q", 10)
	if final == nil {
		t.Fatal("final set must never be nil")
	}
	if len(final) != 0 {
		t.Fatalf("expected empty set from empty catalog, got %d", len(final))
	}
}
