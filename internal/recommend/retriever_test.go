// File path: internal/recommend/retriever_test.go
package recommend

import (
	"context"
	"fmt"
	"testing"

	"github.com/nicodishanthj/shopsense/internal/search"
)

func testScope(t *testing.T, store Store, key string) *Scope {
	t.Helper()
	scope, err := NewScope(store, key)
	if err != nil {
		t.Fatalf("new scope: %v", err)
	}
	return scope
}

func TestRetrieveMalformedResponseDegradesToEmpty(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	searcher.errs[searcher.CatalogService()] = fmt.Errorf("decode: %w", search.ErrMalformedResponse)

	retriever := NewCandidateRetriever(searcher, store, 10)
	candidates := retriever.Retrieve(context.Background(), testScope(t, store, "u1"), "shoes")
	if candidates != nil {
		t.Fatalf("expected nil candidates, got %d", len(candidates))
	}
}

func TestRetrieveCoercesNumericFields(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	searcher.responses[searcher.CatalogService()] = &search.Response{Results: []search.Record{
		{"product_id": "101", "title": "shoes", "mrp": "79.99", "product_rating": "not-a-number", "seller_rating": 4.5},
	}}

	retriever := NewCandidateRetriever(searcher, store, 10)
	candidates := retriever.Retrieve(context.Background(), testScope(t, store, "u1"), "shoes")
	if len(candidates) != 1 {
		t.Fatalf("expected one candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.ProductID != 101 {
		t.Errorf("product id: %d", got.ProductID)
	}
	if got.MRP == nil || *got.MRP != 79.99 {
		t.Errorf("mrp not coerced: %v", got.MRP)
	}
	if got.ProductRating != nil {
		t.Errorf("expected nil rating for unparseable value, got %v", *got.ProductRating)
	}
	if got.SellerRating == nil || *got.SellerRating != 4.5 {
		t.Errorf("seller rating: %v", got.SellerRating)
	}
}

func TestRetrieveDeduplicatesAndLimits(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	searcher.responses[searcher.CatalogService()] = &search.Response{Results: []search.Record{
		catalogRecord(1, "one", 4.0),
		catalogRecord(1, "one again", 4.0),
		catalogRecord(2, "two", 3.5),
		catalogRecord(3, "three", 3.0),
	}}

	retriever := NewCandidateRetriever(searcher, store, 2)
	scope := testScope(t, store, "u1")
	candidates := retriever.Retrieve(context.Background(), scope, "q")
	if len(candidates) != 2 {
		t.Fatalf("expected limit of 2, got %d: %s", len(candidates), productIDs(candidates))
	}
	if candidates[0].ProductID != 1 || candidates[1].ProductID != 2 {
		t.Errorf("unexpected candidates: %s", productIDs(candidates))
	}
	if _, ok := store.writes[scope.CandidatesTable()]; !ok {
		t.Error("candidates were not staged")
	}
}

func TestRetrieveSkipsRowsWithoutProductID(t *testing.T) {
	store := newFakeStore()
	searcher := newFakeSearcher()
	searcher.responses[searcher.CatalogService()] = &search.Response{Results: []search.Record{
		{"title": "no id"},
		catalogRecord(5, "five", nil),
	}}

	retriever := NewCandidateRetriever(searcher, store, 10)
	candidates := retriever.Retrieve(context.Background(), testScope(t, store, "u1"), "q")
	if len(candidates) != 1 || candidates[0].ProductID != 5 {
		t.Fatalf("unexpected candidates: %s", productIDs(candidates))
	}
}
