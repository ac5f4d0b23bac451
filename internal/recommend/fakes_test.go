// File path: internal/recommend/fakes_test.go
package recommend

import (
	"context"
	"fmt"
	"sync"

	"github.com/nicodishanthj/shopsense/internal/llm"
	"github.com/nicodishanthj/shopsense/internal/search"
)

type fakeProvider struct {
	mu          sync.Mutex
	chatResp    string
	chatErr     error
	chatPrompts []string
	embedErr    error
	vectors     map[string][]float32
	dim         int
}

func (f *fakeProvider) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(messages) > 0 {
		f.chatPrompts = append(f.chatPrompts, messages[len(messages)-1].Content)
	}
	return f.chatResp, f.chatErr
}

func (f *fakeProvider) Embed(ctx context.Context, input []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	dim := f.dim
	if dim <= 0 {
		dim = 3
	}
	out := make([][]float32, len(input))
	for i, text := range input {
		if vec, ok := f.vectors[text]; ok {
			out[i] = vec
			continue
		}
		out[i] = make([]float32, dim)
	}
	return out, nil
}

func (f *fakeProvider) Name() string { return "fake" }

type searchCall struct {
	service string
	query   string
	limit   int
}

type fakeSearcher struct {
	mu        sync.Mutex
	responses map[string]*search.Response
	errs      map[string]error
	calls     []searchCall
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		responses: make(map[string]*search.Response),
		errs:      make(map[string]error),
	}
}

func (f *fakeSearcher) Search(ctx context.Context, service, query string, columns []string, limit int) (*search.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, searchCall{service: service, query: query, limit: limit})
	if err, ok := f.errs[service]; ok {
		return nil, err
	}
	if resp, ok := f.responses[service]; ok {
		return resp, nil
	}
	return &search.Response{}, nil
}

func (f *fakeSearcher) CatalogService() string { return "product_search_service" }

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeStore records relation operations without a real database.
type fakeStore struct {
	mu      sync.Mutex
	drops   []string
	writes  map[string][][]interface{}
	creates []string

	queryRecords []map[string]interface{}
	queryErr     error
	createErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{writes: make(map[string][][]interface{})}
}

func (f *fakeStore) CreateRelationAs(ctx context.Context, name, query string, args ...interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.creates = append(f.creates, name)
	return nil
}

func (f *fakeStore) DropRelation(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.drops = append(f.drops, name)
	return nil
}

func (f *fakeStore) WriteRecords(ctx context.Context, name string, columns []string, rows [][]interface{}, overwrite bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes[name] = rows
	return nil
}

func (f *fakeStore) QueryRelation(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryRecords, nil
}

func (f *fakeStore) dropCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, dropped := range f.drops {
		if dropped == name {
			count++
		}
	}
	return count
}

// memoryCache is a trivial ResultCache for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]Product
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]Product)}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	products, ok := c.entries[key]
	return products, ok
}

func (c *memoryCache) Set(ctx context.Context, key string, products []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = products
}

func catalogRecord(id int64, title string, rating interface{}) search.Record {
	return search.Record{
		"product_id":     float64(id),
		"title":          title,
		"product_rating": rating,
	}
}

func floatPtr(f float64) *float64 { return &f }

func productIDs(products []Product) string {
	return fmt.Sprint(func() []int64 {
		ids := make([]int64, len(products))
		for i, p := range products {
			ids[i] = p.ProductID
		}
		return ids
	}())
}
