// File path: internal/api/server.go
package api

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	"sync"

	chi "github.com/go-chi/chi/v5"

	"github.com/nicodishanthj/shopsense/internal/common"
	"github.com/nicodishanthj/shopsense/internal/recommend"
	"github.com/nicodishanthj/shopsense/internal/sqlite"
)

// Recommender is the pipeline contract the server depends on.
type Recommender interface {
	Recommend(ctx context.Context, userID int64, query string) ([]recommend.Product, error)
}

// Server exposes the recommendation pipeline plus the thin account and
// interaction glue around it.
type Server struct {
	router      chi.Router
	store       *sqlite.Store
	recommender Recommender
	locks       *userLocks
}

func NewServer(store *sqlite.Store, recommender Recommender) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("store required")
	}
	if recommender == nil {
		return nil, fmt.Errorf("recommender required")
	}
	s := &Server{
		store:       store,
		recommender: recommender,
		locks:       newUserLocks(),
	}
	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		r.Post("/recommendations", s.handleRecommendations)
		r.Post("/interactions", s.handleInteraction)
		r.Post("/products", s.handleIngest)
		r.Post("/users/register", s.handleRegister)
		r.Post("/users/login", s.handleLogin)
		r.Get("/logs", s.handleLogs)
	})
	r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	s.router = r
	common.Logger().Info("api: server routes registered")
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// userLocks serializes pipeline runs per user id: two concurrent runs for the
// same user would contend for the same scoped staging relations.
type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[int64]*sync.Mutex)}
}

func (u *userLocks) lock(userID int64) func() {
	u.mu.Lock()
	m, ok := u.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		u.locks[userID] = m
	}
	u.mu.Unlock()
	m.Lock()
	return m.Unlock
}
