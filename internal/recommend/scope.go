// File path: internal/recommend/scope.go
package recommend

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/nicodishanthj/shopsense/internal/common"
)

// Scope owns the staging relations for a single pipeline run. Relation names
// are derived from the caller-supplied key so concurrent runs for different
// users never touch each other's relations. Two concurrent runs with the same
// key are not safe; callers serialize those.
type Scope struct {
	id    string
	store Store
}

// ErrEmptyScope is returned when the scope key sanitizes down to nothing.
var ErrEmptyScope = errors.New("scope key required")

// NewScope builds a scope whose relation names embed the sanitized key.
func NewScope(store Store, key string) (*Scope, error) {
	id := sanitizeScopeKey(key)
	if id == "" {
		return nil, ErrEmptyScope
	}
	return &Scope{id: id, store: store}, nil
}

// NewRequestScope builds a scope for an anonymous run using a random id.
func NewRequestScope(store Store) *Scope {
	id := "req_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	return &Scope{id: id, store: store}
}

// sanitizeScopeKey maps arbitrary caller input onto a safe identifier
// fragment. Anything outside [A-Za-z0-9_] becomes an underscore; identifiers
// are never built by raw interpolation of user input.
func sanitizeScopeKey(key string) string {
	key = strings.TrimSpace(strings.ToLower(key))
	if key == "" {
		return ""
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return ""
	}
	return out
}

func (s *Scope) ID() string { return s.id }

func (s *Scope) ContextTable() string         { return "context_" + s.id }
func (s *Scope) CandidatesTable() string      { return "candidates_" + s.id }
func (s *Scope) RankedTable() string          { return "ranked_" + s.id }
func (s *Scope) RecommendationsTable() string { return "recommendations_" + s.id }

func (s *Scope) relations() []string {
	return []string{
		s.ContextTable(),
		s.CandidatesTable(),
		s.RankedTable(),
		s.RecommendationsTable(),
	}
}

// Cleanup drops every scoped relation. Drop failures are logged and never
// fatal: a leftover relation is overwritten by the next create-or-replace.
func (s *Scope) Cleanup(ctx context.Context) {
	if s == nil || s.store == nil {
		return
	}
	logger := common.Logger()
	for _, name := range s.relations() {
		if err := s.store.DropRelation(ctx, name); err != nil {
			logger.Warn("scope: relation cleanup failed", "relation", name, "error", err)
		}
	}
}

// WithScope runs body inside a fresh scope: stale relations from a prior
// failed run are dropped first, and cleanup runs again after the body whether
// it succeeded or not.
func WithScope(ctx context.Context, store Store, key string, body func(*Scope) error) error {
	scope, err := NewScope(store, key)
	if err != nil {
		return err
	}
	scope.Cleanup(ctx)
	defer scope.Cleanup(ctx)
	return body(scope)
}
