// File path: internal/recommend/context.go
package recommend

import (
	"context"
	"fmt"

	"github.com/nicodishanthj/shopsense/internal/common"
)

// ContextBuilder materializes a user's interaction history joined to the
// catalog as the scoped context relation. An empty history yields an empty
// context, which downstream stages treat as "no personalization available".
type ContextBuilder struct {
	store Store
	limit int
}

func NewContextBuilder(store Store, limit int) *ContextBuilder {
	if limit <= 0 {
		limit = 50
	}
	return &ContextBuilder{store: store, limit: limit}
}

// Build creates-or-replaces the context relation for the scope and returns
// its rows, most recent interactions first.
func (b *ContextBuilder) Build(ctx context.Context, scope *Scope, userID int64) ([]ContextItem, error) {
	table := scope.ContextTable()
	err := b.store.CreateRelationAs(ctx, table, `
                SELECT p.*, i.user_id, i.interaction_type, i.interaction_timestamp
                FROM products p
                JOIN (
                        SELECT product_id, user_id, interaction_type, interaction_timestamp
                        FROM interactions
                        WHERE user_id = ?
                        ORDER BY interaction_timestamp DESC
                        LIMIT ?
                ) i ON p.product_id = i.product_id`, userID, b.limit)
	if err != nil {
		return nil, fmt.Errorf("materialize context: %w", err)
	}
	records, err := b.store.QueryRelation(ctx, fmt.Sprintf(
		`SELECT * FROM %s ORDER BY interaction_timestamp DESC`, table))
	if err != nil {
		return nil, fmt.Errorf("read context: %w", err)
	}
	items := make([]ContextItem, 0, len(records))
	for _, rec := range records {
		product, ok := productFromRecord(rec)
		if !ok {
			continue
		}
		userID, _ := recordInt(rec, "user_id")
		items = append(items, ContextItem{
			Product:              product,
			UserID:               userID,
			InteractionType:      recordString(rec, "interaction_type"),
			InteractionTimestamp: recordString(rec, "interaction_timestamp"),
		})
	}
	common.Logger().Debug("recommend: context built", "scope", scope.ID(), "items", len(items))
	return items, nil
}
