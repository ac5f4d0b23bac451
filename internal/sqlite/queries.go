// File path: internal/sqlite/queries.go
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// InteractionsForUser returns the user's interaction history, newest first.
func (s *Store) InteractionsForUser(ctx context.Context, userID int64) ([]Interaction, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	interactions := []Interaction{}
	if err := s.db.SelectContext(ctx, &interactions,
		`SELECT * FROM interactions WHERE user_id = ? ORDER BY interaction_timestamp DESC, id DESC`, userID); err != nil {
		return nil, fmt.Errorf("select interactions: %w", err)
	}
	return interactions, nil
}

// InsertInteraction records a user action against a product.
func (s *Store) InsertInteraction(ctx context.Context, userID, productID int64, interactionType string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	interactionType = strings.ToLower(strings.TrimSpace(interactionType))
	if !InteractionTypes[interactionType] {
		return fmt.Errorf("unknown interaction type %q", interactionType)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (user_id, product_id, interaction_type, interaction_timestamp) VALUES (?, ?, ?, ?)`,
		userID, productID, interactionType, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert interaction: %w", err)
	}
	return nil
}

// UpsertProducts loads catalog rows, replacing any existing row with the same
// product id.
func (s *Store) UpsertProducts(ctx context.Context, products []Product) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	if len(products) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin product upsert: %w", err)
	}
	const stmt = `INSERT OR REPLACE INTO products
                (product_id, title, description, highlights, category_1, category_2, category_3,
                 mrp, product_rating, seller_name, seller_rating, image_links)
                VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, p := range products {
		if _, err := tx.ExecContext(ctx, stmt,
			p.ProductID, p.Title, p.Description, p.Highlights, p.Category1, p.Category2, p.Category3,
			p.MRP, p.ProductRating, p.SellerName, p.SellerRating, p.ImageLinks); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert product %d: %w", p.ProductID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit product upsert: %w", err)
	}
	return nil
}

// CreateUser registers an account and returns its id. The digest is computed
// by the caller; the store only persists it.
func (s *Store) CreateUser(ctx context.Context, username, email, digest string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlite store not initialised")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return 0, errors.New("username required")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, email, password_digest) VALUES (?, ?, ?)`, username, email, digest)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("user id: %w", err)
	}
	return id, nil
}

// UserByCredentials returns the user matching the username/digest pair, or nil
// when no such account exists.
func (s *Store) UserByCredentials(ctx context.Context, username, digest string) (*User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE username = ? AND password_digest = ?`, username, digest)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// IsAuthenticated reports whether the user id maps to a registered account.
func (s *Store) IsAuthenticated(ctx context.Context, userID int64) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlite store not initialised")
	}
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE user_id = ?`, userID); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}
