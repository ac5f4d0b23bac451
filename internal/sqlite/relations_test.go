// File path: internal/sqlite/relations_test.go
package sqlite

import (
	"context"
	"errors"
	"testing"
)

func TestCreateRelationAsReplaces(t *testing.T) {
	store := openTestStore(t)
	seedProducts(t, store)
	ctx := context.Background()

	if err := store.CreateRelationAs(ctx, "staging_u7", `SELECT * FROM products WHERE category_1 = ?`, "footwear"); err != nil {
		t.Fatalf("create relation: %v", err)
	}
	records, err := store.QueryRelation(ctx, `SELECT * FROM staging_u7`)
	if err != nil {
		t.Fatalf("query relation: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(records))
	}

	// Replacement swaps the contents, never appends.
	if err := store.CreateRelationAs(ctx, "staging_u7", `SELECT * FROM products WHERE category_1 = ?`, "accessories"); err != nil {
		t.Fatalf("replace relation: %v", err)
	}
	records, err = store.QueryRelation(ctx, `SELECT * FROM staging_u7`)
	if err != nil {
		t.Fatalf("query replaced relation: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 row after replace, got %d", len(records))
	}
}

func TestWriteRecordsOverwriteAndAppend(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	columns := []string{"product_id", "title", "mrp"}

	rows := [][]interface{}{
		{int64(1), "first", 10.0},
		{int64(2), "second", nil},
	}
	if err := store.WriteRecords(ctx, "batch_u7", columns, rows, true); err != nil {
		t.Fatalf("write records: %v", err)
	}
	if err := store.WriteRecords(ctx, "batch_u7", columns, [][]interface{}{{int64(3), "third", 30.0}}, false); err != nil {
		t.Fatalf("append records: %v", err)
	}
	records, err := store.QueryRelation(ctx, `SELECT * FROM batch_u7 ORDER BY product_id`)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(records))
	}
	if records[1]["mrp"] != nil {
		t.Errorf("expected nil mrp, got %v", records[1]["mrp"])
	}

	// Overwrite recreates the relation from scratch.
	if err := store.WriteRecords(ctx, "batch_u7", columns, [][]interface{}{{int64(9), "only", 1.0}}, true); err != nil {
		t.Fatalf("overwrite records: %v", err)
	}
	records, err = store.QueryRelation(ctx, `SELECT * FROM batch_u7`)
	if err != nil {
		t.Fatalf("query overwritten: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 row after overwrite, got %d", len(records))
	}
}

func TestWriteRecordsRowWidthMismatch(t *testing.T) {
	store := openTestStore(t)
	err := store.WriteRecords(context.Background(), "bad_rows", []string{"a", "b"}, [][]interface{}{{1}}, true)
	if err == nil {
		t.Fatal("expected error for mismatched row width")
	}
}

func TestDropRelationIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.DropRelation(ctx, "never_created"); err != nil {
		t.Fatalf("drop missing relation: %v", err)
	}
	if err := store.WriteRecords(ctx, "short_lived", []string{"a"}, [][]interface{}{{1}}, true); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := store.DropRelation(ctx, "short_lived"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := store.DropRelation(ctx, "short_lived"); err != nil {
		t.Fatalf("second drop: %v", err)
	}
}

func TestIdentifierValidation(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	bad := []string{"", "1table", "drop table;--", "users; DROP TABLE users", "a-b", "a b"}
	for _, name := range bad {
		if err := store.DropRelation(ctx, name); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("DropRelation(%q): expected ErrInvalidIdentifier, got %v", name, err)
		}
		if err := store.CreateRelationAs(ctx, name, `SELECT 1`); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("CreateRelationAs(%q): expected ErrInvalidIdentifier, got %v", name, err)
		}
	}
	if err := store.WriteRecords(ctx, "tbl", []string{"ok", "not ok"}, nil, true); !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("expected column validation error, got %v", err)
	}
}
