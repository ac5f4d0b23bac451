// File path: internal/sqlite/relations.go
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier is returned when a relation or column name contains
// characters outside [A-Za-z0-9_]. Staging relation names are derived from
// caller-supplied scope ids, so they are validated before interpolation.
var ErrInvalidIdentifier = fmt.Errorf("invalid relation identifier")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to use as a relation or column
// identifier.
func ValidIdentifier(name string) bool {
	return identPattern.MatchString(name)
}

func checkIdentifier(name string) error {
	if !ValidIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, name)
	}
	return nil
}

// CreateRelationAs materializes the result of a SELECT into the named
// relation with create-or-replace semantics. The replacement happens inside a
// transaction so concurrent readers never observe a half-written relation.
func (s *Store) CreateRelationAs(ctx context.Context, name, query string, args ...interface{}) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	if err := checkIdentifier(name); err != nil {
		return err
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin create relation: %w", err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
		tx.Rollback()
		return fmt.Errorf("drop relation %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE %s AS %s`, name, query), args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("create relation %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create relation %s: %w", name, err)
	}
	return nil
}

// DropRelation removes the named relation if it exists.
func (s *Store) DropRelation(ctx context.Context, name string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	if err := checkIdentifier(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
		return fmt.Errorf("drop relation %s: %w", name, err)
	}
	return nil
}

// WriteRecords persists a record batch into the named relation. With
// overwrite set the relation is recreated from the batch's columns; without it
// rows are appended to an existing relation.
func (s *Store) WriteRecords(ctx context.Context, name string, columns []string, rows [][]interface{}, overwrite bool) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlite store not initialised")
	}
	if err := checkIdentifier(name); err != nil {
		return err
	}
	if len(columns) == 0 {
		return fmt.Errorf("write records to %s: no columns", name)
	}
	for _, col := range columns {
		if err := checkIdentifier(col); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin write records: %w", err)
	}
	if overwrite {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, name)); err != nil {
			tx.Rollback()
			return fmt.Errorf("drop relation %s: %w", name, err)
		}
		// Staging relations carry mixed feed data; columns stay untyped and
		// rely on SQLite's flexible affinity, as the upstream feeds do.
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`CREATE TABLE %s (%s)`, name, strings.Join(columns, ", "))); err != nil {
			tx.Rollback()
			return fmt.Errorf("create relation %s: %w", name, err)
		}
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, name, strings.Join(columns, ", "), placeholders)
	for i, row := range rows {
		if len(row) != len(columns) {
			tx.Rollback()
			return fmt.Errorf("write records to %s: row %d has %d values, want %d", name, i, len(row), len(columns))
		}
		if _, err := tx.ExecContext(ctx, insert, row...); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert into %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit write records %s: %w", name, err)
	}
	return nil
}

// QueryRelation runs a declarative query and returns generic rows. Byte
// slices are normalized to strings so callers see plain scalar values.
func (s *Store) QueryRelation(ctx context.Context, query string, args ...interface{}) ([]map[string]interface{}, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlite store not initialised")
	}
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query relation: %w", err)
	}
	defer rows.Close()
	var out []map[string]interface{}
	for rows.Next() {
		record := map[string]interface{}{}
		if err := rows.MapScan(record); err != nil {
			return nil, fmt.Errorf("scan relation row: %w", err)
		}
		for key, value := range record {
			if raw, ok := value.([]byte); ok {
				record[key] = string(raw)
			}
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate relation rows: %w", err)
	}
	return out, nil
}
