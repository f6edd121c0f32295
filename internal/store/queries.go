// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so queries can run
// inside or outside a transaction.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds all repository methods for the school CMS entities.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database or transaction.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of Queries bound to the given transaction.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// flagColumns whitelists the boolean columns that toggle operations may flip.
var flagColumns = map[string]map[string]bool{
	"posts":         {"is_featured": true, "is_pinned": true},
	"announcements": {"is_active": true, "is_pinned": true},
	"staff":         {"is_active": true, "is_featured": true},
	"facilities":    {"is_active": true, "is_featured": true, "is_bookable": true},
	"extras":        {"is_active": true, "is_featured": true},
	"galleries":     {"is_active": true},
	"sliders":       {"is_active": true},
}

// ToggleFlag flips a single whitelisted boolean column and returns the new value.
func (q *Queries) ToggleFlag(ctx context.Context, table, column string, id int64) (bool, error) {
	cols, ok := flagColumns[table]
	if !ok || !cols[column] {
		return false, fmt.Errorf("flag %s.%s is not toggleable", table, column)
	}

	// #nosec G201 -- table and column are validated against the whitelist above
	query := fmt.Sprintf(
		"UPDATE %s SET %s = NOT %s, updated_at = CURRENT_TIMESTAMP WHERE id = ?", table, column, column)
	res, err := q.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, ErrNotFound
	}

	var value bool
	// #nosec G201 -- see above
	err = q.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", column, table), id).Scan(&value)
	return value, err
}

// SlugExists reports whether a slug is taken in the given whitelisted table.
func (q *Queries) SlugExists(ctx context.Context, table, slug string) (bool, error) {
	if _, ok := flagColumns[table]; !ok && table != "categories" {
		return false, fmt.Errorf("slugs not supported for table %s", table)
	}

	var n int64
	// #nosec G201 -- table is validated against the whitelist above
	err := q.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE slug = ?", table), slug).Scan(&n)
	return n > 0, err
}

// encodeStringList marshals a string slice to its JSON column representation.
func encodeStringList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeStringList unmarshals a JSON column into a string slice.
func decodeStringList(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
