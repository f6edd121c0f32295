// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/scms-go/internal/model"
)

const mediaColumns = `id, uuid, filename, mime_type, size, width, height, alt,
	user_id, created_at, updated_at`

func scanMedia(row interface{ Scan(...any) error }) (model.Media, error) {
	var m model.Media
	err := row.Scan(&m.ID, &m.UUID, &m.Filename, &m.MimeType, &m.Size,
		&m.Width, &m.Height, &m.Alt, &m.UserID, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// MediaFilter is the typed filter set for media list queries.
type MediaFilter struct {
	MimeType string
	Search   string
	Limit    int64
	Offset   int64
}

func (f MediaFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.MimeType != "" {
		conds = append(conds, "mime_type = ?")
		args = append(args, f.MimeType)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(filename LIKE ? OR alt LIKE ?)")
		args = append(args, like, like)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListMedia returns media records, newest first.
func (q *Queries) ListMedia(ctx context.Context, f MediaFilter) ([]model.Media, error) {
	where, args := f.where()
	query := `SELECT ` + mediaColumns + ` FROM media` + where +
		` ORDER BY created_at DESC, id DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

// CountMedia returns the number of media records matching the filter.
func (q *Queries) CountMedia(ctx context.Context, f MediaFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM media`+where, args...).Scan(&n)
	return n, err
}

// GetMediaByID fetches a media record by primary key.
func (q *Queries) GetMediaByID(ctx context.Context, id int64) (model.Media, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE id = ?`, id)
	m, err := scanMedia(row)
	return m, notFound(err)
}

// GetMediaByUUID fetches a media record by its public UUID.
func (q *Queries) GetMediaByUUID(ctx context.Context, uuid string) (model.Media, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+mediaColumns+` FROM media WHERE uuid = ?`, uuid)
	m, err := scanMedia(row)
	return m, notFound(err)
}

// CreateMediaParams holds the fields for CreateMedia.
type CreateMediaParams struct {
	UUID     string
	Filename string
	MimeType string
	Size     int64
	Width    sql.NullInt64
	Height   sql.NullInt64
	Alt      string
	UserID   int64
}

// CreateMedia inserts a media record and returns the stored record.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (model.Media, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO media (uuid, filename, mime_type, size, width, height, alt,
			user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.UUID, arg.Filename, arg.MimeType, arg.Size, arg.Width, arg.Height,
		arg.Alt, arg.UserID, now, now)
	if err != nil {
		return model.Media{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Media{}, err
	}
	return q.GetMediaByID(ctx, id)
}

// UpdateMediaAlt sets the alt text on a media record and returns the
// updated record.
func (q *Queries) UpdateMediaAlt(ctx context.Context, id int64, alt string) (model.Media, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE media SET alt = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		alt, id)
	if err != nil {
		return model.Media{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.Media{}, ErrNotFound
	}
	return q.GetMediaByID(ctx, id)
}

// DeleteMedia removes a media record. References are set NULL or cascade.
func (q *Queries) DeleteMedia(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM media WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
