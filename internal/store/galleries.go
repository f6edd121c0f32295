// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"strings"
	"time"

	"github.com/olegiv/scms-go/internal/model"
)

const galleryColumns = `g.id, g.title, g.slug, g.description, g.is_active,
	g.user_id, g.created_at, g.updated_at`

func scanGallery(row interface{ Scan(...any) error }) (model.Gallery, error) {
	var g model.Gallery
	err := row.Scan(&g.ID, &g.Title, &g.Slug, &g.Description, &g.IsActive,
		&g.UserID, &g.CreatedAt, &g.UpdatedAt)
	return g, err
}

// GalleryFilter is the typed filter set for gallery list queries.
type GalleryFilter struct {
	Search string
	Active *bool
	Limit  int64
	Offset int64
}

func (f GalleryFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(g.title LIKE ? OR g.description LIKE ?)")
		args = append(args, like, like)
	}
	if f.Active != nil {
		conds = append(conds, "g.is_active = ?")
		args = append(args, *f.Active)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListGalleries returns galleries, newest first.
func (q *Queries) ListGalleries(ctx context.Context, f GalleryFilter) ([]model.Gallery, error) {
	where, args := f.where()
	query := `SELECT ` + galleryColumns + ` FROM galleries g` + where +
		` ORDER BY g.created_at DESC, g.id DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

// CountGalleries returns the number of galleries matching the filter.
func (q *Queries) CountGalleries(ctx context.Context, f GalleryFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM galleries g`+where, args...).Scan(&n)
	return n, err
}

// GetGalleryByID fetches a gallery by primary key.
func (q *Queries) GetGalleryByID(ctx context.Context, id int64) (model.Gallery, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+galleryColumns+` FROM galleries g WHERE g.id = ?`, id)
	g, err := scanGallery(row)
	return g, notFound(err)
}

// GetGalleryBySlug fetches a gallery by slug.
func (q *Queries) GetGalleryBySlug(ctx context.Context, slug string) (model.Gallery, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+galleryColumns+` FROM galleries g WHERE g.slug = ?`, slug)
	g, err := scanGallery(row)
	return g, notFound(err)
}

// CreateGalleryParams holds the fields for CreateGallery.
type CreateGalleryParams struct {
	Title       string
	Slug        string
	Description string
	IsActive    bool
	UserID      int64
}

// CreateGallery inserts a gallery and returns the stored record.
func (q *Queries) CreateGallery(ctx context.Context, arg CreateGalleryParams) (model.Gallery, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO galleries (title, slug, description, is_active, user_id,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Description, arg.IsActive, arg.UserID, now, now)
	if err != nil {
		return model.Gallery{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Gallery{}, err
	}
	return q.GetGalleryByID(ctx, id)
}

// UpdateGalleryParams holds the full column set for UpdateGallery.
type UpdateGalleryParams struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	IsActive    bool
}

// UpdateGallery overwrites the mutable columns of a gallery.
func (q *Queries) UpdateGallery(ctx context.Context, arg UpdateGalleryParams) (model.Gallery, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE galleries SET title = ?, slug = ?, description = ?, is_active = ?,
			updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Slug, arg.Description, arg.IsActive, time.Now(), arg.ID)
	if err != nil {
		return model.Gallery{}, err
	}
	return q.GetGalleryByID(ctx, arg.ID)
}

// DeleteGallery removes a gallery. Items cascade.
func (q *Queries) DeleteGallery(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM galleries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Gallery items

// AddGalleryItemParams holds the fields for AddGalleryItem.
type AddGalleryItemParams struct {
	GalleryID int64
	MediaID   int64
	Caption   string
	Position  int64
}

// AddGalleryItem appends a media item to a gallery.
func (q *Queries) AddGalleryItem(ctx context.Context, arg AddGalleryItemParams) (model.GalleryItem, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO gallery_items (gallery_id, media_id, caption, position, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		arg.GalleryID, arg.MediaID, arg.Caption, arg.Position, now)
	if err != nil {
		return model.GalleryItem{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.GalleryItem{}, err
	}
	return model.GalleryItem{
		ID:        id,
		GalleryID: arg.GalleryID,
		MediaID:   arg.MediaID,
		Caption:   arg.Caption,
		Position:  arg.Position,
		CreatedAt: now,
	}, nil
}

// ListGalleryItems returns the items of a gallery with their media, in order.
func (q *Queries) ListGalleryItems(ctx context.Context, galleryID int64) ([]model.GalleryItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT i.id, i.gallery_id, i.media_id, i.caption, i.position, i.created_at,
			m.id, m.uuid, m.filename, m.mime_type, m.size, m.width, m.height,
			m.alt, m.user_id, m.created_at, m.updated_at
		 FROM gallery_items i
		 JOIN media m ON m.id = i.media_id
		 WHERE i.gallery_id = ?
		 ORDER BY i.position, i.id`, galleryID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.GalleryItem
	for rows.Next() {
		var it model.GalleryItem
		var m model.Media
		if err := rows.Scan(&it.ID, &it.GalleryID, &it.MediaID, &it.Caption,
			&it.Position, &it.CreatedAt, &m.ID, &m.UUID, &m.Filename,
			&m.MimeType, &m.Size, &m.Width, &m.Height, &m.Alt, &m.UserID,
			&m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		it.Media = &m
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateGalleryItemPosition sets the order of a single gallery item.
func (q *Queries) UpdateGalleryItemPosition(ctx context.Context, id, position int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_items SET position = ? WHERE id = ?`, position, id)
	return err
}

// UpdateGalleryItemCaption sets the caption of a single gallery item.
func (q *Queries) UpdateGalleryItemCaption(ctx context.Context, id int64, caption string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE gallery_items SET caption = ? WHERE id = ?`, caption, id)
	return err
}

// RemoveGalleryItem deletes an item from a gallery.
func (q *Queries) RemoveGalleryItem(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM gallery_items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// MaxGalleryItemPosition returns the highest position in a gallery, 0 if empty.
func (q *Queries) MaxGalleryItemPosition(ctx context.Context, galleryID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM gallery_items WHERE gallery_id = ?`,
		galleryID).Scan(&n)
	return n, err
}
