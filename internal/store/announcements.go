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

const announcementColumns = `a.id, a.title, a.slug, a.content, a.type, a.priority,
	a.is_pinned, a.is_active, a.published_at, a.expires_at, a.category_id,
	a.user_id, a.created_at, a.updated_at`

func scanAnnouncement(row interface{ Scan(...any) error }) (model.Announcement, error) {
	var a model.Announcement
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Type, &a.Priority,
		&a.IsPinned, &a.IsActive, &a.PublishedAt, &a.ExpiresAt, &a.CategoryID,
		&a.UserID, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// AnnouncementFilter is the typed filter set for announcement list queries.
type AnnouncementFilter struct {
	Type     string
	Priority string
	Search   string
	Active   *bool
	Pinned   *bool
	Limit    int64
	Offset   int64
}

func (f AnnouncementFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "a.type = ?")
		args = append(args, f.Type)
	}
	if f.Priority != "" {
		conds = append(conds, "a.priority = ?")
		args = append(args, f.Priority)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(a.title LIKE ? OR a.content LIKE ?)")
		args = append(args, like, like)
	}
	if f.Active != nil {
		conds = append(conds, "a.is_active = ?")
		args = append(args, *f.Active)
	}
	if f.Pinned != nil {
		conds = append(conds, "a.is_pinned = ?")
		args = append(args, *f.Pinned)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListAnnouncements returns announcements, pinned first, newest first.
func (q *Queries) ListAnnouncements(ctx context.Context, f AnnouncementFilter) ([]model.Announcement, error) {
	where, args := f.where()
	query := `SELECT ` + announcementColumns + ` FROM announcements a` + where +
		` ORDER BY a.is_pinned DESC, a.published_at DESC, a.id DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// CountAnnouncements returns the number of announcements matching the filter.
func (q *Queries) CountAnnouncements(ctx context.Context, f AnnouncementFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM announcements a`+where, args...).Scan(&n)
	return n, err
}

// GetAnnouncementByID fetches an announcement by primary key.
func (q *Queries) GetAnnouncementByID(ctx context.Context, id int64) (model.Announcement, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements a WHERE a.id = ?`, id)
	a, err := scanAnnouncement(row)
	return a, notFound(err)
}

// GetAnnouncementBySlug fetches an announcement by slug.
func (q *Queries) GetAnnouncementBySlug(ctx context.Context, slug string) (model.Announcement, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements a WHERE a.slug = ?`, slug)
	a, err := scanAnnouncement(row)
	return a, notFound(err)
}

// CreateAnnouncementParams holds the fields for CreateAnnouncement.
type CreateAnnouncementParams struct {
	Title       string
	Slug        string
	Content     string
	Type        string
	Priority    string
	IsPinned    bool
	IsActive    bool
	PublishedAt time.Time
	ExpiresAt   sql.NullTime
	CategoryID  sql.NullInt64
	UserID      int64
}

// CreateAnnouncement inserts an announcement and returns the stored record.
func (q *Queries) CreateAnnouncement(ctx context.Context, arg CreateAnnouncementParams) (model.Announcement, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO announcements (title, slug, content, type, priority, is_pinned,
			is_active, published_at, expires_at, category_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Content, arg.Type, arg.Priority, arg.IsPinned,
		arg.IsActive, arg.PublishedAt, arg.ExpiresAt, arg.CategoryID,
		arg.UserID, now, now)
	if err != nil {
		return model.Announcement{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Announcement{}, err
	}
	return q.GetAnnouncementByID(ctx, id)
}

// UpdateAnnouncementParams holds the full column set for UpdateAnnouncement.
type UpdateAnnouncementParams struct {
	ID          int64
	Title       string
	Slug        string
	Content     string
	Type        string
	Priority    string
	IsPinned    bool
	IsActive    bool
	PublishedAt time.Time
	ExpiresAt   sql.NullTime
	CategoryID  sql.NullInt64
}

// UpdateAnnouncement overwrites the mutable columns of an announcement.
func (q *Queries) UpdateAnnouncement(ctx context.Context, arg UpdateAnnouncementParams) (model.Announcement, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE announcements SET title = ?, slug = ?, content = ?, type = ?,
			priority = ?, is_pinned = ?, is_active = ?, published_at = ?,
			expires_at = ?, category_id = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Type, arg.Priority, arg.IsPinned,
		arg.IsActive, arg.PublishedAt, arg.ExpiresAt, arg.CategoryID,
		time.Now(), arg.ID)
	if err != nil {
		return model.Announcement{}, err
	}
	return q.GetAnnouncementByID(ctx, arg.ID)
}

// DeleteAnnouncement removes an announcement.
func (q *Queries) DeleteAnnouncement(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateExpiredAnnouncements clears the active flag on announcements past
// their expiry. Returns the number of rows affected.
func (q *Queries) DeactivateExpiredAnnouncements(ctx context.Context, now time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`UPDATE announcements SET is_active = 0, updated_at = CURRENT_TIMESTAMP
		 WHERE is_active = 1 AND expires_at IS NOT NULL AND expires_at < ?`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetAnnouncementAuthor returns the owning user of an announcement.
func (q *Queries) GetAnnouncementAuthor(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id = (SELECT user_id FROM announcements WHERE id = ?)`, id)
	u, err := scanUser(row)
	return u, notFound(err)
}
