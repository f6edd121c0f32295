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

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.status, p.type,
	p.view_count, p.like_count, p.is_featured, p.is_pinned, p.featured_image_id,
	p.published_at, p.user_id, p.created_at, p.updated_at`

func scanPost(row interface{ Scan(...any) error }) (model.Post, error) {
	var p model.Post
	err := row.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.Status,
		&p.Type, &p.ViewCount, &p.LikeCount, &p.IsFeatured, &p.IsPinned,
		&p.FeaturedImageID, &p.PublishedAt, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// PostFilter is the typed filter set for post list queries.
type PostFilter struct {
	Status     string
	Type       string
	Search     string
	CategoryID int64
	Featured   *bool
	Pinned     *bool
	Limit      int64
	Offset     int64
}

// where translates the filter into a WHERE clause and its arguments.
func (f PostFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Status != "" {
		conds = append(conds, "p.status = ?")
		args = append(args, f.Status)
	}
	if f.Type != "" {
		conds = append(conds, "p.type = ?")
		args = append(args, f.Type)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(p.title LIKE ? OR p.content LIKE ? OR p.excerpt LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.CategoryID != 0 {
		conds = append(conds, "p.id IN (SELECT post_id FROM post_categories WHERE category_id = ?)")
		args = append(args, f.CategoryID)
	}
	if f.Featured != nil {
		conds = append(conds, "p.is_featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Pinned != nil {
		conds = append(conds, "p.is_pinned = ?")
		args = append(args, *f.Pinned)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPosts returns posts matching the filter, pinned first, newest first.
func (q *Queries) ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error) {
	where, args := f.where()
	query := `SELECT ` + postColumns + ` FROM posts p` + where +
		` ORDER BY p.is_pinned DESC, p.published_at DESC, p.id DESC`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// CountPosts returns the number of posts matching the filter.
func (q *Queries) CountPosts(ctx context.Context, f PostFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p`+where, args...).Scan(&n)
	return n, err
}

// GetPostByID fetches a post by primary key.
func (q *Queries) GetPostByID(ctx context.Context, id int64) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.id = ?`, id)
	p, err := scanPost(row)
	return p, notFound(err)
}

// GetPostBySlug fetches a post by slug.
func (q *Queries) GetPostBySlug(ctx context.Context, slug string) (model.Post, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts p WHERE p.slug = ?`, slug)
	p, err := scanPost(row)
	return p, notFound(err)
}

// CreatePostParams holds the fields for CreatePost.
type CreatePostParams struct {
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          string
	Type            string
	IsFeatured      bool
	IsPinned        bool
	FeaturedImageID sql.NullInt64
	PublishedAt     sql.NullTime
	UserID          int64
}

// CreatePost inserts a post and returns the stored record.
func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (model.Post, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO posts (title, slug, content, excerpt, status, type, is_featured,
			is_pinned, featured_image_id, published_at, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Status, arg.Type,
		arg.IsFeatured, arg.IsPinned, arg.FeaturedImageID, arg.PublishedAt,
		arg.UserID, now, now)
	if err != nil {
		return model.Post{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, id)
}

// UpdatePostParams holds the full column set for UpdatePost.
type UpdatePostParams struct {
	ID              int64
	Title           string
	Slug            string
	Content         string
	Excerpt         string
	Status          string
	Type            string
	IsFeatured      bool
	IsPinned        bool
	FeaturedImageID sql.NullInt64
	PublishedAt     sql.NullTime
}

// UpdatePost overwrites the mutable columns of a post.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (model.Post, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET title = ?, slug = ?, content = ?, excerpt = ?, status = ?,
			type = ?, is_featured = ?, is_pinned = ?, featured_image_id = ?,
			published_at = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Slug, arg.Content, arg.Excerpt, arg.Status, arg.Type,
		arg.IsFeatured, arg.IsPinned, arg.FeaturedImageID, arg.PublishedAt,
		time.Now(), arg.ID)
	if err != nil {
		return model.Post{}, err
	}
	return q.GetPostByID(ctx, arg.ID)
}

// DeletePost removes a post. Category links cascade.
func (q *Queries) DeletePost(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementPostViews bumps the view counter.
func (q *Queries) IncrementPostViews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE id = ?`, id)
	return err
}

// IncrementPostLikes bumps the like counter.
func (q *Queries) IncrementPostLikes(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET like_count = like_count + 1 WHERE id = ?`, id)
	return err
}

// ListScheduledPosts returns draft posts whose publish time has arrived.
func (q *Queries) ListScheduledPosts(ctx context.Context, now time.Time) ([]model.Post, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+postColumns+` FROM posts p
		 WHERE p.status = ? AND p.published_at IS NOT NULL AND p.published_at <= ?`,
		model.PostStatusDraft, now)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// PublishPost transitions a post to published status.
func (q *Queries) PublishPost(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE posts SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		model.PostStatusPublished, id)
	return err
}

// GetPostAuthor returns the owning user of a post.
func (q *Queries) GetPostAuthor(ctx context.Context, postID int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id = (SELECT user_id FROM posts WHERE id = ?)`, postID)
	u, err := scanUser(row)
	return u, notFound(err)
}

// Categories

// CreateCategory inserts a taxonomy term.
func (q *Queries) CreateCategory(ctx context.Context, name, slug string) (model.Category, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO categories (name, slug, created_at) VALUES (?, ?, ?)`,
		name, slug, time.Now())
	if err != nil {
		return model.Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Category{}, err
	}
	return q.GetCategoryByID(ctx, id)
}

// GetCategoryByID fetches a category by primary key.
func (q *Queries) GetCategoryByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := q.db.QueryRowContext(ctx,
		`SELECT id, name, slug, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, notFound(err)
}

// ListCategories returns all categories ordered by name.
func (q *Queries) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// AddPostCategory links a post to a category. Fails on unknown category id.
func (q *Queries) AddPostCategory(ctx context.Context, postID, categoryID int64) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`,
		postID, categoryID)
	return err
}

// ClearPostCategories unlinks all categories from a post.
func (q *Queries) ClearPostCategories(ctx context.Context, postID int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM post_categories WHERE post_id = ?`, postID)
	return err
}

// GetCategoriesForPost returns the categories linked to a post.
func (q *Queries) GetCategoriesForPost(ctx context.Context, postID int64) ([]model.Category, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.slug, c.created_at
		 FROM categories c
		 JOIN post_categories pc ON pc.category_id = c.id
		 WHERE pc.post_id = ?
		 ORDER BY c.name`, postID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
