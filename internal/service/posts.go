// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/util"
)

// PostInput carries the fields accepted when creating or updating a post.
type PostInput struct {
	Title           string
	Slug            string
	Content         string
	ContentMarkdown bool
	Excerpt         string
	Status          string
	Type            string
	IsFeatured      bool
	IsPinned        bool
	FeaturedImageID *int64
	PublishedAt     *time.Time
	CategoryIDs     []int64
}

// PostList is the cached shape of a post list query.
type PostList struct {
	Posts []model.Post `json:"posts"`
	Total int64        `json:"total"`
}

// PostService implements post business rules: transactional writes with
// category links, content sanitizing and a read-through list cache.
type PostService struct {
	db        *sql.DB
	queries   *store.Queries
	cache     *cache.Manager
	lists     *cache.TypedCache[PostList]
	details   *cache.TypedCache[model.Post]
	sanitizer *bluemonday.Policy
	markdown  goldmark.Markdown
	logger    *slog.Logger
	hooks     Hooks[model.Post]
}

// NewPostService creates a post service over the given database and cache.
func NewPostService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *PostService {
	return &PostService{
		db:        db,
		queries:   store.New(db),
		cache:     cm,
		lists:     cache.NewTypedCache[PostList](cm.Backend(), cache.TTLPostList),
		details:   cache.NewTypedCache[model.Post](cm.Backend(), cache.TTLPostDetail),
		sanitizer: bluemonday.UGCPolicy(),
		markdown:  goldmark.New(),
		logger:    logger,
	}
}

// WithHooks returns a copy of the service with the given hooks installed.
func (s *PostService) WithHooks(hooks Hooks[model.Post]) *PostService {
	clone := *s
	clone.hooks = hooks
	return &clone
}

// renderContent optionally renders markdown, then sanitizes the HTML.
func (s *PostService) renderContent(input PostInput) (string, error) {
	content := input.Content
	if input.ContentMarkdown {
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(content), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		content = buf.String()
	}
	return s.sanitizer.Sanitize(content), nil
}

func (s *PostService) validate(input PostInput) error {
	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = "is required"
	}
	if input.Status != "" && !model.ValidPostStatus(input.Status) {
		fields["status"] = "must be draft, published or archived"
	}
	if input.Type != "" && !model.ValidPostType(input.Type) {
		fields["type"] = "must be news, event or article"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Create inserts a post, its media attachment check and category links in
// one transaction, then invalidates the list cache.
func (s *PostService) Create(ctx context.Context, input PostInput, userID int64) (model.Post, error) {
	if err := s.validate(input); err != nil {
		return model.Post{}, err
	}

	content, err := s.renderContent(input)
	if err != nil {
		return model.Post{}, err
	}

	status := input.Status
	if status == "" {
		status = model.PostStatusDraft
	}
	postType := input.Type
	if postType == "" {
		postType = model.PostTypeNews
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Post{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	slug, err := ResolveSlug(ctx, qtx, "posts", input.Slug, "", input.Title)
	if err != nil {
		return model.Post{}, err
	}

	if input.FeaturedImageID != nil {
		if _, err := qtx.GetMediaByID(ctx, *input.FeaturedImageID); err != nil {
			return model.Post{}, fmt.Errorf("featured image: %w", err)
		}
	}

	publishedAt := util.NullTimeFromPtr(input.PublishedAt)
	if status == model.PostStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	// The pre-create hook sees the row exactly as it will be inserted and
	// may still mutate it.
	draft := model.Post{
		Title:           input.Title,
		Slug:            slug,
		Content:         content,
		Excerpt:         input.Excerpt,
		Status:          status,
		Type:            postType,
		IsFeatured:      input.IsFeatured,
		IsPinned:        input.IsPinned,
		FeaturedImageID: util.NullInt64FromPtr(input.FeaturedImageID),
		PublishedAt:     publishedAt,
		UserID:          userID,
	}
	if err := s.hooks.runBeforeCreate(ctx, &draft); err != nil {
		return model.Post{}, err
	}

	post, err := qtx.CreatePost(ctx, store.CreatePostParams{
		Title:           draft.Title,
		Slug:            draft.Slug,
		Content:         draft.Content,
		Excerpt:         draft.Excerpt,
		Status:          draft.Status,
		Type:            draft.Type,
		IsFeatured:      draft.IsFeatured,
		IsPinned:        draft.IsPinned,
		FeaturedImageID: draft.FeaturedImageID,
		PublishedAt:     draft.PublishedAt,
		UserID:          draft.UserID,
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("creating post: %w", err)
	}

	for _, catID := range input.CategoryIDs {
		if err := qtx.AddPostCategory(ctx, post.ID, catID); err != nil {
			return model.Post{}, fmt.Errorf("linking category %d: %w", catID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Post{}, fmt.Errorf("committing post: %w", err)
	}

	s.cache.InvalidatePosts(ctx)
	if err := s.hooks.runAfterCreate(ctx, &post); err != nil {
		s.logger.Warn("post after-create hook failed", "post_id", post.ID, "error", err)
	}
	s.logger.Info("post created", "post_id", post.ID, "slug", post.Slug, "user_id", userID)

	return s.withCategories(ctx, post)
}

// Update rewrites a post and its category links in one transaction, then
// invalidates the post's keys and the list cache.
func (s *PostService) Update(ctx context.Context, id int64, input PostInput) (model.Post, error) {
	if err := s.validate(input); err != nil {
		return model.Post{}, err
	}

	content, err := s.renderContent(input)
	if err != nil {
		return model.Post{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Post{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	current, err := qtx.GetPostByID(ctx, id)
	if err != nil {
		return model.Post{}, err
	}

	if err := s.hooks.runBeforeUpdate(ctx, &current); err != nil {
		return model.Post{}, err
	}

	slug, err := ResolveSlug(ctx, qtx, "posts", input.Slug, current.Slug, input.Title)
	if err != nil {
		return model.Post{}, err
	}

	if input.FeaturedImageID != nil {
		if _, err := qtx.GetMediaByID(ctx, *input.FeaturedImageID); err != nil {
			return model.Post{}, fmt.Errorf("featured image: %w", err)
		}
	}

	status := input.Status
	if status == "" {
		status = current.Status
	}
	postType := input.Type
	if postType == "" {
		postType = current.Type
	}

	publishedAt := util.NullTimeFromPtr(input.PublishedAt)
	if !publishedAt.Valid {
		publishedAt = current.PublishedAt
	}
	if status == model.PostStatusPublished && !publishedAt.Valid {
		publishedAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	post, err := qtx.UpdatePost(ctx, store.UpdatePostParams{
		ID:              id,
		Title:           input.Title,
		Slug:            slug,
		Content:         content,
		Excerpt:         input.Excerpt,
		Status:          status,
		Type:            postType,
		IsFeatured:      input.IsFeatured,
		IsPinned:        input.IsPinned,
		FeaturedImageID: util.NullInt64FromPtr(input.FeaturedImageID),
		PublishedAt:     publishedAt,
	})
	if err != nil {
		return model.Post{}, fmt.Errorf("updating post: %w", err)
	}

	if input.CategoryIDs != nil {
		if err := qtx.ClearPostCategories(ctx, id); err != nil {
			return model.Post{}, fmt.Errorf("clearing categories: %w", err)
		}
		for _, catID := range input.CategoryIDs {
			if err := qtx.AddPostCategory(ctx, id, catID); err != nil {
				return model.Post{}, fmt.Errorf("linking category %d: %w", catID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return model.Post{}, fmt.Errorf("committing post update: %w", err)
	}

	s.invalidatePost(ctx, current)
	if err := s.hooks.runAfterUpdate(ctx, &post); err != nil {
		s.logger.Warn("post after-update hook failed", "post_id", post.ID, "error", err)
	}
	s.logger.Info("post updated", "post_id", post.ID, "slug", post.Slug)

	return s.withCategories(ctx, post)
}

// Delete removes a post. Category links cascade in the schema.
func (s *PostService) Delete(ctx context.Context, id int64) error {
	post, err := s.queries.GetPostByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.queries.DeletePost(ctx, id); err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	s.invalidatePost(ctx, post)
	s.logger.Info("post deleted", "post_id", id, "slug", post.Slug)
	return nil
}

// invalidatePost drops the post's own keys and the named list key set.
func (s *PostService) invalidatePost(ctx context.Context, post model.Post) {
	_ = s.details.Delete(ctx, cache.KeyPost(post.ID))
	_ = s.details.Delete(ctx, cache.KeyPostSlug(post.Slug))
	s.cache.InvalidatePosts(ctx)
}

// listKey derives a stable cache key from the filter. The plain published
// list and the featured list map onto the named key set so invalidation
// can target them directly.
func listKey(f store.PostFilter, page int64) string {
	plain := f.Status == model.PostStatusPublished && f.Type == "" &&
		f.Search == "" && f.CategoryID == 0 && f.Pinned == nil
	if plain && f.Featured == nil {
		return cache.KeyPostsPage(page)
	}
	if plain && f.Featured != nil && *f.Featured {
		return cache.KeyPostsFeatured
	}

	h := fnv.New64a()
	featured, pinned := "-", "-"
	if f.Featured != nil {
		featured = fmt.Sprint(*f.Featured)
	}
	if f.Pinned != nil {
		pinned = fmt.Sprint(*f.Pinned)
	}
	_, _ = fmt.Fprintf(h, "%s|%s|%s|%d|%s|%s|%d|%d",
		f.Status, f.Type, f.Search, f.CategoryID, featured, pinned, f.Limit, f.Offset)
	return fmt.Sprintf("%slist:q:%x", cache.PrefixPosts, h.Sum64())
}

// List returns a page of posts through the read-through cache.
func (s *PostService) List(ctx context.Context, f store.PostFilter) (*PostList, error) {
	page := int64(1)
	if f.Limit > 0 {
		page = f.Offset/f.Limit + 1
	}

	return s.lists.GetOrSet(ctx, listKey(f, page), func() (*PostList, error) {
		posts, err := s.queries.ListPosts(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("listing posts: %w", err)
		}
		total, err := s.queries.CountPosts(ctx, f)
		if err != nil {
			return nil, fmt.Errorf("counting posts: %w", err)
		}
		return &PostList{Posts: posts, Total: total}, nil
	})
}

// Latest returns the newest published posts through the named latest key.
func (s *PostService) Latest(ctx context.Context, limit int64) ([]model.Post, error) {
	list, err := s.lists.GetOrSet(ctx, cache.KeyPostsLatest, func() (*PostList, error) {
		posts, err := s.queries.ListPosts(ctx, store.PostFilter{
			Status: model.PostStatusPublished,
			Limit:  limit,
		})
		if err != nil {
			return nil, err
		}
		return &PostList{Posts: posts, Total: int64(len(posts))}, nil
	})
	if err != nil {
		return nil, err
	}
	return list.Posts, nil
}

// Get fetches a post by id with author and categories, cached.
func (s *PostService) Get(ctx context.Context, id int64) (model.Post, error) {
	post, err := s.details.GetOrSet(ctx, cache.KeyPost(id), func() (*model.Post, error) {
		p, err := s.queries.GetPostByID(ctx, id)
		if err != nil {
			return nil, err
		}
		p, err = s.withCategories(ctx, p)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return model.Post{}, err
	}
	return *post, nil
}

// GetBySlug fetches a post by slug with author and categories, cached.
// A miss surfaces store.ErrNotFound for the handler's 404 mapping.
func (s *PostService) GetBySlug(ctx context.Context, slug string) (model.Post, error) {
	post, err := s.details.GetOrSet(ctx, cache.KeyPostSlug(slug), func() (*model.Post, error) {
		p, err := s.queries.GetPostBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		p, err = s.withCategories(ctx, p)
		if err != nil {
			return nil, err
		}
		return &p, nil
	})
	if err != nil {
		return model.Post{}, err
	}
	return *post, nil
}

// RecordView bumps the view counter without touching the cache; counters
// are allowed to lag cached copies.
func (s *PostService) RecordView(ctx context.Context, id int64) error {
	return s.queries.IncrementPostViews(ctx, id)
}

// Like bumps the like counter.
func (s *PostService) Like(ctx context.Context, id int64) error {
	return s.queries.IncrementPostLikes(ctx, id)
}

// Toggle flips one whitelisted boolean flag and invalidates the list cache.
func (s *PostService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "posts", column, id)
	if err != nil {
		return false, err
	}
	post, err := s.queries.GetPostByID(ctx, id)
	if err == nil {
		s.invalidatePost(ctx, post)
	}
	return value, nil
}

// Categories returns all categories.
func (s *PostService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.queries.ListCategories(ctx)
}

// CreateCategory adds a taxonomy term with a derived slug.
func (s *PostService) CreateCategory(ctx context.Context, name string) (model.Category, error) {
	if name == "" {
		return model.Category{}, NewValidationError("name", "is required")
	}
	slug, err := EnsureUniqueSlug(ctx, s.queries, "categories", name)
	if err != nil {
		return model.Category{}, err
	}
	cat, err := s.queries.CreateCategory(ctx, name, slug)
	if err != nil {
		return model.Category{}, fmt.Errorf("creating category: %w", err)
	}
	return cat, nil
}

// withCategories loads the author and category links onto a post.
func (s *PostService) withCategories(ctx context.Context, post model.Post) (model.Post, error) {
	cats, err := s.queries.GetCategoriesForPost(ctx, post.ID)
	if err != nil {
		return post, fmt.Errorf("loading categories: %w", err)
	}
	post.Categories = cats

	author, err := s.queries.GetPostAuthor(ctx, post.ID)
	if err == nil {
		author.PasswordHash = ""
		post.Author = &author
	}
	return post, nil
}
