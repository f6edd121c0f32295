// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
)

// GalleryInput carries the fields accepted for gallery writes.
type GalleryInput struct {
	Title       string
	Slug        string
	Description string
	IsActive    bool
}

// GalleryService implements gallery and gallery item rules.
type GalleryService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Manager
	logger  *slog.Logger
}

// NewGalleryService creates a gallery service.
func NewGalleryService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *GalleryService {
	return &GalleryService{
		db:      db,
		queries: store.New(db),
		cache:   cm,
		logger:  logger,
	}
}

// List returns galleries matching the filter plus the total count.
func (s *GalleryService) List(ctx context.Context, f store.GalleryFilter) ([]model.Gallery, int64, error) {
	items, err := s.queries.ListGalleries(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing galleries: %w", err)
	}
	total, err := s.queries.CountGalleries(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting galleries: %w", err)
	}
	return items, total, nil
}

// Get fetches a gallery by id with its ordered items.
func (s *GalleryService) Get(ctx context.Context, id int64) (model.Gallery, error) {
	g, err := s.queries.GetGalleryByID(ctx, id)
	if err != nil {
		return model.Gallery{}, err
	}
	return s.withItems(ctx, g)
}

// GetBySlug fetches a gallery by slug with its ordered items.
func (s *GalleryService) GetBySlug(ctx context.Context, slug string) (model.Gallery, error) {
	g, err := s.queries.GetGalleryBySlug(ctx, slug)
	if err != nil {
		return model.Gallery{}, err
	}
	return s.withItems(ctx, g)
}

// Create inserts a gallery with a slug derived from the title.
func (s *GalleryService) Create(ctx context.Context, input GalleryInput, userID int64) (model.Gallery, error) {
	if input.Title == "" {
		return model.Gallery{}, NewValidationError("title", "is required")
	}

	slug, err := ResolveSlug(ctx, s.queries, "galleries", input.Slug, "", input.Title)
	if err != nil {
		return model.Gallery{}, err
	}

	g, err := s.queries.CreateGallery(ctx, store.CreateGalleryParams{
		Title:       input.Title,
		Slug:        slug,
		Description: input.Description,
		IsActive:    input.IsActive,
		UserID:      userID,
	})
	if err != nil {
		return model.Gallery{}, fmt.Errorf("creating gallery: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	s.logger.Info("gallery created", "gallery_id", g.ID, "slug", g.Slug)
	return g, nil
}

// Update rewrites a gallery.
func (s *GalleryService) Update(ctx context.Context, id int64, input GalleryInput) (model.Gallery, error) {
	if input.Title == "" {
		return model.Gallery{}, NewValidationError("title", "is required")
	}

	current, err := s.queries.GetGalleryByID(ctx, id)
	if err != nil {
		return model.Gallery{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "galleries", input.Slug, current.Slug, input.Title)
	if err != nil {
		return model.Gallery{}, err
	}

	g, err := s.queries.UpdateGallery(ctx, store.UpdateGalleryParams{
		ID:          id,
		Title:       input.Title,
		Slug:        slug,
		Description: input.Description,
		IsActive:    input.IsActive,
	})
	if err != nil {
		return model.Gallery{}, fmt.Errorf("updating gallery: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	return g, nil
}

// Delete removes a gallery and, via cascade, its items.
func (s *GalleryService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteGallery(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	s.logger.Info("gallery deleted", "gallery_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *GalleryService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "galleries", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	return value, nil
}

// AddItem appends a media item to a gallery at the end of the order.
func (s *GalleryService) AddItem(ctx context.Context, galleryID, mediaID int64, caption string) (model.GalleryItem, error) {
	if _, err := s.queries.GetGalleryByID(ctx, galleryID); err != nil {
		return model.GalleryItem{}, err
	}
	if _, err := s.queries.GetMediaByID(ctx, mediaID); err != nil {
		return model.GalleryItem{}, fmt.Errorf("media: %w", err)
	}

	max, err := s.queries.MaxGalleryItemPosition(ctx, galleryID)
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("finding item position: %w", err)
	}

	item, err := s.queries.AddGalleryItem(ctx, store.AddGalleryItemParams{
		GalleryID: galleryID,
		MediaID:   mediaID,
		Caption:   caption,
		Position:  max + 1,
	})
	if err != nil {
		return model.GalleryItem{}, fmt.Errorf("adding gallery item: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	return item, nil
}

// RemoveItem deletes an item from a gallery.
func (s *GalleryService) RemoveItem(ctx context.Context, itemID int64) error {
	if err := s.queries.RemoveGalleryItem(ctx, itemID); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	return nil
}

// ReorderItems applies new positions to the given item ids, in order.
func (s *GalleryService) ReorderItems(ctx context.Context, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for i, id := range ids {
		if err := qtx.UpdateGalleryItemPosition(ctx, id, int64(i)); err != nil {
			return fmt.Errorf("reordering item %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixGalleries)
	return nil
}

func (s *GalleryService) withItems(ctx context.Context, g model.Gallery) (model.Gallery, error) {
	items, err := s.queries.ListGalleryItems(ctx, g.ID)
	if err != nil {
		return g, fmt.Errorf("loading gallery items: %w", err)
	}
	g.Items = items
	return g, nil
}
