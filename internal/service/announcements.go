// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/util"
)

// AnnouncementInput carries the fields accepted for announcement writes.
type AnnouncementInput struct {
	Title       string
	Slug        string
	Content     string
	Type        string
	Priority    string
	IsPinned    bool
	IsActive    bool
	PublishedAt *time.Time
	ExpiresAt   *time.Time
	CategoryID  *int64
}

// AnnouncementService implements announcement rules including expiry.
type AnnouncementService struct {
	db        *sql.DB
	queries   *store.Queries
	cache     *cache.Manager
	sanitizer *bluemonday.Policy
	logger    *slog.Logger
}

// NewAnnouncementService creates an announcement service.
func NewAnnouncementService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *AnnouncementService {
	return &AnnouncementService{
		db:        db,
		queries:   store.New(db),
		cache:     cm,
		sanitizer: bluemonday.UGCPolicy(),
		logger:    logger,
	}
}

func (s *AnnouncementService) validate(input AnnouncementInput) error {
	fields := map[string]string{}
	if input.Title == "" {
		fields["title"] = "is required"
	}
	if input.Type != "" && !model.ValidAnnouncementType(input.Type) {
		fields["type"] = "must be general, academic or urgent"
	}
	if input.Priority != "" && !model.ValidAnnouncementPriority(input.Priority) {
		fields["priority"] = "must be low, normal or high"
	}
	if input.PublishedAt != nil && input.ExpiresAt != nil && !input.ExpiresAt.After(*input.PublishedAt) {
		fields["expires_at"] = "must be after published_at"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// List returns announcements matching the filter plus the total count.
func (s *AnnouncementService) List(ctx context.Context, f store.AnnouncementFilter) ([]model.Announcement, int64, error) {
	items, err := s.queries.ListAnnouncements(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing announcements: %w", err)
	}
	total, err := s.queries.CountAnnouncements(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting announcements: %w", err)
	}
	return items, total, nil
}

// Get fetches an announcement by id.
func (s *AnnouncementService) Get(ctx context.Context, id int64) (model.Announcement, error) {
	return s.queries.GetAnnouncementByID(ctx, id)
}

// GetBySlug fetches an announcement by slug.
func (s *AnnouncementService) GetBySlug(ctx context.Context, slug string) (model.Announcement, error) {
	return s.queries.GetAnnouncementBySlug(ctx, slug)
}

// Create inserts an announcement with sanitized content.
func (s *AnnouncementService) Create(ctx context.Context, input AnnouncementInput, userID int64) (model.Announcement, error) {
	if err := s.validate(input); err != nil {
		return model.Announcement{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "announcements", input.Slug, "", input.Title)
	if err != nil {
		return model.Announcement{}, err
	}

	aType := input.Type
	if aType == "" {
		aType = model.AnnouncementTypeGeneral
	}
	priority := input.Priority
	if priority == "" {
		priority = model.AnnouncementPriorityNormal
	}
	publishedAt := time.Now()
	if input.PublishedAt != nil {
		publishedAt = *input.PublishedAt
	}

	a, err := s.queries.CreateAnnouncement(ctx, store.CreateAnnouncementParams{
		Title:       input.Title,
		Slug:        slug,
		Content:     s.sanitizer.Sanitize(input.Content),
		Type:        aType,
		Priority:    priority,
		IsPinned:    input.IsPinned,
		IsActive:    input.IsActive,
		PublishedAt: publishedAt,
		ExpiresAt:   util.NullTimeFromPtr(input.ExpiresAt),
		CategoryID:  util.NullInt64FromPtr(input.CategoryID),
		UserID:      userID,
	})
	if err != nil {
		return model.Announcement{}, fmt.Errorf("creating announcement: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixAnnouncements)
	s.logger.Info("announcement created", "announcement_id", a.ID, "slug", a.Slug)
	return a, nil
}

// Update rewrites an announcement.
func (s *AnnouncementService) Update(ctx context.Context, id int64, input AnnouncementInput) (model.Announcement, error) {
	if err := s.validate(input); err != nil {
		return model.Announcement{}, err
	}

	current, err := s.queries.GetAnnouncementByID(ctx, id)
	if err != nil {
		return model.Announcement{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "announcements", input.Slug, current.Slug, input.Title)
	if err != nil {
		return model.Announcement{}, err
	}

	aType := input.Type
	if aType == "" {
		aType = current.Type
	}
	priority := input.Priority
	if priority == "" {
		priority = current.Priority
	}
	publishedAt := current.PublishedAt
	if input.PublishedAt != nil {
		publishedAt = *input.PublishedAt
	}

	a, err := s.queries.UpdateAnnouncement(ctx, store.UpdateAnnouncementParams{
		ID:          id,
		Title:       input.Title,
		Slug:        slug,
		Content:     s.sanitizer.Sanitize(input.Content),
		Type:        aType,
		Priority:    priority,
		IsPinned:    input.IsPinned,
		IsActive:    input.IsActive,
		PublishedAt: publishedAt,
		ExpiresAt:   util.NullTimeFromPtr(input.ExpiresAt),
		CategoryID:  util.NullInt64FromPtr(input.CategoryID),
	})
	if err != nil {
		return model.Announcement{}, fmt.Errorf("updating announcement: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixAnnouncements)
	return a, nil
}

// Delete removes an announcement.
func (s *AnnouncementService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteAnnouncement(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixAnnouncements)
	s.logger.Info("announcement deleted", "announcement_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *AnnouncementService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "announcements", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixAnnouncements)
	return value, nil
}

// DeactivateExpired clears the active flag on announcements past expiry.
// Called from the scheduler.
func (s *AnnouncementService) DeactivateExpired(ctx context.Context) (int64, error) {
	n, err := s.queries.DeactivateExpiredAnnouncements(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("deactivating expired announcements: %w", err)
	}
	if n > 0 {
		s.cache.InvalidatePrefix(ctx, cache.PrefixAnnouncements)
		s.logger.Info("expired announcements deactivated", "count", n)
	}
	return n, nil
}
