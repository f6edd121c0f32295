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
	"github.com/olegiv/scms-go/internal/util"
)

// SliderInput carries the fields accepted for slider writes.
type SliderInput struct {
	Title    string
	Subtitle string
	MediaID  *int64
	LinkURL  string
	IsActive bool
	Position int64
}

// SliderService manages homepage hero slides.
type SliderService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Manager
	logger  *slog.Logger
}

// NewSliderService creates a slider service.
func NewSliderService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *SliderService {
	return &SliderService{
		db:      db,
		queries: store.New(db),
		cache:   cm,
		logger:  logger,
	}
}

// List returns sliders in display order.
func (s *SliderService) List(ctx context.Context, activeOnly bool) ([]model.Slider, error) {
	return s.queries.ListSliders(ctx, activeOnly)
}

// Get fetches a slider by id.
func (s *SliderService) Get(ctx context.Context, id int64) (model.Slider, error) {
	return s.queries.GetSliderByID(ctx, id)
}

// Create inserts a slider.
func (s *SliderService) Create(ctx context.Context, input SliderInput, userID int64) (model.Slider, error) {
	if input.Title == "" {
		return model.Slider{}, NewValidationError("title", "is required")
	}
	if input.MediaID != nil {
		if _, err := s.queries.GetMediaByID(ctx, *input.MediaID); err != nil {
			return model.Slider{}, fmt.Errorf("slide media: %w", err)
		}
	}

	sl, err := s.queries.CreateSlider(ctx, store.CreateSliderParams{
		Title:    input.Title,
		Subtitle: input.Subtitle,
		MediaID:  util.NullInt64FromPtr(input.MediaID),
		LinkURL:  input.LinkURL,
		IsActive: input.IsActive,
		Position: input.Position,
		UserID:   userID,
	})
	if err != nil {
		return model.Slider{}, fmt.Errorf("creating slider: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixSliders)
	s.logger.Info("slider created", "slider_id", sl.ID)
	return sl, nil
}

// Update rewrites a slider.
func (s *SliderService) Update(ctx context.Context, id int64, input SliderInput) (model.Slider, error) {
	if input.Title == "" {
		return model.Slider{}, NewValidationError("title", "is required")
	}

	sl, err := s.queries.UpdateSlider(ctx, store.UpdateSliderParams{
		ID:       id,
		Title:    input.Title,
		Subtitle: input.Subtitle,
		MediaID:  util.NullInt64FromPtr(input.MediaID),
		LinkURL:  input.LinkURL,
		IsActive: input.IsActive,
		Position: input.Position,
	})
	if err != nil {
		return model.Slider{}, fmt.Errorf("updating slider: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixSliders)
	return sl, nil
}

// Delete removes a slider.
func (s *SliderService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteSlider(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixSliders)
	s.logger.Info("slider deleted", "slider_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *SliderService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "sliders", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixSliders)
	return value, nil
}

// Reorder applies new display positions to the given slider ids, in order.
func (s *SliderService) Reorder(ctx context.Context, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for i, id := range ids {
		if err := qtx.UpdateSliderPosition(ctx, id, int64(i)); err != nil {
			return fmt.Errorf("reordering slider %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixSliders)
	return nil
}

// SettingService manages key-value site settings with a cached read path.
type SettingService struct {
	queries *store.Queries
	cache   *cache.Manager
	values  *cache.TypedCache[model.Setting]
	logger  *slog.Logger
}

// NewSettingService creates a settings service.
func NewSettingService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *SettingService {
	return &SettingService{
		queries: store.New(db),
		cache:   cm,
		values:  cache.NewTypedCache[model.Setting](cm.Backend(), cache.TTLSettings),
		logger:  logger,
	}
}

// Get fetches a setting by key through the cache.
func (s *SettingService) Get(ctx context.Context, key string) (model.Setting, error) {
	setting, err := s.values.GetOrSet(ctx, cache.PrefixSettings+key, func() (*model.Setting, error) {
		v, err := s.queries.GetSetting(ctx, key)
		if err != nil {
			return nil, err
		}
		return &v, nil
	})
	if err != nil {
		return model.Setting{}, err
	}
	return *setting, nil
}

// GetValue returns a setting's value, or the fallback when absent.
func (s *SettingService) GetValue(ctx context.Context, key, fallback string) string {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return fallback
	}
	return setting.Value
}

// List returns all settings.
func (s *SettingService) List(ctx context.Context) ([]model.Setting, error) {
	return s.queries.ListSettings(ctx)
}

// Set creates or replaces a setting and refreshes its cache entry.
func (s *SettingService) Set(ctx context.Context, key, value string) (model.Setting, error) {
	if key == "" {
		return model.Setting{}, NewValidationError("key", "is required")
	}

	setting, err := s.queries.UpsertSetting(ctx, key, value)
	if err != nil {
		return model.Setting{}, fmt.Errorf("saving setting %q: %w", key, err)
	}

	_ = s.values.Delete(ctx, cache.PrefixSettings+key)
	s.logger.Info("setting saved", "key", key)
	return setting, nil
}

// Delete removes a setting.
func (s *SettingService) Delete(ctx context.Context, key string) error {
	if err := s.queries.DeleteSetting(ctx, key); err != nil {
		return err
	}
	_ = s.values.Delete(ctx, cache.PrefixSettings+key)
	return nil
}
