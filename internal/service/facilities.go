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

// FacilityInput carries the fields accepted for facility writes.
type FacilityInput struct {
	Name        string
	Slug        string
	Description string
	Location    string
	Category    string
	Capacity    *int64
	Area        *float64
	Amenities   []string
	BookingURL  string
	IsActive    bool
	IsFeatured  bool
	IsBookable  bool
}

// FacilityService implements the facility directory rules.
type FacilityService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Manager
	logger  *slog.Logger
}

// NewFacilityService creates a facility service.
func NewFacilityService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *FacilityService {
	return &FacilityService{
		db:      db,
		queries: store.New(db),
		cache:   cm,
		logger:  logger,
	}
}

func (s *FacilityService) validate(input FacilityInput) error {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "is required"
	}
	if input.Category != "" {
		if _, ok := model.FacilityCategoryLabels[input.Category]; !ok {
			fields["category"] = "is not a recognized category"
		}
	}
	if input.Capacity != nil && *input.Capacity < 1 {
		fields["capacity"] = "must be at least 1"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// List returns facilities matching the filter plus the total count.
func (s *FacilityService) List(ctx context.Context, f store.FacilityFilter) ([]model.Facility, int64, error) {
	items, err := s.queries.ListFacilities(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing facilities: %w", err)
	}
	total, err := s.queries.CountFacilities(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting facilities: %w", err)
	}
	return items, total, nil
}

// Search runs the substring search across name, description and location,
// optionally narrowed by an amenity, over active facilities only.
func (s *FacilityService) Search(ctx context.Context, query, amenity string) ([]model.Facility, error) {
	active := true
	items, err := s.queries.ListFacilities(ctx, store.FacilityFilter{
		Search:  query,
		Amenity: amenity,
		Active:  &active,
	})
	if err != nil {
		return nil, fmt.Errorf("searching facilities: %w", err)
	}
	return items, nil
}

// Get fetches a facility by id.
func (s *FacilityService) Get(ctx context.Context, id int64) (model.Facility, error) {
	return s.queries.GetFacilityByID(ctx, id)
}

// GetBySlug fetches a facility by slug.
func (s *FacilityService) GetBySlug(ctx context.Context, slug string) (model.Facility, error) {
	return s.queries.GetFacilityBySlug(ctx, slug)
}

// Create inserts a facility with a slug derived from the name.
func (s *FacilityService) Create(ctx context.Context, input FacilityInput, userID int64) (model.Facility, error) {
	if err := s.validate(input); err != nil {
		return model.Facility{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "facilities", input.Slug, "", input.Name)
	if err != nil {
		return model.Facility{}, err
	}

	category := input.Category
	if category == "" {
		category = model.FacilityCategoryCommon
	}

	f, err := s.queries.CreateFacility(ctx, store.CreateFacilityParams{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Location:    input.Location,
		Category:    category,
		Capacity:    util.NullInt64FromPtr(input.Capacity),
		Area:        nullFloat64FromPtr(input.Area),
		Amenities:   input.Amenities,
		BookingURL:  util.NullStringFromValue(input.BookingURL),
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
		IsBookable:  input.IsBookable,
		UserID:      userID,
	})
	if err != nil {
		return model.Facility{}, fmt.Errorf("creating facility: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixFacilities)
	s.logger.Info("facility created", "facility_id", f.ID, "slug", f.Slug)
	return f, nil
}

// Update rewrites a facility.
func (s *FacilityService) Update(ctx context.Context, id int64, input FacilityInput) (model.Facility, error) {
	if err := s.validate(input); err != nil {
		return model.Facility{}, err
	}

	current, err := s.queries.GetFacilityByID(ctx, id)
	if err != nil {
		return model.Facility{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "facilities", input.Slug, current.Slug, input.Name)
	if err != nil {
		return model.Facility{}, err
	}

	category := input.Category
	if category == "" {
		category = current.Category
	}

	f, err := s.queries.UpdateFacility(ctx, store.UpdateFacilityParams{
		ID:          id,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Location:    input.Location,
		Category:    category,
		Capacity:    util.NullInt64FromPtr(input.Capacity),
		Area:        nullFloat64FromPtr(input.Area),
		Amenities:   input.Amenities,
		BookingURL:  util.NullStringFromValue(input.BookingURL),
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
		IsBookable:  input.IsBookable,
	})
	if err != nil {
		return model.Facility{}, fmt.Errorf("updating facility: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixFacilities)
	return f, nil
}

// Delete removes a facility.
func (s *FacilityService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteFacility(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixFacilities)
	s.logger.Info("facility deleted", "facility_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *FacilityService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "facilities", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixFacilities)
	return value, nil
}

// Stats returns active facility counts grouped by category with labels.
func (s *FacilityService) Stats(ctx context.Context) ([]CategoryStat, error) {
	counts, err := s.queries.CountFacilitiesByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting facilities by category: %w", err)
	}

	stats := make([]CategoryStat, 0, len(counts))
	for _, c := range counts {
		label := model.FacilityCategoryLabels[c.Category]
		if label == "" {
			label = c.Category
		}
		stats = append(stats, CategoryStat{Category: c.Category, Label: label, Count: c.Count})
	}
	return stats, nil
}

func nullFloat64FromPtr(ptr *float64) sql.NullFloat64 {
	if ptr == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *ptr, Valid: true}
}
