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

// StaffInput carries the fields accepted for staff directory writes.
type StaffInput struct {
	Name       string
	Slug       string
	Type       string
	Department string
	Subjects   []string
	Email      string
	Phone      string
	Bio        string
	PhotoID    *int64
	IsActive   bool
	IsFeatured bool
	Position   int64
}

// StaffService implements the staff directory rules.
type StaffService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Manager
	logger  *slog.Logger
	hooks   Hooks[model.Staff]
}

// NewStaffService creates a staff service.
func NewStaffService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *StaffService {
	return &StaffService{
		db:      db,
		queries: store.New(db),
		cache:   cm,
		logger:  logger,
	}
}

// WithHooks returns a copy of the service with the given hooks installed.
func (s *StaffService) WithHooks(hooks Hooks[model.Staff]) *StaffService {
	clone := *s
	clone.hooks = hooks
	return &clone
}

func (s *StaffService) validate(input StaffInput) error {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "is required"
	}
	if input.Type != "" && !model.ValidStaffType(input.Type) {
		fields["type"] = "is not a recognized staff type"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// List returns staff matching the filter plus the total count.
func (s *StaffService) List(ctx context.Context, f store.StaffFilter) ([]model.Staff, int64, error) {
	items, err := s.queries.ListStaff(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing staff: %w", err)
	}
	total, err := s.queries.CountStaff(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting staff: %w", err)
	}
	return items, total, nil
}

// Get fetches a staff member by id.
func (s *StaffService) Get(ctx context.Context, id int64) (model.Staff, error) {
	return s.queries.GetStaffByID(ctx, id)
}

// GetBySlug fetches a staff member by slug.
func (s *StaffService) GetBySlug(ctx context.Context, slug string) (model.Staff, error) {
	return s.queries.GetStaffBySlug(ctx, slug)
}

// Create inserts a staff member with a slug derived from the name.
func (s *StaffService) Create(ctx context.Context, input StaffInput, userID int64) (model.Staff, error) {
	if err := s.validate(input); err != nil {
		return model.Staff{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "staff", input.Slug, "", input.Name)
	if err != nil {
		return model.Staff{}, err
	}

	staffType := input.Type
	if staffType == "" {
		staffType = model.StaffTypeTeacher
	}

	if input.PhotoID != nil {
		if _, err := s.queries.GetMediaByID(ctx, *input.PhotoID); err != nil {
			return model.Staff{}, fmt.Errorf("photo: %w", err)
		}
	}

	draft := model.Staff{
		Name:       input.Name,
		Slug:       slug,
		Type:       staffType,
		Department: input.Department,
		Subjects:   input.Subjects,
		Email:      input.Email,
		Phone:      input.Phone,
		Bio:        input.Bio,
		PhotoID:    util.NullInt64FromPtr(input.PhotoID),
		IsActive:   input.IsActive,
		IsFeatured: input.IsFeatured,
		Position:   input.Position,
		UserID:     userID,
	}
	if err := s.hooks.runBeforeCreate(ctx, &draft); err != nil {
		return model.Staff{}, err
	}

	st, err := s.queries.CreateStaff(ctx, store.CreateStaffParams{
		Name:       draft.Name,
		Slug:       draft.Slug,
		Type:       draft.Type,
		Department: draft.Department,
		Subjects:   draft.Subjects,
		Email:      draft.Email,
		Phone:      draft.Phone,
		Bio:        draft.Bio,
		PhotoID:    draft.PhotoID,
		IsActive:   draft.IsActive,
		IsFeatured: draft.IsFeatured,
		Position:   draft.Position,
		UserID:     draft.UserID,
	})
	if err != nil {
		return model.Staff{}, fmt.Errorf("creating staff: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixStaff)
	if err := s.hooks.runAfterCreate(ctx, &st); err != nil {
		s.logger.Warn("staff after-create hook failed", "staff_id", st.ID, "error", err)
	}
	s.logger.Info("staff created", "staff_id", st.ID, "slug", st.Slug)
	return st, nil
}

// Update rewrites a staff member.
func (s *StaffService) Update(ctx context.Context, id int64, input StaffInput) (model.Staff, error) {
	if err := s.validate(input); err != nil {
		return model.Staff{}, err
	}

	current, err := s.queries.GetStaffByID(ctx, id)
	if err != nil {
		return model.Staff{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "staff", input.Slug, current.Slug, input.Name)
	if err != nil {
		return model.Staff{}, err
	}

	staffType := input.Type
	if staffType == "" {
		staffType = current.Type
	}

	st, err := s.queries.UpdateStaff(ctx, store.UpdateStaffParams{
		ID:         id,
		Name:       input.Name,
		Slug:       slug,
		Type:       staffType,
		Department: input.Department,
		Subjects:   input.Subjects,
		Email:      input.Email,
		Phone:      input.Phone,
		Bio:        input.Bio,
		PhotoID:    util.NullInt64FromPtr(input.PhotoID),
		IsActive:   input.IsActive,
		IsFeatured: input.IsFeatured,
		Position:   input.Position,
	})
	if err != nil {
		return model.Staff{}, fmt.Errorf("updating staff: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixStaff)
	return st, nil
}

// Delete removes a staff member.
func (s *StaffService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteStaff(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixStaff)
	s.logger.Info("staff deleted", "staff_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *StaffService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "staff", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixStaff)
	return value, nil
}

// Reorder applies new display positions to the given staff ids, in order.
func (s *StaffService) Reorder(ctx context.Context, ids []int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)
	for i, id := range ids {
		if err := qtx.UpdateStaffPosition(ctx, id, int64(i)); err != nil {
			return fmt.Errorf("reordering staff %d: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing reorder: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixStaff)
	return nil
}

// DepartmentStat pairs a department key with its display label and count.
type DepartmentStat struct {
	Department string `json:"department"`
	Label      string `json:"label"`
	Count      int64  `json:"count"`
}

// Stats returns active staff counts grouped by department with labels.
func (s *StaffService) Stats(ctx context.Context) ([]DepartmentStat, error) {
	counts, err := s.queries.CountStaffByDepartment(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting staff by department: %w", err)
	}

	stats := make([]DepartmentStat, 0, len(counts))
	for _, c := range counts {
		label := model.DepartmentLabels[c.Department]
		if label == "" {
			label = c.Department
		}
		stats = append(stats, DepartmentStat{Department: c.Department, Label: label, Count: c.Count})
	}
	return stats, nil
}
