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

// JoinStatus classifies the outcome of a club join or leave attempt.
type JoinStatus string

// Join/leave outcomes.
const (
	JoinOK            JoinStatus = "joined"
	JoinInactive      JoinStatus = "club_inactive"
	JoinAlreadyMember JoinStatus = "already_member"
	JoinFull          JoinStatus = "club_full"
	LeaveOK           JoinStatus = "left"
	LeaveNotMember    JoinStatus = "not_member"
)

// JoinResult reports a membership change outcome with the refreshed club.
type JoinResult struct {
	Status JoinStatus  `json:"status"`
	OK     bool        `json:"ok"`
	Extra  model.Extra `json:"extra"`
}

// ExtraInput carries the fields accepted when creating or updating a club.
type ExtraInput struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Schedule    string
	Location    string
	Quota       *int64
	ImageID     *int64
	IsActive    bool
	IsFeatured  bool
}

// ExtraService implements extracurricular club rules, most importantly the
// ordered join checks under an immediate transaction.
type ExtraService struct {
	db      *sql.DB
	queries *store.Queries
	cache   *cache.Manager
	logger  *slog.Logger
	hooks   Hooks[model.Extra]
}

// NewExtraService creates a club service.
func NewExtraService(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *ExtraService {
	return &ExtraService{
		db:      db,
		queries: store.New(db),
		cache:   cm,
		logger:  logger,
	}
}

// WithHooks returns a copy of the service with the given hooks installed.
func (s *ExtraService) WithHooks(hooks Hooks[model.Extra]) *ExtraService {
	clone := *s
	clone.hooks = hooks
	return &clone
}

func (s *ExtraService) validate(input ExtraInput) error {
	fields := map[string]string{}
	if input.Name == "" {
		fields["name"] = "is required"
	}
	if input.Quota != nil && *input.Quota < 1 {
		fields["quota"] = "must be at least 1"
	}
	if input.Category != "" {
		if _, ok := model.ExtraCategoryLabels[input.Category]; !ok {
			fields["category"] = "is not a recognized category"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// List returns clubs matching the filter with member counts.
func (s *ExtraService) List(ctx context.Context, f store.ExtraFilter) ([]model.Extra, int64, error) {
	extras, err := s.queries.ListExtras(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing extras: %w", err)
	}
	total, err := s.queries.CountExtras(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting extras: %w", err)
	}
	return extras, total, nil
}

// Get fetches a club by id.
func (s *ExtraService) Get(ctx context.Context, id int64) (model.Extra, error) {
	return s.queries.GetExtraByID(ctx, id)
}

// GetBySlug fetches a club by slug.
func (s *ExtraService) GetBySlug(ctx context.Context, slug string) (model.Extra, error) {
	return s.queries.GetExtraBySlug(ctx, slug)
}

// Create inserts a club with a derived slug.
func (s *ExtraService) Create(ctx context.Context, input ExtraInput, userID int64) (model.Extra, error) {
	if err := s.validate(input); err != nil {
		return model.Extra{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "extras", input.Slug, "", input.Name)
	if err != nil {
		return model.Extra{}, err
	}

	category := input.Category
	if category == "" {
		category = model.ExtraCategorySports
	}

	draft := model.Extra{
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Category:    category,
		Schedule:    input.Schedule,
		Location:    input.Location,
		Quota:       util.NullInt64FromPtr(input.Quota),
		ImageID:     util.NullInt64FromPtr(input.ImageID),
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
		UserID:      userID,
	}
	if err := s.hooks.runBeforeCreate(ctx, &draft); err != nil {
		return model.Extra{}, err
	}

	extra, err := s.queries.CreateExtra(ctx, store.CreateExtraParams{
		Name:        draft.Name,
		Slug:        draft.Slug,
		Description: draft.Description,
		Category:    draft.Category,
		Schedule:    draft.Schedule,
		Location:    draft.Location,
		Quota:       draft.Quota,
		ImageID:     draft.ImageID,
		IsActive:    draft.IsActive,
		IsFeatured:  draft.IsFeatured,
		UserID:      draft.UserID,
	})
	if err != nil {
		return model.Extra{}, fmt.Errorf("creating extra: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	if err := s.hooks.runAfterCreate(ctx, &extra); err != nil {
		s.logger.Warn("extra after-create hook failed", "extra_id", extra.ID, "error", err)
	}
	s.logger.Info("extra created", "extra_id", extra.ID, "slug", extra.Slug)
	return extra, nil
}

// Update rewrites a club.
func (s *ExtraService) Update(ctx context.Context, id int64, input ExtraInput) (model.Extra, error) {
	if err := s.validate(input); err != nil {
		return model.Extra{}, err
	}

	current, err := s.queries.GetExtraByID(ctx, id)
	if err != nil {
		return model.Extra{}, err
	}

	if err := s.hooks.runBeforeUpdate(ctx, &current); err != nil {
		return model.Extra{}, err
	}

	slug, err := ResolveSlug(ctx, s.queries, "extras", input.Slug, current.Slug, input.Name)
	if err != nil {
		return model.Extra{}, err
	}

	category := input.Category
	if category == "" {
		category = current.Category
	}

	extra, err := s.queries.UpdateExtra(ctx, store.UpdateExtraParams{
		ID:          id,
		Name:        input.Name,
		Slug:        slug,
		Description: input.Description,
		Category:    category,
		Schedule:    input.Schedule,
		Location:    input.Location,
		Quota:       util.NullInt64FromPtr(input.Quota),
		ImageID:     util.NullInt64FromPtr(input.ImageID),
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
	})
	if err != nil {
		return model.Extra{}, fmt.Errorf("updating extra: %w", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	return extra, nil
}

// Delete removes a club. Memberships cascade.
func (s *ExtraService) Delete(ctx context.Context, id int64) error {
	if err := s.queries.DeleteExtra(ctx, id); err != nil {
		return err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	s.logger.Info("extra deleted", "extra_id", id)
	return nil
}

// Toggle flips one whitelisted boolean flag.
func (s *ExtraService) Toggle(ctx context.Context, id int64, column string) (bool, error) {
	value, err := s.queries.ToggleFlag(ctx, "extras", column, id)
	if err != nil {
		return false, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	return value, nil
}

// Join runs the ordered membership checks inside an immediate transaction:
// the club must be active, the user must not already belong, and the quota
// must not be reached. The insert itself re-checks the quota so two
// concurrent joins cannot both land in the last slot.
func (s *ExtraService) Join(ctx context.Context, extraID, userID int64) (JoinResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return JoinResult{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	qtx := s.queries.WithTx(tx)

	extra, err := qtx.GetExtraByID(ctx, extraID)
	if err != nil {
		return JoinResult{}, err
	}

	if !extra.IsActive {
		return JoinResult{Status: JoinInactive, Extra: extra}, nil
	}

	member, err := qtx.IsExtraMember(ctx, extraID, userID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("checking membership: %w", err)
	}
	if member {
		return JoinResult{Status: JoinAlreadyMember, Extra: extra}, nil
	}

	if extra.IsFull() {
		return JoinResult{Status: JoinFull, Extra: extra}, nil
	}

	inserted, err := qtx.AddExtraMember(ctx, extraID, userID, model.ExtraMemberRoleMember)
	if err != nil {
		return JoinResult{}, fmt.Errorf("adding member: %w", err)
	}
	if inserted == 0 {
		// Lost the race for the last slot.
		return JoinResult{Status: JoinFull, Extra: extra}, nil
	}

	if err := tx.Commit(); err != nil {
		return JoinResult{}, fmt.Errorf("committing join: %w", err)
	}

	refreshed, err := s.queries.GetExtraByID(ctx, extraID)
	if err != nil {
		refreshed = extra
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	s.logger.Info("club joined", "extra_id", extraID, "user_id", userID)
	return JoinResult{Status: JoinOK, OK: true, Extra: refreshed}, nil
}

// Leave detaches a user from a club after a membership check.
func (s *ExtraService) Leave(ctx context.Context, extraID, userID int64) (JoinResult, error) {
	extra, err := s.queries.GetExtraByID(ctx, extraID)
	if err != nil {
		return JoinResult{}, err
	}

	removed, err := s.queries.RemoveExtraMember(ctx, extraID, userID)
	if err != nil {
		return JoinResult{}, fmt.Errorf("removing member: %w", err)
	}
	if removed == 0 {
		return JoinResult{Status: LeaveNotMember, Extra: extra}, nil
	}

	refreshed, err := s.queries.GetExtraByID(ctx, extraID)
	if err != nil {
		refreshed = extra
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixExtras)
	s.logger.Info("club left", "extra_id", extraID, "user_id", userID)
	return JoinResult{Status: LeaveOK, OK: true, Extra: refreshed}, nil
}

// Members lists a club's membership with users attached.
func (s *ExtraService) Members(ctx context.Context, extraID int64) ([]model.ExtraMember, error) {
	rows, err := s.queries.ListExtraMembers(ctx, extraID)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	members := make([]model.ExtraMember, 0, len(rows))
	for _, r := range rows {
		m := r.Member
		u := r.User
		u.PasswordHash = ""
		m.User = &u
		members = append(members, m)
	}
	return members, nil
}

// MembershipsForUser lists the clubs a user belongs to.
func (s *ExtraService) MembershipsForUser(ctx context.Context, userID int64) ([]model.Extra, error) {
	return s.queries.ListExtraMembershipsForUser(ctx, userID)
}

// CategoryStat pairs a category key with its display label and club count.
type CategoryStat struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Count    int64  `json:"count"`
}

// Stats returns active club counts grouped by category with labels.
func (s *ExtraService) Stats(ctx context.Context) ([]CategoryStat, error) {
	counts, err := s.queries.CountExtrasByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting extras by category: %w", err)
	}

	stats := make([]CategoryStat, 0, len(counts))
	for _, c := range counts {
		label := model.ExtraCategoryLabels[c.Category]
		if label == "" {
			label = c.Category
		}
		stats = append(stats, CategoryStat{Category: c.Category, Label: label, Count: c.Count})
	}
	return stats, nil
}
