// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the periodic maintenance jobs: publishing scheduled
// posts, deactivating expired announcements and purging expired auth tokens.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// Scheduler drives the cron jobs over the store.
type Scheduler struct {
	db            *sql.DB
	cache         *cache.Manager
	announcements *service.AnnouncementService
	cron          *cron.Cron
	logger        *slog.Logger
}

// New creates a new scheduler instance.
func New(db *sql.DB, cm *cache.Manager, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:            db,
		cache:         cm,
		announcements: service.NewAnnouncementService(db, cm, logger),
		cron:          cron.New(),
		logger:        logger,
	}
}

// Start registers the jobs and begins the cron loop. Scheduled posts and
// announcement expiry run every minute, token purging hourly.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.publishScheduledPosts(); err != nil {
			s.logger.Error("publishing scheduled posts failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.deactivateExpiredAnnouncements(); err != nil {
			s.logger.Error("deactivating expired announcements failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.purgeExpiredTokens(); err != nil {
			s.logger.Error("purging expired tokens failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// publishScheduledPosts flips due scheduled posts to published.
func (s *Scheduler) publishScheduledPosts() error {
	ctx := context.Background()
	queries := store.New(s.db)
	now := time.Now()

	posts, err := queries.ListScheduledPosts(ctx, now)
	if err != nil {
		return err
	}
	if len(posts) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled posts", "count", len(posts))

	published := 0
	for _, post := range posts {
		if err := queries.PublishPost(ctx, post.ID); err != nil {
			s.logger.Error("publishing scheduled post failed",
				"post_id", post.ID, "post_title", post.Title, "error", err)
			continue
		}
		published++
		s.logEvent(ctx, queries, "Post published automatically by scheduler: "+post.Title, map[string]any{
			"post_id":      post.ID,
			"post_slug":    post.Slug,
			"published_at": now.Format(time.RFC3339),
		}, now)
		s.logger.Info("published scheduled post", "post_id", post.ID, "post_slug", post.Slug)
	}

	if published > 0 {
		s.cache.InvalidatePosts(ctx)
	}
	return nil
}

// deactivateExpiredAnnouncements clears the active flag past expiry. The
// service does the work and the cache invalidation; only the audit row is
// the scheduler's.
func (s *Scheduler) deactivateExpiredAnnouncements() error {
	ctx := context.Background()

	n, err := s.announcements.DeactivateExpired(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	s.logEvent(ctx, store.New(s.db), "Expired announcements deactivated by scheduler", map[string]any{
		"count": n,
	}, time.Now())
	return nil
}

// purgeExpiredTokens removes auth tokens past their expiry.
func (s *Scheduler) purgeExpiredTokens() error {
	ctx := context.Background()
	queries := store.New(s.db)

	n, err := queries.DeleteExpiredAuthTokens(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Info("expired tokens purged", "count", n)
	}
	return nil
}

// logEvent writes an audit record for a scheduler action.
func (s *Scheduler) logEvent(ctx context.Context, queries *store.Queries, message string, metadata map[string]any, now time.Time) {
	metadataJSON, _ := json.Marshal(metadata)
	if _, err := queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     model.EventLevelInfo,
		Category:  model.EventCategoryContent,
		Message:   message,
		UserID:    sql.NullInt64{}, // System action, no user
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	}); err != nil {
		s.logger.Warn("logging scheduler event failed", "error", err)
	}
}
