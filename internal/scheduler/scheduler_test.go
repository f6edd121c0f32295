// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/testutil"
)

func newTestScheduler(t *testing.T) (*Scheduler, *sql.DB) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	cm := cache.NewManager(cache.NewSimpleMemoryCache(time.Minute), testutil.TestLogger())
	t.Cleanup(func() { _ = cm.Close() })

	return New(db, cm, testutil.TestLogger()), db
}

func TestDeactivateExpiredAnnouncementsJob(t *testing.T) {
	s, db := newTestScheduler(t)
	ctx := context.Background()
	q := store.New(db)
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	now := time.Now()

	expired, err := q.CreateAnnouncement(ctx, store.CreateAnnouncementParams{
		Title:       "Old Notice",
		Slug:        "old-notice",
		Type:        model.AnnouncementTypeGeneral,
		Priority:    model.AnnouncementPriorityNormal,
		IsActive:    true,
		PublishedAt: now.Add(-48 * time.Hour),
		ExpiresAt:   sql.NullTime{Time: now.Add(-time.Hour), Valid: true},
		UserID:      u.ID,
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}

	if err := s.deactivateExpiredAnnouncements(); err != nil {
		t.Fatalf("deactivateExpiredAnnouncements: %v", err)
	}

	got, err := q.GetAnnouncementByID(ctx, expired.ID)
	if err != nil {
		t.Fatalf("GetAnnouncementByID: %v", err)
	}
	if got.IsActive {
		t.Error("expired announcement still active after the job ran")
	}

	// The job writes one audit row per run that changed anything.
	var events int64
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE category = ?`, model.EventCategoryContent).Scan(&events); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if events != 1 {
		t.Errorf("audit events = %d, want 1", events)
	}

	// A second run with nothing left to expire must not add audit noise.
	if err := s.deactivateExpiredAnnouncements(); err != nil {
		t.Fatalf("deactivateExpiredAnnouncements: %v", err)
	}
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE category = ?`, model.EventCategoryContent).Scan(&events); err != nil {
		t.Fatalf("counting events: %v", err)
	}
	if events != 1 {
		t.Errorf("audit events after idle run = %d, want 1", events)
	}
}
