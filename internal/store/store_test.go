// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/testutil"
)

func newQueries(t *testing.T) *store.Queries {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	return store.New(db)
}

func TestUserCRUD(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, q, "admin@school.test", model.RoleAdmin)
	if u.ID == 0 {
		t.Fatal("created user has zero id")
	}

	byEmail, err := q.GetUserByEmail(ctx, "admin@school.test")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("GetUserByEmail id = %d, want %d", byEmail.ID, u.ID)
	}

	_, err = q.GetUserByEmail(ctx, "nobody@school.test")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing user err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Error("ErrNotFound should wrap sql.ErrNoRows")
	}
}

func TestPostListOrderingAndFilter(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)

	older := testutil.SeedPost(t, q, u.ID, "Older News", "older-news")
	newer := testutil.SeedPost(t, q, u.ID, "Newer News", "newer-news")

	// Pin the older post; it must sort first regardless of publish time.
	if _, err := q.ToggleFlag(ctx, "posts", "is_pinned", older.ID); err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}

	posts, err := q.ListPosts(ctx, store.PostFilter{Status: model.PostStatusPublished})
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("ListPosts returned %d posts, want 2", len(posts))
	}
	if posts[0].ID != older.ID {
		t.Errorf("pinned post not first: got id %d, want %d", posts[0].ID, older.ID)
	}
	if posts[1].ID != newer.ID {
		t.Errorf("second post id = %d, want %d", posts[1].ID, newer.ID)
	}

	pinned := true
	count, err := q.CountPosts(ctx, store.PostFilter{Pinned: &pinned})
	if err != nil {
		t.Fatalf("CountPosts: %v", err)
	}
	if count != 1 {
		t.Errorf("CountPosts(pinned) = %d, want 1", count)
	}

	found, err := q.ListPosts(ctx, store.PostFilter{Search: "Newer"})
	if err != nil {
		t.Fatalf("ListPosts(search): %v", err)
	}
	if len(found) != 1 || found[0].ID != newer.ID {
		t.Errorf("search returned %d posts, want just the newer one", len(found))
	}
}

func TestPostCategories(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	p := testutil.SeedPost(t, q, u.ID, "Sports Day", "sports-day")

	cat, err := q.CreateCategory(ctx, "Events", "events")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if err := q.AddPostCategory(ctx, p.ID, cat.ID); err != nil {
		t.Fatalf("AddPostCategory: %v", err)
	}

	// Linking a nonexistent category must fail on the foreign key.
	if err := q.AddPostCategory(ctx, p.ID, 9999); err == nil {
		t.Error("AddPostCategory with unknown category id succeeded")
	}

	cats, err := q.GetCategoriesForPost(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetCategoriesForPost: %v", err)
	}
	if len(cats) != 1 || cats[0].Slug != "events" {
		t.Errorf("GetCategoriesForPost = %+v, want one events category", cats)
	}

	byCat, err := q.ListPosts(ctx, store.PostFilter{CategoryID: cat.ID})
	if err != nil {
		t.Fatalf("ListPosts(category): %v", err)
	}
	if len(byCat) != 1 || byCat[0].ID != p.ID {
		t.Errorf("category filter returned %d posts", len(byCat))
	}

	if err := q.ClearPostCategories(ctx, p.ID); err != nil {
		t.Fatalf("ClearPostCategories: %v", err)
	}
	cats, _ = q.GetCategoriesForPost(ctx, p.ID)
	if len(cats) != 0 {
		t.Errorf("categories remained after clear: %+v", cats)
	}
}

func TestToggleFlag(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	p := testutil.SeedPost(t, q, u.ID, "Toggle Me", "toggle-me")

	on, err := q.ToggleFlag(ctx, "posts", "is_featured", p.ID)
	if err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if !on {
		t.Error("first toggle should set the flag")
	}

	off, err := q.ToggleFlag(ctx, "posts", "is_featured", p.ID)
	if err != nil {
		t.Fatalf("ToggleFlag: %v", err)
	}
	if off {
		t.Error("second toggle should clear the flag")
	}

	if _, err := q.ToggleFlag(ctx, "posts", "status", p.ID); err == nil {
		t.Error("toggling a non-whitelisted column succeeded")
	}
	if _, err := q.ToggleFlag(ctx, "users", "is_active", 1); err == nil {
		t.Error("toggling on a non-whitelisted table succeeded")
	}
	if _, err := q.ToggleFlag(ctx, "posts", "is_featured", 9999); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("toggle on missing row err = %v, want ErrNotFound", err)
	}
}

func TestSlugExists(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	testutil.SeedPost(t, q, u.ID, "Taken", "taken")

	taken, err := q.SlugExists(ctx, "posts", "taken")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !taken {
		t.Error("SlugExists = false for existing slug")
	}

	free, err := q.SlugExists(ctx, "posts", "free")
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if free {
		t.Error("SlugExists = true for unused slug")
	}

	if _, err := q.SlugExists(ctx, "users", "taken"); err == nil {
		t.Error("SlugExists on non-slug table succeeded")
	}
}

func TestExtraMembershipQuota(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, q, "owner@school.test", model.RoleAdmin)
	m1 := testutil.SeedUser(t, q, "m1@school.test", model.RoleMember)
	m2 := testutil.SeedUser(t, q, "m2@school.test", model.RoleMember)
	m3 := testutil.SeedUser(t, q, "m3@school.test", model.RoleMember)

	club, err := q.CreateExtra(ctx, store.CreateExtraParams{
		Name:     "Chess Club",
		Slug:     "chess-club",
		Category: model.ExtraCategoryScience,
		Quota:    sql.NullInt64{Int64: 2, Valid: true},
		IsActive: true,
		UserID:   owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateExtra: %v", err)
	}

	for i, uid := range []int64{m1.ID, m2.ID} {
		n, err := q.AddExtraMember(ctx, club.ID, uid, model.ExtraMemberRoleMember)
		if err != nil {
			t.Fatalf("AddExtraMember %d: %v", i, err)
		}
		if n != 1 {
			t.Fatalf("AddExtraMember %d inserted %d rows, want 1", i, n)
		}
	}

	// Third join must be refused by the quota guard.
	n, err := q.AddExtraMember(ctx, club.ID, m3.ID, model.ExtraMemberRoleMember)
	if err != nil {
		t.Fatalf("AddExtraMember over quota: %v", err)
	}
	if n != 0 {
		t.Errorf("join over quota inserted %d rows, want 0", n)
	}

	count, err := q.CountExtraMembers(ctx, club.ID)
	if err != nil {
		t.Fatalf("CountExtraMembers: %v", err)
	}
	if count != 2 {
		t.Errorf("member count = %d, want 2", count)
	}

	// Leave frees a slot, so the refused user can join now.
	removed, err := q.RemoveExtraMember(ctx, club.ID, m1.ID)
	if err != nil || removed != 1 {
		t.Fatalf("RemoveExtraMember = (%d, %v), want (1, nil)", removed, err)
	}
	n, err = q.AddExtraMember(ctx, club.ID, m3.ID, model.ExtraMemberRoleMember)
	if err != nil || n != 1 {
		t.Errorf("join after leave = (%d, %v), want (1, nil)", n, err)
	}

	got, err := q.GetExtraByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("GetExtraByID: %v", err)
	}
	if got.MemberCount != 2 {
		t.Errorf("MemberCount = %d, want 2", got.MemberCount)
	}
	if !got.IsFull() {
		t.Error("club at quota should report full")
	}
}

func TestExtraUnlimitedQuota(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, q, "owner@school.test", model.RoleAdmin)

	club, err := q.CreateExtra(ctx, store.CreateExtraParams{
		Name:     "Open Club",
		Slug:     "open-club",
		Category: model.ExtraCategoryArts,
		IsActive: true,
		UserID:   owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateExtra: %v", err)
	}

	for i := 0; i < 5; i++ {
		u := testutil.SeedUser(t, q, "u"+string(rune('a'+i))+"@school.test", model.RoleMember)
		n, err := q.AddExtraMember(ctx, club.ID, u.ID, model.ExtraMemberRoleMember)
		if err != nil || n != 1 {
			t.Fatalf("join %d on unlimited club = (%d, %v)", i, n, err)
		}
	}
}

func TestDeactivateExpiredAnnouncements(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
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

	current, err := q.CreateAnnouncement(ctx, store.CreateAnnouncementParams{
		Title:       "Current Notice",
		Slug:        "current-notice",
		Type:        model.AnnouncementTypeGeneral,
		Priority:    model.AnnouncementPriorityNormal,
		IsActive:    true,
		PublishedAt: now,
		ExpiresAt:   sql.NullTime{Time: now.Add(time.Hour), Valid: true},
		UserID:      u.ID,
	})
	if err != nil {
		t.Fatalf("CreateAnnouncement: %v", err)
	}

	affected, err := q.DeactivateExpiredAnnouncements(ctx, now)
	if err != nil {
		t.Fatalf("DeactivateExpiredAnnouncements: %v", err)
	}
	if affected != 1 {
		t.Errorf("deactivated %d announcements, want 1", affected)
	}

	got, _ := q.GetAnnouncementByID(ctx, expired.ID)
	if got.IsActive {
		t.Error("expired announcement still active")
	}
	got, _ = q.GetAnnouncementByID(ctx, current.ID)
	if !got.IsActive {
		t.Error("current announcement was deactivated")
	}
}

func TestStaffSubjectsRoundTrip(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "admin@school.test", model.RoleAdmin)

	created, err := q.CreateStaff(ctx, store.CreateStaffParams{
		Name:       "Jane Doe",
		Slug:       "jane-doe",
		Type:       model.StaffTypeTeacher,
		Department: "science",
		Subjects:   []string{"Physics", "Chemistry"},
		IsActive:   true,
		UserID:     u.ID,
	})
	if err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if len(created.Subjects) != 2 || created.Subjects[0] != "Physics" {
		t.Errorf("subjects = %v, want [Physics Chemistry]", created.Subjects)
	}

	got, err := q.GetStaffBySlug(ctx, "jane-doe")
	if err != nil {
		t.Fatalf("GetStaffBySlug: %v", err)
	}
	if len(got.Subjects) != 2 {
		t.Errorf("subjects after reload = %v", got.Subjects)
	}
}

func TestFacilityAmenityFilter(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "admin@school.test", model.RoleAdmin)

	_, err := q.CreateFacility(ctx, store.CreateFacilityParams{
		Name:      "Main Gym",
		Slug:      "main-gym",
		Category:  model.FacilityCategorySports,
		Location:  "Building A",
		Amenities: []string{"showers", "lockers"},
		IsActive:  true,
		UserID:    u.ID,
	})
	if err != nil {
		t.Fatalf("CreateFacility: %v", err)
	}
	_, err = q.CreateFacility(ctx, store.CreateFacilityParams{
		Name:     "Library",
		Slug:     "library",
		Category: model.FacilityCategoryAcademic,
		Location: "Building B",
		IsActive: true,
		UserID:   u.ID,
	})
	if err != nil {
		t.Fatalf("CreateFacility: %v", err)
	}

	withShowers, err := q.ListFacilities(ctx, store.FacilityFilter{Amenity: "showers"})
	if err != nil {
		t.Fatalf("ListFacilities(amenity): %v", err)
	}
	if len(withShowers) != 1 || withShowers[0].Slug != "main-gym" {
		t.Errorf("amenity filter returned %d facilities", len(withShowers))
	}

	bySearch, err := q.ListFacilities(ctx, store.FacilityFilter{Search: "Building B"})
	if err != nil {
		t.Fatalf("ListFacilities(search): %v", err)
	}
	if len(bySearch) != 1 || bySearch[0].Slug != "library" {
		t.Errorf("location search returned %d facilities", len(bySearch))
	}
}

func TestSettingsUpsert(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()

	s, err := q.UpsertSetting(ctx, "site_name", "Springfield High")
	if err != nil {
		t.Fatalf("UpsertSetting: %v", err)
	}
	if s.Value != "Springfield High" {
		t.Errorf("value = %q", s.Value)
	}

	s, err = q.UpsertSetting(ctx, "site_name", "Shelbyville High")
	if err != nil {
		t.Fatalf("UpsertSetting update: %v", err)
	}
	if s.Value != "Shelbyville High" {
		t.Errorf("updated value = %q", s.Value)
	}

	all, err := q.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("upsert created %d rows, want 1", len(all))
	}
}

func TestScheduledPostPublish(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	now := time.Now()

	due, err := q.CreatePost(ctx, store.CreatePostParams{
		Title:       "Scheduled",
		Slug:        "scheduled",
		Status:      model.PostStatusDraft,
		Type:        model.PostTypeNews,
		PublishedAt: sql.NullTime{Time: now.Add(-time.Minute), Valid: true},
		UserID:      u.ID,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	_, err = q.CreatePost(ctx, store.CreatePostParams{
		Title:       "Future",
		Slug:        "future",
		Status:      model.PostStatusDraft,
		Type:        model.PostTypeNews,
		PublishedAt: sql.NullTime{Time: now.Add(time.Hour), Valid: true},
		UserID:      u.ID,
	})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	ready, err := q.ListScheduledPosts(ctx, now)
	if err != nil {
		t.Fatalf("ListScheduledPosts: %v", err)
	}
	if len(ready) != 1 || ready[0].ID != due.ID {
		t.Fatalf("ListScheduledPosts returned %d posts", len(ready))
	}

	if err := q.PublishPost(ctx, due.ID); err != nil {
		t.Fatalf("PublishPost: %v", err)
	}
	got, _ := q.GetPostByID(ctx, due.ID)
	if got.Status != model.PostStatusPublished {
		t.Errorf("status = %q, want published", got.Status)
	}
}

func TestGalleryItems(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "admin@school.test", model.RoleAdmin)

	g, err := q.CreateGallery(ctx, store.CreateGalleryParams{
		Title:    "Open Day",
		Slug:     "open-day",
		IsActive: true,
		UserID:   u.ID,
	})
	if err != nil {
		t.Fatalf("CreateGallery: %v", err)
	}

	m, err := q.CreateMedia(ctx, store.CreateMediaParams{
		UUID:     "11111111-2222-3333-4444-555555555555",
		Filename: "open-day.jpg",
		MimeType: model.MimeTypeJPEG,
		Size:     1024,
		UserID:   u.ID,
	})
	if err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	item, err := q.AddGalleryItem(ctx, store.AddGalleryItemParams{
		GalleryID: g.ID,
		MediaID:   m.ID,
		Caption:   "Front gate",
		Position:  1,
	})
	if err != nil {
		t.Fatalf("AddGalleryItem: %v", err)
	}

	items, err := q.ListGalleryItems(ctx, g.ID)
	if err != nil {
		t.Fatalf("ListGalleryItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("ListGalleryItems returned %d items", len(items))
	}
	if items[0].Media == nil || items[0].Media.Filename != "open-day.jpg" {
		t.Errorf("gallery item media not joined: %+v", items[0])
	}

	// Deleting the gallery cascades to its items.
	if err := q.DeleteGallery(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGallery: %v", err)
	}
	items, _ = q.ListGalleryItems(ctx, g.ID)
	if len(items) != 0 {
		t.Errorf("items survived gallery delete: %d", len(items))
	}
	_ = item
}

func TestDeleteReturnsNotFound(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()

	if err := q.DeletePost(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeletePost missing err = %v, want ErrNotFound", err)
	}
	if err := q.DeleteStaff(ctx, 42); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteStaff missing err = %v, want ErrNotFound", err)
	}
	if err := q.DeleteSetting(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("DeleteSetting missing err = %v, want ErrNotFound", err)
	}
}

func TestForeignKeysOnEveryConnection(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	ctx := context.Background()

	q := store.New(db)
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)
	p := testutil.SeedPost(t, q, u.ID, "Open Day", "open-day")

	// Holding the first connection forces the pool to open a second one.
	conn1, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer func() { _ = conn1.Close() }()
	conn2, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("Conn: %v", err)
	}
	defer func() { _ = conn2.Close() }()

	for i, conn := range []*sql.Conn{conn1, conn2} {
		var fk int64
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("connection %d: reading foreign_keys pragma: %v", i+1, err)
		}
		if fk != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i+1, fk)
		}
	}

	// An orphan link row must be refused on either connection.
	_, err = conn2.ExecContext(ctx,
		`INSERT INTO post_categories (post_id, category_id) VALUES (?, ?)`, p.ID, int64(99999))
	if err == nil {
		t.Error("insert with missing category id succeeded, want foreign key violation")
	}
}

func TestUpdateMediaAlt(t *testing.T) {
	q := newQueries(t)
	ctx := context.Background()
	u := testutil.SeedUser(t, q, "editor@school.test", model.RoleEditor)

	m, err := q.CreateMedia(ctx, store.CreateMediaParams{
		UUID:     "0e8b7c9a-1f2d-4e3b-8a5c-6d7e8f9a0b1c",
		Filename: "gym.jpg",
		MimeType: "image/jpeg",
		Size:     2048,
		UserID:   u.ID,
	})
	if err != nil {
		t.Fatalf("CreateMedia: %v", err)
	}

	updated, err := q.UpdateMediaAlt(ctx, m.ID, "The school gym")
	if err != nil {
		t.Fatalf("UpdateMediaAlt: %v", err)
	}
	if updated.Alt != "The school gym" {
		t.Errorf("alt = %q, want %q", updated.Alt, "The school gym")
	}

	if _, err := q.UpdateMediaAlt(ctx, 99999, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing media err = %v, want ErrNotFound", err)
	}
}
