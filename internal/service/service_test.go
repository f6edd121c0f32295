// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service_test

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/testutil"
)

func newTestEnv(t *testing.T) (*sql.DB, *cache.Manager) {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	backend := cache.NewSimpleMemoryCache(time.Minute)
	cm := cache.NewManager(backend, testutil.TestLogger())
	t.Cleanup(func() { _ = cm.Close() })

	return db, cm
}

func TestEnsureUniqueSlugSuffixes(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())

	var slugs []string
	for i := 0; i < 3; i++ {
		post, err := svc.Create(ctx, service.PostInput{
			Title:  "Open Day",
			Status: model.PostStatusPublished,
		}, user.ID)
		require.NoError(t, err)
		slugs = append(slugs, post.Slug)
	}

	assert.Equal(t, []string{"open-day", "open-day-1", "open-day-2"}, slugs)
}

func TestResolveSlugRequested(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())

	// An explicit free slug wins over the derived one.
	post, err := svc.Create(ctx, service.PostInput{Title: "Open Day", Slug: "tag-der-offenen-tuer"}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "tag-der-offenen-tuer", post.Slug)

	// A malformed slug is a validation error.
	_, err = svc.Create(ctx, service.PostInput{Title: "Another", Slug: "Not A Slug!"}, user.ID)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "slug")

	// A taken slug is a validation error, not a silent suffix.
	_, err = svc.Create(ctx, service.PostInput{Title: "Another", Slug: "tag-der-offenen-tuer"}, user.ID)
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "slug")

	// On update, keeping the own slug is fine.
	updated, err := svc.Update(ctx, post.ID, service.PostInput{
		Title: "Open Day 2026", Slug: "tag-der-offenen-tuer",
	})
	require.NoError(t, err)
	assert.Equal(t, "tag-der-offenen-tuer", updated.Slug)
}

func TestPostCreateRollsBackOnBadCategory(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())

	_, err := svc.Create(ctx, service.PostInput{
		Title:       "Sports Day",
		Status:      model.PostStatusPublished,
		CategoryIDs: []int64{9999},
	}, user.ID)
	require.Error(t, err)

	// The whole transaction must roll back: no post row, slug free again.
	_, err = q.GetPostBySlug(ctx, "sports-day")
	assert.ErrorIs(t, err, store.ErrNotFound)

	post, err := svc.Create(ctx, service.PostInput{Title: "Sports Day"}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "sports-day", post.Slug)
}

func TestPostHooksComposition(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	var afterID int64
	svc := service.NewPostService(db, cm, testutil.TestLogger()).WithHooks(service.Hooks[model.Post]{
		BeforeCreate: func(ctx context.Context, p *model.Post) error {
			p.Title = strings.ToUpper(p.Title)
			return nil
		},
		AfterCreate: func(ctx context.Context, p *model.Post) error {
			afterID = p.ID
			return nil
		},
	})

	post, err := svc.Create(ctx, service.PostInput{
		Title:  "open day",
		Status: model.PostStatusPublished,
	}, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN DAY", post.Title)
	assert.Equal(t, post.ID, afterID)

	// The pre-create mutation must be in the stored row, not just the
	// returned value.
	stored, err := q.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "OPEN DAY", stored.Title)
}

func TestPostBeforeCreateHookAbortsInsert(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	boom := errors.New("rejected by hook")
	svc := service.NewPostService(db, cm, testutil.TestLogger()).WithHooks(service.Hooks[model.Post]{
		BeforeCreate: func(ctx context.Context, p *model.Post) error {
			return boom
		},
	})

	_, err := svc.Create(ctx, service.PostInput{Title: "Blocked Post"}, user.ID)
	require.ErrorIs(t, err, boom)

	_, err = q.GetPostBySlug(ctx, "blocked-post")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMediaUpdateAlt(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	m, err := q.CreateMedia(ctx, store.CreateMediaParams{
		UUID:     "5a1b2c3d-4e5f-4a6b-8c7d-9e0f1a2b3c4d",
		Filename: "library.jpg",
		MimeType: "image/jpeg",
		Size:     1024,
		UserID:   user.ID,
	})
	require.NoError(t, err)

	svc := service.NewMediaService(db, cm, testutil.TestLogger(), t.TempDir())

	updated, err := svc.UpdateAlt(ctx, m.ID, "Reading corner in the library")
	require.NoError(t, err)
	assert.Equal(t, "Reading corner in the library", updated.Alt)

	_, err = svc.UpdateAlt(ctx, 99999, "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostContentRendering(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())

	post, err := svc.Create(ctx, service.PostInput{
		Title:           "Newsletter",
		Content:         "# Welcome\n\nBack to school. <script>alert(1)</script>",
		ContentMarkdown: true,
	}, user.ID)
	require.NoError(t, err)

	assert.Contains(t, post.Content, "<h1")
	assert.Contains(t, post.Content, "Back to school.")
	assert.NotContains(t, post.Content, "<script>")
}

func TestPostListCacheAndInvalidation(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())

	first, err := svc.Create(ctx, service.PostInput{
		Title: "First", Status: model.PostStatusPublished,
	}, user.ID)
	require.NoError(t, err)

	filter := store.PostFilter{Status: model.PostStatusPublished, Limit: 10}

	list, err := svc.List(ctx, filter)
	require.NoError(t, err)
	require.EqualValues(t, 1, list.Total)

	// Write behind the service's back: the cached list must not notice.
	testutil.SeedPost(t, q, user.ID, "Sneaky", "sneaky")

	list, err = svc.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 1, list.Total, "list should be served from cache")

	// A service write invalidates the named list keys.
	_, err = svc.Update(ctx, first.ID, service.PostInput{
		Title: "First", Status: model.PostStatusPublished,
	})
	require.NoError(t, err)

	list, err = svc.List(ctx, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total, "update should have invalidated the list cache")
}

func TestPostDetailCacheInvalidatedOnDelete(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)

	svc := service.NewPostService(db, cm, testutil.TestLogger())
	post := testutil.SeedPost(t, q, user.ID, "Cached", "cached")

	got, err := svc.GetBySlug(ctx, "cached")
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)

	require.NoError(t, svc.Delete(ctx, post.ID))

	_, err = svc.GetBySlug(ctx, "cached")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestExtraJoinLeaveFlow(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)
	alice := testutil.SeedUser(t, q, "alice@example.com", model.RoleMember)
	bob := testutil.SeedUser(t, q, "bob@example.com", model.RoleMember)
	carol := testutil.SeedUser(t, q, "carol@example.com", model.RoleMember)

	svc := service.NewExtraService(db, cm, testutil.TestLogger())

	quota := int64(2)
	club, err := svc.Create(ctx, service.ExtraInput{
		Name:     "Chess Club",
		Category: model.ExtraCategorySports,
		Quota:    &quota,
		IsActive: true,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "chess-club", club.Slug)

	res, err := svc.Join(ctx, club.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinOK, res.Status)
	assert.True(t, res.OK)
	assert.EqualValues(t, 1, res.Extra.MemberCount)

	// Joining twice is reported, not an error.
	res, err = svc.Join(ctx, club.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinAlreadyMember, res.Status)
	assert.False(t, res.OK)

	res, err = svc.Join(ctx, club.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinOK, res.Status)

	// Quota of 2 is reached.
	res, err = svc.Join(ctx, club.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinFull, res.Status)

	// Leaving frees a slot.
	res, err = svc.Leave(ctx, club.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, service.LeaveOK, res.Status)

	res, err = svc.Leave(ctx, club.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, service.LeaveNotMember, res.Status)

	res, err = svc.Join(ctx, club.ID, carol.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinOK, res.Status)
	assert.EqualValues(t, 2, res.Extra.MemberCount)
}

func TestExtraJoinInactiveClub(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)
	alice := testutil.SeedUser(t, q, "alice@example.com", model.RoleMember)

	svc := service.NewExtraService(db, cm, testutil.TestLogger())

	club, err := svc.Create(ctx, service.ExtraInput{
		Name:     "Dormant Society",
		IsActive: false,
	}, admin.ID)
	require.NoError(t, err)

	res, err := svc.Join(ctx, club.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, service.JoinInactive, res.Status)
	assert.False(t, res.OK)

	members, err := svc.Members(ctx, club.ID)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestExtraMembersHidePasswordHash(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)
	alice := testutil.SeedUser(t, q, "alice@example.com", model.RoleMember)

	svc := service.NewExtraService(db, cm, testutil.TestLogger())

	club, err := svc.Create(ctx, service.ExtraInput{Name: "Drama Club", IsActive: true}, admin.ID)
	require.NoError(t, err)

	_, err = svc.Join(ctx, club.ID, alice.ID)
	require.NoError(t, err)

	members, err := svc.Members(ctx, club.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	require.NotNil(t, members[0].User)
	assert.Equal(t, alice.ID, members[0].User.ID)
	assert.Empty(t, members[0].User.PasswordHash)
}

func TestStaffCreateAndReorder(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)

	svc := service.NewStaffService(db, cm, testutil.TestLogger())

	first, err := svc.Create(ctx, service.StaffInput{
		Name:       "Maria Novak",
		Department: "mathematics",
		Subjects:   []string{"Algebra", "Geometry"},
		IsActive:   true,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria-novak", first.Slug)
	assert.Equal(t, model.StaffTypeTeacher, first.Type, "type defaults to teacher")
	assert.Equal(t, []string{"Algebra", "Geometry"}, first.Subjects)

	second, err := svc.Create(ctx, service.StaffInput{
		Name: "Maria Novak", Department: "arts", IsActive: true,
	}, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "maria-novak-1", second.Slug)

	_, err = svc.Create(ctx, service.StaffInput{Name: "Bad Type", Type: "janitor"}, admin.ID)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "type")

	require.NoError(t, svc.Reorder(ctx, []int64{second.ID, first.ID}))

	items, _, err := svc.List(ctx, store.StaffFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestAnnouncementValidation(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)

	svc := service.NewAnnouncementService(db, cm, testutil.TestLogger())

	published := time.Now()
	expired := published.Add(-time.Hour)
	_, err := svc.Create(ctx, service.AnnouncementInput{
		Title:       "Backwards",
		PublishedAt: &published,
		ExpiresAt:   &expired,
	}, admin.ID)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "expires_at")
}

func TestSettingCachedReads(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()

	svc := service.NewSettingService(db, cm, testutil.TestLogger())

	_, err := svc.Set(ctx, "site_name", "Riverside School")
	require.NoError(t, err)

	got, err := svc.Get(ctx, "site_name")
	require.NoError(t, err)
	assert.Equal(t, "Riverside School", got.Value)

	// Set refreshes the cached entry.
	_, err = svc.Set(ctx, "site_name", "Riverside Academy")
	require.NoError(t, err)

	assert.Equal(t, "Riverside Academy", svc.GetValue(ctx, "site_name", "fallback"))
	assert.Equal(t, "fallback", svc.GetValue(ctx, "missing_key", "fallback"))
}

func TestAuthLifecycle(t *testing.T) {
	db, _ := newTestEnv(t)
	ctx := context.Background()

	svc := service.NewAuthService(db, testutil.TestLogger())

	user, err := svc.Register(ctx, "head@example.com", "correct horse", "Head Teacher", model.RoleAdmin)
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "head@example.com", "correct horse", "Duplicate", model.RoleAdmin)
	var ve *service.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "email")

	_, err = svc.Login(ctx, "head@example.com", "wrong password")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	login, err := svc.Login(ctx, "head@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
	assert.True(t, login.ExpiresAt.After(time.Now()))

	authed, err := svc.Authenticate(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)
	assert.Empty(t, authed.PasswordHash)

	// Refresh rotates: the old token stops working, the new one works.
	refreshed, err := svc.Refresh(ctx, login.Token)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token, refreshed.Token)

	_, err = svc.Authenticate(ctx, login.Token)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = svc.Authenticate(ctx, refreshed.Token)
	require.NoError(t, err)

	// Logout revokes; logging out twice is harmless.
	require.NoError(t, svc.Logout(ctx, refreshed.Token))
	require.NoError(t, svc.Logout(ctx, refreshed.Token))

	_, err = svc.Authenticate(ctx, refreshed.Token)
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGalleryItemOrdering(t *testing.T) {
	db, cm := newTestEnv(t)
	ctx := context.Background()
	q := store.New(db)
	admin := testutil.SeedUser(t, q, "admin@example.com", model.RoleAdmin)

	svc := service.NewGalleryService(db, cm, testutil.TestLogger())

	gallery, err := svc.Create(ctx, service.GalleryInput{Title: "Sports Day", IsActive: true}, admin.ID)
	require.NoError(t, err)

	var mediaIDs []int64
	for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		m, err := q.CreateMedia(ctx, store.CreateMediaParams{
			UUID:     "uuid-" + name,
			Filename: name,
			MimeType: model.MimeTypeJPEG,
			Size:     100,
			UserID:   admin.ID,
		})
		require.NoError(t, err)
		mediaIDs = append(mediaIDs, m.ID)
	}

	var itemIDs []int64
	for i, id := range mediaIDs {
		item, err := svc.AddItem(ctx, gallery.ID, id, "")
		require.NoError(t, err)
		assert.EqualValues(t, i+1, item.Position, "items append at the end")
		itemIDs = append(itemIDs, item.ID)
	}

	// Unknown media is rejected before any row is written.
	_, err = svc.AddItem(ctx, gallery.ID, 9999, "")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.ReorderItems(ctx, []int64{itemIDs[2], itemIDs[0], itemIDs[1]}))

	got, err := svc.Get(ctx, gallery.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, itemIDs[2], got.Items[0].ID)
	assert.Equal(t, itemIDs[0], got.Items[1].ID)
	assert.Equal(t, itemIDs[1], got.Items[2].ID)
}
