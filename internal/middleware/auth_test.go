// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/testutil"
)

func issueTestToken(t *testing.T, q *store.Queries, userID int64, expiresAt time.Time) string {
	t.Helper()

	raw, err := model.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := q.CreateAuthToken(context.Background(), store.CreateAuthTokenParams{
		UserID:    userID,
		TokenHash: model.HashToken(raw),
		ExpiresAt: expiresAt,
	}); err != nil {
		t.Fatalf("CreateAuthToken: %v", err)
	}
	return raw
}

func TestAuthMissingHeader(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	handler := Auth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMalformedHeader(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	handler := Auth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	for _, header := range []string{"Basic abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: expected 401, got %d", header, rec.Code)
		}
	}
}

func TestAuthValidToken(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)

	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)
	raw := issueTestToken(t, q, user.ID, time.Now().Add(time.Hour))

	var got *model.User
	handler := Auth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetUser(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got == nil || got.ID != user.ID {
		t.Fatalf("expected user %d in context, got %+v", user.ID, got)
	}
	if got.PasswordHash != "" {
		t.Error("password hash must be cleared before entering the context")
	}
}

func TestAuthExpiredToken(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	q := store.New(db)

	user := testutil.SeedUser(t, q, "editor@example.com", model.RoleEditor)
	raw := issueTestToken(t, q, user.ID, time.Now().Add(-time.Minute))

	handler := Auth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestOptionalAuthAnonymous(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	reached := false
	handler := OptionalAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if GetUser(r) != nil {
			t.Error("expected no user for anonymous request")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !reached {
		t.Error("anonymous request must pass through optional auth")
	}
}

func TestOptionalAuthBadTokenStillPasses(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()

	reached := false
	handler := OptionalAuth(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !reached || rec.Code != http.StatusOK {
		t.Errorf("expected pass-through, got code %d reached %v", rec.Code, reached)
	}
}

func requestWithUser(user model.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := context.WithValue(req.Context(), ContextKeyUser, user)
	return req.WithContext(ctx)
}

func TestRequireEditor(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleEditor, http.StatusOK},
		{model.RoleMember, http.StatusForbidden},
	}

	handler := RequireEditor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithUser(model.User{ID: 1, Role: tt.role}))
		if rec.Code != tt.want {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.want, rec.Code)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleEditor, http.StatusForbidden},
		{model.RoleMember, http.StatusForbidden},
	}

	handler := RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, requestWithUser(model.User{ID: 1, Role: tt.role}))
		if rec.Code != tt.want {
			t.Errorf("role %s: expected %d, got %d", tt.role, tt.want, rec.Code)
		}
	}
}

func TestRequireEditorWithoutUser(t *testing.T) {
	handler := RequireEditor(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
