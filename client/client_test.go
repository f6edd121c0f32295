// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"Open Day"}],"meta":{"total":1,"page":1,"per_page":20,"pages":1}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var posts []struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	meta, err := c.Get(context.Background(), "/posts", nil, &posts)
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, int64(1), meta.Total)
	require.Len(t, posts, 1)
	assert.Equal(t, "Open Day", posts[0].Title)
}

func TestGetCachesWithinTTL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":{"value":"cached"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCacheTTL(time.Minute))

	var out struct {
		Value string `json:"value"`
	}
	_, err := c.Get(context.Background(), "/settings/site_name", nil, &out)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/settings/site_name", nil, &out)
	require.NoError(t, err)

	assert.Equal(t, 1, hits)
	assert.Equal(t, "cached", out.Value)

	c.ClearCache()
	_, err = c.Get(context.Background(), "/settings/site_name", nil, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestGetCacheDisabled(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithCacheTTL(0))
	_, err := c.Get(context.Background(), "/posts", nil, nil)
	require.NoError(t, err)
	_, err = c.Get(context.Background(), "/posts", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"post not found"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Get(context.Background(), "/posts/999", nil, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUnauthorizedWipesTokenAndFiresCallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"Token has expired"}}`))
	}))
	defer srv.Close()

	fired := false
	c := New(srv.URL, WithToken("stale-token"), WithOnUnauthorized(func() { fired = true }))

	err := c.Post(context.Background(), "/posts", map[string]string{"title": "x"}, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.True(t, fired)
	assert.Empty(t, c.Token())
}

func TestValidationErrorCarriesDetails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"validation_error","message":"Validation failed","details":{"title":"is required"}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), "/posts", map[string]string{}, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "is required", apiErr.Details["title"])
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("secret-token"), WithCacheTTL(0))
	_, err := c.Get(context.Background(), "/auth/me", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
}

func TestDeleteHandlesNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Delete(context.Background(), "/posts/1"))
}

func TestUploadSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()

		assert.Equal(t, "report.pdf", header.Filename)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{"id": 7}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	var out struct {
		ID int64 `json:"id"`
	}
	err := c.Upload(context.Background(), "/media", "file", "report.pdf", strings.NewReader("%PDF-1.4"), &out)
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.ID)
}

func TestAdminLoginStoresToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "admin@example.com", body["email"])
			_, _ = w.Write([]byte(`{"data":{"token":"issued-token","expires_at":"2026-09-06T00:00:00Z","user":{"id":1,"email":"admin@example.com","name":"Admin","role":"admin"}}}`))
		case "/auth/me":
			assert.Equal(t, "Bearer issued-token", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"data":{"id":1,"email":"admin@example.com","name":"Admin","role":"admin"}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	a := NewAdmin(srv.URL)
	session, err := a.Login(context.Background(), "admin@example.com", "changeme")
	require.NoError(t, err)
	assert.Equal(t, "issued-token", session.Token)
	assert.Equal(t, "issued-token", a.Token())

	user, err := a.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
}

func TestAdminLogoutForgetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	a := NewAdmin(srv.URL, WithToken("issued-token"))
	require.NoError(t, a.Logout(context.Background()))
	assert.Empty(t, a.Token())
}
