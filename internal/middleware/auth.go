// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization and rate limiting on the JSON API.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// ContextKeyUser is the context key under which the authenticated user is stored.
const ContextKeyUser ContextKey = "user"

// APIError is the JSON error envelope shared by middleware and handlers.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response in the standard envelope.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// validateBearer parses the Authorization header and resolves the token to a
// user. If required is true and validation fails, an error response is
// written; the second return value reports whether that happened.
func validateBearer(w http.ResponseWriter, r *http.Request, queries *store.Queries, required bool) (*model.User, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
			return nil, true
		}
		return nil, false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <token>", nil)
			return nil, true
		}
		return nil, false
	}

	token, err := queries.GetAuthTokenByHash(r.Context(), model.HashToken(parts[1]))
	if err != nil {
		if required {
			if errors.Is(err, store.ErrNotFound) {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
			} else {
				slog.Error("validating token failed", "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token", nil)
			}
			return nil, true
		}
		return nil, false
	}

	if token.IsExpired() {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Token has expired", nil)
			return nil, true
		}
		return nil, false
	}

	user, err := queries.GetUserByID(r.Context(), token.UserID)
	if err != nil {
		if required {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
			return nil, true
		}
		return nil, false
	}

	updateTokenLastUsed(queries, token.ID)
	user.PasswordHash = ""
	return &user, false
}

// Auth creates middleware that requires a valid bearer token and injects the
// user into the request context.
func Auth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, errorWritten := validateBearer(w, r, queries, true)
			if errorWritten {
				return
			}
			addUserToContext(next, w, r, *user)
		})
	}
}

// OptionalAuth creates middleware that injects the user when a valid bearer
// token is presented but lets anonymous requests through.
func OptionalAuth(db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, _ := validateBearer(w, r, queries, false)
			if user == nil {
				next.ServeHTTP(w, r)
				return
			}
			addUserToContext(next, w, r, *user)
		})
	}
}

// GetUser retrieves the authenticated user from the request context.
// Returns nil for anonymous requests.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// RequireEditor requires an authenticated admin or editor. Use after Auth.
func RequireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		if !user.CanManageContent() {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Editor role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin requires an authenticated admin. Use after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r)
		if user == nil {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authentication required", nil)
			return
		}
		if !user.IsAdmin() {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin role required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// updateTokenLastUsed stamps the token in a background goroutine so the
// request path never blocks on the bookkeeping write.
func updateTokenLastUsed(queries *store.Queries, tokenID int64) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queries.UpdateAuthTokenLastUsed(ctx, tokenID, time.Now())
	}()
}

func addUserToContext(next http.Handler, w http.ResponseWriter, r *http.Request, user model.User) {
	ctx := context.WithValue(r.Context(), ContextKeyUser, user)
	next.ServeHTTP(w, r.WithContext(ctx))
}
