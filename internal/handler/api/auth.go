// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/scms-go/internal/middleware"
)

// LoginRequest is the request body for POST /api/v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the request body for account creation. Role is only
// honored on the admin route, the public signup always creates a member.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role,omitempty"`
}

// Login handles POST /api/v1/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password are required", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleError(w, err, "login")
		return
	}
	WriteSuccess(w, result, nil)
}

// Register handles POST /api/v1/auth/register, the public member signup.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, "")
	if err != nil {
		h.handleError(w, err, "user")
		return
	}
	WriteCreated(w, user)
}

// CreateUser handles POST /api/v1/users, the admin route that may assign
// any role.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		h.handleError(w, err, "user")
		return
	}
	WriteCreated(w, user)
}

// Refresh handles POST /api/v1/auth/refresh. The presented token is revoked
// and a fresh one returned.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		WriteUnauthorized(w, "Missing bearer token")
		return
	}

	result, err := h.auth.Refresh(r.Context(), token)
	if err != nil {
		h.handleError(w, err, "token")
		return
	}
	WriteSuccess(w, result, nil)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		WriteUnauthorized(w, "Missing bearer token")
		return
	}

	if err := h.auth.Logout(r.Context(), token); err != nil {
		h.handleError(w, err, "logout")
		return
	}
	WriteNoContent(w)
}

// Me handles GET /api/v1/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	WriteSuccess(w, user, nil)
}

// bearerToken extracts the raw token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}
