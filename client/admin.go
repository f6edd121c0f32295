// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package client

import (
	"context"
	"time"
)

// Admin wraps a Client with the authenticated flows: login, token refresh,
// logout and the current-user lookup. Writes go through the embedded
// client verbs so the bearer token is attached automatically.
type Admin struct {
	*Client
}

// NewAdmin creates an admin client. The GET cache is disabled because
// admin screens need to see their own writes immediately.
func NewAdmin(baseURL string, opts ...Option) *Admin {
	opts = append([]Option{WithCacheTTL(0)}, opts...)
	return &Admin{Client: New(baseURL, opts...)}
}

// Session is the token payload returned by login and refresh.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

// User is the account shape returned by the auth endpoints.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Login exchanges credentials for a bearer token and stores it.
func (a *Admin) Login(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	err := a.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	if err != nil {
		return nil, err
	}
	a.SetToken(session.Token)
	return &session, nil
}

// Refresh rotates the stored token. The old token is revoked server-side.
func (a *Admin) Refresh(ctx context.Context) (*Session, error) {
	var session Session
	if err := a.Post(ctx, "/auth/refresh", nil, &session); err != nil {
		return nil, err
	}
	a.SetToken(session.Token)
	return &session, nil
}

// Logout revokes the stored token and forgets it locally.
func (a *Admin) Logout(ctx context.Context) error {
	err := a.Post(ctx, "/auth/logout", nil, nil)
	a.SetToken("")
	return err
}

// Me returns the account behind the stored token.
func (a *Admin) Me(ctx context.Context) (*User, error) {
	var user User
	if _, err := a.Get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
