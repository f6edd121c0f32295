// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
)

// TokenTTL is how long an issued bearer token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidCredentials is returned when the email or password is wrong.
// Callers must not reveal which of the two failed.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrTokenExpired is returned when a presented token is past its expiry.
var ErrTokenExpired = errors.New("token expired")

// LoginResult carries the raw bearer token issued at login. The raw token is
// never stored and cannot be recovered later.
type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AuthService implements login, token validation, rotation and revocation.
type AuthService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(db *sql.DB, logger *slog.Logger) *AuthService {
	return &AuthService{
		queries: store.New(db),
		logger:  logger,
	}
}

// Register creates a user account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, email, password, name, role string) (model.User, error) {
	fields := map[string]string{}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "is not a valid email address"
	}
	if len(password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if name == "" {
		fields["name"] = "is required"
	}
	switch role {
	case model.RoleAdmin, model.RoleEditor, model.RoleMember:
	case "":
		role = model.RoleMember
	default:
		fields["role"] = "is not a recognized role"
	}
	if len(fields) > 0 {
		return model.User{}, &ValidationError{Fields: fields}
	}

	if _, err := s.queries.GetUserByEmail(ctx, email); err == nil {
		return model.User{}, NewValidationError("email", "is already registered")
	} else if !errors.Is(err, store.ErrNotFound) {
		return model.User{}, fmt.Errorf("checking email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         role,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("creating user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	user.PasswordHash = ""
	return user, nil
}

// Login checks credentials and issues a fresh bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn comparable time so missing accounts are not distinguishable
			// from wrong passwords.
			_ = bcrypt.CompareHashAndPassword([]byte("$2a$10$0000000000000000000000000000000000000000000000000000"), []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("login failed", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.queries.UpdateUserLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("stamping last login failed", "user_id", user.ID, "error", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return result, nil
}

// Authenticate resolves a raw bearer token to its user and stamps the token
// as used. Expired tokens are rejected and removed.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.User, error) {
	t, err := s.queries.GetAuthTokenByHash(ctx, model.HashToken(token))
	if err != nil {
		return model.User{}, err
	}

	if t.IsExpired() {
		_ = s.queries.DeleteAuthToken(ctx, t.ID)
		return model.User{}, ErrTokenExpired
	}

	user, err := s.queries.GetUserByID(ctx, t.UserID)
	if err != nil {
		return model.User{}, err
	}

	if err := s.queries.UpdateAuthTokenLastUsed(ctx, t.ID, time.Now()); err != nil {
		s.logger.Warn("stamping token use failed", "token_id", t.ID, "error", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// Refresh rotates a token: the presented token is revoked and a new one
// with a fresh expiry is issued for the same user.
func (s *AuthService) Refresh(ctx context.Context, token string) (*LoginResult, error) {
	t, err := s.queries.GetAuthTokenByHash(ctx, model.HashToken(token))
	if err != nil {
		return nil, err
	}
	if t.IsExpired() {
		_ = s.queries.DeleteAuthToken(ctx, t.ID)
		return nil, ErrTokenExpired
	}

	user, err := s.queries.GetUserByID(ctx, t.UserID)
	if err != nil {
		return nil, err
	}

	result, err := s.issueToken(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.queries.DeleteAuthToken(ctx, t.ID); err != nil {
		s.logger.Warn("revoking rotated token failed", "token_id", t.ID, "error", err)
	}

	s.logger.Info("token refreshed", "user_id", user.ID)
	return result, nil
}

// Logout revokes the presented token. Unknown tokens are not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	t, err := s.queries.GetAuthTokenByHash(ctx, model.HashToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	if err := s.queries.DeleteAuthToken(ctx, t.ID); err != nil {
		return fmt.Errorf("revoking token: %w", err)
	}
	s.logger.Info("user logged out", "user_id", t.UserID)
	return nil
}

// PurgeExpiredTokens deletes tokens past their expiry. Used by the scheduler.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.queries.DeleteExpiredAuthTokens(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("purging expired tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info("expired tokens purged", "count", n)
	}
	return n, nil
}

func (s *AuthService) issueToken(ctx context.Context, user model.User) (*LoginResult, error) {
	raw, err := model.GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	expiresAt := time.Now().Add(TokenTTL)
	if _, err := s.queries.CreateAuthToken(ctx, store.CreateAuthTokenParams{
		UserID:    user.ID,
		TokenHash: model.HashToken(raw),
		ExpiresAt: expiresAt,
	}); err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResult{
		Token:     raw,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
