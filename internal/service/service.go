// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the business rules between the HTTP handlers
// and the store: slug generation, entity hooks, caching and transactions.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/olegiv/scms-go/internal/store"
	"github.com/olegiv/scms-go/internal/util"
)

// ValidationError carries per-field validation failures to the handler
// layer, which renders them as a 422 with a field map.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

// Hooks holds optional callbacks that entity services run around their
// create and update paths. Services embed behavior by passing a Hooks
// value rather than overriding methods.
type Hooks[T any] struct {
	BeforeCreate func(ctx context.Context, entity *T) error
	AfterCreate  func(ctx context.Context, entity *T) error
	BeforeUpdate func(ctx context.Context, entity *T) error
	AfterUpdate  func(ctx context.Context, entity *T) error
}

func (h Hooks[T]) runBeforeCreate(ctx context.Context, entity *T) error {
	if h.BeforeCreate != nil {
		return h.BeforeCreate(ctx, entity)
	}
	return nil
}

func (h Hooks[T]) runAfterCreate(ctx context.Context, entity *T) error {
	if h.AfterCreate != nil {
		return h.AfterCreate(ctx, entity)
	}
	return nil
}

func (h Hooks[T]) runBeforeUpdate(ctx context.Context, entity *T) error {
	if h.BeforeUpdate != nil {
		return h.BeforeUpdate(ctx, entity)
	}
	return nil
}

func (h Hooks[T]) runAfterUpdate(ctx context.Context, entity *T) error {
	if h.AfterUpdate != nil {
		return h.AfterUpdate(ctx, entity)
	}
	return nil
}

// EnsureUniqueSlug derives a slug from the given name and disambiguates it
// with a numeric suffix until it is free in the entity's table.
func EnsureUniqueSlug(ctx context.Context, q *store.Queries, table, name string) (string, error) {
	base := util.Slugify(name)
	if base == "" {
		base = "item"
	}

	slug := base
	for n := 1; ; n++ {
		exists, err := q.SlugExists(ctx, table, slug)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", slug, err)
		}
		if !exists {
			return slug, nil
		}
		slug = util.SlugWithSuffix(base, n)
	}
}

// ResolveSlug picks the slug for a create or update. An explicit requested
// slug wins if valid and either unchanged or free; otherwise a fresh slug
// is derived from the name. current is empty on create.
func ResolveSlug(ctx context.Context, q *store.Queries, table, requested, current, name string) (string, error) {
	if requested != "" {
		if !util.IsValidSlug(requested) {
			return "", NewValidationError("slug", "must contain only lowercase letters, digits and hyphens")
		}
		if requested == current {
			return current, nil
		}
		exists, err := q.SlugExists(ctx, table, requested)
		if err != nil {
			return "", fmt.Errorf("checking slug %q: %w", requested, err)
		}
		if exists {
			return "", NewValidationError("slug", "already in use")
		}
		return requested, nil
	}

	if current != "" {
		return current, nil
	}
	return EnsureUniqueSlug(ctx, q, table, name)
}
