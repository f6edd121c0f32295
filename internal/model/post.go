// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Post statuses
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post types
const (
	PostTypeNews    = "news"
	PostTypeEvent   = "event"
	PostTypeArticle = "article"
)

// ValidPostStatus reports whether s is a recognized post status.
func ValidPostStatus(s string) bool {
	return s == PostStatusDraft || s == PostStatusPublished || s == PostStatusArchived
}

// ValidPostType reports whether s is a recognized post type.
func ValidPostType(s string) bool {
	return s == PostTypeNews || s == PostTypeEvent || s == PostTypeArticle
}

// Post represents a news/blog entry on the school site.
type Post struct {
	ID              int64         `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Content         string        `json:"content"`
	Excerpt         string        `json:"excerpt"`
	Status          string        `json:"status"`
	Type            string        `json:"type"`
	ViewCount       int64         `json:"view_count"`
	LikeCount       int64         `json:"like_count"`
	IsFeatured      bool          `json:"is_featured"`
	IsPinned        bool          `json:"is_pinned"`
	FeaturedImageID sql.NullInt64 `json:"-"`
	PublishedAt     sql.NullTime  `json:"-"`
	UserID          int64         `json:"user_id"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`

	// Eager-loaded relations, populated by the store when requested.
	Author     *User      `json:"author,omitempty"`
	Categories []Category `json:"categories,omitempty"`
}

// IsPublished returns true if the post is published.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// Category is a taxonomy term shared by posts and announcements.
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}
