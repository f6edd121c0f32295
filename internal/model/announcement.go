// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Announcement types
const (
	AnnouncementTypeGeneral  = "general"
	AnnouncementTypeAcademic = "academic"
	AnnouncementTypeUrgent   = "urgent"
)

// Announcement priorities
const (
	AnnouncementPriorityLow    = "low"
	AnnouncementPriorityNormal = "normal"
	AnnouncementPriorityHigh   = "high"
)

// ValidAnnouncementType reports whether s is a recognized announcement type.
func ValidAnnouncementType(s string) bool {
	return s == AnnouncementTypeGeneral || s == AnnouncementTypeAcademic || s == AnnouncementTypeUrgent
}

// ValidAnnouncementPriority reports whether s is a recognized priority.
func ValidAnnouncementPriority(s string) bool {
	return s == AnnouncementPriorityLow || s == AnnouncementPriorityNormal || s == AnnouncementPriorityHigh
}

// Announcement represents a dated notice, optionally expiring.
type Announcement struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Type        string        `json:"type"`
	Priority    string        `json:"priority"`
	IsPinned    bool          `json:"is_pinned"`
	IsActive    bool          `json:"is_active"`
	PublishedAt time.Time     `json:"published_at"`
	ExpiresAt   sql.NullTime  `json:"-"`
	CategoryID  sql.NullInt64 `json:"-"`
	UserID      int64         `json:"user_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Author   *User     `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
}

// IsExpired reports whether the announcement is past its expiry date.
func (a *Announcement) IsExpired() bool {
	return a.ExpiresAt.Valid && time.Now().After(a.ExpiresAt.Time)
}
