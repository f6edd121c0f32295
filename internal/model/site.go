// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Slider is a homepage hero slide.
type Slider struct {
	ID        int64         `json:"id"`
	Title     string        `json:"title"`
	Subtitle  string        `json:"subtitle,omitempty"`
	MediaID   sql.NullInt64 `json:"-"`
	LinkURL   string        `json:"link_url,omitempty"`
	IsActive  bool          `json:"is_active"`
	Position  int64         `json:"position"`
	UserID    int64         `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Media *Media `json:"media,omitempty"`
}

// Setting is a key-value site configuration record.
type Setting struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
