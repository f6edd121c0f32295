// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Extra categories
const (
	ExtraCategorySports  = "sports"
	ExtraCategoryArts    = "arts"
	ExtraCategoryScience = "science"
	ExtraCategoryMusic   = "music"
	ExtraCategoryService = "service"
)

// ExtraCategoryLabels maps machine category keys to display strings.
var ExtraCategoryLabels = map[string]string{
	ExtraCategorySports:  "Sports",
	ExtraCategoryArts:    "Arts & Crafts",
	ExtraCategoryScience: "Science & Technology",
	ExtraCategoryMusic:   "Music",
	ExtraCategoryService: "Community Service",
}

// Membership roles on the extra_members pivot.
const (
	ExtraMemberRoleMember = "member"
	ExtraMemberRoleLeader = "leader"
)

// Extra represents an extracurricular club with an optional member quota.
type Extra struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Slug        string        `json:"slug"`
	Description string        `json:"description"`
	Category    string        `json:"category"`
	Schedule    string        `json:"schedule,omitempty"`
	Location    string        `json:"location,omitempty"`
	Quota       sql.NullInt64 `json:"-"`
	ImageID     sql.NullInt64 `json:"-"`
	IsActive    bool          `json:"is_active"`
	IsFeatured  bool          `json:"is_featured"`
	UserID      int64         `json:"user_id"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	// MemberCount is populated by list/detail queries.
	MemberCount int64 `json:"member_count"`
}

// MarshalJSON exposes the quota as a nullable "quota" field so clients can
// render member_count against the limit; null means unlimited.
func (e Extra) MarshalJSON() ([]byte, error) {
	type alias Extra
	aux := struct {
		alias
		Quota *int64 `json:"quota"`
	}{alias: alias(e)}
	if e.Quota.Valid {
		aux.Quota = &e.Quota.Int64
	}
	return json.Marshal(aux)
}

// HasQuota reports whether the club limits its membership.
func (e *Extra) HasQuota() bool {
	return e.Quota.Valid
}

// IsFull reports whether the club is at or over its quota.
func (e *Extra) IsFull() bool {
	return e.Quota.Valid && e.MemberCount >= e.Quota.Int64
}

// ExtraMember is a membership pivot row carrying role and join time.
type ExtraMember struct {
	ExtraID  int64     `json:"extra_id"`
	UserID   int64     `json:"user_id"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	User *User `json:"user,omitempty"`
}
