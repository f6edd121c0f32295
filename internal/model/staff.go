// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Staff types
const (
	StaffTypeTeacher    = "teacher"
	StaffTypeAdmin      = "admin"
	StaffTypeHeadmaster = "headmaster"
	StaffTypeCounselor  = "counselor"
	StaffTypeSupport    = "support"
)

// StaffTypes lists all recognized staff types.
func StaffTypes() []string {
	return []string{
		StaffTypeTeacher,
		StaffTypeAdmin,
		StaffTypeHeadmaster,
		StaffTypeCounselor,
		StaffTypeSupport,
	}
}

// ValidStaffType reports whether s is a recognized staff type.
func ValidStaffType(s string) bool {
	for _, t := range StaffTypes() {
		if s == t {
			return true
		}
	}
	return false
}

// DepartmentLabels maps machine department keys to display strings.
var DepartmentLabels = map[string]string{
	"mathematics":        "Mathematics",
	"sciences":           "Sciences",
	"languages":          "Languages",
	"humanities":         "Humanities",
	"arts":               "Arts",
	"physical_education": "Physical Education",
	"administration":     "Administration",
}

// Staff represents a staff member profile on the public site.
type Staff struct {
	ID         int64         `json:"id"`
	Name       string        `json:"name"`
	Slug       string        `json:"slug"`
	Type       string        `json:"type"`
	Department string        `json:"department"`
	Subjects   []string      `json:"subjects"`
	Email      string        `json:"email,omitempty"`
	Phone      string        `json:"phone,omitempty"`
	Bio        string        `json:"bio,omitempty"`
	PhotoID    sql.NullInt64 `json:"-"`
	IsActive   bool          `json:"is_active"`
	IsFeatured bool          `json:"is_featured"`
	Position   int64         `json:"position"`
	UserID     int64         `json:"user_id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	Author *User `json:"user,omitempty"`
}
