// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Facility categories
const (
	FacilityCategorySports     = "sports"
	FacilityCategoryAcademic   = "academic"
	FacilityCategoryLibrary    = "library"
	FacilityCategoryLaboratory = "laboratory"
	FacilityCategoryCommon     = "common"
)

// FacilityCategoryLabels maps machine category keys to display strings.
var FacilityCategoryLabels = map[string]string{
	FacilityCategorySports:     "Sports",
	FacilityCategoryAcademic:   "Academic",
	FacilityCategoryLibrary:    "Library",
	FacilityCategoryLaboratory: "Laboratory",
	FacilityCategoryCommon:     "Common Areas",
}

// Facility represents a school facility (gym, lab, library, ...).
type Facility struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Location    string          `json:"location"`
	Category    string          `json:"category"`
	Capacity    sql.NullInt64   `json:"-"`
	Area        sql.NullFloat64 `json:"-"`
	Amenities   []string        `json:"amenities"`
	BookingURL  sql.NullString  `json:"-"`
	IsActive    bool            `json:"is_active"`
	IsFeatured  bool            `json:"is_featured"`
	IsBookable  bool            `json:"is_bookable"`
	UserID      int64           `json:"user_id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// HasAmenity reports whether the facility lists the given amenity.
func (f *Facility) HasAmenity(name string) bool {
	for _, a := range f.Amenities {
		if a == name {
			return true
		}
	}
	return false
}
