// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Supported MIME types
const (
	MimeTypeJPEG = "image/jpeg"
	MimeTypePNG  = "image/png"
	MimeTypeGIF  = "image/gif"
	MimeTypeWebP = "image/webp"
	MimeTypePDF  = "application/pdf"
)

// Image variant names
const (
	VariantOriginal  = "original"
	VariantThumbnail = "thumbnail"
	VariantMedium    = "medium"
)

// IsSupportedMimeType reports whether a MIME type can be uploaded.
func IsSupportedMimeType(mimeType string) bool {
	switch mimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP, MimeTypePDF:
		return true
	default:
		return false
	}
}

// ImageVariantConfig defines settings for generating image variants.
type ImageVariantConfig struct {
	Width   int
	Height  int
	Quality int
	Crop    bool // true = crop to exact size, false = fit within bounds
}

// ImageVariants defines the derived sizes created for every uploaded image.
var ImageVariants = map[string]ImageVariantConfig{
	VariantThumbnail: {Width: 150, Height: 150, Quality: 80, Crop: true},
	VariantMedium:    {Width: 800, Height: 600, Quality: 85, Crop: false},
}

// Media represents an uploaded file: images get dimensions and variants.
type Media struct {
	ID        int64         `json:"id"`
	UUID      string        `json:"uuid"`
	Filename  string        `json:"filename"`
	MimeType  string        `json:"mime_type"`
	Size      int64         `json:"size"`
	Width     sql.NullInt64 `json:"-"`
	Height    sql.NullInt64 `json:"-"`
	Alt       string        `json:"alt,omitempty"`
	UserID    int64         `json:"user_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// IsImage reports whether the media is a raster image.
func (m *Media) IsImage() bool {
	switch m.MimeType {
	case MimeTypeJPEG, MimeTypePNG, MimeTypeGIF, MimeTypeWebP:
		return true
	default:
		return false
	}
}

// Gallery is an ordered collection of media items.
type Gallery struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	UserID      int64     `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Items []GalleryItem `json:"items,omitempty"`
}

// GalleryItem references one media file within a gallery, ordered by Position.
type GalleryItem struct {
	ID        int64     `json:"id"`
	GalleryID int64     `json:"gallery_id"`
	MediaID   int64     `json:"media_id"`
	Caption   string    `json:"caption,omitempty"`
	Position  int64     `json:"position"`
	CreatedAt time.Time `json:"created_at"`

	Media *Media `json:"media,omitempty"`
}
