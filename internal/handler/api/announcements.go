// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// AnnouncementRequest is the request body for announcement writes.
type AnnouncementRequest struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug,omitempty"`
	Content     string     `json:"content"`
	Type        string     `json:"type,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	IsPinned    bool       `json:"is_pinned"`
	IsActive    bool       `json:"is_active"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CategoryID  *int64     `json:"category_id,omitempty"`
}

func (req AnnouncementRequest) toInput() service.AnnouncementInput {
	return service.AnnouncementInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Content:     req.Content,
		Type:        req.Type,
		Priority:    req.Priority,
		IsPinned:    req.IsPinned,
		IsActive:    req.IsActive,
		PublishedAt: req.PublishedAt,
		ExpiresAt:   req.ExpiresAt,
		CategoryID:  req.CategoryID,
	}
}

// ListAnnouncements handles GET /api/v1/announcements.
func (h *Handler) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.AnnouncementFilter{
		Type:     r.URL.Query().Get("type"),
		Priority: r.URL.Query().Get("priority"),
		Search:   r.URL.Query().Get("search"),
		Active:   handler.ParseBoolParam(r, "active"),
		Pinned:   handler.ParseBoolParam(r, "pinned"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	// Anonymous callers only see active announcements.
	if middleware.GetUser(r) == nil {
		active := true
		f.Active = &active
	}

	items, total, err := h.announcements.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "announcements")
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// GetAnnouncement handles GET /api/v1/announcements/{id}.
func (h *Handler) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid announcement ID", nil)
		return
	}

	a, err := h.announcements.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "announcement")
		return
	}
	WriteSuccess(w, a, nil)
}

// GetAnnouncementBySlug handles GET /api/v1/announcements/slug/{slug}.
func (h *Handler) GetAnnouncementBySlug(w http.ResponseWriter, r *http.Request) {
	a, err := h.announcements.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, err, "announcement")
		return
	}
	WriteSuccess(w, a, nil)
}

// CreateAnnouncement handles POST /api/v1/announcements.
func (h *Handler) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req AnnouncementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	a, err := h.announcements.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "announcement")
		return
	}
	WriteCreated(w, a)
}

// UpdateAnnouncement handles PUT /api/v1/announcements/{id}.
func (h *Handler) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid announcement ID", nil)
		return
	}

	var req AnnouncementRequest
	if !decodeBody(w, r, &req) {
		return
	}

	a, err := h.announcements.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "announcement")
		return
	}
	WriteSuccess(w, a, nil)
}

// DeleteAnnouncement handles DELETE /api/v1/announcements/{id}.
func (h *Handler) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid announcement ID", nil)
		return
	}

	if err := h.announcements.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "announcement")
		return
	}
	WriteNoContent(w)
}

// ToggleAnnouncementFlag handles POST /api/v1/announcements/{id}/toggle-{flag}.
func (h *Handler) ToggleAnnouncementFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid announcement ID", nil)
			return
		}

		value, err := h.announcements.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "announcement")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}
