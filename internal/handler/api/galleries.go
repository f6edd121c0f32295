// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// GalleryRequest is the request body for gallery writes.
type GalleryRequest struct {
	Title       string `json:"title"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}

func (req GalleryRequest) toInput() service.GalleryInput {
	return service.GalleryInput{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		IsActive:    req.IsActive,
	}
}

// ListGalleries handles GET /api/v1/galleries.
func (h *Handler) ListGalleries(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.GalleryFilter{
		Search: r.URL.Query().Get("search"),
		Active: handler.ParseBoolParam(r, "active"),
		Limit:  int64(perPage),
		Offset: int64((page - 1) * perPage),
	}

	if middleware.GetUser(r) == nil {
		active := true
		f.Active = &active
	}

	items, total, err := h.galleries.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "galleries")
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// GetGallery handles GET /api/v1/galleries/{id}.
func (h *Handler) GetGallery(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	g, err := h.galleries.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "gallery")
		return
	}
	WriteSuccess(w, g, nil)
}

// GetGalleryBySlug handles GET /api/v1/galleries/slug/{slug}.
func (h *Handler) GetGalleryBySlug(w http.ResponseWriter, r *http.Request) {
	g, err := h.galleries.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, err, "gallery")
		return
	}
	WriteSuccess(w, g, nil)
}

// CreateGallery handles POST /api/v1/galleries.
func (h *Handler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	var req GalleryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	g, err := h.galleries.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "gallery")
		return
	}
	WriteCreated(w, g)
}

// UpdateGallery handles PUT /api/v1/galleries/{id}.
func (h *Handler) UpdateGallery(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	var req GalleryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	g, err := h.galleries.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "gallery")
		return
	}
	WriteSuccess(w, g, nil)
}

// DeleteGallery handles DELETE /api/v1/galleries/{id}.
func (h *Handler) DeleteGallery(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	if err := h.galleries.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "gallery")
		return
	}
	WriteNoContent(w)
}

// ToggleGalleryFlag handles POST /api/v1/galleries/{id}/toggle-{flag}.
func (h *Handler) ToggleGalleryFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid gallery ID", nil)
			return
		}

		value, err := h.galleries.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "gallery")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// AddGalleryItem handles POST /api/v1/galleries/{id}/items.
func (h *Handler) AddGalleryItem(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	var req struct {
		MediaID int64  `json:"media_id"`
		Caption string `json:"caption,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.MediaID < 1 {
		WriteBadRequest(w, "media_id is required", nil)
		return
	}

	item, err := h.galleries.AddItem(r.Context(), id, req.MediaID, req.Caption)
	if err != nil {
		h.handleError(w, err, "gallery item")
		return
	}
	WriteCreated(w, item)
}

// RemoveGalleryItem handles DELETE /api/v1/galleries/{id}/items/{itemID}.
func (h *Handler) RemoveGalleryItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := strconv.ParseInt(chi.URLParam(r, "itemID"), 10, 64)
	if err != nil || itemID < 1 {
		WriteBadRequest(w, "Invalid gallery item ID", nil)
		return
	}

	if err := h.galleries.RemoveItem(r.Context(), itemID); err != nil {
		h.handleError(w, err, "gallery item")
		return
	}
	WriteNoContent(w)
}

// ReorderGalleryItems handles POST /api/v1/galleries/{id}/items/reorder.
func (h *Handler) ReorderGalleryItems(w http.ResponseWriter, r *http.Request) {
	if _, err := handler.ParseIDParam(r); err != nil {
		WriteBadRequest(w, "Invalid gallery ID", nil)
		return
	}

	var req struct {
		IDs []int64 `json:"ids"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		WriteBadRequest(w, "ids must not be empty", nil)
		return
	}

	if err := h.galleries.ReorderItems(r.Context(), req.IDs); err != nil {
		h.handleError(w, err, "gallery items")
		return
	}
	WriteNoContent(w)
}
