// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// FacilityRequest is the request body for facility writes.
type FacilityRequest struct {
	Name        string   `json:"name"`
	Slug        string   `json:"slug,omitempty"`
	Description string   `json:"description,omitempty"`
	Location    string   `json:"location,omitempty"`
	Category    string   `json:"category,omitempty"`
	Capacity    *int64   `json:"capacity,omitempty"`
	Area        *float64 `json:"area,omitempty"`
	Amenities   []string `json:"amenities,omitempty"`
	BookingURL  string   `json:"booking_url,omitempty"`
	IsActive    bool     `json:"is_active"`
	IsFeatured  bool     `json:"is_featured"`
	IsBookable  bool     `json:"is_bookable"`
}

func (req FacilityRequest) toInput() service.FacilityInput {
	return service.FacilityInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Capacity:    req.Capacity,
		Area:        req.Area,
		Amenities:   req.Amenities,
		BookingURL:  req.BookingURL,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
		IsBookable:  req.IsBookable,
	}
}

// ListFacilities handles GET /api/v1/facilities.
func (h *Handler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.FacilityFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Amenity:  r.URL.Query().Get("amenity"),
		Active:   handler.ParseBoolParam(r, "active"),
		Featured: handler.ParseBoolParam(r, "featured"),
		Bookable: handler.ParseBoolParam(r, "bookable"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	if middleware.GetUser(r) == nil {
		active := true
		f.Active = &active
	}

	items, total, err := h.facilities.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "facilities")
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// SearchFacilities handles GET /api/v1/facilities/search.
func (h *Handler) SearchFacilities(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	amenity := r.URL.Query().Get("amenity")
	if query == "" && amenity == "" {
		WriteBadRequest(w, "Provide a q or amenity parameter", nil)
		return
	}

	items, err := h.facilities.Search(r.Context(), query, amenity)
	if err != nil {
		h.handleError(w, err, "facilities")
		return
	}
	WriteSuccess(w, items, nil)
}

// GetFacility handles GET /api/v1/facilities/{id}.
func (h *Handler) GetFacility(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid facility ID", nil)
		return
	}

	f, err := h.facilities.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "facility")
		return
	}
	WriteSuccess(w, f, nil)
}

// GetFacilityBySlug handles GET /api/v1/facilities/slug/{slug}.
func (h *Handler) GetFacilityBySlug(w http.ResponseWriter, r *http.Request) {
	f, err := h.facilities.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, err, "facility")
		return
	}
	WriteSuccess(w, f, nil)
}

// CreateFacility handles POST /api/v1/facilities.
func (h *Handler) CreateFacility(w http.ResponseWriter, r *http.Request) {
	var req FacilityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	f, err := h.facilities.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "facility")
		return
	}
	WriteCreated(w, f)
}

// UpdateFacility handles PUT /api/v1/facilities/{id}.
func (h *Handler) UpdateFacility(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid facility ID", nil)
		return
	}

	var req FacilityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	f, err := h.facilities.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "facility")
		return
	}
	WriteSuccess(w, f, nil)
}

// DeleteFacility handles DELETE /api/v1/facilities/{id}.
func (h *Handler) DeleteFacility(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid facility ID", nil)
		return
	}

	if err := h.facilities.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "facility")
		return
	}
	WriteNoContent(w)
}

// ToggleFacilityFlag handles POST /api/v1/facilities/{id}/toggle-{flag}.
func (h *Handler) ToggleFacilityFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid facility ID", nil)
			return
		}

		value, err := h.facilities.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "facility")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// FacilityStats handles GET /api/v1/facilities/stats.
func (h *Handler) FacilityStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.facilities.Stats(r.Context())
	if err != nil {
		h.handleError(w, err, "facilities")
		return
	}
	WriteSuccess(w, stats, nil)
}
