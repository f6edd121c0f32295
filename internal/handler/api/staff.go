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

// StaffRequest is the request body for staff directory writes.
type StaffRequest struct {
	Name       string   `json:"name"`
	Slug       string   `json:"slug,omitempty"`
	Type       string   `json:"type,omitempty"`
	Department string   `json:"department,omitempty"`
	Subjects   []string `json:"subjects,omitempty"`
	Email      string   `json:"email,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Bio        string   `json:"bio,omitempty"`
	PhotoID    *int64   `json:"photo_id,omitempty"`
	IsActive   bool     `json:"is_active"`
	IsFeatured bool     `json:"is_featured"`
	Position   int64    `json:"position"`
}

func (req StaffRequest) toInput() service.StaffInput {
	return service.StaffInput{
		Name:       req.Name,
		Slug:       req.Slug,
		Type:       req.Type,
		Department: req.Department,
		Subjects:   req.Subjects,
		Email:      req.Email,
		Phone:      req.Phone,
		Bio:        req.Bio,
		PhotoID:    req.PhotoID,
		IsActive:   req.IsActive,
		IsFeatured: req.IsFeatured,
		Position:   req.Position,
	}
}

// ListStaff handles GET /api/v1/staff.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.StaffFilter{
		Type:       r.URL.Query().Get("type"),
		Department: r.URL.Query().Get("department"),
		Search:     r.URL.Query().Get("search"),
		Active:     handler.ParseBoolParam(r, "active"),
		Featured:   handler.ParseBoolParam(r, "featured"),
		Limit:      int64(perPage),
		Offset:     int64((page - 1) * perPage),
	}

	if middleware.GetUser(r) == nil {
		active := true
		f.Active = &active
	}

	items, total, err := h.staff.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "staff")
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// GetStaff handles GET /api/v1/staff/{id}.
func (h *Handler) GetStaff(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid staff ID", nil)
		return
	}

	st, err := h.staff.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "staff member")
		return
	}
	WriteSuccess(w, st, nil)
}

// GetStaffBySlug handles GET /api/v1/staff/slug/{slug}.
func (h *Handler) GetStaffBySlug(w http.ResponseWriter, r *http.Request) {
	st, err := h.staff.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, err, "staff member")
		return
	}
	WriteSuccess(w, st, nil)
}

// CreateStaff handles POST /api/v1/staff.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req StaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	st, err := h.staff.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "staff member")
		return
	}
	WriteCreated(w, st)
}

// UpdateStaff handles PUT /api/v1/staff/{id}.
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid staff ID", nil)
		return
	}

	var req StaffRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := h.staff.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "staff member")
		return
	}
	WriteSuccess(w, st, nil)
}

// DeleteStaff handles DELETE /api/v1/staff/{id}.
func (h *Handler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid staff ID", nil)
		return
	}

	if err := h.staff.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "staff member")
		return
	}
	WriteNoContent(w)
}

// ToggleStaffFlag handles POST /api/v1/staff/{id}/toggle-{flag}.
func (h *Handler) ToggleStaffFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid staff ID", nil)
			return
		}

		value, err := h.staff.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "staff member")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// ReorderStaff handles POST /api/v1/staff/reorder.
func (h *Handler) ReorderStaff(w http.ResponseWriter, r *http.Request) {
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

	if err := h.staff.Reorder(r.Context(), req.IDs); err != nil {
		h.handleError(w, err, "staff")
		return
	}
	WriteNoContent(w)
}

// StaffStats handles GET /api/v1/staff/stats.
func (h *Handler) StaffStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.staff.Stats(r.Context())
	if err != nil {
		h.handleError(w, err, "staff")
		return
	}
	WriteSuccess(w, stats, nil)
}
