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

// ExtraRequest is the request body for extracurricular club writes.
type ExtraRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	Location    string `json:"location,omitempty"`
	Quota       *int64 `json:"quota,omitempty"`
	ImageID     *int64 `json:"image_id,omitempty"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
}

func (req ExtraRequest) toInput() service.ExtraInput {
	return service.ExtraInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Category:    req.Category,
		Schedule:    req.Schedule,
		Location:    req.Location,
		Quota:       req.Quota,
		ImageID:     req.ImageID,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
	}
}

// ListExtras handles GET /api/v1/extras.
func (h *Handler) ListExtras(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.ExtraFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
		Active:   handler.ParseBoolParam(r, "active"),
		Featured: handler.ParseBoolParam(r, "featured"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	if middleware.GetUser(r) == nil {
		active := true
		f.Active = &active
	}

	items, total, err := h.extras.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "extras")
		return
	}
	WriteSuccess(w, items, NewMeta(total, page, perPage))
}

// GetExtra handles GET /api/v1/extras/{id}.
func (h *Handler) GetExtra(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	e, err := h.extras.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteSuccess(w, e, nil)
}

// GetExtraBySlug handles GET /api/v1/extras/slug/{slug}.
func (h *Handler) GetExtraBySlug(w http.ResponseWriter, r *http.Request) {
	e, err := h.extras.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteSuccess(w, e, nil)
}

// CreateExtra handles POST /api/v1/extras.
func (h *Handler) CreateExtra(w http.ResponseWriter, r *http.Request) {
	var req ExtraRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	e, err := h.extras.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteCreated(w, e)
}

// UpdateExtra handles PUT /api/v1/extras/{id}.
func (h *Handler) UpdateExtra(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	var req ExtraRequest
	if !decodeBody(w, r, &req) {
		return
	}

	e, err := h.extras.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteSuccess(w, e, nil)
}

// DeleteExtra handles DELETE /api/v1/extras/{id}.
func (h *Handler) DeleteExtra(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	if err := h.extras.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteNoContent(w)
}

// ToggleExtraFlag handles POST /api/v1/extras/{id}/toggle-{flag}.
func (h *Handler) ToggleExtraFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid extra ID", nil)
			return
		}

		value, err := h.extras.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "extra")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// JoinExtra handles POST /api/v1/extras/{id}/join. The result reports
// whether the join landed or why it did not, alongside the refreshed club.
func (h *Handler) JoinExtra(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	user := middleware.GetUser(r)
	result, err := h.extras.Join(r.Context(), id, user.ID)
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteJSON(w, joinStatusCode(result), Response{Data: result})
}

// LeaveExtra handles POST /api/v1/extras/{id}/leave.
func (h *Handler) LeaveExtra(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	user := middleware.GetUser(r)
	result, err := h.extras.Leave(r.Context(), id, user.ID)
	if err != nil {
		h.handleError(w, err, "extra")
		return
	}
	WriteJSON(w, joinStatusCode(result), Response{Data: result})
}

// joinStatusCode maps a membership change outcome onto an HTTP status.
// Refused attempts are conflicts, not errors, so the outcome body is
// still returned.
func joinStatusCode(result service.JoinResult) int {
	if result.OK {
		return http.StatusOK
	}
	return http.StatusConflict
}

// ExtraMembers handles GET /api/v1/extras/{id}/members.
func (h *Handler) ExtraMembers(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid extra ID", nil)
		return
	}

	if _, err := h.extras.Get(r.Context(), id); err != nil {
		h.handleError(w, err, "extra")
		return
	}

	members, err := h.extras.Members(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "extra members")
		return
	}
	WriteSuccess(w, members, nil)
}

// MyMemberships handles GET /api/v1/extras/memberships.
func (h *Handler) MyMemberships(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	extras, err := h.extras.MembershipsForUser(r.Context(), user.ID)
	if err != nil {
		h.handleError(w, err, "memberships")
		return
	}
	WriteSuccess(w, extras, nil)
}

// ExtraStats handles GET /api/v1/extras/stats.
func (h *Handler) ExtraStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.extras.Stats(r.Context())
	if err != nil {
		h.handleError(w, err, "extras")
		return
	}
	WriteSuccess(w, stats, nil)
}
