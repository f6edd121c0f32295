// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/service"
)

// SliderRequest is the request body for slider writes.
type SliderRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	MediaID  *int64 `json:"media_id,omitempty"`
	LinkURL  string `json:"link_url,omitempty"`
	IsActive bool   `json:"is_active"`
	Position int64  `json:"position"`
}

func (req SliderRequest) toInput() service.SliderInput {
	return service.SliderInput{
		Title:    req.Title,
		Subtitle: req.Subtitle,
		MediaID:  req.MediaID,
		LinkURL:  req.LinkURL,
		IsActive: req.IsActive,
		Position: req.Position,
	}
}

// ListSliders handles GET /api/v1/sliders. Anonymous callers only see
// active slides.
func (h *Handler) ListSliders(w http.ResponseWriter, r *http.Request) {
	activeOnly := middleware.GetUser(r) == nil
	if v := handler.ParseBoolParam(r, "active"); v != nil && *v {
		activeOnly = true
	}

	sliders, err := h.sliders.List(r.Context(), activeOnly)
	if err != nil {
		h.handleError(w, err, "sliders")
		return
	}
	WriteSuccess(w, sliders, nil)
}

// GetSlider handles GET /api/v1/sliders/{id}.
func (h *Handler) GetSlider(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid slider ID", nil)
		return
	}

	sl, err := h.sliders.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "slider")
		return
	}
	WriteSuccess(w, sl, nil)
}

// CreateSlider handles POST /api/v1/sliders.
func (h *Handler) CreateSlider(w http.ResponseWriter, r *http.Request) {
	var req SliderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	sl, err := h.sliders.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "slider")
		return
	}
	WriteCreated(w, sl)
}

// UpdateSlider handles PUT /api/v1/sliders/{id}.
func (h *Handler) UpdateSlider(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid slider ID", nil)
		return
	}

	var req SliderRequest
	if !decodeBody(w, r, &req) {
		return
	}

	sl, err := h.sliders.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "slider")
		return
	}
	WriteSuccess(w, sl, nil)
}

// DeleteSlider handles DELETE /api/v1/sliders/{id}.
func (h *Handler) DeleteSlider(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid slider ID", nil)
		return
	}

	if err := h.sliders.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "slider")
		return
	}
	WriteNoContent(w)
}

// ToggleSliderFlag handles POST /api/v1/sliders/{id}/toggle-{flag}.
func (h *Handler) ToggleSliderFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid slider ID", nil)
			return
		}

		value, err := h.sliders.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "slider")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// ReorderSliders handles POST /api/v1/sliders/reorder.
func (h *Handler) ReorderSliders(w http.ResponseWriter, r *http.Request) {
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

	if err := h.sliders.Reorder(r.Context(), req.IDs); err != nil {
		h.handleError(w, err, "sliders")
		return
	}
	WriteNoContent(w)
}

// ListSettings handles GET /api/v1/settings.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.List(r.Context())
	if err != nil {
		h.handleError(w, err, "settings")
		return
	}
	WriteSuccess(w, settings, nil)
}

// GetSetting handles GET /api/v1/settings/{key}.
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	setting, err := h.settings.Get(r.Context(), key)
	if err != nil {
		h.handleError(w, err, "setting")
		return
	}
	WriteSuccess(w, setting, nil)
}

// SetSetting handles PUT /api/v1/settings/{key}.
func (h *Handler) SetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req struct {
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	setting, err := h.settings.Set(r.Context(), key, req.Value)
	if err != nil {
		h.handleError(w, err, "setting")
		return
	}
	WriteSuccess(w, setting, nil)
}

// DeleteSetting handles DELETE /api/v1/settings/{key}.
func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := h.settings.Delete(r.Context(), key); err != nil {
		h.handleError(w, err, "setting")
		return
	}
	WriteNoContent(w)
}
