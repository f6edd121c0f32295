// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// MediaResponse wraps a media record with its resolved URLs.
type MediaResponse struct {
	model.Media
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

func (h *Handler) mediaResponse(m model.Media) MediaResponse {
	return MediaResponse{
		Media:        m,
		URL:          h.media.GetURL(m, ""),
		ThumbnailURL: h.media.GetThumbnailURL(m),
	}
}

// ListMedia handles GET /api/v1/media.
func (h *Handler) ListMedia(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f := store.MediaFilter{
		MimeType: r.URL.Query().Get("mime_type"),
		Search:   r.URL.Query().Get("search"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}

	items, total, err := h.media.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "media")
		return
	}

	out := make([]MediaResponse, 0, len(items))
	for _, m := range items {
		out = append(out, h.mediaResponse(m))
	}
	WriteSuccess(w, out, NewMeta(total, page, perPage))
}

// GetMedia handles GET /api/v1/media/{id}.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}

	m, err := h.media.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "media")
		return
	}
	WriteSuccess(w, h.mediaResponse(m), nil)
}

// UploadMedia handles POST /api/v1/media. The multipart field name is "file".
func (h *Handler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(service.MaxUploadSize); err != nil {
		WriteBadRequest(w, "Invalid multipart form", nil)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "Missing file field", nil)
		return
	}
	defer func() { _ = file.Close() }()

	user := middleware.GetUser(r)
	result, err := h.media.Upload(r.Context(), file, header, user.ID)
	if err != nil {
		h.handleError(w, err, "media")
		return
	}

	WriteCreated(w, struct {
		Media    MediaResponse `json:"media"`
		Variants []string      `json:"variants,omitempty"`
	}{
		Media:    h.mediaResponse(result.Media),
		Variants: variantNames(result),
	})
}

func variantNames(result *service.UploadResult) []string {
	names := make([]string, 0, len(result.Variants))
	for _, v := range result.Variants {
		if v != nil {
			names = append(names, v.Type)
		}
	}
	return names
}

// UpdateMediaAlt handles PUT /api/v1/media/{id}/alt.
func (h *Handler) UpdateMediaAlt(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}

	var req struct {
		Alt string `json:"alt"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	m, err := h.media.UpdateAlt(r.Context(), id, req.Alt)
	if err != nil {
		h.handleError(w, err, "media")
		return
	}
	WriteSuccess(w, h.mediaResponse(m), nil)
}

// DeleteMedia handles DELETE /api/v1/media/{id}.
func (h *Handler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid media ID", nil)
		return
	}

	if err := h.media.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "media")
		return
	}
	WriteNoContent(w)
}
