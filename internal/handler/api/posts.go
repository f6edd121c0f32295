// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/scms-go/internal/handler"
	"github.com/olegiv/scms-go/internal/middleware"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// PostRequest is the request body for creating or updating a post.
type PostRequest struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug,omitempty"`
	Content         string     `json:"content"`
	ContentMarkdown bool       `json:"content_markdown,omitempty"`
	Excerpt         string     `json:"excerpt,omitempty"`
	Status          string     `json:"status,omitempty"`
	Type            string     `json:"type,omitempty"`
	IsFeatured      bool       `json:"is_featured"`
	IsPinned        bool       `json:"is_pinned"`
	FeaturedImageID *int64     `json:"featured_image_id,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	CategoryIDs     []int64    `json:"category_ids,omitempty"`
}

func (req PostRequest) toInput() service.PostInput {
	return service.PostInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Content:         req.Content,
		ContentMarkdown: req.ContentMarkdown,
		Excerpt:         req.Excerpt,
		Status:          req.Status,
		Type:            req.Type,
		IsFeatured:      req.IsFeatured,
		IsPinned:        req.IsPinned,
		FeaturedImageID: req.FeaturedImageID,
		PublishedAt:     req.PublishedAt,
		CategoryIDs:     req.CategoryIDs,
	}
}

// postFilterFromRequest builds a store filter from the list query
// parameters. Anonymous callers are pinned to published posts.
func postFilterFromRequest(r *http.Request, page, perPage int) (store.PostFilter, bool) {
	f := store.PostFilter{
		Status:   r.URL.Query().Get("status"),
		Type:     r.URL.Query().Get("type"),
		Search:   r.URL.Query().Get("search"),
		Featured: handler.ParseBoolParam(r, "featured"),
		Pinned:   handler.ParseBoolParam(r, "pinned"),
		Limit:    int64(perPage),
		Offset:   int64((page - 1) * perPage),
	}
	f.CategoryID = int64(handler.ParseIntParam(r, "category", 0, 1, 0))

	authenticated := middleware.GetUser(r) != nil
	if !authenticated {
		if f.Status != "" && f.Status != model.PostStatusPublished {
			return f, false
		}
		f.Status = model.PostStatusPublished
	}
	return f, true
}

// ListPosts handles GET /api/v1/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page := handler.ParsePageParam(r)
	perPage := handler.ParsePerPageParam(r, 20, 100)

	f, ok := postFilterFromRequest(r, page, perPage)
	if !ok {
		WriteForbidden(w, "Authentication required to view non-published posts")
		return
	}

	list, err := h.posts.List(r.Context(), f)
	if err != nil {
		h.handleError(w, err, "posts")
		return
	}
	WriteSuccess(w, list.Posts, NewMeta(list.Total, page, perPage))
}

// LatestPosts handles GET /api/v1/posts/latest.
func (h *Handler) LatestPosts(w http.ResponseWriter, r *http.Request) {
	limit := int64(handler.ParseIntParam(r, "limit", 5, 1, 20))
	posts, err := h.posts.Latest(r.Context(), limit)
	if err != nil {
		h.handleError(w, err, "posts")
		return
	}
	WriteSuccess(w, posts, nil)
}

// GetPost handles GET /api/v1/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.handleError(w, err, "post")
		return
	}
	if !h.visibleToCaller(r, post.Status) {
		WriteNotFound(w, "post not found")
		return
	}
	WriteSuccess(w, post, nil)
}

// GetPostBySlug handles GET /api/v1/posts/slug/{slug} and records a view.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.posts.GetBySlug(r.Context(), slug)
	if err != nil {
		h.handleError(w, err, "post")
		return
	}
	if !h.visibleToCaller(r, post.Status) {
		WriteNotFound(w, "post not found")
		return
	}

	if err := h.posts.RecordView(r.Context(), post.ID); err != nil {
		h.logger.Warn("recording post view failed", "post_id", post.ID, "error", err)
	}
	WriteSuccess(w, post, nil)
}

// CreatePost handles POST /api/v1/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user := middleware.GetUser(r)
	post, err := h.posts.Create(r.Context(), req.toInput(), user.ID)
	if err != nil {
		h.handleError(w, err, "post")
		return
	}
	WriteCreated(w, post)
}

// UpdatePost handles PUT /api/v1/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	var req PostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.Update(r.Context(), id, req.toInput())
	if err != nil {
		h.handleError(w, err, "post")
		return
	}
	WriteSuccess(w, post, nil)
}

// DeletePost handles DELETE /api/v1/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.handleError(w, err, "post")
		return
	}
	WriteNoContent(w)
}

// TogglePostFlag handles POST /api/v1/posts/{id}/toggle-{flag}.
func (h *Handler) TogglePostFlag(column string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := handler.ParseIDParam(r)
		if err != nil {
			WriteBadRequest(w, "Invalid post ID", nil)
			return
		}

		value, err := h.posts.Toggle(r.Context(), id, column)
		if err != nil {
			h.handleError(w, err, "post")
			return
		}
		WriteSuccess(w, map[string]bool{column: value}, nil)
	}
}

// LikePost handles POST /api/v1/posts/{id}/like.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	id, err := handler.ParseIDParam(r)
	if err != nil {
		WriteBadRequest(w, "Invalid post ID", nil)
		return
	}

	if err := h.posts.Like(r.Context(), id); err != nil {
		h.handleError(w, err, "post")
		return
	}
	WriteNoContent(w)
}

// ListCategories handles GET /api/v1/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.posts.Categories(r.Context())
	if err != nil {
		h.handleError(w, err, "categories")
		return
	}
	WriteSuccess(w, cats, nil)
}

// CreateCategory handles POST /api/v1/categories.
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	cat, err := h.posts.CreateCategory(r.Context(), req.Name)
	if err != nil {
		h.handleError(w, err, "category")
		return
	}
	WriteCreated(w, cat)
}

// visibleToCaller reports whether content with the given status may be
// shown to this request's caller.
func (h *Handler) visibleToCaller(r *http.Request, status string) bool {
	if status == model.PostStatusPublished {
		return true
	}
	user := middleware.GetUser(r)
	return user != nil && user.CanManageContent()
}
