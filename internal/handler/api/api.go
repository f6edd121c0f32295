// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers.
package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/service"
	"github.com/olegiv/scms-go/internal/store"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db            *sql.DB
	logger        *slog.Logger
	auth          *service.AuthService
	posts         *service.PostService
	announcements *service.AnnouncementService
	staff         *service.StaffService
	facilities    *service.FacilityService
	extras        *service.ExtraService
	galleries     *service.GalleryService
	media         *service.MediaService
	sliders       *service.SliderService
	settings      *service.SettingService
}

// NewHandler creates an API handler wiring all entity services.
func NewHandler(db *sql.DB, cm *cache.Manager, logger *slog.Logger, uploadDir string) *Handler {
	return &Handler{
		db:            db,
		logger:        logger,
		auth:          service.NewAuthService(db, logger),
		posts:         service.NewPostService(db, cm, logger),
		announcements: service.NewAnnouncementService(db, cm, logger),
		staff:         service.NewStaffService(db, cm, logger),
		facilities:    service.NewFacilityService(db, cm, logger),
		extras:        service.NewExtraService(db, cm, logger),
		galleries:     service.NewGalleryService(db, cm, logger),
		media:         service.NewMediaService(db, cm, logger, uploadDir),
		sliders:       service.NewSliderService(db, cm, logger),
		settings:      service.NewSettingService(db, cm, logger),
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// NewMeta builds pagination metadata from a total count.
func NewMeta(total int64, page, perPage int) *Meta {
	pages := int(total) / perPage
	if int(total)%perPage != 0 {
		pages++
	}
	return &Meta{Total: total, Page: page, PerPage: perPage, Pages: pages}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// handleError maps service errors onto the API error envelope. Validation
// failures become 422, missing rows 404, everything else a logged 500.
func (h *Handler) handleError(w http.ResponseWriter, err error, entityName string) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		WriteValidationError(w, ve.Fields)
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, entityName+" not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		WriteUnauthorized(w, "Invalid email or password")
	case errors.Is(err, service.ErrTokenExpired):
		WriteUnauthorized(w, "Token has expired")
	default:
		h.logger.Error("request failed", "entity", entityName, "error", err)
		WriteInternalError(w, "Failed to process "+entityName)
	}
}

// decodeBody decodes a JSON request body into dst. A malformed body writes
// a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}
