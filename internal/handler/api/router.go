// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/olegiv/scms-go/internal/config"
	"github.com/olegiv/scms-go/internal/middleware"
)

// NewRouter builds the full API route tree. Public reads run with optional
// auth so editors see unpublished content, writes are grouped by the role
// they require.
func NewRouter(h *Handler, db *sql.DB, cfg *config.Config) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	ipLimiter := middleware.NewIPRateLimiter(float64(cfg.RateLimitPerMinute)/60, cfg.RateLimitPerMinute)
	r.Use(ipLimiter.Middleware())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)

		// Auth endpoints.
		r.Post("/auth/login", h.Login)
		r.Post("/auth/register", h.Register)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(db))
			r.Post("/auth/refresh", h.Refresh)
			r.Post("/auth/logout", h.Logout)
			r.Get("/auth/me", h.Me)
		})

		// Public reads. Optional auth lets editors see drafts.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(db))

			r.Get("/posts", h.ListPosts)
			r.Get("/posts/latest", h.LatestPosts)
			r.Get("/posts/slug/{slug}", h.GetPostBySlug)
			r.Get("/posts/{id}", h.GetPost)
			r.Post("/posts/{id}/like", h.LikePost)
			r.Get("/categories", h.ListCategories)

			r.Get("/announcements", h.ListAnnouncements)
			r.Get("/announcements/slug/{slug}", h.GetAnnouncementBySlug)
			r.Get("/announcements/{id}", h.GetAnnouncement)

			r.Get("/staff", h.ListStaff)
			r.Get("/staff/stats", h.StaffStats)
			r.Get("/staff/slug/{slug}", h.GetStaffBySlug)
			r.Get("/staff/{id}", h.GetStaff)

			r.Get("/facilities", h.ListFacilities)
			r.Get("/facilities/search", h.SearchFacilities)
			r.Get("/facilities/stats", h.FacilityStats)
			r.Get("/facilities/slug/{slug}", h.GetFacilityBySlug)
			r.Get("/facilities/{id}", h.GetFacility)

			r.Get("/extras", h.ListExtras)
			r.Get("/extras/stats", h.ExtraStats)
			r.Get("/extras/slug/{slug}", h.GetExtraBySlug)
			r.Get("/extras/{id}", h.GetExtra)

			r.Get("/galleries", h.ListGalleries)
			r.Get("/galleries/slug/{slug}", h.GetGalleryBySlug)
			r.Get("/galleries/{id}", h.GetGallery)

			r.Get("/sliders", h.ListSliders)
			r.Get("/settings/{key}", h.GetSetting)
		})

		// Member routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(db))
			r.Use(middleware.UserRateLimit(float64(cfg.RateLimitPerMinute)/60, cfg.RateLimitPerMinute))

			r.Get("/extras/memberships", h.MyMemberships)
			r.Post("/extras/{id}/join", h.JoinExtra)
			r.Post("/extras/{id}/leave", h.LeaveExtra)
		})

		// Editor routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(db))
			r.Use(middleware.RequireEditor)
			r.Use(middleware.UserRateLimit(float64(cfg.RateLimitPerMinute)/60, cfg.RateLimitPerMinute))

			r.Post("/posts", h.CreatePost)
			r.Put("/posts/{id}", h.UpdatePost)
			r.Delete("/posts/{id}", h.DeletePost)
			r.Post("/posts/{id}/toggle-featured", h.TogglePostFlag("is_featured"))
			r.Post("/posts/{id}/toggle-pinned", h.TogglePostFlag("is_pinned"))
			r.Post("/categories", h.CreateCategory)

			r.Post("/announcements", h.CreateAnnouncement)
			r.Put("/announcements/{id}", h.UpdateAnnouncement)
			r.Delete("/announcements/{id}", h.DeleteAnnouncement)
			r.Post("/announcements/{id}/toggle-active", h.ToggleAnnouncementFlag("is_active"))
			r.Post("/announcements/{id}/toggle-pinned", h.ToggleAnnouncementFlag("is_pinned"))

			r.Post("/staff", h.CreateStaff)
			r.Post("/staff/reorder", h.ReorderStaff)
			r.Put("/staff/{id}", h.UpdateStaff)
			r.Delete("/staff/{id}", h.DeleteStaff)
			r.Post("/staff/{id}/toggle-active", h.ToggleStaffFlag("is_active"))
			r.Post("/staff/{id}/toggle-featured", h.ToggleStaffFlag("is_featured"))

			r.Post("/facilities", h.CreateFacility)
			r.Put("/facilities/{id}", h.UpdateFacility)
			r.Delete("/facilities/{id}", h.DeleteFacility)
			r.Post("/facilities/{id}/toggle-active", h.ToggleFacilityFlag("is_active"))
			r.Post("/facilities/{id}/toggle-featured", h.ToggleFacilityFlag("is_featured"))
			r.Post("/facilities/{id}/toggle-bookable", h.ToggleFacilityFlag("is_bookable"))

			r.Post("/extras", h.CreateExtra)
			r.Put("/extras/{id}", h.UpdateExtra)
			r.Delete("/extras/{id}", h.DeleteExtra)
			r.Post("/extras/{id}/toggle-active", h.ToggleExtraFlag("is_active"))
			r.Post("/extras/{id}/toggle-featured", h.ToggleExtraFlag("is_featured"))
			r.Get("/extras/{id}/members", h.ExtraMembers)

			r.Post("/galleries", h.CreateGallery)
			r.Put("/galleries/{id}", h.UpdateGallery)
			r.Delete("/galleries/{id}", h.DeleteGallery)
			r.Post("/galleries/{id}/toggle-active", h.ToggleGalleryFlag("is_active"))
			r.Post("/galleries/{id}/items", h.AddGalleryItem)
			r.Post("/galleries/{id}/items/reorder", h.ReorderGalleryItems)
			r.Delete("/galleries/{id}/items/{itemID}", h.RemoveGalleryItem)

			r.Get("/media", h.ListMedia)
			r.Get("/media/{id}", h.GetMedia)
			r.Post("/media", h.UploadMedia)
			r.Put("/media/{id}/alt", h.UpdateMediaAlt)
			r.Delete("/media/{id}", h.DeleteMedia)

			r.Post("/sliders", h.CreateSlider)
			r.Post("/sliders/reorder", h.ReorderSliders)
			r.Get("/sliders/{id}", h.GetSlider)
			r.Put("/sliders/{id}", h.UpdateSlider)
			r.Delete("/sliders/{id}", h.DeleteSlider)
			r.Post("/sliders/{id}/toggle-active", h.ToggleSliderFlag("is_active"))
		})

		// Admin routes.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(db))
			r.Use(middleware.RequireAdmin)

			r.Post("/users", h.CreateUser)
			r.Get("/settings", h.ListSettings)
			r.Put("/settings/{key}", h.SetSetting)
			r.Delete("/settings/{key}", h.DeleteSetting)
		})
	})

	// Uploaded files are served straight off the disk.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Get("/uploads/*", func(w http.ResponseWriter, r *http.Request) {
		fileServer.ServeHTTP(w, r)
	})

	return r
}
