// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/olegiv/scms-go/internal/cache"
	"github.com/olegiv/scms-go/internal/imaging"
	"github.com/olegiv/scms-go/internal/model"
	"github.com/olegiv/scms-go/internal/store"
)

// Upload limits
const (
	MaxUploadSize    = 20 * 1024 * 1024 // 20MB
	DefaultUploadDir = "./uploads"
)

// AllowedMimeTypes defines the MIME types that can be uploaded.
var AllowedMimeTypes = map[string]bool{
	model.MimeTypeJPEG: true,
	model.MimeTypePNG:  true,
	model.MimeTypeGIF:  true,
	model.MimeTypeWebP: true,
	model.MimeTypePDF:  true,
}

// UploadResult contains the stored media record and the image variants that
// were generated for it on disk.
type UploadResult struct {
	Media    model.Media
	Variants []*imaging.VariantResult
}

// MediaService handles media uploads, lookups and deletion.
type MediaService struct {
	queries   *store.Queries
	processor *imaging.Processor
	uploadDir string
	cache     *cache.Manager
	logger    *slog.Logger
}

// NewMediaService creates a media service storing files under uploadDir.
func NewMediaService(db *sql.DB, cm *cache.Manager, logger *slog.Logger, uploadDir string) *MediaService {
	if uploadDir == "" {
		uploadDir = DefaultUploadDir
	}
	return &MediaService{
		queries:   store.New(db),
		processor: imaging.NewProcessor(uploadDir),
		uploadDir: uploadDir,
		cache:     cm,
		logger:    logger,
	}
}

// List returns media matching the filter plus the total count.
func (s *MediaService) List(ctx context.Context, f store.MediaFilter) ([]model.Media, int64, error) {
	items, err := s.queries.ListMedia(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("listing media: %w", err)
	}
	total, err := s.queries.CountMedia(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("counting media: %w", err)
	}
	return items, total, nil
}

// Get fetches a media record by id.
func (s *MediaService) Get(ctx context.Context, id int64) (model.Media, error) {
	return s.queries.GetMediaByID(ctx, id)
}

// Upload validates, processes and stores one uploaded file. Images get
// EXIF-rotated, re-encoded and resized into the configured variants.
func (s *MediaService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader, userID int64) (*UploadResult, error) {
	if header.Size > MaxUploadSize {
		return nil, NewValidationError("file", fmt.Sprintf("exceeds the maximum upload size of %d bytes", MaxUploadSize))
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = getMimeTypeFromExtension(header.Filename)
	}
	if !AllowedMimeTypes[mimeType] {
		return nil, NewValidationError("file", fmt.Sprintf("type %s is not allowed", mimeType))
	}

	fileUUID := uuid.New().String()
	filename := sanitizeFilename(header.Filename)

	var result UploadResult

	if s.processor.IsImage(mimeType) {
		processed, err := s.processor.ProcessImage(file, fileUUID, filename)
		if err != nil {
			return nil, fmt.Errorf("processing image: %w", err)
		}

		media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
			UUID:     fileUUID,
			Filename: filename,
			MimeType: processed.MimeType,
			Size:     processed.Size,
			Width:    sql.NullInt64{Int64: int64(processed.Width), Valid: true},
			Height:   sql.NullInt64{Int64: int64(processed.Height), Valid: true},
			UserID:   userID,
		})
		if err != nil {
			_ = s.processor.DeleteMediaFiles(fileUUID)
			return nil, fmt.Errorf("creating media record: %w", err)
		}
		result.Media = media

		variants, err := s.processor.CreateAllVariants(processed.FilePath, fileUUID, filename)
		if err != nil {
			// The original is stored, missing variants are regenerable.
			s.logger.Warn("creating image variants failed", "media_id", media.ID, "error", err)
		}
		result.Variants = variants
	} else {
		filePath, size, err := s.saveNonImageFile(file, fileUUID, filename)
		if err != nil {
			return nil, fmt.Errorf("saving file: %w", err)
		}

		media, err := s.queries.CreateMedia(ctx, store.CreateMediaParams{
			UUID:     fileUUID,
			Filename: filename,
			MimeType: mimeType,
			Size:     size,
			UserID:   userID,
		})
		if err != nil {
			_ = os.Remove(filePath)
			return nil, fmt.Errorf("creating media record: %w", err)
		}
		result.Media = media
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixMedia)
	s.logger.Info("media uploaded",
		"media_id", result.Media.ID, "uuid", fileUUID, "mime_type", result.Media.MimeType, "size", result.Media.Size)
	return &result, nil
}

// UpdateAlt sets the alt text of a media item.
func (s *MediaService) UpdateAlt(ctx context.Context, id int64, alt string) (model.Media, error) {
	media, err := s.queries.UpdateMediaAlt(ctx, id, alt)
	if err != nil {
		return model.Media{}, err
	}
	s.cache.InvalidatePrefix(ctx, cache.PrefixMedia)
	return media, nil
}

// Delete removes a media record and its files. File removal is best effort
// once the row is gone.
func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.queries.GetMediaByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.queries.DeleteMedia(ctx, id); err != nil {
		return fmt.Errorf("deleting media record: %w", err)
	}

	if err := s.processor.DeleteMediaFiles(media.UUID); err != nil {
		s.logger.Warn("deleting media files failed", "media_id", id, "uuid", media.UUID, "error", err)
	}

	s.cache.InvalidatePrefix(ctx, cache.PrefixMedia)
	s.logger.Info("media deleted", "media_id", id, "uuid", media.UUID)
	return nil
}

// GetURL returns the public URL path for a media item, optionally for a
// named variant.
func (s *MediaService) GetURL(media model.Media, variant string) string {
	if variant == "" || variant == model.VariantOriginal {
		return fmt.Sprintf("/uploads/originals/%s/%s", media.UUID, media.Filename)
	}
	return fmt.Sprintf("/uploads/%s/%s/%s", variant, media.UUID, media.Filename)
}

// GetThumbnailURL returns the thumbnail URL for an image, or "" for files
// that have no thumbnail.
func (s *MediaService) GetThumbnailURL(media model.Media) string {
	if !media.IsImage() {
		return ""
	}
	return s.GetURL(media, model.VariantThumbnail)
}

// saveNonImageFile saves a non-image file under the uploads directory.
func (s *MediaService) saveNonImageFile(file io.Reader, uuid, filename string) (string, int64, error) {
	dir := filepath.Join(s.uploadDir, "originals", uuid)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("creating directory: %w", err)
	}

	filePath := filepath.Join(dir, filename)
	out, err := os.Create(filePath)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = out.Close() }()

	size, err := io.Copy(out, file)
	if err != nil {
		_ = os.Remove(filePath)
		return "", 0, fmt.Errorf("writing file: %w", err)
	}

	return filePath, size, nil
}

func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	replacer := strings.NewReplacer(
		" ", "-",
		"'", "",
		"\"", "",
		"<", "",
		">", "",
		"&", "",
		"#", "",
		"?", "",
		"%", "",
	)
	filename = replacer.Replace(filename)

	if filepath.Ext(filename) == "" {
		filename += ".bin"
	}

	return filename
}

func getMimeTypeFromExtension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return model.MimeTypeJPEG
	case ".png":
		return model.MimeTypePNG
	case ".gif":
		return model.MimeTypeGIF
	case ".webp":
		return model.MimeTypeWebP
	case ".pdf":
		return model.MimeTypePDF
	default:
		return "application/octet-stream"
	}
}
