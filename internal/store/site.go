// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/scms-go/internal/model"
)

// Sliders

const sliderColumns = `id, title, subtitle, media_id, link_url, is_active,
	position, user_id, created_at, updated_at`

func scanSlider(row interface{ Scan(...any) error }) (model.Slider, error) {
	var s model.Slider
	err := row.Scan(&s.ID, &s.Title, &s.Subtitle, &s.MediaID, &s.LinkURL,
		&s.IsActive, &s.Position, &s.UserID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListSliders returns sliders in display order. Pass activeOnly to hide
// disabled slides.
func (q *Queries) ListSliders(ctx context.Context, activeOnly bool) ([]model.Slider, error) {
	query := `SELECT ` + sliderColumns + ` FROM sliders`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY position, id`

	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Slider
	for rows.Next() {
		s, err := scanSlider(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// GetSliderByID fetches a slider by primary key.
func (q *Queries) GetSliderByID(ctx context.Context, id int64) (model.Slider, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+sliderColumns+` FROM sliders WHERE id = ?`, id)
	s, err := scanSlider(row)
	return s, notFound(err)
}

// CreateSliderParams holds the fields for CreateSlider.
type CreateSliderParams struct {
	Title    string
	Subtitle string
	MediaID  sql.NullInt64
	LinkURL  string
	IsActive bool
	Position int64
	UserID   int64
}

// CreateSlider inserts a slider and returns the stored record.
func (q *Queries) CreateSlider(ctx context.Context, arg CreateSliderParams) (model.Slider, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO sliders (title, subtitle, media_id, link_url, is_active,
			position, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Title, arg.Subtitle, arg.MediaID, arg.LinkURL, arg.IsActive,
		arg.Position, arg.UserID, now, now)
	if err != nil {
		return model.Slider{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Slider{}, err
	}
	return q.GetSliderByID(ctx, id)
}

// UpdateSliderParams holds the full column set for UpdateSlider.
type UpdateSliderParams struct {
	ID       int64
	Title    string
	Subtitle string
	MediaID  sql.NullInt64
	LinkURL  string
	IsActive bool
	Position int64
}

// UpdateSlider overwrites the mutable columns of a slider.
func (q *Queries) UpdateSlider(ctx context.Context, arg UpdateSliderParams) (model.Slider, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sliders SET title = ?, subtitle = ?, media_id = ?, link_url = ?,
			is_active = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Title, arg.Subtitle, arg.MediaID, arg.LinkURL, arg.IsActive,
		arg.Position, time.Now(), arg.ID)
	if err != nil {
		return model.Slider{}, err
	}
	return q.GetSliderByID(ctx, arg.ID)
}

// UpdateSliderPosition sets the display order of a single slider.
func (q *Queries) UpdateSliderPosition(ctx context.Context, id, position int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sliders SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		position, id)
	return err
}

// DeleteSlider removes a slider.
func (q *Queries) DeleteSlider(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM sliders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Settings

// GetSetting fetches a setting by key.
func (q *Queries) GetSetting(ctx context.Context, key string) (model.Setting, error) {
	var s model.Setting
	err := q.db.QueryRowContext(ctx,
		`SELECT id, key, value, created_at, updated_at FROM settings WHERE key = ?`,
		key).Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt)
	return s, notFound(err)
}

// ListSettings returns all settings ordered by key.
func (q *Queries) ListSettings(ctx context.Context) ([]model.Setting, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, key, value, created_at, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Setting
	for rows.Next() {
		var s model.Setting
		if err := rows.Scan(&s.ID, &s.Key, &s.Value, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// UpsertSetting creates or replaces a setting value by key.
func (q *Queries) UpsertSetting(ctx context.Context, key, value string) (model.Setting, error) {
	now := time.Now()
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, created_at, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now, now)
	if err != nil {
		return model.Setting{}, err
	}
	return q.GetSetting(ctx, key)
}

// DeleteSetting removes a setting by key.
func (q *Queries) DeleteSetting(ctx context.Context, key string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
