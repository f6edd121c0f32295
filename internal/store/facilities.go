// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/olegiv/scms-go/internal/model"
)

const facilityColumns = `f.id, f.name, f.slug, f.description, f.location, f.category,
	f.capacity, f.area, f.amenities, f.booking_url, f.is_active, f.is_featured,
	f.is_bookable, f.user_id, f.created_at, f.updated_at`

func scanFacility(row interface{ Scan(...any) error }) (model.Facility, error) {
	var f model.Facility
	var amenities string
	err := row.Scan(&f.ID, &f.Name, &f.Slug, &f.Description, &f.Location,
		&f.Category, &f.Capacity, &f.Area, &amenities, &f.BookingURL,
		&f.IsActive, &f.IsFeatured, &f.IsBookable, &f.UserID,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	f.Amenities = decodeStringList(amenities)
	return f, nil
}

// FacilityFilter is the typed filter set for facility list queries.
type FacilityFilter struct {
	Category string
	Search   string
	Amenity  string
	Active   *bool
	Featured *bool
	Bookable *bool
	Limit    int64
	Offset   int64
}

func (f FacilityFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "f.category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(f.name LIKE ? OR f.description LIKE ? OR f.location LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.Amenity != "" {
		// amenities is a JSON array of strings; match the quoted element
		conds = append(conds, "f.amenities LIKE ?")
		args = append(args, `%"`+f.Amenity+`"%`)
	}
	if f.Active != nil {
		conds = append(conds, "f.is_active = ?")
		args = append(args, *f.Active)
	}
	if f.Featured != nil {
		conds = append(conds, "f.is_featured = ?")
		args = append(args, *f.Featured)
	}
	if f.Bookable != nil {
		conds = append(conds, "f.is_bookable = ?")
		args = append(args, *f.Bookable)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListFacilities returns facilities matching the filter, ordered by name.
func (q *Queries) ListFacilities(ctx context.Context, f FacilityFilter) ([]model.Facility, error) {
	where, args := f.where()
	query := `SELECT ` + facilityColumns + ` FROM facilities f` + where + ` ORDER BY f.name`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Facility
	for rows.Next() {
		fac, err := scanFacility(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, fac)
	}
	return items, rows.Err()
}

// CountFacilities returns the number of facilities matching the filter.
func (q *Queries) CountFacilities(ctx context.Context, f FacilityFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM facilities f`+where, args...).Scan(&n)
	return n, err
}

// GetFacilityByID fetches a facility by primary key.
func (q *Queries) GetFacilityByID(ctx context.Context, id int64) (model.Facility, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+facilityColumns+` FROM facilities f WHERE f.id = ?`, id)
	fac, err := scanFacility(row)
	return fac, notFound(err)
}

// GetFacilityBySlug fetches a facility by slug.
func (q *Queries) GetFacilityBySlug(ctx context.Context, slug string) (model.Facility, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+facilityColumns+` FROM facilities f WHERE f.slug = ?`, slug)
	fac, err := scanFacility(row)
	return fac, notFound(err)
}

// CreateFacilityParams holds the fields for CreateFacility.
type CreateFacilityParams struct {
	Name        string
	Slug        string
	Description string
	Location    string
	Category    string
	Capacity    sql.NullInt64
	Area        sql.NullFloat64
	Amenities   []string
	BookingURL  sql.NullString
	IsActive    bool
	IsFeatured  bool
	IsBookable  bool
	UserID      int64
}

// CreateFacility inserts a facility and returns the stored record.
func (q *Queries) CreateFacility(ctx context.Context, arg CreateFacilityParams) (model.Facility, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO facilities (name, slug, description, location, category,
			capacity, area, amenities, booking_url, is_active, is_featured,
			is_bookable, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.Location, arg.Category,
		arg.Capacity, arg.Area, encodeStringList(arg.Amenities), arg.BookingURL,
		arg.IsActive, arg.IsFeatured, arg.IsBookable, arg.UserID, now, now)
	if err != nil {
		return model.Facility{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Facility{}, err
	}
	return q.GetFacilityByID(ctx, id)
}

// UpdateFacilityParams holds the full column set for UpdateFacility.
type UpdateFacilityParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	Location    string
	Category    string
	Capacity    sql.NullInt64
	Area        sql.NullFloat64
	Amenities   []string
	BookingURL  sql.NullString
	IsActive    bool
	IsFeatured  bool
	IsBookable  bool
}

// UpdateFacility overwrites the mutable columns of a facility.
func (q *Queries) UpdateFacility(ctx context.Context, arg UpdateFacilityParams) (model.Facility, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE facilities SET name = ?, slug = ?, description = ?, location = ?,
			category = ?, capacity = ?, area = ?, amenities = ?, booking_url = ?,
			is_active = ?, is_featured = ?, is_bookable = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.Location, arg.Category,
		arg.Capacity, arg.Area, encodeStringList(arg.Amenities), arg.BookingURL,
		arg.IsActive, arg.IsFeatured, arg.IsBookable, time.Now(), arg.ID)
	if err != nil {
		return model.Facility{}, err
	}
	return q.GetFacilityByID(ctx, arg.ID)
}

// DeleteFacility removes a facility.
func (q *Queries) DeleteFacility(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM facilities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryCount is one row of the facility-by-category aggregation.
type CategoryCount struct {
	Category string
	Count    int64
}

// CountFacilitiesByCategory groups active facilities by category.
func (q *Queries) CountFacilitiesByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM facilities
		 WHERE is_active = 1 GROUP BY category ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
