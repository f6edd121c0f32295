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

const staffColumns = `s.id, s.name, s.slug, s.type, s.department, s.subjects,
	s.email, s.phone, s.bio, s.photo_id, s.is_active, s.is_featured, s.position,
	s.user_id, s.created_at, s.updated_at`

func scanStaff(row interface{ Scan(...any) error }) (model.Staff, error) {
	var s model.Staff
	var subjects string
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Type, &s.Department, &subjects,
		&s.Email, &s.Phone, &s.Bio, &s.PhotoID, &s.IsActive, &s.IsFeatured,
		&s.Position, &s.UserID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, err
	}
	s.Subjects = decodeStringList(subjects)
	return s, nil
}

// StaffFilter is the typed filter set for staff list queries.
type StaffFilter struct {
	Type       string
	Department string
	Search     string
	Active     *bool
	Featured   *bool
	Limit      int64
	Offset     int64
}

func (f StaffFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "s.type = ?")
		args = append(args, f.Type)
	}
	if f.Department != "" {
		conds = append(conds, "s.department = ?")
		args = append(args, f.Department)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(s.name LIKE ? OR s.bio LIKE ? OR s.subjects LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.Active != nil {
		conds = append(conds, "s.is_active = ?")
		args = append(args, *f.Active)
	}
	if f.Featured != nil {
		conds = append(conds, "s.is_featured = ?")
		args = append(args, *f.Featured)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListStaff returns staff ordered by display position, then name.
func (q *Queries) ListStaff(ctx context.Context, f StaffFilter) ([]model.Staff, error) {
	where, args := f.where()
	query := `SELECT ` + staffColumns + ` FROM staff s` + where +
		` ORDER BY s.position, s.name`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// CountStaff returns the number of staff matching the filter.
func (q *Queries) CountStaff(ctx context.Context, f StaffFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM staff s`+where, args...).Scan(&n)
	return n, err
}

// GetStaffByID fetches a staff member by primary key.
func (q *Queries) GetStaffByID(ctx context.Context, id int64) (model.Staff, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff s WHERE s.id = ?`, id)
	s, err := scanStaff(row)
	return s, notFound(err)
}

// GetStaffBySlug fetches a staff member by slug.
func (q *Queries) GetStaffBySlug(ctx context.Context, slug string) (model.Staff, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+staffColumns+` FROM staff s WHERE s.slug = ?`, slug)
	s, err := scanStaff(row)
	return s, notFound(err)
}

// CreateStaffParams holds the fields for CreateStaff.
type CreateStaffParams struct {
	Name       string
	Slug       string
	Type       string
	Department string
	Subjects   []string
	Email      string
	Phone      string
	Bio        string
	PhotoID    sql.NullInt64
	IsActive   bool
	IsFeatured bool
	Position   int64
	UserID     int64
}

// CreateStaff inserts a staff member and returns the stored record.
func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (model.Staff, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO staff (name, slug, type, department, subjects, email, phone,
			bio, photo_id, is_active, is_featured, position, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Type, arg.Department, encodeStringList(arg.Subjects),
		arg.Email, arg.Phone, arg.Bio, arg.PhotoID, arg.IsActive, arg.IsFeatured,
		arg.Position, arg.UserID, now, now)
	if err != nil {
		return model.Staff{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Staff{}, err
	}
	return q.GetStaffByID(ctx, id)
}

// UpdateStaffParams holds the full column set for UpdateStaff.
type UpdateStaffParams struct {
	ID         int64
	Name       string
	Slug       string
	Type       string
	Department string
	Subjects   []string
	Email      string
	Phone      string
	Bio        string
	PhotoID    sql.NullInt64
	IsActive   bool
	IsFeatured bool
	Position   int64
}

// UpdateStaff overwrites the mutable columns of a staff member.
func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (model.Staff, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE staff SET name = ?, slug = ?, type = ?, department = ?, subjects = ?,
			email = ?, phone = ?, bio = ?, photo_id = ?, is_active = ?,
			is_featured = ?, position = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Slug, arg.Type, arg.Department, encodeStringList(arg.Subjects),
		arg.Email, arg.Phone, arg.Bio, arg.PhotoID, arg.IsActive, arg.IsFeatured,
		arg.Position, time.Now(), arg.ID)
	if err != nil {
		return model.Staff{}, err
	}
	return q.GetStaffByID(ctx, arg.ID)
}

// DeleteStaff removes a staff member.
func (q *Queries) DeleteStaff(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM staff WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStaffPosition sets the display order of a single staff member.
func (q *Queries) UpdateStaffPosition(ctx context.Context, id, position int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE staff SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		position, id)
	return err
}

// DepartmentCount is one row of the staff-by-department aggregation.
type DepartmentCount struct {
	Department string
	Count      int64
}

// CountStaffByDepartment groups active staff by department.
func (q *Queries) CountStaffByDepartment(ctx context.Context) ([]DepartmentCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT department, COUNT(*) FROM staff
		 WHERE is_active = 1 GROUP BY department ORDER BY department`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var counts []DepartmentCount
	for rows.Next() {
		var c DepartmentCount
		if err := rows.Scan(&c.Department, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// GetStaffAuthor returns the user who created the staff record.
func (q *Queries) GetStaffAuthor(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE id = (SELECT user_id FROM staff WHERE id = ?)`, id)
	u, err := scanUser(row)
	return u, notFound(err)
}
