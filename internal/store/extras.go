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

const extraColumns = `e.id, e.name, e.slug, e.description, e.category, e.schedule,
	e.location, e.quota, e.image_id, e.is_active, e.is_featured, e.user_id,
	e.created_at, e.updated_at`

func scanExtra(row interface{ Scan(...any) error }) (model.Extra, error) {
	var e model.Extra
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Category,
		&e.Schedule, &e.Location, &e.Quota, &e.ImageID, &e.IsActive,
		&e.IsFeatured, &e.UserID, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// ExtraFilter is the typed filter set for extracurricular list queries.
type ExtraFilter struct {
	Category string
	Search   string
	Active   *bool
	Featured *bool
	Limit    int64
	Offset   int64
}

func (f ExtraFilter) where() (string, []any) {
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "e.category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		conds = append(conds, "(e.name LIKE ? OR e.description LIKE ?)")
		args = append(args, like, like)
	}
	if f.Active != nil {
		conds = append(conds, "e.is_active = ?")
		args = append(args, *f.Active)
	}
	if f.Featured != nil {
		conds = append(conds, "e.is_featured = ?")
		args = append(args, *f.Featured)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListExtras returns extracurriculars with member counts, ordered by name.
func (q *Queries) ListExtras(ctx context.Context, f ExtraFilter) ([]model.Extra, error) {
	where, args := f.where()
	query := `SELECT ` + extraColumns + `,
		(SELECT COUNT(*) FROM extra_members m WHERE m.extra_id = e.id)
		FROM extras e` + where + ` ORDER BY e.name`
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Extra
	for rows.Next() {
		var e model.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Category,
			&e.Schedule, &e.Location, &e.Quota, &e.ImageID, &e.IsActive,
			&e.IsFeatured, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
			&e.MemberCount); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountExtras returns the number of extracurriculars matching the filter.
func (q *Queries) CountExtras(ctx context.Context, f ExtraFilter) (int64, error) {
	where, args := f.where()
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM extras e`+where, args...).Scan(&n)
	return n, err
}

// GetExtraByID fetches an extracurricular by primary key, with member count.
func (q *Queries) GetExtraByID(ctx context.Context, id int64) (model.Extra, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+extraColumns+`,
		 (SELECT COUNT(*) FROM extra_members m WHERE m.extra_id = e.id)
		 FROM extras e WHERE e.id = ?`, id)
	var e model.Extra
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Category,
		&e.Schedule, &e.Location, &e.Quota, &e.ImageID, &e.IsActive,
		&e.IsFeatured, &e.UserID, &e.CreatedAt, &e.UpdatedAt, &e.MemberCount)
	return e, notFound(err)
}

// GetExtraBySlug fetches an extracurricular by slug, with member count.
func (q *Queries) GetExtraBySlug(ctx context.Context, slug string) (model.Extra, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+extraColumns+`,
		 (SELECT COUNT(*) FROM extra_members m WHERE m.extra_id = e.id)
		 FROM extras e WHERE e.slug = ?`, slug)
	var e model.Extra
	err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Category,
		&e.Schedule, &e.Location, &e.Quota, &e.ImageID, &e.IsActive,
		&e.IsFeatured, &e.UserID, &e.CreatedAt, &e.UpdatedAt, &e.MemberCount)
	return e, notFound(err)
}

// CreateExtraParams holds the fields for CreateExtra.
type CreateExtraParams struct {
	Name        string
	Slug        string
	Description string
	Category    string
	Schedule    string
	Location    string
	Quota       sql.NullInt64
	ImageID     sql.NullInt64
	IsActive    bool
	IsFeatured  bool
	UserID      int64
}

// CreateExtra inserts an extracurricular and returns the stored record.
func (q *Queries) CreateExtra(ctx context.Context, arg CreateExtraParams) (model.Extra, error) {
	now := time.Now()
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO extras (name, slug, description, category, schedule, location,
			quota, image_id, is_active, is_featured, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.Slug, arg.Description, arg.Category, arg.Schedule,
		arg.Location, arg.Quota, arg.ImageID, arg.IsActive, arg.IsFeatured,
		arg.UserID, now, now)
	if err != nil {
		return model.Extra{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Extra{}, err
	}
	return q.GetExtraByID(ctx, id)
}

// UpdateExtraParams holds the full column set for UpdateExtra.
type UpdateExtraParams struct {
	ID          int64
	Name        string
	Slug        string
	Description string
	Category    string
	Schedule    string
	Location    string
	Quota       sql.NullInt64
	ImageID     sql.NullInt64
	IsActive    bool
	IsFeatured  bool
}

// UpdateExtra overwrites the mutable columns of an extracurricular.
func (q *Queries) UpdateExtra(ctx context.Context, arg UpdateExtraParams) (model.Extra, error) {
	_, err := q.db.ExecContext(ctx,
		`UPDATE extras SET name = ?, slug = ?, description = ?, category = ?,
			schedule = ?, location = ?, quota = ?, image_id = ?, is_active = ?,
			is_featured = ?, updated_at = ?
		 WHERE id = ?`,
		arg.Name, arg.Slug, arg.Description, arg.Category, arg.Schedule,
		arg.Location, arg.Quota, arg.ImageID, arg.IsActive, arg.IsFeatured,
		time.Now(), arg.ID)
	if err != nil {
		return model.Extra{}, err
	}
	return q.GetExtraByID(ctx, arg.ID)
}

// DeleteExtra removes an extracurricular. Memberships cascade.
func (q *Queries) DeleteExtra(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM extras WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Membership

// IsExtraMember reports whether the user belongs to the extracurricular.
func (q *Queries) IsExtraMember(ctx context.Context, extraID, userID int64) (bool, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM extra_members WHERE extra_id = ? AND user_id = ?`,
		extraID, userID).Scan(&n)
	return n > 0, err
}

// CountExtraMembers returns the current membership size.
func (q *Queries) CountExtraMembers(ctx context.Context, extraID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM extra_members WHERE extra_id = ?`, extraID).Scan(&n)
	return n, err
}

// AddExtraMember inserts a membership row only while the quota is not yet
// reached. A NULL quota means unlimited. Returns the number of rows inserted
// so the caller can distinguish a full club from a successful join.
func (q *Queries) AddExtraMember(ctx context.Context, extraID, userID int64, role string) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO extra_members (extra_id, user_id, role, joined_at)
		 SELECT ?, ?, ?, ?
		 WHERE (SELECT quota FROM extras WHERE id = ?) IS NULL
		    OR (SELECT COUNT(*) FROM extra_members WHERE extra_id = ?) <
		       (SELECT quota FROM extras WHERE id = ?)`,
		extraID, userID, role, time.Now(), extraID, extraID, extraID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// RemoveExtraMember deletes a membership row. Returns rows removed.
func (q *Queries) RemoveExtraMember(ctx context.Context, extraID, userID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM extra_members WHERE extra_id = ? AND user_id = ?`,
		extraID, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExtraMemberRow joins a membership record with its user.
type ExtraMemberRow struct {
	Member model.ExtraMember
	User   model.User
}

// ListExtraMembers returns the members of an extracurricular, oldest first.
func (q *Queries) ListExtraMembers(ctx context.Context, extraID int64) ([]ExtraMemberRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT m.extra_id, m.user_id, m.role, m.joined_at,
			u.id, u.email, u.password_hash, u.name, u.role,
			u.created_at, u.updated_at, u.last_login_at
		 FROM extra_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.extra_id = ?
		 ORDER BY m.joined_at, u.id`, extraID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var members []ExtraMemberRow
	for rows.Next() {
		var r ExtraMemberRow
		if err := rows.Scan(&r.Member.ExtraID, &r.Member.UserID, &r.Member.Role,
			&r.Member.JoinedAt, &r.User.ID, &r.User.Email, &r.User.PasswordHash,
			&r.User.Name, &r.User.Role, &r.User.CreatedAt, &r.User.UpdatedAt,
			&r.User.LastLoginAt); err != nil {
			return nil, err
		}
		members = append(members, r)
	}
	return members, rows.Err()
}

// ListExtraMembershipsForUser returns the extracurriculars a user belongs to.
func (q *Queries) ListExtraMembershipsForUser(ctx context.Context, userID int64) ([]model.Extra, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+extraColumns+`,
		 (SELECT COUNT(*) FROM extra_members c WHERE c.extra_id = e.id)
		 FROM extras e
		 JOIN extra_members m ON m.extra_id = e.id
		 WHERE m.user_id = ?
		 ORDER BY e.name`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Extra
	for rows.Next() {
		var e model.Extra
		if err := rows.Scan(&e.ID, &e.Name, &e.Slug, &e.Description, &e.Category,
			&e.Schedule, &e.Location, &e.Quota, &e.ImageID, &e.IsActive,
			&e.IsFeatured, &e.UserID, &e.CreatedAt, &e.UpdatedAt,
			&e.MemberCount); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountExtrasByCategory groups active extracurriculars by category.
func (q *Queries) CountExtrasByCategory(ctx context.Context) ([]CategoryCount, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM extras
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
