package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// AuditoriumRepo persists auditoriums.  The layout (disabled seats,
// wheelchair spots, pricing tiers) is stored as an embedded JSON document
// on the row so the reservation path loads it together with the showtime
// in one query.
type AuditoriumRepo struct {
	db *sql.DB
}

// NewAuditoriumRepo returns an AuditoriumRepo bound to the given database.
func NewAuditoriumRepo(db *sql.DB) *AuditoriumRepo { return &AuditoriumRepo{db: db} }

const auditoriumCols = `id, cinema_id, name, max_rows, max_columns, layout,
                        created_at, created_by, updated_at, updated_by`

func scanAuditorium(row interface{ Scan(...any) error }) (*model.Auditorium, error) {
	var a model.Auditorium
	var layout []byte
	if err := row.Scan(
		&a.ID, &a.CinemaID, &a.Name, &a.MaxRows, &a.MaxColumns, &layout,
		&a.CreatedAt, &a.CreatedBy, &a.UpdatedAt, &a.UpdatedBy,
	); err != nil {
		return nil, err
	}
	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &a.Layout); err != nil {
			return nil, fmt.Errorf("decode layout for auditorium %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

// Create inserts a new auditorium.  The layout must already have passed
// validation (bounds, tier overlap); the repository only serializes it.
func (r *AuditoriumRepo) Create(ctx context.Context, a *model.Auditorium, actor string) error {
	a.Audit = newAudit(actor)
	layout, err := json.Marshal(a.Layout)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	const q = `INSERT INTO auditoriums (id, cinema_id, name, max_rows, max_columns, layout,
	                                    created_at, created_by, updated_at, updated_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		a.ID, a.CinemaID, a.Name, a.MaxRows, a.MaxColumns, layout,
		a.CreatedAt, a.CreatedBy, a.UpdatedAt, a.UpdatedBy); err != nil {
		return fmt.Errorf("insert auditorium: %w", err)
	}
	return nil
}

// GetByID returns one live auditorium or ErrNotFound.
func (r *AuditoriumRepo) GetByID(ctx context.Context, id string) (*model.Auditorium, error) {
	q := `SELECT ` + auditoriumCols + ` FROM auditoriums WHERE id = ? AND is_deleted = 0`
	a, err := scanAuditorium(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select auditorium: %w", err)
	}
	return a, nil
}

// List returns all live auditoriums ordered by name.
func (r *AuditoriumRepo) List(ctx context.Context) ([]model.Auditorium, error) {
	q := `SELECT ` + auditoriumCols + ` FROM auditoriums WHERE is_deleted = 0 ORDER BY name, id`
	return r.queryMany(ctx, q)
}

// ListByCinema returns the live auditoriums of one cinema.
func (r *AuditoriumRepo) ListByCinema(ctx context.Context, cinemaID string) ([]model.Auditorium, error) {
	q := `SELECT ` + auditoriumCols + ` FROM auditoriums WHERE cinema_id = ? AND is_deleted = 0 ORDER BY name, id`
	return r.queryMany(ctx, q, cinemaID)
}

func (r *AuditoriumRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Auditorium, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list auditoriums: %w", err)
	}
	defer rows.Close()
	out := make([]model.Auditorium, 0)
	for rows.Next() {
		a, err := scanAuditorium(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Update rewrites the name and layout of a live auditorium.  Grid
// dimensions are immutable once showtimes may reference the room, so
// max_rows and max_columns are not part of the update set.
func (r *AuditoriumRepo) Update(ctx context.Context, a *model.Auditorium, actor string) error {
	touchAudit(&a.Audit, actor)
	layout, err := json.Marshal(a.Layout)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	const q = `UPDATE auditoriums
	           SET name = ?, layout = ?, updated_at = ?, updated_by = ?
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q, a.Name, layout, a.UpdatedAt, a.UpdatedBy, a.ID)
	if err != nil {
		return fmt.Errorf("update auditorium: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete logically removes an auditorium through the audit hook.
func (r *AuditoriumRepo) Delete(ctx context.Context, id, actor string) error {
	return softDelete(ctx, r.db, "auditoriums", id, actor)
}
