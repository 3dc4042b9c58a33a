package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// CinemaRepo persists cinemas.  A cinema's organizer_id is written once at
// insert and never rewritten; approval transitions are a separate,
// admin-only mutation.
type CinemaRepo struct {
	db *sql.DB
}

// NewCinemaRepo returns a CinemaRepo bound to the given database.
func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{db: db} }

const cinemaCols = `id, organizer_id, name, location, contact_email, approval_status,
                    created_at, created_by, updated_at, updated_by`

func scanCinema(row interface{ Scan(...any) error }) (*model.Cinema, error) {
	var c model.Cinema
	if err := row.Scan(
		&c.ID, &c.OrganizerID, &c.Name, &c.Location, &c.ContactEmail, &c.ApprovalStatus,
		&c.CreatedAt, &c.CreatedBy, &c.UpdatedAt, &c.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new cinema in the PENDING approval state.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema, actor string) error {
	c.Audit = newAudit(actor)
	if c.ApprovalStatus == "" {
		c.ApprovalStatus = model.ApprovalPending
	}
	const q = `INSERT INTO cinemas (id, organizer_id, name, location, contact_email, approval_status,
	                                created_at, created_by, updated_at, updated_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		c.ID, c.OrganizerID, c.Name, c.Location, c.ContactEmail, c.ApprovalStatus,
		c.CreatedAt, c.CreatedBy, c.UpdatedAt, c.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert cinema: %w", err)
	}
	return nil
}

// GetByID returns one live cinema or ErrNotFound.
func (r *CinemaRepo) GetByID(ctx context.Context, id string) (*model.Cinema, error) {
	q := `SELECT ` + cinemaCols + ` FROM cinemas WHERE id = ? AND is_deleted = 0`
	c, err := scanCinema(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select cinema: %w", err)
	}
	return c, nil
}

// List returns all live cinemas ordered by name.
func (r *CinemaRepo) List(ctx context.Context) ([]model.Cinema, error) {
	q := `SELECT ` + cinemaCols + ` FROM cinemas WHERE is_deleted = 0 ORDER BY name, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list cinemas: %w", err)
	}
	defer rows.Close()
	out := make([]model.Cinema, 0)
	for rows.Next() {
		c, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// Update rewrites the mutable metadata of a live cinema.  organizer_id and
// approval_status are deliberately excluded.
func (r *CinemaRepo) Update(ctx context.Context, c *model.Cinema, actor string) error {
	touchAudit(&c.Audit, actor)
	const q = `UPDATE cinemas
	           SET name = ?, location = ?, contact_email = ?, updated_at = ?, updated_by = ?
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Location, c.ContactEmail, c.UpdatedAt, c.UpdatedBy, c.ID)
	if err != nil {
		return fmt.Errorf("update cinema: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus transitions the approval state.  Role enforcement (admin
// only) happens in the access policy before this is called.
func (r *CinemaRepo) UpdateStatus(ctx context.Context, id, status, actor string) error {
	const q = `UPDATE cinemas
	           SET approval_status = ?, updated_at = UTC_TIMESTAMP(), updated_by = ?
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q, status, actor, id)
	if err != nil {
		return fmt.Errorf("update cinema status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete logically removes a cinema through the audit hook.
func (r *CinemaRepo) Delete(ctx context.Context, id, actor string) error {
	return softDelete(ctx, r.db, "cinemas", id, actor)
}
