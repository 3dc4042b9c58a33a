package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// ShowtimeRepo persists showtimes and their seat-availability buffers.
// The buffer is stored as raw bytes with length exactly max_rows *
// max_columns of the owning auditorium; every persisted mutation goes
// through a compare-and-swap on the version column.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

// ShowtimeDetail joins a showtime with its auditorium, movie and cinema.
// It is the single-query load used by the reservation path, where the seat
// buffer and layout must arrive together, and by the seat-map renderer,
// which additionally needs the denormalized names.
type ShowtimeDetail struct {
	Showtime   model.Showtime
	Auditorium model.Auditorium
	MovieTitle string
	CinemaID   string
	CinemaName string
}

// Create inserts a new showtime with an all-Available buffer sized to the
// auditorium grid and version 1.
func (r *ShowtimeRepo) Create(ctx context.Context, s *model.Showtime, rows, cols int, actor string) error {
	s.Audit = newAudit(actor)
	s.SeatState = make([]byte, rows*cols)
	s.Version = 1
	const q = `INSERT INTO showtimes (id, movie_id, auditorium_id, starts_at, base_price_cents,
	                                  seat_state, version,
	                                  created_at, created_by, updated_at, updated_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		s.ID, s.MovieID, s.AuditoriumID, s.StartsAt, s.BasePriceCents,
		s.SeatState, s.Version,
		s.CreatedAt, s.CreatedBy, s.UpdatedAt, s.UpdatedBy); err != nil {
		return fmt.Errorf("insert showtime: %w", err)
	}
	return nil
}

// GetDetail loads one live showtime together with its auditorium layout
// and the denormalized movie and cinema names in a single query.
func (r *ShowtimeRepo) GetDetail(ctx context.Context, id string) (*ShowtimeDetail, error) {
	const q = `SELECT st.id, st.movie_id, st.auditorium_id, st.starts_at, st.base_price_cents,
	                  st.seat_state, st.version,
	                  a.id, a.cinema_id, a.name, a.max_rows, a.max_columns, a.layout,
	                  m.title, c.id, c.name
	           FROM showtimes st
	           JOIN auditoriums a ON a.id = st.auditorium_id AND a.is_deleted = 0
	           JOIN movies m ON m.id = st.movie_id AND m.is_deleted = 0
	           JOIN cinemas c ON c.id = a.cinema_id AND c.is_deleted = 0
	           WHERE st.id = ? AND st.is_deleted = 0`
	var d ShowtimeDetail
	var layout []byte
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.Showtime.ID, &d.Showtime.MovieID, &d.Showtime.AuditoriumID, &d.Showtime.StartsAt, &d.Showtime.BasePriceCents,
		&d.Showtime.SeatState, &d.Showtime.Version,
		&d.Auditorium.ID, &d.Auditorium.CinemaID, &d.Auditorium.Name, &d.Auditorium.MaxRows, &d.Auditorium.MaxColumns, &layout,
		&d.MovieTitle, &d.CinemaID, &d.CinemaName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select showtime detail: %w", err)
	}
	if len(layout) > 0 {
		if err := json.Unmarshal(layout, &d.Auditorium.Layout); err != nil {
			return nil, fmt.Errorf("decode layout for auditorium %s: %w", d.Auditorium.ID, err)
		}
	}
	return &d, nil
}

// GetByID returns one live showtime row without its joins.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id string) (*model.Showtime, error) {
	const q = `SELECT id, movie_id, auditorium_id, starts_at, base_price_cents, seat_state, version,
	                  created_at, created_by, updated_at, updated_by
	           FROM showtimes WHERE id = ? AND is_deleted = 0`
	var s model.Showtime
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.MovieID, &s.AuditoriumID, &s.StartsAt, &s.BasePriceCents, &s.SeatState, &s.Version,
		&s.CreatedAt, &s.CreatedBy, &s.UpdatedAt, &s.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select showtime: %w", err)
	}
	return &s, nil
}

// Update rewrites the schedule fields of a live showtime.  The seat buffer
// and version are untouched; only the reservation transactions mutate
// those.
func (r *ShowtimeRepo) Update(ctx context.Context, s *model.Showtime, actor string) error {
	touchAudit(&s.Audit, actor)
	const q = `UPDATE showtimes
	           SET starts_at = ?, base_price_cents = ?, updated_at = ?, updated_by = ?
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q, s.StartsAt, s.BasePriceCents, s.UpdatedAt, s.UpdatedBy, s.ID)
	if err != nil {
		return fmt.Errorf("update showtime: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete logically removes a showtime through the audit hook.
func (r *ShowtimeRepo) Delete(ctx context.Context, id, actor string) error {
	return softDelete(ctx, r.db, "showtimes", id, actor)
}

// casSeatStateTx compare-and-swaps the seat buffer inside a transaction.
// The WHERE clause on the version column is the whole optimistic
// concurrency story: zero affected rows means another writer advanced the
// token first and the caller must surface ErrVersionConflict.
func casSeatStateTx(ctx context.Context, tx *sql.Tx, showtimeID string, buf []byte, version uint64) error {
	const q = `UPDATE showtimes
	           SET seat_state = ?, version = version + 1, updated_at = UTC_TIMESTAMP()
	           WHERE id = ? AND version = ? AND is_deleted = 0`
	res, err := tx.ExecContext(ctx, q, buf, showtimeID, version)
	if err != nil {
		return fmt.Errorf("cas seat state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVersionConflict
	}
	return nil
}
