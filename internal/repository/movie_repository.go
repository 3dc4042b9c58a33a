package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// MovieRepo provides CRUD for the movie catalog.  Default queries exclude
// soft-deleted rows; there is no audit listing here because the catalog is
// not part of the reservation hot path.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to the given database.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieCols = `id, title, description, duration_minutes, release_date, poster_url,
                   created_at, created_by, updated_at, updated_by`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var m model.Movie
	var poster sql.NullString
	if err := row.Scan(
		&m.ID, &m.Title, &m.Description, &m.DurationMinutes, &m.ReleaseDate, &poster,
		&m.CreatedAt, &m.CreatedBy, &m.UpdatedAt, &m.UpdatedBy,
	); err != nil {
		return nil, err
	}
	if poster.Valid {
		p := poster.String
		m.PosterURL = &p
	}
	return &m, nil
}

// Create inserts a new movie.  The audit stamp records the acting
// principal; the generated ID must already be set by the caller.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, actor string) error {
	m.Audit = newAudit(actor)
	const q = `INSERT INTO movies (id, title, description, duration_minutes, release_date, poster_url,
	                               created_at, created_by, updated_at, updated_by)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		m.ID, m.Title, m.Description, m.DurationMinutes, m.ReleaseDate, m.PosterURL,
		m.CreatedAt, m.CreatedBy, m.UpdatedAt, m.UpdatedBy)
	if err != nil {
		return fmt.Errorf("insert movie: %w", err)
	}
	return nil
}

// GetByID returns one live movie or ErrNotFound.
func (r *MovieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	q := `SELECT ` + movieCols + ` FROM movies WHERE id = ? AND is_deleted = 0`
	m, err := scanMovie(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select movie: %w", err)
	}
	return m, nil
}

// List returns all live movies ordered by release date, newest first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	q := `SELECT ` + movieCols + ` FROM movies WHERE is_deleted = 0 ORDER BY release_date DESC, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()
	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// Update rewrites the mutable fields of a live movie.
func (r *MovieRepo) Update(ctx context.Context, m *model.Movie, actor string) error {
	touchAudit(&m.Audit, actor)
	const q = `UPDATE movies
	           SET title = ?, description = ?, duration_minutes = ?, release_date = ?, poster_url = ?,
	               updated_at = ?, updated_by = ?
	           WHERE id = ? AND is_deleted = 0`
	res, err := r.db.ExecContext(ctx, q,
		m.Title, m.Description, m.DurationMinutes, m.ReleaseDate, m.PosterURL,
		m.UpdatedAt, m.UpdatedBy, m.ID)
	if err != nil {
		return fmt.Errorf("update movie: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete logically removes a movie through the audit hook.
func (r *MovieRepo) Delete(ctx context.Context, id, actor string) error {
	return softDelete(ctx, r.db, "movies", id, actor)
}
