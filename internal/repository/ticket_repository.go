package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/seathive/seathive-server/internal/model"
)

// mysqlDuplicateEntry is the driver error number for a unique-index
// violation, used to detect booking-reference collisions.
const mysqlDuplicateEntry = 1062

// TicketRepo persists tickets and owns the multi-row transactions that
// couple a ticket state change to the showtime seat buffer under the
// optimistic version token.  Reserved seats are stored as an embedded
// JSON list on the ticket row.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketDetail pairs a ticket with the seat buffer and dimensions of its
// showtime, which the confirm and expiry paths need to rebuild the engine.
type TicketDetail struct {
	Ticket          model.Ticket
	ShowtimeVersion uint64
	SeatState       []byte
	MaxRows         int
	MaxColumns      int
}

// BookingSummary is the denormalized read model returned to customers
// listing their own tickets.
type BookingSummary struct {
	TicketID         string       `json:"ticket_id"`
	BookingReference string       `json:"booking_reference"`
	Status           string       `json:"status"`
	TotalCents       int64        `json:"total_cents"`
	Seats            []model.Seat `json:"seats"`
	MovieTitle       string       `json:"movie_title"`
	CinemaName       string       `json:"cinema_name"`
	AuditoriumName   string       `json:"auditorium_name"`
	StartsAt         time.Time    `json:"starts_at"`
	CreatedAt        time.Time    `json:"created_at"`
	PaidAt           *time.Time   `json:"paid_at,omitempty"`
}

// CreatePending inserts a Pending ticket and swaps the mutated seat buffer
// into its showtime in one transaction.  It returns ErrVersionConflict
// when the showtime token moved underneath the caller and
// ErrDuplicateReference when the booking reference collides with the
// unique index; the caller decides whether to retry.
func (r *TicketRepo) CreatePending(ctx context.Context, t *model.Ticket, buf []byte, version uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin reserve tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := casSeatStateTx(ctx, tx, t.ShowtimeID, buf, version); err != nil {
		return err
	}

	seats, err := json.Marshal(t.Seats)
	if err != nil {
		return fmt.Errorf("encode seats: %w", err)
	}
	const q = `INSERT INTO tickets (id, user_id, user_email, showtime_id, booking_reference,
	                                seats, total_cents, status, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, q,
		t.ID, t.UserID, t.UserEmail, t.ShowtimeID, t.BookingReference,
		seats, t.TotalCents, t.Status, t.CreatedAt); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert ticket: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit reserve tx: %w", err)
	}
	committed = true
	return nil
}

const ticketDetailQuery = `SELECT t.id, t.user_id, t.user_email, t.showtime_id, t.booking_reference,
                                  t.seats, t.total_cents, t.status, t.created_at, t.paid_at,
                                  st.seat_state, st.version, a.max_rows, a.max_columns
                           FROM tickets t
                           JOIN showtimes st ON st.id = t.showtime_id AND st.is_deleted = 0
                           JOIN auditoriums a ON a.id = st.auditorium_id AND a.is_deleted = 0`

func scanTicketDetail(row interface{ Scan(...any) error }) (*TicketDetail, error) {
	var d TicketDetail
	var seats []byte
	var paidAt sql.NullTime
	if err := row.Scan(
		&d.Ticket.ID, &d.Ticket.UserID, &d.Ticket.UserEmail, &d.Ticket.ShowtimeID, &d.Ticket.BookingReference,
		&seats, &d.Ticket.TotalCents, &d.Ticket.Status, &d.Ticket.CreatedAt, &paidAt,
		&d.SeatState, &d.ShowtimeVersion, &d.MaxRows, &d.MaxColumns,
	); err != nil {
		return nil, err
	}
	if paidAt.Valid {
		t := paidAt.Time
		d.Ticket.PaidAt = &t
	}
	if err := json.Unmarshal(seats, &d.Ticket.Seats); err != nil {
		return nil, fmt.Errorf("decode seats for ticket %s: %w", d.Ticket.ID, err)
	}
	return &d, nil
}

// GetByReference loads a ticket with its showtime buffer by booking
// reference, or ErrNotFound.
func (r *TicketRepo) GetByReference(ctx context.Context, ref string) (*TicketDetail, error) {
	q := ticketDetailQuery + ` WHERE t.booking_reference = ? AND t.is_deleted = 0`
	d, err := scanTicketDetail(r.db.QueryRowContext(ctx, q, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select ticket by reference: %w", err)
	}
	return d, nil
}

// Confirm transitions a Pending ticket to Confirmed, persists the mutated
// seat buffer under the version token and stages the outbox message, all
// in one transaction.  The status guard in the ticket UPDATE keeps a lost
// race (already expired, already confirmed) from rewriting a terminal
// state.
func (r *TicketRepo) Confirm(ctx context.Context, t *model.Ticket, buf []byte, version uint64, msg *model.OutboxMessage) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin confirm tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := casSeatStateTx(ctx, tx, t.ShowtimeID, buf, version); err != nil {
		return err
	}

	const q = `UPDATE tickets SET status = ?, paid_at = ? WHERE id = ? AND status = ? AND is_deleted = 0`
	res, err := tx.ExecContext(ctx, q, model.TicketConfirmed, t.PaidAt, t.ID, model.TicketPending)
	if err != nil {
		return fmt.Errorf("confirm ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVersionConflict
	}

	if err := insertOutboxTx(ctx, tx, msg); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit confirm tx: %w", err)
	}
	committed = true
	return nil
}

// ListExpiredPending returns every Pending ticket created before the
// cutoff, joined with its showtime buffer so the expiry sweep can release
// the held cells.
func (r *TicketRepo) ListExpiredPending(ctx context.Context, cutoff time.Time) ([]TicketDetail, error) {
	q := ticketDetailQuery + ` WHERE t.status = ? AND t.created_at < ? AND t.is_deleted = 0 ORDER BY t.created_at`
	rows, err := r.db.QueryContext(ctx, q, model.TicketPending, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expired pending tickets: %w", err)
	}
	defer rows.Close()
	out := make([]TicketDetail, 0)
	for rows.Next() {
		d, err := scanTicketDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Expire marks one overdue ticket Expired and persists the released seat
// buffer under the showtime version token.  Each call is a self-contained
// unit so one conflicting showtime cannot abort the rest of a sweep.
func (r *TicketRepo) Expire(ctx context.Context, ticketID, showtimeID string, buf []byte, version uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin expire tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := casSeatStateTx(ctx, tx, showtimeID, buf, version); err != nil {
		return err
	}
	const q = `UPDATE tickets SET status = ? WHERE id = ? AND status = ? AND is_deleted = 0`
	res, err := tx.ExecContext(ctx, q, model.TicketExpired, ticketID, model.TicketPending)
	if err != nil {
		return fmt.Errorf("expire ticket: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrVersionConflict
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit expire tx: %w", err)
	}
	committed = true
	return nil
}

// ListByUser returns the denormalized booking history of one user, newest
// first.  Unknown users yield an empty slice, never an error.
func (r *TicketRepo) ListByUser(ctx context.Context, userID string) ([]BookingSummary, error) {
	const q = `SELECT t.id, t.booking_reference, t.status, t.total_cents, t.seats,
	                  m.title, c.name, a.name, st.starts_at, t.created_at, t.paid_at
	           FROM tickets t
	           JOIN showtimes st ON st.id = t.showtime_id
	           JOIN auditoriums a ON a.id = st.auditorium_id
	           JOIN cinemas c ON c.id = a.cinema_id
	           JOIN movies m ON m.id = st.movie_id
	           WHERE t.user_id = ? AND t.is_deleted = 0
	           ORDER BY t.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list tickets by user: %w", err)
	}
	defer rows.Close()
	out := make([]BookingSummary, 0)
	for rows.Next() {
		var b BookingSummary
		var seats []byte
		var paidAt sql.NullTime
		if err := rows.Scan(
			&b.TicketID, &b.BookingReference, &b.Status, &b.TotalCents, &seats,
			&b.MovieTitle, &b.CinemaName, &b.AuditoriumName, &b.StartsAt, &b.CreatedAt, &paidAt,
		); err != nil {
			return nil, err
		}
		if paidAt.Valid {
			t := paidAt.Time
			b.PaidAt = &t
		}
		if err := json.Unmarshal(seats, &b.Seats); err != nil {
			return nil, fmt.Errorf("decode seats for ticket %s: %w", b.TicketID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
