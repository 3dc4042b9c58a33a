// Package worker holds the background loops of the reservation core: the
// expiry sweeper that reclaims seats held by overdue Pending tickets and
// the outbox dispatcher that forwards staged events to the broker.  Both
// run as plain goroutines driven by a ticker and stop when their context
// is cancelled.
package worker

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seathive/seathive-server/internal/engine"
	"github.com/seathive/seathive-server/internal/repository"
)

// ExpiryStore is the slice of the ticket repository the sweeper needs.
type ExpiryStore interface {
	ListExpiredPending(ctx context.Context, cutoff time.Time) ([]repository.TicketDetail, error)
	Expire(ctx context.Context, ticketID, showtimeID string, buf []byte, version uint64) error
}

// SeatMapInvalidator drops the cached seat map of one showtime.
type SeatMapInvalidator interface {
	Invalidate(showtimeID string)
}

// ExpiryWorker periodically expires Pending tickets older than the hold
// window and releases their seats.  Each ticket is expired in its own
// transaction, so a version conflict on one showtime never aborts the rest
// of a sweep; the conflicting ticket is simply picked up again next tick.
type ExpiryWorker struct {
	tickets    ExpiryStore
	seatMaps   SeatMapInvalidator
	holdWindow time.Duration
	interval   time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewExpiryWorker wires the sweeper.  holdWindow is how long a Pending
// ticket keeps its seats; interval is the sweep period.
func NewExpiryWorker(tickets ExpiryStore, seatMaps SeatMapInvalidator, holdWindow, interval time.Duration, logger *zap.Logger) *ExpiryWorker {
	return &ExpiryWorker{
		tickets:    tickets,
		seatMaps:   seatMaps,
		holdWindow: holdWindow,
		interval:   interval,
		logger:     logger,
		now:        time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (w *ExpiryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	w.logger.Info("expiry worker started",
		zap.Duration("hold_window", w.holdWindow),
		zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("expiry worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep expires every Pending ticket created before now minus the hold
// window.  Exported so a deployment can trigger an immediate pass on
// startup before the first tick.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	cutoff := w.now().UTC().Add(-w.holdWindow)
	overdue, err := w.tickets.ListExpiredPending(ctx, cutoff)
	if err != nil {
		w.logger.Error("list overdue tickets", zap.Error(err))
		return
	}
	for i := range overdue {
		w.expireOne(ctx, &overdue[i])
	}
}

func (w *ExpiryWorker) expireOne(ctx context.Context, d *repository.TicketDetail) {
	m, err := engine.New(d.SeatState, d.MaxRows, d.MaxColumns)
	if err != nil {
		w.logger.Error("rebuild seat map for expiry",
			zap.String("ticket_id", d.Ticket.ID), zap.Error(err))
		return
	}
	for _, seat := range d.Ticket.Seats {
		err := m.Release(seat.Row, seat.Col)
		if errors.Is(err, engine.ErrInvalidTransition) {
			// The cell is no longer Reserved, most likely released by an
			// earlier partial sweep of the same ticket.  Skip it and keep
			// releasing the rest.
			continue
		}
		if err != nil {
			w.logger.Error("release seat",
				zap.String("ticket_id", d.Ticket.ID),
				zap.Int("row", seat.Row), zap.Int("col", seat.Col), zap.Error(err))
			return
		}
	}

	err = w.tickets.Expire(ctx, d.Ticket.ID, d.Ticket.ShowtimeID, d.SeatState, d.ShowtimeVersion)
	if errors.Is(err, repository.ErrVersionConflict) {
		// Another writer (a confirm, a racing sweep) got there first; the
		// next tick re-reads and settles it.
		w.logger.Info("expiry deferred on version conflict",
			zap.String("ticket_id", d.Ticket.ID),
			zap.String("showtime_id", d.Ticket.ShowtimeID))
		return
	}
	if err != nil {
		w.logger.Error("expire ticket", zap.String("ticket_id", d.Ticket.ID), zap.Error(err))
		return
	}

	w.seatMaps.Invalidate(d.Ticket.ShowtimeID)
	w.logger.Info("ticket expired",
		zap.String("ticket_id", d.Ticket.ID),
		zap.String("booking_reference", d.Ticket.BookingReference),
		zap.Int("seats_released", len(d.Ticket.Seats)))
}
