package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/seathive/seathive-server/internal/engine"
	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/queue"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/utils"
)

// bookingRefAttempts bounds regeneration after a reference collision.
const bookingRefAttempts = 3

// ShowtimeLoader loads a showtime joined with its auditorium layout and
// denormalized names in one query.
type ShowtimeLoader interface {
	GetDetail(ctx context.Context, id string) (*repository.ShowtimeDetail, error)
}

// TicketStore owns the transactions that couple a ticket state change to
// the showtime seat buffer under the optimistic version token.
type TicketStore interface {
	CreatePending(ctx context.Context, t *model.Ticket, buf []byte, version uint64) error
	GetByReference(ctx context.Context, ref string) (*repository.TicketDetail, error)
	Confirm(ctx context.Context, t *model.Ticket, buf []byte, version uint64, msg *model.OutboxMessage) error
	ListByUser(ctx context.Context, userID string) ([]repository.BookingSummary, error)
}

// SeatMapInvalidator drops the cached seat map of one showtime.  Every
// successful Reserve, Confirm and Expire goes through it.
type SeatMapInvalidator interface {
	Invalidate(showtimeID string)
}

// ReservationService owns the Pending/Confirmed transitions and the money
// calculation.  It is safe for concurrent use; each operation constructs
// its engine fresh over the buffer loaded in that operation.
type ReservationService struct {
	showtimes ShowtimeLoader
	tickets   TicketStore
	seatMaps  SeatMapInvalidator
	logger    *zap.Logger
	now       func() time.Time
}

// NewReservationService wires the reservation core.
func NewReservationService(showtimes ShowtimeLoader, tickets TicketStore, seatMaps SeatMapInvalidator, logger *zap.Logger) *ReservationService {
	return &ReservationService{
		showtimes: showtimes,
		tickets:   tickets,
		seatMaps:  seatMaps,
		logger:    logger,
		now:       time.Now,
	}
}

// Reserve atomically holds a group of seats for the principal and writes a
// Pending ticket.  Failure modes, in order: ErrValidation for an empty
// list, out-of-bounds coordinates or disabled seats;
// repository.ErrNotFound for a missing showtime; ErrSeatsUnavailable when
// any seat is not Available; repository.ErrVersionConflict when another
// writer advanced the showtime first.  Version conflicts are never retried
// here; the client re-reads the seat map and re-requests.
func (s *ReservationService) Reserve(ctx context.Context, p model.Principal, showtimeID string, seats []model.Seat) (*model.Ticket, error) {
	if len(seats) == 0 {
		return nil, fmt.Errorf("%w: no seats requested", ErrValidation)
	}

	det, err := s.showtimes.GetDetail(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	disabled := det.Auditorium.Layout.DisabledSet()
	for _, seat := range seats {
		if _, ok := disabled[seat]; ok {
			return nil, fmt.Errorf("%w: seat (%d,%d) is disabled", ErrValidation, seat.Row, seat.Col)
		}
	}

	m, err := engine.New(det.Showtime.SeatState, det.Auditorium.MaxRows, det.Auditorium.MaxColumns)
	if err != nil {
		return nil, err
	}
	ok, err := m.TryReserveBatch(seats)
	if err != nil {
		if errors.Is(err, engine.ErrOutOfRange) {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil, err
	}
	if !ok {
		return nil, ErrSeatsUnavailable
	}

	total := priceSeats(det.Showtime.BasePriceCents, det.Auditorium.Layout, seats)

	ticket := &model.Ticket{
		ID:         utils.NewID(),
		UserID:     p.ID,
		UserEmail:  p.Email,
		ShowtimeID: showtimeID,
		Seats:      seats,
		TotalCents: total,
		Status:     model.TicketPending,
		CreatedAt:  s.now().UTC(),
	}

	for attempt := 0; attempt < bookingRefAttempts; attempt++ {
		ticket.BookingReference = newBookingReference()
		err = s.tickets.CreatePending(ctx, ticket, det.Showtime.SeatState, det.Showtime.Version)
		if errors.Is(err, repository.ErrDuplicateReference) {
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	s.seatMaps.Invalidate(showtimeID)
	s.logger.Info("seats reserved",
		zap.String("ticket_id", ticket.ID),
		zap.String("booking_reference", ticket.BookingReference),
		zap.String("showtime_id", showtimeID),
		zap.Int("seats", len(seats)),
		zap.Int64("total_cents", total))
	return ticket, nil
}

// priceSeats sums the base price plus any tier surcharge per requested
// seat.  Duplicate coordinates in the request are charged once each as
// submitted; amounts are integer cents so plain addition is exact.
func priceSeats(baseCents int64, layout model.Layout, seats []model.Seat) int64 {
	surcharge := layout.SurchargeBySeat()
	var total int64
	for _, seat := range seats {
		total += baseCents + surcharge[seat]
	}
	return total
}

// ConfirmPayment transitions a Pending ticket to Confirmed on receipt of
// the payment webhook, flips its cells Reserved -> Sold and stages the
// email notification in the outbox within the same transaction.  A
// repeated webhook for an already-Confirmed ticket succeeds without any
// state change; an Expired or Cancelled ticket fails ErrInvalidTicketState
// and is never revived.
func (s *ReservationService) ConfirmPayment(ctx context.Context, bookingReference string) (*model.Ticket, error) {
	det, err := s.tickets.GetByReference(ctx, bookingReference)
	if err != nil {
		return nil, err
	}
	ticket := det.Ticket

	if ticket.Status == model.TicketConfirmed {
		return &ticket, nil
	}
	if ticket.Status != model.TicketPending {
		return nil, fmt.Errorf("%w: ticket %s is %s", ErrInvalidTicketState, ticket.ID, ticket.Status)
	}

	m, err := engine.New(det.SeatState, det.MaxRows, det.MaxColumns)
	if err != nil {
		return nil, err
	}
	for _, seat := range ticket.Seats {
		// A Pending ticket owns its cells as Reserved; anything else here
		// is corruption and must not be papered over.
		if err := m.MarkSold(seat.Row, seat.Col); err != nil {
			return nil, fmt.Errorf("ticket %s: %w", ticket.ID, err)
		}
	}

	paidAt := s.now().UTC()
	ticket.Status = model.TicketConfirmed
	ticket.PaidAt = &paidAt

	msg, err := buildConfirmationMessage(&ticket, paidAt)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.Confirm(ctx, &ticket, det.SeatState, det.ShowtimeVersion, msg); err != nil {
		return nil, err
	}

	s.seatMaps.Invalidate(ticket.ShowtimeID)
	s.logger.Info("ticket confirmed",
		zap.String("ticket_id", ticket.ID),
		zap.String("booking_reference", ticket.BookingReference))
	return &ticket, nil
}

// buildConfirmationMessage stages the email-notification event for a
// freshly confirmed ticket.  The recipient comes straight off the ticket;
// no identity lookup is needed on this path.
func buildConfirmationMessage(t *model.Ticket, paidAt time.Time) (*model.OutboxMessage, error) {
	event := queue.EmailNotificationEvent{
		RecipientEmail: t.UserEmail,
		RecipientID:    t.UserID,
		Subject:        "Your booking " + t.BookingReference + " is confirmed",
		TemplateCode:   queue.TemplateBookingConfirmed,
		Variables: map[string]string{
			"bookingReference": t.BookingReference,
			"totalCents":       fmt.Sprintf("%d", t.TotalCents),
			"paidAtUtc":        paidAt.Format(time.RFC3339),
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode notification event: %w", err)
	}
	return &model.OutboxMessage{
		ID:        utils.NewID(),
		EventType: model.EventTypeEmailNotification,
		Payload:   payload,
		CreatedAt: paidAt,
	}, nil
}

// ListMyTickets returns the caller's booking history, newest first.  An
// unknown user gets an empty list, never an error.
func (s *ReservationService) ListMyTickets(ctx context.Context, userID string) ([]repository.BookingSummary, error) {
	return s.tickets.ListByUser(ctx, userID)
}
