package model

import "time"

// Ticket lifecycle states.  Pending tickets hold their seats as Reserved
// until payment confirms them or the expiry worker reclaims them.
// Confirmed, Expired and Cancelled are terminal and never rewritten.
const (
	TicketPending   = "PENDING"
	TicketConfirmed = "CONFIRMED"
	TicketExpired   = "EXPIRED"
	TicketCancelled = "CANCELLED"
)

// Ticket records a reservation of one or more seats on a showtime.
// BookingReference is the human-visible unique identifier ("HIVE-" plus 8
// uppercase hex characters).  UserEmail is captured from the principal at
// reservation time so notification payloads never need to call back into
// the identity service.
type Ticket struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	UserEmail        string     `json:"-"`
	ShowtimeID       string     `json:"showtime_id"`
	BookingReference string     `json:"booking_reference"`
	Seats            []Seat     `json:"seats"`
	TotalCents       int64      `json:"total_cents"`
	Status           string     `json:"status"`
	CreatedAt        time.Time  `json:"created_at"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	IsDeleted        bool       `json:"-"`
}
