// Package service implements the reservation core: pricing, the
// Pending/Confirmed/Expired ticket lifecycle, the seat-map read path and
// the ownership/approval policy.  Services speak to storage through
// narrow interfaces so the transaction-owning repositories stay swappable
// in tests.
package service

import "errors"

// ErrSeatsUnavailable is returned when at least one requested seat is not
// Available.  The edge maps it to 409; the client must re-read the seat
// map and re-request.
var ErrSeatsUnavailable = errors.New("seats unavailable")

// ErrInvalidTicketState is returned when a payment confirmation arrives
// for a ticket that is neither Pending nor already Confirmed.  An Expired
// ticket is never revived.  The edge maps it to 400.
var ErrInvalidTicketState = errors.New("invalid ticket state")

// ErrValidation marks shape and range violations: empty seat lists,
// out-of-bounds coordinates, reservations targeting disabled seats,
// malformed layouts.  The edge maps it to 400.
var ErrValidation = errors.New("validation failed")
