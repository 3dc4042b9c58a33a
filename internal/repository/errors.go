// Package repository implements raw-SQL persistence adapters over
// database/sql.  This file defines sentinel errors shared across the
// repositories so higher layers can branch with errors.Is and the edge can
// map each one to a stable HTTP status.
package repository

import "errors"

// ErrNotFound is returned when an entity is absent or soft-deleted.  The
// edge maps it to 404.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller attempts a mutation on a
// resource owned by another organizer.  The edge maps it to 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotApproved is returned when a showtime is created under a cinema
// that is not in the APPROVED state.  The edge maps it to 409.
var ErrNotApproved = errors.New("cinema not approved")

// ErrVersionConflict is returned when an optimistic write against a
// showtime's version token loses the race.  The edge maps it to 409; the
// reservation path never retries it automatically.
var ErrVersionConflict = errors.New("showtime version conflict")

// ErrDuplicateReference is returned when a generated booking reference
// collides with the unique index.  The reservation service regenerates and
// retries a bounded number of times.
var ErrDuplicateReference = errors.New("duplicate booking reference")
