package model

import "time"

// Showtime schedules one movie in one auditorium at a specific instant.
// SeatState is the raw availability buffer, one byte per seat in row-major
// order; its length is always MaxRows*MaxColumns of the auditorium.
// Version is the optimistic concurrency token: the storage layer increments
// it on every persisted mutation and rejects writes made against a stale
// value.
type Showtime struct {
	ID             string    `json:"id"`
	MovieID        string    `json:"movie_id"`
	AuditoriumID   string    `json:"auditorium_id"`
	StartsAt       time.Time `json:"starts_at"`
	BasePriceCents int64     `json:"base_price_cents"`
	SeatState      []byte    `json:"-"`
	Version        uint64    `json:"-"`
	Audit
}
