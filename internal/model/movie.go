package model

import "time"

// Movie is a catalog entry referenced by showtimes.  It carries no seating
// or pricing information of its own.
type Movie struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DurationMinutes int       `json:"duration_minutes"`
	ReleaseDate     time.Time `json:"release_date"`
	PosterURL       *string   `json:"poster_url,omitempty"`
	Audit
}
