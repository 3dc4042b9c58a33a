package model

// Seat identifies one cell in an auditorium grid.  Coordinates are
// zero-based and must satisfy 0 <= Row < MaxRows and 0 <= Col < MaxColumns
// of the owning auditorium.
type Seat struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tier names a set of seats sharing a single non-negative surcharge added
// to a showtime's base price.  A seat listed in two tiers would make its
// price undefined, so overlapping tiers are rejected at layout-write time.
type Tier struct {
	Name           string `json:"name"`
	SurchargeCents int64  `json:"surcharge_cents"`
	Seats          []Seat `json:"seats"`
}

// Layout is the embedded document describing the non-uniform parts of an
// auditorium grid: holes that cannot be sold, wheelchair spots (kept for
// rendering only) and pricing tiers.  It is stored as JSON on the
// auditorium row so the reservation hot path reads it in the same query.
type Layout struct {
	Disabled   []Seat `json:"disabled,omitempty"`
	Wheelchair []Seat `json:"wheelchair,omitempty"`
	Tiers      []Tier `json:"tiers,omitempty"`
}

// SurchargeBySeat flattens the tiers into a (row,col) -> surcharge map.
// The map is rebuilt per reservation; its cost is dominated by the storage
// round-trip that loaded the layout.
func (l Layout) SurchargeBySeat() map[Seat]int64 {
	m := make(map[Seat]int64)
	for _, t := range l.Tiers {
		for _, s := range t.Seats {
			m[s] = t.SurchargeCents
		}
	}
	return m
}

// DisabledSet returns the disabled coordinates as a set for O(1) lookups.
func (l Layout) DisabledSet() map[Seat]struct{} {
	m := make(map[Seat]struct{}, len(l.Disabled))
	for _, s := range l.Disabled {
		m[s] = struct{}{}
	}
	return m
}

// Auditorium is a physical room with a fixed rectangular seat grid.  It is
// exclusively owned by its cinema; the layout document is exclusively owned
// by the auditorium.
type Auditorium struct {
	ID         string `json:"id"`
	CinemaID   string `json:"cinema_id"`
	Name       string `json:"name"`
	MaxRows    int    `json:"max_rows"`
	MaxColumns int    `json:"max_columns"`
	Layout     Layout `json:"layout"`
	Audit
}
