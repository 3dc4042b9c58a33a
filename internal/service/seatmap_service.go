package service

import (
	"context"
	"time"

	"github.com/seathive/seathive-server/internal/cache"
	"github.com/seathive/seathive-server/internal/engine"
)

// seatMapKey namespaces cache entries per showtime.
func seatMapKey(showtimeID string) string { return "seatMap:" + showtimeID }

// SeatCell is one rendered cell of the seat map, in row-major order.
type SeatCell struct {
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Status string `json:"status"`
}

// SeatMapView is the denormalized seat map served to UIs.  It is a
// rendering artifact only; the reservation path always re-reads storage.
type SeatMapView struct {
	ShowtimeID     string     `json:"showtime_id"`
	MovieTitle     string     `json:"movie_title"`
	CinemaName     string     `json:"cinema_name"`
	AuditoriumName string     `json:"auditorium_name"`
	StartsAt       time.Time  `json:"starts_at"`
	BasePriceCents int64      `json:"base_price_cents"`
	MaxRows        int        `json:"max_rows"`
	MaxColumns     int        `json:"max_columns"`
	Seats          []SeatCell `json:"seats"`
}

// SeatMapService renders seat maps behind a short-TTL in-process cache.
// Staleness is bounded by the TTL; Reserve, Confirm and Expire all
// invalidate the affected key through the Invalidate method.
type SeatMapService struct {
	showtimes ShowtimeLoader
	cache     *cache.TTLCache
	ttl       time.Duration
}

// NewSeatMapService wires the seat-map read path.
func NewSeatMapService(showtimes ShowtimeLoader, c *cache.TTLCache, ttl time.Duration) *SeatMapService {
	return &SeatMapService{showtimes: showtimes, cache: c, ttl: ttl}
}

// GetSeatMap returns the seat map for one showtime, from cache when fresh.
func (s *SeatMapService) GetSeatMap(ctx context.Context, showtimeID string) (*SeatMapView, error) {
	if v, ok := s.cache.Get(seatMapKey(showtimeID)); ok {
		if view, ok := v.(*SeatMapView); ok {
			return view, nil
		}
	}

	det, err := s.showtimes.GetDetail(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	m, err := engine.New(det.Showtime.SeatState, det.Auditorium.MaxRows, det.Auditorium.MaxColumns)
	if err != nil {
		return nil, err
	}

	cells := make([]SeatCell, 0, det.Auditorium.MaxRows*det.Auditorium.MaxColumns)
	for row := 0; row < det.Auditorium.MaxRows; row++ {
		for col := 0; col < det.Auditorium.MaxColumns; col++ {
			st, err := m.Status(row, col)
			if err != nil {
				return nil, err
			}
			cells = append(cells, SeatCell{Row: row, Col: col, Status: st.String()})
		}
	}

	view := &SeatMapView{
		ShowtimeID:     det.Showtime.ID,
		MovieTitle:     det.MovieTitle,
		CinemaName:     det.CinemaName,
		AuditoriumName: det.Auditorium.Name,
		StartsAt:       det.Showtime.StartsAt,
		BasePriceCents: det.Showtime.BasePriceCents,
		MaxRows:        det.Auditorium.MaxRows,
		MaxColumns:     det.Auditorium.MaxColumns,
		Seats:          cells,
	}
	s.cache.Set(seatMapKey(showtimeID), view, s.ttl)
	return view, nil
}

// Invalidate drops the cached entry for one showtime.  The delete is
// unconditional; an absent key is not an error.
func (s *SeatMapService) Invalidate(showtimeID string) {
	s.cache.Delete(seatMapKey(showtimeID))
}
