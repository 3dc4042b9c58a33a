package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seathive/seathive-server/internal/cache"
	"github.com/seathive/seathive-server/internal/engine"
)

func TestGetSeatMapRendersGrid(t *testing.T) {
	store := newFakeStore()
	det := tenByTen()
	det.Showtime.SeatState[0] = byte(engine.Reserved)
	det.Showtime.SeatState[5*10+5] = byte(engine.Sold)
	store.addShowtime(det)

	svc := NewSeatMapService(store, cache.New(), time.Minute)
	view, err := svc.GetSeatMap(context.Background(), "show-1")
	require.NoError(t, err)

	assert.Equal(t, "show-1", view.ShowtimeID)
	assert.Equal(t, "The Swarm", view.MovieTitle)
	assert.Equal(t, "Hive Central", view.CinemaName)
	assert.Equal(t, 10, view.MaxRows)
	assert.Equal(t, 10, view.MaxColumns)
	require.Len(t, view.Seats, 100)

	// row-major order
	assert.Equal(t, SeatCell{Row: 0, Col: 0, Status: "RESERVED"}, view.Seats[0])
	assert.Equal(t, SeatCell{Row: 0, Col: 1, Status: "AVAILABLE"}, view.Seats[1])
	assert.Equal(t, SeatCell{Row: 5, Col: 5, Status: "SOLD"}, view.Seats[55])
	assert.Equal(t, SeatCell{Row: 9, Col: 9, Status: "AVAILABLE"}, view.Seats[99])
}

func TestGetSeatMapServesFromCache(t *testing.T) {
	store := newFakeStore()
	store.addShowtime(tenByTen())

	svc := NewSeatMapService(store, cache.New(), time.Minute)
	first, err := svc.GetSeatMap(context.Background(), "show-1")
	require.NoError(t, err)

	// Mutate storage behind the cache; the cached rendering must win.
	store.showtimes["show-1"].Showtime.SeatState[0] = byte(engine.Sold)
	second, err := svc.GetSeatMap(context.Background(), "show-1")
	require.NoError(t, err)
	assert.Equal(t, "AVAILABLE", second.Seats[0].Status, "stale within TTL")
	assert.Same(t, first, second)
}

func TestGetSeatMapAfterInvalidate(t *testing.T) {
	store := newFakeStore()
	store.addShowtime(tenByTen())

	svc := NewSeatMapService(store, cache.New(), time.Minute)
	_, err := svc.GetSeatMap(context.Background(), "show-1")
	require.NoError(t, err)

	store.showtimes["show-1"].Showtime.SeatState[0] = byte(engine.Reserved)
	svc.Invalidate("show-1")

	view, err := svc.GetSeatMap(context.Background(), "show-1")
	require.NoError(t, err)
	assert.Equal(t, "RESERVED", view.Seats[0].Status)
}

func TestGetSeatMapUnknownShowtime(t *testing.T) {
	store := newFakeStore()
	svc := NewSeatMapService(store, cache.New(), time.Minute)
	_, err := svc.GetSeatMap(context.Background(), "missing")
	assert.Error(t, err)
}

func TestInvalidateUnknownKeyIsHarmless(t *testing.T) {
	svc := NewSeatMapService(newFakeStore(), cache.New(), time.Minute)
	svc.Invalidate("never-cached")
}
