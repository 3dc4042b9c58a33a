package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/seathive/seathive-server/internal/engine"
	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
)

var buyer = model.Principal{ID: "user-1", Email: "buyer@example.com", Roles: []string{model.RoleCustomer}}

// tenByTen seeds a 10x10 showtime with base price 10.00 and a VIP tier of
// +5.00 on (5,5).
func tenByTen() *repository.ShowtimeDetail {
	return &repository.ShowtimeDetail{
		Showtime: model.Showtime{
			ID:             "show-1",
			MovieID:        "movie-1",
			AuditoriumID:   "aud-1",
			StartsAt:       time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC),
			BasePriceCents: 1000,
			SeatState:      make([]byte, 100),
			Version:        1,
		},
		Auditorium: model.Auditorium{
			ID: "aud-1", CinemaID: "cin-1", Name: "Screen 1",
			MaxRows: 10, MaxColumns: 10,
			Layout: model.Layout{
				Tiers: []model.Tier{{Name: "VIP", SurchargeCents: 500, Seats: []model.Seat{{Row: 5, Col: 5}}}},
			},
		},
		MovieTitle: "The Swarm",
		CinemaID:   "cin-1",
		CinemaName: "Hive Central",
	}
}

func newReservationFixture(t *testing.T) (*ReservationService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	store.addShowtime(tenByTen())
	svc := NewReservationService(store, store, store, zap.NewNop())
	return svc, store
}

func TestReserveHappyPath(t *testing.T) {
	svc, store := newReservationFixture(t)

	ticket, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}, {Row: 5, Col: 5}})
	require.NoError(t, err)

	assert.Equal(t, int64(2500), ticket.TotalCents, "10.00 + 10.00 + 5.00 VIP")
	assert.Equal(t, model.TicketPending, ticket.Status)
	assert.Equal(t, "user-1", ticket.UserID)
	assert.Equal(t, "buyer@example.com", ticket.UserEmail)
	assert.True(t, strings.HasPrefix(ticket.BookingReference, "HIVE-"))
	assert.Len(t, ticket.BookingReference, len("HIVE-")+8)

	buf := store.seatStateOf("show-1")
	assert.Len(t, buf, 100)
	assert.Equal(t, byte(engine.Reserved), buf[0])
	assert.Equal(t, byte(engine.Reserved), buf[5*10+5])
	assert.Equal(t, []string{"show-1"}, store.invalidated)
	assert.Equal(t, uint64(2), store.showtimes["show-1"].Showtime.Version)
}

func TestReserveSeatConflict(t *testing.T) {
	svc, store := newReservationFixture(t)
	store.showtimes["show-1"].Showtime.SeatState[0] = byte(engine.Sold)

	_, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	assert.ErrorIs(t, err, ErrSeatsUnavailable)
	assert.Empty(t, store.tickets)
	assert.Equal(t, byte(engine.Sold), store.seatStateOf("show-1")[0])
	assert.Empty(t, store.invalidated)
}

func TestReserveConcurrentIdenticalRequests(t *testing.T) {
	svc, store := newReservationFixture(t)

	first, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	require.NoError(t, err)
	require.Equal(t, model.TicketPending, first.Status)

	// The loser re-reads after the winner committed and finds the seat
	// already Reserved.
	other := model.Principal{ID: "user-2", Email: "rival@example.com"}
	_, err = svc.Reserve(context.Background(), other, "show-1", []model.Seat{{Row: 0, Col: 0}})
	assert.ErrorIs(t, err, ErrSeatsUnavailable)
	assert.Len(t, store.tickets, 1)
}

// staleLoader replays a snapshot taken before another writer advanced the
// showtime, so the service's CAS lands on a stale version token.
type staleLoader struct {
	snapshot *repository.ShowtimeDetail
}

func (l *staleLoader) GetDetail(ctx context.Context, id string) (*repository.ShowtimeDetail, error) {
	cp := *l.snapshot
	cp.Showtime.SeatState = append([]byte(nil), l.snapshot.Showtime.SeatState...)
	return &cp, nil
}

func TestReserveVersionConflictSurfaces(t *testing.T) {
	store := newFakeStore()
	store.addShowtime(tenByTen())

	stale, err := store.GetDetail(context.Background(), "show-1")
	require.NoError(t, err)

	// Another writer commits between this request's read and its write.
	store.showtimes["show-1"].Showtime.Version++

	svc := NewReservationService(&staleLoader{snapshot: stale}, store, store, zap.NewNop())
	_, err = svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Empty(t, store.tickets)
	assert.Empty(t, store.invalidated)
}

func TestReserveOutOfBounds(t *testing.T) {
	svc, store := newReservationFixture(t)

	_, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 99, Col: 99}})
	assert.ErrorIs(t, err, ErrValidation)
	// buffer untouched
	assert.Equal(t, make([]byte, 100), store.seatStateOf("show-1"))
	assert.Empty(t, store.tickets)
}

func TestReserveEmptySeats(t *testing.T) {
	svc, _ := newReservationFixture(t)
	_, err := svc.Reserve(context.Background(), buyer, "show-1", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestReserveUnknownShowtime(t *testing.T) {
	svc, _ := newReservationFixture(t)
	_, err := svc.Reserve(context.Background(), buyer, "missing", []model.Seat{{Row: 0, Col: 0}})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReserveDisabledSeatRejected(t *testing.T) {
	svc, store := newReservationFixture(t)
	store.showtimes["show-1"].Auditorium.Layout.Disabled = []model.Seat{{Row: 2, Col: 2}}

	_, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 2, Col: 2}})
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.tickets)
}

// collidingStore fails the first n CreatePending calls with a reference
// collision before delegating.
type collidingStore struct {
	*fakeStore
	remaining int
}

func (c *collidingStore) CreatePending(ctx context.Context, tk *model.Ticket, buf []byte, version uint64) error {
	if c.remaining > 0 {
		c.remaining--
		return repository.ErrDuplicateReference
	}
	return c.fakeStore.CreatePending(ctx, tk, buf, version)
}

func TestReserveRetriesBookingReferenceCollision(t *testing.T) {
	store := newFakeStore()
	store.addShowtime(tenByTen())

	// Two collisions fit inside the retry budget of three attempts.
	tickets := &collidingStore{fakeStore: store, remaining: 2}
	svc := NewReservationService(store, tickets, store, zap.NewNop())
	ticket, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 1}})
	require.NoError(t, err)
	require.NotEmpty(t, ticket.BookingReference)

	// Three straight collisions exhaust the budget and surface the error.
	store2 := newFakeStore()
	store2.addShowtime(tenByTen())
	svc2 := NewReservationService(store2, &collidingStore{fakeStore: store2, remaining: 3}, store2, zap.NewNop())
	_, err = svc2.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 2}})
	assert.ErrorIs(t, err, repository.ErrDuplicateReference)
}

func TestConfirmHappyPath(t *testing.T) {
	svc, store := newReservationFixture(t)

	ticket, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	require.NoError(t, err)

	confirmed, err := svc.ConfirmPayment(context.Background(), ticket.BookingReference)
	require.NoError(t, err)
	assert.Equal(t, model.TicketConfirmed, confirmed.Status)
	require.NotNil(t, confirmed.PaidAt)

	buf := store.seatStateOf("show-1")
	assert.Equal(t, byte(engine.Sold), buf[0])

	require.Len(t, store.outbox, 1)
	msg := store.outbox[0]
	assert.Equal(t, model.EventTypeEmailNotification, msg.EventType)
	assert.Contains(t, string(msg.Payload), "buyer@example.com")
	assert.Contains(t, string(msg.Payload), ticket.BookingReference)

	// reserve + confirm each invalidated the seat map
	assert.Equal(t, []string{"show-1", "show-1"}, store.invalidated)
}

func TestConfirmIdempotentOnConfirmed(t *testing.T) {
	svc, store := newReservationFixture(t)

	ticket, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), ticket.BookingReference)
	require.NoError(t, err)

	versionBefore := store.showtimes["show-1"].Showtime.Version
	again, err := svc.ConfirmPayment(context.Background(), ticket.BookingReference)
	require.NoError(t, err, "repeated webhook must succeed")
	assert.Equal(t, model.TicketConfirmed, again.Status)
	assert.Len(t, store.outbox, 1, "no second outbox row")
	assert.Equal(t, versionBefore, store.showtimes["show-1"].Showtime.Version, "no state change")
}

func TestConfirmAfterExpiryRejected(t *testing.T) {
	svc, store := newReservationFixture(t)

	ticket, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	require.NoError(t, err)

	// The expiry worker got there first: ticket Expired, cell released.
	store.tickets[ticket.BookingReference].Status = model.TicketExpired
	store.showtimes["show-1"].Showtime.SeatState[0] = byte(engine.Available)

	_, err = svc.ConfirmPayment(context.Background(), ticket.BookingReference)
	assert.ErrorIs(t, err, ErrInvalidTicketState)
	assert.Equal(t, byte(engine.Available), store.seatStateOf("show-1")[0])
	assert.Equal(t, model.TicketExpired, store.tickets[ticket.BookingReference].Status)
	assert.Empty(t, store.outbox)
}

func TestConfirmUnknownReference(t *testing.T) {
	svc, _ := newReservationFixture(t)
	_, err := svc.ConfirmPayment(context.Background(), "HIVE-00000000")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListMyTickets(t *testing.T) {
	svc, _ := newReservationFixture(t)

	_, err := svc.Reserve(context.Background(), buyer, "show-1", []model.Seat{{Row: 0, Col: 0}})
	require.NoError(t, err)

	mine, err := svc.ListMyTickets(context.Background(), buyer.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	none, err := svc.ListMyTickets(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, none, "unknown users get an empty list, not an error")
}

func TestPriceSeats(t *testing.T) {
	layout := model.Layout{Tiers: []model.Tier{
		{Name: "VIP", SurchargeCents: 500, Seats: []model.Seat{{Row: 5, Col: 5}}},
		{Name: "Front", SurchargeCents: 150, Seats: []model.Seat{{Row: 0, Col: 0}, {Row: 0, Col: 1}}},
	}}

	cases := []struct {
		name  string
		seats []model.Seat
		want  int64
	}{
		{"untier-only", []model.Seat{{Row: 9, Col: 9}}, 1000},
		{"vip", []model.Seat{{Row: 5, Col: 5}}, 1500},
		{"mixed", []model.Seat{{Row: 0, Col: 0}, {Row: 5, Col: 5}, {Row: 9, Col: 9}}, 1150 + 1500 + 1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, priceSeats(1000, layout, tc.seats))
		})
	}
}
