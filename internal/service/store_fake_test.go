package service

import (
	"context"
	"sync"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
)

// fakeStore is an in-memory stand-in for the showtime/ticket repositories.
// It reproduces the storage contracts the services rely on: reads hand out
// copies of the seat buffer (a SQL row scan never aliases live state) and
// writes compare-and-swap the version token exactly like the CAS UPDATE.
type fakeStore struct {
	mu sync.Mutex

	showtimes map[string]*repository.ShowtimeDetail
	tickets   map[string]*model.Ticket // by booking reference
	outbox    []*model.OutboxMessage

	invalidated []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		showtimes: make(map[string]*repository.ShowtimeDetail),
		tickets:   make(map[string]*model.Ticket),
	}
}

func (f *fakeStore) addShowtime(d *repository.ShowtimeDetail) { f.showtimes[d.Showtime.ID] = d }

func (f *fakeStore) GetDetail(ctx context.Context, id string) (*repository.ShowtimeDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.showtimes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *d
	cp.Showtime.SeatState = append([]byte(nil), d.Showtime.SeatState...)
	return &cp, nil
}

func (f *fakeStore) CreatePending(ctx context.Context, t *model.Ticket, buf []byte, version uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.tickets[t.BookingReference]; exists {
		return repository.ErrDuplicateReference
	}
	d, ok := f.showtimes[t.ShowtimeID]
	if !ok {
		return repository.ErrNotFound
	}
	if d.Showtime.Version != version {
		return repository.ErrVersionConflict
	}
	d.Showtime.SeatState = append([]byte(nil), buf...)
	d.Showtime.Version++
	cp := *t
	f.tickets[t.BookingReference] = &cp
	return nil
}

func (f *fakeStore) GetByReference(ctx context.Context, ref string) (*repository.TicketDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[ref]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d, ok := f.showtimes[t.ShowtimeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &repository.TicketDetail{
		Ticket:          *t,
		ShowtimeVersion: d.Showtime.Version,
		SeatState:       append([]byte(nil), d.Showtime.SeatState...),
		MaxRows:         d.Auditorium.MaxRows,
		MaxColumns:      d.Auditorium.MaxColumns,
	}, nil
}

func (f *fakeStore) Confirm(ctx context.Context, t *model.Ticket, buf []byte, version uint64, msg *model.OutboxMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.showtimes[t.ShowtimeID]
	if !ok {
		return repository.ErrNotFound
	}
	if d.Showtime.Version != version {
		return repository.ErrVersionConflict
	}
	stored, ok := f.tickets[t.BookingReference]
	if !ok || stored.Status != model.TicketPending {
		return repository.ErrVersionConflict
	}
	d.Showtime.SeatState = append([]byte(nil), buf...)
	d.Showtime.Version++
	stored.Status = t.Status
	stored.PaidAt = t.PaidAt
	f.outbox = append(f.outbox, msg)
	return nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]repository.BookingSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.BookingSummary, 0)
	for _, t := range f.tickets {
		if t.UserID == userID {
			out = append(out, repository.BookingSummary{
				TicketID:         t.ID,
				BookingReference: t.BookingReference,
				Status:           t.Status,
				TotalCents:       t.TotalCents,
				Seats:            t.Seats,
				CreatedAt:        t.CreatedAt,
				PaidAt:           t.PaidAt,
			})
		}
	}
	return out, nil
}

func (f *fakeStore) Invalidate(showtimeID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, showtimeID)
}

// seatStateOf returns the live buffer for assertions.
func (f *fakeStore) seatStateOf(showtimeID string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]byte(nil), f.showtimes[showtimeID].Showtime.SeatState...)
}
