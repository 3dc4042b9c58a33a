// Package engine implements the per-showtime seat availability map.  A
// SeatMap is a view over an externally owned byte buffer, one byte per
// seat in row-major order.  It owns no memory, never resizes, and is not
// safe for concurrent mutation: callers serialize access through the
// storage layer's version token.
package engine

import (
	"errors"
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// SeatStatus is the decoded value of one cell.
type SeatStatus byte

// Cell values.  Anything else in the buffer is corrupt state and is
// rejected by readers.
const (
	Available SeatStatus = 0
	Reserved  SeatStatus = 1
	Sold      SeatStatus = 2
)

// String returns the status name for logs and seat-map responses.
func (s SeatStatus) String() string {
	switch s {
	case Available:
		return "AVAILABLE"
	case Reserved:
		return "RESERVED"
	case Sold:
		return "SOLD"
	}
	return fmt.Sprintf("INVALID(%d)", byte(s))
}

// Sentinel errors surfaced by the engine.  ErrCorruptState indicates a
// byte outside the known domain and is treated as fatal by callers.
var (
	ErrOutOfRange        = errors.New("seat coordinates out of range")
	ErrCorruptState      = errors.New("corrupt seat state")
	ErrInvalidTransition = errors.New("invalid seat state transition")
	ErrBufferSize        = errors.New("seat buffer length does not match dimensions")
)

// SeatMap wraps a showtime's availability buffer together with the owning
// auditorium's dimensions.
type SeatMap struct {
	buf  []byte
	rows int
	cols int
}

// New constructs a SeatMap over buf.  The buffer length must equal
// rows*cols exactly; the invariant holds at all times because the map
// never resizes it.
func New(buf []byte, rows, cols int) (*SeatMap, error) {
	if rows <= 0 || cols <= 0 || len(buf) != rows*cols {
		return nil, fmt.Errorf("%w: len=%d rows=%d cols=%d", ErrBufferSize, len(buf), rows, cols)
	}
	return &SeatMap{buf: buf, rows: rows, cols: cols}, nil
}

// Rows returns the row count of the grid.
func (m *SeatMap) Rows() int { return m.rows }

// Cols returns the column count of the grid.
func (m *SeatMap) Cols() int { return m.cols }

// index maps a coordinate to its buffer offset.  Both coordinates are
// checked before any memory is touched.
func (m *SeatMap) index(row, col int) (int, error) {
	if row < 0 || row >= m.rows || col < 0 || col >= m.cols {
		return 0, fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfRange, row, col, m.rows, m.cols)
	}
	return row*m.cols + col, nil
}

// Status returns the decoded state of one cell.  It fails on invalid
// coordinates and on corrupt bytes.
func (m *SeatMap) Status(row, col int) (SeatStatus, error) {
	i, err := m.index(row, col)
	if err != nil {
		return 0, err
	}
	s := SeatStatus(m.buf[i])
	switch s {
	case Available, Reserved, Sold:
		return s, nil
	}
	return 0, fmt.Errorf("%w: byte %d at (%d,%d)", ErrCorruptState, m.buf[i], row, col)
}

// TryReserve flips one Available cell to Reserved.  It returns false,
// leaving the cell untouched, when the cell is in any other state.
func (m *SeatMap) TryReserve(row, col int) (bool, error) {
	i, err := m.index(row, col)
	if err != nil {
		return false, err
	}
	if SeatStatus(m.buf[i]) != Available {
		return false, nil
	}
	m.buf[i] = byte(Reserved)
	return true, nil
}

// TryReserveBatch atomically reserves a group of seats in memory using two
// phases.  Phase one verifies every coordinate and cell without writing:
// an out-of-range coordinate fails with ErrOutOfRange and a non-Available
// cell returns false, in both cases with zero cells flipped.  Phase two
// commits all cells to Reserved.  Duplicate coordinates are permitted and
// idempotent.  An empty input returns false.
func (m *SeatMap) TryReserveBatch(seats []model.Seat) (bool, error) {
	if len(seats) == 0 {
		return false, nil
	}
	for _, s := range seats {
		i, err := m.index(s.Row, s.Col)
		if err != nil {
			return false, err
		}
		switch SeatStatus(m.buf[i]) {
		case Available:
		case Reserved, Sold:
			return false, nil
		default:
			return false, fmt.Errorf("%w: byte %d at (%d,%d)", ErrCorruptState, m.buf[i], s.Row, s.Col)
		}
	}
	for _, s := range seats {
		m.buf[s.Row*m.cols+s.Col] = byte(Reserved)
	}
	return true, nil
}

// MarkSold transitions one Reserved cell to Sold.  Any other current state
// fails with ErrInvalidTransition; callers treat that as corruption since
// only confirmed Pending tickets reach this path.
func (m *SeatMap) MarkSold(row, col int) error {
	i, err := m.index(row, col)
	if err != nil {
		return err
	}
	if SeatStatus(m.buf[i]) != Reserved {
		return fmt.Errorf("%w: mark sold on %s at (%d,%d)", ErrInvalidTransition, SeatStatus(m.buf[i]), row, col)
	}
	m.buf[i] = byte(Sold)
	return nil
}

// Release transitions one Reserved cell back to Available.  Any other
// current state fails with ErrInvalidTransition; the expiry sweep treats
// that as an idempotency point and skips the cell.
func (m *SeatMap) Release(row, col int) error {
	i, err := m.index(row, col)
	if err != nil {
		return err
	}
	if SeatStatus(m.buf[i]) != Reserved {
		return fmt.Errorf("%w: release on %s at (%d,%d)", ErrInvalidTransition, SeatStatus(m.buf[i]), row, col)
	}
	m.buf[i] = byte(Available)
	return nil
}
