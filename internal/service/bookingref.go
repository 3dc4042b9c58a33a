package service

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// bookingRefPrefix is the human-visible prefix of every booking reference.
const bookingRefPrefix = "HIVE-"

// newBookingReference derives a reference of the form HIVE-XXXXXXXX (8
// uppercase hex characters) from a fresh random identifier.  Uniqueness is
// enforced by the unique index on tickets.booking_reference; the caller
// regenerates on the astronomically rare collision.
func newBookingReference() string {
	id := uuid.New()
	return fmt.Sprintf("%s%08X", bookingRefPrefix, binary.BigEndian.Uint32(id[:4]))
}
