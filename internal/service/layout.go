package service

import (
	"fmt"

	"github.com/seathive/seathive-server/internal/model"
)

// ValidateLayout checks an auditorium layout against the grid dimensions
// before it is persisted.  Catching violations here keeps the reservation
// hot path free of pricing ambiguity: a seat listed in two tiers would
// have an undefined surcharge, so overlaps are rejected at write time, and
// tiers may not price seats that are disabled or outside the grid.
func ValidateLayout(l model.Layout, maxRows, maxCols int) error {
	if maxRows <= 0 || maxCols <= 0 {
		return fmt.Errorf("%w: grid must be at least 1x1", ErrValidation)
	}
	inBounds := func(s model.Seat) bool {
		return s.Row >= 0 && s.Row < maxRows && s.Col >= 0 && s.Col < maxCols
	}
	for _, s := range l.Disabled {
		if !inBounds(s) {
			return fmt.Errorf("%w: disabled seat (%d,%d) outside %dx%d grid", ErrValidation, s.Row, s.Col, maxRows, maxCols)
		}
	}
	for _, s := range l.Wheelchair {
		if !inBounds(s) {
			return fmt.Errorf("%w: wheelchair seat (%d,%d) outside %dx%d grid", ErrValidation, s.Row, s.Col, maxRows, maxCols)
		}
	}
	disabled := l.DisabledSet()
	seen := make(map[model.Seat]string)
	for _, t := range l.Tiers {
		if t.Name == "" {
			return fmt.Errorf("%w: tier name must not be empty", ErrValidation)
		}
		if t.SurchargeCents < 0 {
			return fmt.Errorf("%w: tier %q has a negative surcharge", ErrValidation, t.Name)
		}
		for _, s := range t.Seats {
			if !inBounds(s) {
				return fmt.Errorf("%w: tier %q seat (%d,%d) outside %dx%d grid", ErrValidation, t.Name, s.Row, s.Col, maxRows, maxCols)
			}
			if _, ok := disabled[s]; ok {
				return fmt.Errorf("%w: tier %q prices disabled seat (%d,%d)", ErrValidation, t.Name, s.Row, s.Col)
			}
			if prev, ok := seen[s]; ok {
				return fmt.Errorf("%w: seat (%d,%d) listed in tiers %q and %q", ErrValidation, s.Row, s.Col, prev, t.Name)
			}
			seen[s] = t.Name
		}
	}
	return nil
}
