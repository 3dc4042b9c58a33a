package service

import (
	"context"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
)

// CinemaGetter resolves the cinema an access decision hinges on.
type CinemaGetter interface {
	GetByID(ctx context.Context, id string) (*model.Cinema, error)
}

// AccessPolicy enforces the two orthogonal rules governing mutations on
// cinemas, auditoriums and showtimes: ownership (the target cinema's
// organizer, with admins bypassing) and approval (creating a showtime
// requires an Approved cinema; updating or deleting one does not, so an
// organizer can still wind down a revoked cinema).  All checks run before
// any state change.
type AccessPolicy struct {
	cinemas CinemaGetter
}

// NewAccessPolicy wires the policy over the cinema store.
func NewAccessPolicy(cinemas CinemaGetter) *AccessPolicy {
	return &AccessPolicy{cinemas: cinemas}
}

// requireOwner checks ownership of an already-loaded cinema.
func requireOwner(p model.Principal, c *model.Cinema) error {
	if p.IsAdmin() {
		return nil
	}
	if c.OrganizerID != p.ID {
		return repository.ErrForbidden
	}
	return nil
}

// CanMutateCinema authorizes updates and deletes of a cinema and of the
// auditoriums inside it.  It returns repository.ErrNotFound when the
// cinema is missing and repository.ErrForbidden when the principal is
// neither the organizer nor an admin.
func (a *AccessPolicy) CanMutateCinema(ctx context.Context, p model.Principal, cinemaID string) error {
	c, err := a.cinemas.GetByID(ctx, cinemaID)
	if err != nil {
		return err
	}
	return requireOwner(p, c)
}

// CanCreateShowtime authorizes creating a showtime under a cinema: the
// principal must own the cinema (or be admin) and the cinema must be
// Approved.  Ownership is checked first so a non-owner learns nothing
// about the approval state.
func (a *AccessPolicy) CanCreateShowtime(ctx context.Context, p model.Principal, cinemaID string) error {
	c, err := a.cinemas.GetByID(ctx, cinemaID)
	if err != nil {
		return err
	}
	if err := requireOwner(p, c); err != nil {
		return err
	}
	if c.ApprovalStatus != model.ApprovalApproved {
		return repository.ErrNotApproved
	}
	return nil
}

// CanMutateShowtime authorizes updates and deletes of an existing
// showtime.  Only ownership applies; approval is deliberately not
// re-checked.
func (a *AccessPolicy) CanMutateShowtime(ctx context.Context, p model.Principal, cinemaID string) error {
	return a.CanMutateCinema(ctx, p, cinemaID)
}

// CanTransitionCinemaStatus restricts approval transitions to admins.
func (a *AccessPolicy) CanTransitionCinemaStatus(p model.Principal) error {
	if !p.IsAdmin() {
		return repository.ErrForbidden
	}
	return nil
}
