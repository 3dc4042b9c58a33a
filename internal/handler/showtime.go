package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/service"
	"github.com/seathive/seathive-server/internal/utils"
)

// ShowtimeHandler serves showtimes and their seat maps.  Creating a
// showtime requires an Approved cinema owned by the caller; updates and
// deletes require ownership only.
type ShowtimeHandler struct {
	showtimes   *repository.ShowtimeRepo
	auditoriums *repository.AuditoriumRepo
	policy      *service.AccessPolicy
	seatMaps    *service.SeatMapService
}

// NewShowtimeHandler returns a ShowtimeHandler.
func NewShowtimeHandler(showtimes *repository.ShowtimeRepo, auditoriums *repository.AuditoriumRepo, policy *service.AccessPolicy, seatMaps *service.SeatMapService) *ShowtimeHandler {
	return &ShowtimeHandler{showtimes: showtimes, auditoriums: auditoriums, policy: policy, seatMaps: seatMaps}
}

type createShowtimeRequest struct {
	MovieID        string    `json:"movie_id" validate:"required"`
	AuditoriumID   string    `json:"auditorium_id" validate:"required"`
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	BasePriceCents int64     `json:"base_price_cents" validate:"required,gt=0"`
}

type updateShowtimeRequest struct {
	StartsAt       time.Time `json:"starts_at" validate:"required"`
	BasePriceCents int64     `json:"base_price_cents" validate:"required,gt=0"`
}

// SeatMap returns the rendered seat map of one showtime.
func (h *ShowtimeHandler) SeatMap(c echo.Context) error {
	view, err := h.seatMaps.GetSeatMap(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// Get returns one showtime by id.
func (h *ShowtimeHandler) Get(c echo.Context) error {
	s, err := h.showtimes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Create schedules a showtime in an auditorium of an Approved cinema the
// caller owns.  The seat buffer is initialized all-Available at version 1.
func (h *ShowtimeHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req createShowtimeRequest
	if !bind(c, &req) {
		return nil
	}
	ctx := c.Request().Context()
	a, err := h.auditoriums.GetByID(ctx, req.AuditoriumID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.policy.CanCreateShowtime(ctx, p, a.CinemaID); err != nil {
		return respondError(c, err)
	}
	s := &model.Showtime{
		ID:             utils.NewID(),
		MovieID:        req.MovieID,
		AuditoriumID:   req.AuditoriumID,
		StartsAt:       req.StartsAt.UTC(),
		BasePriceCents: req.BasePriceCents,
	}
	if err := h.showtimes.Create(ctx, s, a.MaxRows, a.MaxColumns, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// Update rewrites the schedule fields of a showtime.  Ownership only;
// approval is not re-checked so organizers can amend showtimes under a
// revoked cinema.
func (h *ShowtimeHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req updateShowtimeRequest
	if !bind(c, &req) {
		return nil
	}
	ctx := c.Request().Context()
	s, cinemaID, err := h.load(c, ctx)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.policy.CanMutateShowtime(ctx, p, cinemaID); err != nil {
		return respondError(c, err)
	}
	s.StartsAt = req.StartsAt.UTC()
	s.BasePriceCents = req.BasePriceCents
	if err := h.showtimes.Update(ctx, s, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete soft-deletes a showtime after the ownership check.
func (h *ShowtimeHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	s, cinemaID, err := h.load(c, ctx)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.policy.CanMutateShowtime(ctx, p, cinemaID); err != nil {
		return respondError(c, err)
	}
	if err := h.showtimes.Delete(ctx, s.ID, p.ID); err != nil {
		return respondError(c, err)
	}
	h.seatMaps.Invalidate(s.ID)
	return c.NoContent(http.StatusNoContent)
}

// load resolves the showtime on the path plus its owning cinema id.
func (h *ShowtimeHandler) load(c echo.Context, ctx context.Context) (*model.Showtime, string, error) {
	s, err := h.showtimes.GetByID(ctx, c.Param("id"))
	if err != nil {
		return nil, "", err
	}
	a, err := h.auditoriums.GetByID(ctx, s.AuditoriumID)
	if err != nil {
		return nil, "", err
	}
	return s, a.CinemaID, nil
}
