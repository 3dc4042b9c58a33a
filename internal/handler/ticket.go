package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/service"
)

// TicketHandler serves the reservation endpoints.
type TicketHandler struct {
	reservations *service.ReservationService
}

// NewTicketHandler returns a TicketHandler.
func NewTicketHandler(reservations *service.ReservationService) *TicketHandler {
	return &TicketHandler{reservations: reservations}
}

type reserveRequest struct {
	ShowtimeID string       `json:"showtime_id" validate:"required"`
	Seats      []model.Seat `json:"seats" validate:"required,min=1,max=10,dive"`
}

// Reserve holds the requested seats and returns the Pending ticket.
func (h *TicketHandler) Reserve(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req reserveRequest
	if !bind(c, &req) {
		return nil
	}
	ticket, err := h.reservations.Reserve(c.Request().Context(), p, req.ShowtimeID, req.Seats)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// MyBookings returns the caller's booking history, newest first.
func (h *TicketHandler) MyBookings(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	bookings, err := h.reservations.ListMyTickets(c.Request().Context(), p.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}
