package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/service"
)

// PaymentHandler receives the payment provider's confirmation webhook.
// The route is wrapped by the service-signature middleware; a repeated
// delivery for an already-Confirmed ticket answers 200 without touching
// state.
type PaymentHandler struct {
	reservations *service.ReservationService
}

// NewPaymentHandler returns a PaymentHandler.
func NewPaymentHandler(reservations *service.ReservationService) *PaymentHandler {
	return &PaymentHandler{reservations: reservations}
}

type paymentSuccessRequest struct {
	BookingReference string `json:"booking_reference" validate:"required"`
}

// Success confirms the ticket named by the webhook.
func (h *PaymentHandler) Success(c echo.Context) error {
	var req paymentSuccessRequest
	if !bind(c, &req) {
		return nil
	}
	ticket, err := h.reservations.ConfirmPayment(c.Request().Context(), req.BookingReference)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ticket)
}
