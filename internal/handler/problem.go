// Package handler contains the thin HTTP handlers of the public API.
// Handlers bind and validate DTOs, consult the access policy and delegate
// to services or repositories; no business rule lives here.
package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/service"
)

// Problem is the error body of every failed response, loosely following
// the problem-details shape.  Instance is the request path.
type Problem struct {
	Status   int    `json:"status"`
	Title    string `json:"title"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance"`
}

// problemFor maps a domain error onto status and title.
func problemFor(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, repository.ErrForbidden):
		return http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "ValidationFailed"
	case errors.Is(err, service.ErrInvalidTicketState):
		return http.StatusBadRequest, "InvalidState"
	case errors.Is(err, service.ErrSeatsUnavailable):
		return http.StatusConflict, "Conflict(SeatsUnavailable)"
	case errors.Is(err, repository.ErrVersionConflict):
		return http.StatusConflict, "Conflict(Concurrency)"
	case errors.Is(err, repository.ErrNotApproved):
		return http.StatusConflict, "Conflict(NotApproved)"
	case errors.Is(err, repository.ErrDuplicateReference):
		return http.StatusConflict, "Conflict(Duplicate)"
	default:
		return http.StatusInternalServerError, "Internal"
	}
}

// respondError writes the problem body for a domain error.  Internal
// errors hide their detail from clients.
func respondError(c echo.Context, err error) error {
	status, title := problemFor(err)
	p := Problem{
		Status:   status,
		Title:    title,
		Instance: c.Request().URL.Path,
	}
	if status != http.StatusInternalServerError {
		p.Detail = err.Error()
	}
	return c.JSON(status, p)
}

// badRequest writes a 400 problem with the given detail.
func badRequest(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadRequest, Problem{
		Status:   http.StatusBadRequest,
		Title:    "ValidationFailed",
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}
