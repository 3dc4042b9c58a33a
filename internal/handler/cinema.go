package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/service"
	"github.com/seathive/seathive-server/internal/utils"
)

// CinemaHandler serves cinemas.  Creation stamps the caller as organizer;
// mutation goes through the ownership policy and approval transitions are
// admin only.
type CinemaHandler struct {
	cinemas *repository.CinemaRepo
	policy  *service.AccessPolicy
}

// NewCinemaHandler returns a CinemaHandler.
func NewCinemaHandler(cinemas *repository.CinemaRepo, policy *service.AccessPolicy) *CinemaHandler {
	return &CinemaHandler{cinemas: cinemas, policy: policy}
}

type cinemaRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Location     string `json:"location" validate:"required,max=500"`
	ContactEmail string `json:"contact_email" validate:"required,email"`
}

// List returns all live cinemas.
func (h *CinemaHandler) List(c echo.Context) error {
	cinemas, err := h.cinemas.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cinemas)
}

// Get returns one cinema by id.
func (h *CinemaHandler) Get(c echo.Context) error {
	cin, err := h.cinemas.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cin)
}

// Create inserts a new cinema in the Pending approval state, owned by the
// calling organizer.
func (h *CinemaHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req cinemaRequest
	if !bind(c, &req) {
		return nil
	}
	cin := &model.Cinema{
		ID:           utils.NewID(),
		OrganizerID:  p.ID,
		Name:         req.Name,
		Location:     req.Location,
		ContactEmail: req.ContactEmail,
	}
	if err := h.cinemas.Create(c.Request().Context(), cin, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cin)
}

// Update rewrites a cinema's metadata after the ownership check.
func (h *CinemaHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req cinemaRequest
	if !bind(c, &req) {
		return nil
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := h.policy.CanMutateCinema(ctx, p, id); err != nil {
		return respondError(c, err)
	}
	cin, err := h.cinemas.GetByID(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	cin.Name = req.Name
	cin.Location = req.Location
	cin.ContactEmail = req.ContactEmail
	if err := h.cinemas.Update(ctx, cin, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus transitions the approval state.  Admin only.
func (h *CinemaHandler) UpdateStatus(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	if err := h.policy.CanTransitionCinemaStatus(p); err != nil {
		return respondError(c, err)
	}
	status := c.QueryParam("status")
	switch status {
	case model.ApprovalApproved, model.ApprovalRejected, model.ApprovalPending:
	default:
		return badRequest(c, "status must be PENDING, APPROVED or REJECTED")
	}
	if err := h.cinemas.UpdateStatus(c.Request().Context(), c.Param("id"), status, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete soft-deletes a cinema after the ownership check.
func (h *CinemaHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	if err := h.policy.CanMutateCinema(ctx, p, id); err != nil {
		return respondError(c, err)
	}
	if err := h.cinemas.Delete(ctx, id, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
