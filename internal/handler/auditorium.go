package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/service"
	"github.com/seathive/seathive-server/internal/utils"
)

// AuditoriumHandler serves auditoriums.  Writes run the ownership policy
// against the parent cinema and validate the layout against the grid
// before anything is persisted.
type AuditoriumHandler struct {
	auditoriums *repository.AuditoriumRepo
	policy      *service.AccessPolicy
}

// NewAuditoriumHandler returns an AuditoriumHandler.
func NewAuditoriumHandler(auditoriums *repository.AuditoriumRepo, policy *service.AccessPolicy) *AuditoriumHandler {
	return &AuditoriumHandler{auditoriums: auditoriums, policy: policy}
}

type createAuditoriumRequest struct {
	CinemaID   string       `json:"cinema_id" validate:"required"`
	Name       string       `json:"name" validate:"required,max=255"`
	MaxRows    int          `json:"max_rows" validate:"required,gt=0,lte=128"`
	MaxColumns int          `json:"max_columns" validate:"required,gt=0,lte=128"`
	Layout     model.Layout `json:"layout"`
}

type updateAuditoriumRequest struct {
	Name   string       `json:"name" validate:"required,max=255"`
	Layout model.Layout `json:"layout"`
}

// List returns all live auditoriums.
func (h *AuditoriumHandler) List(c echo.Context) error {
	out, err := h.auditoriums.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one auditorium by id.
func (h *AuditoriumHandler) Get(c echo.Context) error {
	a, err := h.auditoriums.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// ListByCinema returns the auditoriums of one cinema.
func (h *AuditoriumHandler) ListByCinema(c echo.Context) error {
	out, err := h.auditoriums.ListByCinema(c.Request().Context(), c.Param("cinemaId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create inserts a new auditorium under a cinema the caller owns.
func (h *AuditoriumHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req createAuditoriumRequest
	if !bind(c, &req) {
		return nil
	}
	ctx := c.Request().Context()
	if err := h.policy.CanMutateCinema(ctx, p, req.CinemaID); err != nil {
		return respondError(c, err)
	}
	if err := service.ValidateLayout(req.Layout, req.MaxRows, req.MaxColumns); err != nil {
		return respondError(c, err)
	}
	a := &model.Auditorium{
		ID:         utils.NewID(),
		CinemaID:   req.CinemaID,
		Name:       req.Name,
		MaxRows:    req.MaxRows,
		MaxColumns: req.MaxColumns,
		Layout:     req.Layout,
	}
	if err := h.auditoriums.Create(ctx, a, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, a)
}

// Update rewrites the name and layout of an auditorium.  The grid
// dimensions are immutable, so the incoming layout is validated against
// the stored ones.
func (h *AuditoriumHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req updateAuditoriumRequest
	if !bind(c, &req) {
		return nil
	}
	ctx := c.Request().Context()
	a, err := h.auditoriums.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := h.policy.CanMutateCinema(ctx, p, a.CinemaID); err != nil {
		return respondError(c, err)
	}
	if err := service.ValidateLayout(req.Layout, a.MaxRows, a.MaxColumns); err != nil {
		return respondError(c, err)
	}
	a.Name = req.Name
	a.Layout = req.Layout
	if err := h.auditoriums.Update(ctx, a, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete soft-deletes an auditorium after the ownership check on its
// cinema.
func (h *AuditoriumHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	ctx := c.Request().Context()
	a, err := h.auditoriums.GetByID(ctx, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	if err := h.policy.CanMutateCinema(ctx, p, a.CinemaID); err != nil {
		return respondError(c, err)
	}
	if err := h.auditoriums.Delete(ctx, a.ID, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
