package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/utils"
)

// MovieHandler serves the movie catalog.  Writes require the organizer or
// admin role, enforced by the route middleware; movies carry no ownership
// beyond the audit stamp.
type MovieHandler struct {
	movies *repository.MovieRepo
}

// NewMovieHandler returns a MovieHandler over the given repository.
func NewMovieHandler(movies *repository.MovieRepo) *MovieHandler {
	return &MovieHandler{movies: movies}
}

type movieRequest struct {
	Title           string    `json:"title" validate:"required,max=255"`
	Description     string    `json:"description" validate:"max=4000"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,gt=0,lte=600"`
	ReleaseDate     time.Time `json:"release_date" validate:"required"`
	PosterURL       *string   `json:"poster_url,omitempty" validate:"omitempty,url"`
}

// List returns all live movies.
func (h *MovieHandler) List(c echo.Context) error {
	movies, err := h.movies.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, movies)
}

// Get returns one movie by id.
func (h *MovieHandler) Get(c echo.Context) error {
	m, err := h.movies.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

// Create inserts a new movie.
func (h *MovieHandler) Create(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req movieRequest
	if !bind(c, &req) {
		return nil
	}
	m := &model.Movie{
		ID:              utils.NewID(),
		Title:           req.Title,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		ReleaseDate:     req.ReleaseDate,
		PosterURL:       req.PosterURL,
	}
	if err := h.movies.Create(c.Request().Context(), m, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// Update rewrites an existing movie.
func (h *MovieHandler) Update(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	var req movieRequest
	if !bind(c, &req) {
		return nil
	}
	m, err := h.movies.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	m.Title = req.Title
	m.Description = req.Description
	m.DurationMinutes = req.DurationMinutes
	m.ReleaseDate = req.ReleaseDate
	m.PosterURL = req.PosterURL
	if err := h.movies.Update(c.Request().Context(), m, p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete soft-deletes a movie.
func (h *MovieHandler) Delete(c echo.Context) error {
	p, ok := principal(c)
	if !ok {
		return nil
	}
	if err := h.movies.Delete(c.Request().Context(), c.Param("id"), p.ID); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
