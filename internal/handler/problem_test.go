package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seathive/seathive-server/internal/repository"
	"github.com/seathive/seathive-server/internal/service"
)

func TestProblemFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		title  string
	}{
		{repository.ErrNotFound, http.StatusNotFound, "NotFound"},
		{repository.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{service.ErrValidation, http.StatusBadRequest, "ValidationFailed"},
		{service.ErrInvalidTicketState, http.StatusBadRequest, "InvalidState"},
		{service.ErrSeatsUnavailable, http.StatusConflict, "Conflict(SeatsUnavailable)"},
		{repository.ErrVersionConflict, http.StatusConflict, "Conflict(Concurrency)"},
		{repository.ErrNotApproved, http.StatusConflict, "Conflict(NotApproved)"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal"},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			status, title := problemFor(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.title, title)
		})
	}

	// Wrapped sentinels map the same as bare ones.
	status, title := problemFor(fmt.Errorf("seat (2,2): %w", service.ErrValidation))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ValidationFailed", title)
}

func TestRespondError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies/zzz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, respondError(c, repository.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, http.StatusNotFound, p.Status)
	assert.Equal(t, "NotFound", p.Title)
	assert.Equal(t, "/api/movies/zzz", p.Instance)
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	require.NoError(t, respondError(c, errors.New("dsn user:secret@tcp failed")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var p Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Empty(t, p.Detail, "internal errors must not leak detail")
}
