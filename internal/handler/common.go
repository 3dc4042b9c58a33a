package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/middleware"
	"github.com/seathive/seathive-server/internal/model"
)

// Validator adapts go-playground/validator to echo's Validator interface.
// Register it once on the echo instance; handlers then use c.Validate.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator with the default tag rules.
func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate implements echo.Validator.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// principal returns the authenticated principal or writes a 401.  The
// bool reports whether the caller may proceed.
func principal(c echo.Context) (model.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		_ = c.JSON(http.StatusUnauthorized, Problem{
			Status:   http.StatusUnauthorized,
			Title:    "Unauthorized",
			Detail:   "authentication required",
			Instance: c.Request().URL.Path,
		})
	}
	return p, ok
}

// bind decodes and validates the request body into dst, writing a 400 on
// failure.  The bool reports whether the caller may proceed.
func bind(c echo.Context, dst interface{}) bool {
	if err := c.Bind(dst); err != nil {
		_ = badRequest(c, "malformed request body")
		return false
	}
	if err := c.Validate(dst); err != nil {
		_ = badRequest(c, err.Error())
		return false
	}
	return true
}
