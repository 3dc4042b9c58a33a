package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seathive/seathive-server/internal/model"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func signToken(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return s
}

func invoke(t *testing.T, authHeader string) (*httptest.ResponseRecorder, model.Principal, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got model.Principal
	var reached bool
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		got, reached = PrincipalFrom(c)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec, got, reached
}

func TestJWTAuthValidToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub":   "user-1",
		"email": "buyer@example.com",
		"roles": []string{model.RoleCustomer, model.RoleOrganizer},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}, testSecret)

	rec, p, reached := invoke(t, "Bearer "+raw)
	require.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", p.ID)
	assert.Equal(t, "buyer@example.com", p.Email)
	assert.Equal(t, []string{model.RoleCustomer, model.RoleOrganizer}, p.Roles)
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, _, reached := invoke(t, "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"sub": "user-1"}, []byte("wrong-secret-wrong-secret-wrong!"))
	rec, _, reached := invoke(t, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthExpiredToken(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}, testSecret)
	rec, _, reached := invoke(t, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthNoSubject(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"email": "x@example.com"}, testSecret)
	rec, _, reached := invoke(t, "Bearer "+raw)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	call := func(p *model.Principal, roles ...string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if p != nil {
			c.Set(principalKey, *p)
		}
		h := RequireRole(roles...)(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		require.NoError(t, h(c))
		return rec.Code
	}

	admin := model.Principal{ID: "a", Roles: []string{model.RoleAdmin}}
	customer := model.Principal{ID: "c", Roles: []string{model.RoleCustomer}}

	assert.Equal(t, http.StatusOK, call(&admin, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, call(&customer, model.RoleOrganizer, model.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, call(&customer, model.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, call(nil, model.RoleAdmin))
}
