// Package middleware provides the shared request processing of the HTTP
// edge: JWT authentication, role guards, service-to-service verification
// and the Redis response cache.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/model"
)

// principalKey is the context key under which JWTAuth stores the verified
// principal.
const principalKey = "principal"

// JWTAuth validates a Bearer access token signed HS256 with the shared
// secret and stores the resulting principal in the request context.  The
// token is issued by the identity service; this middleware verifies, it
// never issues.  Expected claims: "sub" (user id), "email" and "roles"
// (array of strings).
func JWTAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return secret, nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			p, err := principalFromClaims(claims)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
			}
			c.Set(principalKey, p)
			return next(c)
		}
	}
}

// principalFromClaims maps the token claims onto a Principal.  A token
// without a subject is rejected; missing email or roles degrade to empty
// values and the role guards refuse them downstream.
func principalFromClaims(claims jwt.MapClaims) (model.Principal, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return model.Principal{}, errors.New("token has no subject")
	}
	p := model.Principal{ID: sub}
	p.Email, _ = claims["email"].(string)
	if raw, ok := claims["roles"].([]interface{}); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				p.Roles = append(p.Roles, s)
			}
		}
	}
	return p, nil
}

// PrincipalFrom returns the principal stored by JWTAuth, or false on
// routes that skipped authentication.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok
}
