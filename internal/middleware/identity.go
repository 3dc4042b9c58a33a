package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/seathive/seathive-server/internal/identity"
)

// S2SAuth verifies the HMAC signature headers on internal endpoints such
// as the payment webhook.  The caller sends its service id, a unix
// timestamp and an HMAC-SHA256 signature over "{serviceId}:{timestamp}"
// under the shared secret; replays outside the clock-skew window are
// rejected.
func S2SAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Request().Header
			serviceID := h.Get(identity.HeaderServiceID)
			timestamp := h.Get(identity.HeaderTimestamp)
			signature := h.Get(identity.HeaderSignature)
			if serviceID == "" || timestamp == "" || signature == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing service signature"})
			}
			if !identity.Verify(serviceID, timestamp, signature, secret, time.Now()) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid service signature"})
			}
			return next(c)
		}
	}
}
