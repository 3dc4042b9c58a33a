package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seathive/seathive-server/internal/identity"
)

func callS2S(t *testing.T, secret []byte, headers map[string]string) int {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/tickets/payment/success", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := S2SAuth(secret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return rec.Code
}

func TestS2SAuthValidSignature(t *testing.T) {
	secret := []byte("shared")
	now := time.Now().Unix()
	code := callS2S(t, secret, map[string]string{
		identity.HeaderServiceID: "payments",
		identity.HeaderTimestamp: strconv.FormatInt(now, 10),
		identity.HeaderSignature: identity.Sign("payments", now, secret),
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestS2SAuthMissingHeaders(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, callS2S(t, []byte("shared"), nil))
}

func TestS2SAuthWrongSecret(t *testing.T) {
	now := time.Now().Unix()
	code := callS2S(t, []byte("shared"), map[string]string{
		identity.HeaderServiceID: "payments",
		identity.HeaderTimestamp: strconv.FormatInt(now, 10),
		identity.HeaderSignature: identity.Sign("payments", now, []byte("other")),
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestS2SAuthStaleTimestamp(t *testing.T) {
	secret := []byte("shared")
	old := time.Now().Add(-5 * time.Minute).Unix()
	code := callS2S(t, secret, map[string]string{
		identity.HeaderServiceID: "payments",
		identity.HeaderTimestamp: strconv.FormatInt(old, 10),
		identity.HeaderSignature: identity.Sign("payments", old, secret),
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
