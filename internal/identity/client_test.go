package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignIsDeterministic(t *testing.T) {
	secret := []byte("shared")
	a := Sign("reservation-core", 1700000000, secret)
	b := Sign("reservation-core", 1700000000, secret)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, Sign("reservation-core", 1700000001, secret))
	assert.NotEqual(t, a, Sign("other-service", 1700000000, secret))
}

func TestVerify(t *testing.T) {
	secret := []byte("shared")
	now := time.Unix(1700000000, 0)
	ts := strconv.FormatInt(now.Unix(), 10)
	sig := Sign("svc", now.Unix(), secret)

	assert.True(t, Verify("svc", ts, sig, secret, now))
	assert.True(t, Verify("svc", ts, sig, secret, now.Add(59*time.Second)))
	assert.False(t, Verify("svc", ts, sig, secret, now.Add(61*time.Second)), "expired timestamp")
	assert.False(t, Verify("svc", ts, sig, secret, now.Add(-61*time.Second)), "future timestamp")
	assert.False(t, Verify("svc", ts, "deadbeef", secret, now), "bad signature")
	assert.False(t, Verify("svc", "not-a-number", sig, secret, now))
	assert.False(t, Verify("svc", ts, sig, []byte("wrong"), now))
}

func TestGetUserSignsRequest(t *testing.T) {
	secret := []byte("shared")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/users/42", r.URL.Path)
		ok := Verify(
			r.Header.Get(HeaderServiceID),
			r.Header.Get(HeaderTimestamp),
			r.Header.Get(HeaderSignature),
			secret, time.Now(),
		)
		require.True(t, ok, "request must carry a valid signature")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"42","email":"viewer@example.com"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "reservation-core", secret)
	u, err := c.GetUser(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)
	assert.Equal(t, "viewer@example.com", u.Email)
}

func TestGetUserNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "reservation-core", []byte("s"))
	_, err := c.GetUser(context.Background(), "nope")
	assert.Error(t, err)
}
