// Package identity is the signed service-to-service client for the
// Identity service.  Requests carry an HMAC-SHA256 signature over
// "{serviceId}:{unixSeconds}" so the recipient can authenticate the
// caller without shared sessions.  Since tickets store the principal's
// email at reservation time, the only remaining caller is the outbox
// dispatcher, as a fallback for payloads that carry no recipient.
package identity

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Signature header names of the S2S contract.
const (
	HeaderServiceID = "X-Internal-Service-ID"
	HeaderTimestamp = "X-Service-Timestamp"
	HeaderSignature = "X-Service-Signature"
)

// MaxClockSkew is the widest |now - timestamp| a recipient accepts.
const MaxClockSkew = 60 * time.Second

// Sign computes the hex HMAC-SHA256 signature for the given service id and
// unix timestamp under the shared secret.
func Sign(serviceID string, unixSeconds int64, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	fmt.Fprintf(mac, "%s:%d", serviceID, unixSeconds)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a received signature: the timestamp must be within
// MaxClockSkew of now and the signature must match under a constant-time
// compare.
func Verify(serviceID, timestamp, signature string, secret []byte, now time.Time) bool {
	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := now.Unix() - ts
	if skew < 0 {
		skew = -skew
	}
	if time.Duration(skew)*time.Second > MaxClockSkew {
		return false
	}
	want := Sign(serviceID, ts, secret)
	return hmac.Equal([]byte(want), []byte(signature))
}

// User is the subset of the identity record the core consumes.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Client calls the Identity service with signed requests.
type Client struct {
	baseURL   string
	serviceID string
	secret    []byte
	http      *http.Client
}

// NewClient returns a Client for the given base URL and S2S credentials.
func NewClient(baseURL, serviceID string, secret []byte) *Client {
	return &Client{
		baseURL:   baseURL,
		serviceID: serviceID,
		secret:    secret,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

// sign attaches the three signature headers to an outgoing request.
func (c *Client) sign(req *http.Request) {
	now := time.Now().Unix()
	req.Header.Set(HeaderServiceID, c.serviceID)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(now, 10))
	req.Header.Set(HeaderSignature, Sign(c.serviceID, now, c.secret))
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/internal/users/"+id, nil)
	if err != nil {
		return nil, err
	}
	c.sign(req)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned %d", resp.StatusCode)
	}
	var u User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	return &u, nil
}
