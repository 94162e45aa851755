// Package linktoken issues and validates the signed tokens embedded in
// recommendation deep links. A token carries the connector and posting it was
// minted for plus the mint time, so a link can be attributed and aged without
// any server-side state.
package linktoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformed = errors.New("linktoken: malformed token")
	ErrExpired   = errors.New("linktoken: token outside validity window")
	ErrTampered  = errors.New("linktoken: signature mismatch")
)

// Payload is the decoded content of a valid token. UsedPreviousSecret is set
// when only the rotated-out secret verified the signature, so callers can log
// how far rotation has propagated.
type Payload struct {
	ConnectorID        string
	PostingID          string
	IssuedAt           time.Time
	UsedPreviousSecret bool
}

// Codec signs and verifies tokens. PreviousSecret, when set, is accepted for
// verification only, which lets the signing secret rotate without breaking
// links minted before the rotation.
type Codec struct {
	Secret         string
	PreviousSecret string
	MaxAge         time.Duration
	FutureSkew     time.Duration
}

// Generate mints a token for the given connector and posting at the given time.
// The token is "<sig>.<body>" where body is the base64url encoding of
// "connectorID:postingID:epochMillis" and sig is the first 32 hex characters of
// sha256 over the body plaintext concatenated with the secret.
func (c *Codec) Generate(connectorID, postingID string, now time.Time) string {
	payload := fmt.Sprintf("%s:%s:%d", connectorID, postingID, now.UnixMilli())
	return sign(payload, c.Secret) + "." + base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// Validate checks the structure, age and signature of a token and returns its
// payload. The age window is enforced before the signature so an expired token
// reports ErrExpired even when it also fails verification.
func (c *Codec) Validate(token string, now time.Time) (Payload, error) {
	sig, body, ok := strings.Cut(token, ".")
	if !ok || sig == "" || body == "" {
		return Payload{}, ErrMalformed
	}

	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		return Payload{}, ErrMalformed
	}
	payload := string(raw)

	parts := strings.Split(payload, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return Payload{}, ErrMalformed
	}
	millis, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Payload{}, ErrMalformed
	}
	issuedAt := time.UnixMilli(millis)

	if now.Sub(issuedAt) > c.MaxAge {
		return Payload{}, ErrExpired
	}
	if issuedAt.Sub(now) > c.FutureSkew {
		return Payload{}, ErrExpired
	}

	usedPrevious := false
	if !verify(payload, sig, c.Secret) {
		if c.PreviousSecret == "" || !verify(payload, sig, c.PreviousSecret) {
			return Payload{}, ErrTampered
		}
		usedPrevious = true
	}

	return Payload{
		ConnectorID:        parts[0],
		PostingID:          parts[1],
		IssuedAt:           issuedAt,
		UsedPreviousSecret: usedPrevious,
	}, nil
}

func sign(payload, secret string) string {
	sum := sha256.Sum256([]byte(payload + secret))
	return hex.EncodeToString(sum[:])[:32]
}

func verify(payload, sig string, secret string) bool {
	return hmac.Equal([]byte(sign(payload, secret)), []byte(sig))
}
