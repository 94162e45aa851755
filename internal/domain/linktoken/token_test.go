package linktoken

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"
)

func testCodec() *Codec {
	return &Codec{
		Secret:     "test-secret",
		MaxAge:     90 * 24 * time.Hour,
		FutureSkew: time.Hour,
	}
}

func TestGenerate_Format(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := testCodec().Generate("conn-1", "post-1", now)

	pattern := regexp.MustCompile(`^[0-9a-f]{32}\.[A-Za-z0-9_-]+$`)
	if !pattern.MatchString(token) {
		t.Fatalf("token %q does not match expected shape", token)
	}

	_, body, _ := strings.Cut(token, ".")
	raw, err := base64.RawURLEncoding.DecodeString(body)
	if err != nil {
		t.Fatalf("body is not unpadded base64url: %v", err)
	}
	want := "conn-1:post-1:" + "1740830400000"
	if string(raw) != want {
		t.Fatalf("payload = %q, want %q", raw, want)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	c := testCodec()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := c.Generate("conn-1", "post-1", now)

	got, err := c.Validate(token, now.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ConnectorID != "conn-1" || got.PostingID != "post-1" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if !got.IssuedAt.Equal(now) {
		t.Fatalf("issuedAt = %v, want %v", got.IssuedAt, now)
	}
}

func TestValidate_Expiry(t *testing.T) {
	c := testCodec()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := c.Generate("conn-1", "post-1", now)

	if _, err := c.Validate(token, now.Add(89*24*time.Hour)); err != nil {
		t.Fatalf("token at 89 days should validate, got %v", err)
	}
	if _, err := c.Validate(token, now.Add(91*24*time.Hour)); !errors.Is(err, ErrExpired) {
		t.Fatalf("token at 91 days should expire, got %v", err)
	}
}

func TestValidate_FutureSkew(t *testing.T) {
	c := testCodec()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := c.Generate("conn-1", "post-1", now)

	if _, err := c.Validate(token, now.Add(-30*time.Minute)); err != nil {
		t.Fatalf("30 minutes of clock skew should be tolerated, got %v", err)
	}
	if _, err := c.Validate(token, now.Add(-2*time.Hour)); !errors.Is(err, ErrExpired) {
		t.Fatalf("token minted two hours in the future should be rejected, got %v", err)
	}
}

func TestValidate_Tampered(t *testing.T) {
	c := testCodec()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := c.Generate("conn-1", "post-1", now)

	sig, body, _ := strings.Cut(token, ".")

	// Re-encode a body pointing at a different posting under the old signature.
	forged := base64.RawURLEncoding.EncodeToString([]byte("conn-1:post-2:" + "1740830400000"))
	if _, err := c.Validate(sig+"."+forged, now); !errors.Is(err, ErrTampered) {
		t.Fatalf("forged body should fail verification, got %v", err)
	}

	// Flip a signature character.
	flipped := "0" + sig[1:]
	if flipped == sig {
		flipped = "1" + sig[1:]
	}
	if _, err := c.Validate(flipped+"."+body, now); !errors.Is(err, ErrTampered) {
		t.Fatalf("altered signature should fail verification, got %v", err)
	}
}

func TestValidate_Malformed(t *testing.T) {
	c := testCodec()
	now := time.Now()

	for _, token := range []string{
		"",
		"nodot",
		"abc.",
		".abc",
		"abc.!!!not-base64!!!",
		"abc." + base64.RawURLEncoding.EncodeToString([]byte("only:two")),
		"abc." + base64.RawURLEncoding.EncodeToString([]byte("a:b:notanumber")),
	} {
		if _, err := c.Validate(token, now); !errors.Is(err, ErrMalformed) {
			t.Fatalf("token %q: expected ErrMalformed, got %v", token, err)
		}
	}
}

func TestValidate_PreviousSecret(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	old := &Codec{Secret: "old-secret", MaxAge: 90 * 24 * time.Hour, FutureSkew: time.Hour}
	token := old.Generate("conn-1", "post-1", now)

	rotated := &Codec{
		Secret:         "new-secret",
		PreviousSecret: "old-secret",
		MaxAge:         90 * 24 * time.Hour,
		FutureSkew:     time.Hour,
	}
	payload, err := rotated.Validate(token, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("token signed with previous secret should validate, got %v", err)
	}
	if !payload.UsedPreviousSecret {
		t.Fatalf("expected UsedPreviousSecret to be set")
	}

	fresh := rotated.Generate("conn-1", "post-1", now)
	payload, err = rotated.Validate(fresh, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.UsedPreviousSecret {
		t.Fatalf("active-secret token must not report previous secret use")
	}

	noPrev := &Codec{Secret: "new-secret", MaxAge: 90 * 24 * time.Hour, FutureSkew: time.Hour}
	if _, err := noPrev.Validate(token, now.Add(time.Hour)); !errors.Is(err, ErrTampered) {
		t.Fatalf("without the previous secret the token must fail, got %v", err)
	}
}

func TestValidate_ExpiryBeatsSignature(t *testing.T) {
	c := testCodec()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	token := (&Codec{Secret: "other", MaxAge: c.MaxAge, FutureSkew: c.FutureSkew}).Generate("conn-1", "post-1", now)

	_, err := c.Validate(token, now.Add(120*24*time.Hour))
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("expired token should report expiry first, got %v", err)
	}
}
