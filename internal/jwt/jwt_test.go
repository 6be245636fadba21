package jwt

import (
	"errors"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	s, err := NewStateSigner("app-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("NewStateSigner: %v", err)
	}

	token, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("expected user-1, got %q", claims.UserID)
	}
	if len(claims.Nonce) != NONCE_SIZE*2 {
		t.Fatalf("expected hex nonce of %d chars, got %q", NONCE_SIZE*2, claims.Nonce)
	}
	if got := claims.ExpiresAt.Sub(claims.IssuedAt.Time); got != 10*time.Minute {
		t.Fatalf("expected 10m lifetime, got %v", got)
	}
}

func TestStateSigner_Expired(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := issued
	s, _ := NewStateSigner("app-secret", 10*time.Minute)
	s.WithClock(func() time.Time { return now })

	token, err := s.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	now = issued.Add(11 * time.Minute)
	if _, err := s.Verify(token); !errors.Is(err, gojwt.ErrTokenExpired) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestStateSigner_ForeignKey(t *testing.T) {
	a, _ := NewStateSigner("secret-a", time.Minute)
	b, _ := NewStateSigner("secret-b", time.Minute)

	token, _ := a.Issue("user-1")
	if _, err := b.Verify(token); err == nil {
		t.Fatalf("expected signature failure for token from another key")
	}
}

func TestStateSigner_NotABearerToken(t *testing.T) {
	s, _ := NewStateSigner("shared", time.Minute)
	v := NewVerifier("shared")

	state, _ := s.Issue("user-1")
	if _, err := v.Verify(state); err == nil {
		t.Fatalf("state token must not verify as bearer token")
	}

	bearer, _ := GenerateJWT(AuthClaims{RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, []byte("shared"))
	if _, err := s.Verify(bearer); err == nil {
		t.Fatalf("bearer token must not verify as state token")
	}
}

func TestVerifier(t *testing.T) {
	v := NewVerifier("shared")

	ok, _ := GenerateJWT(AuthClaims{Email: "a@example.com", RegisteredClaims: gojwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, []byte("shared"))
	claims, err := v.Verify(ok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	noSub, _ := GenerateJWT(AuthClaims{RegisteredClaims: gojwt.RegisteredClaims{
		ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}, []byte("shared"))
	if _, err := v.Verify(noSub); !errors.Is(err, ErrMissingSubject) {
		t.Fatalf("expected ErrMissingSubject, got %v", err)
	}

	noExp, _ := GenerateJWT(AuthClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"}}, []byte("shared"))
	if _, err := v.Verify(noExp); err == nil {
		t.Fatalf("expected error for token without expiry")
	}

	none := gojwt.NewWithClaims(gojwt.SigningMethodNone, AuthClaims{RegisteredClaims: gojwt.RegisteredClaims{Subject: "user-1"}})
	unsigned, _ := none.SignedString(gojwt.UnsafeAllowNoneSignatureType)
	if _, err := v.Verify(unsigned); err == nil {
		t.Fatalf("expected error for unsigned token")
	}
}
