// Package jwt signs and verifies the HS256 tokens the service deals with:
// bearer tokens from the identity provider and short-lived OAuth state.
package jwt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

var (
	ErrNonValidToken    = errors.New("token did not pass validation")
	ErrInvalidClaimType = errors.New("invalid claim type")
	ErrMissingSubject   = errors.New("token has no subject")
)

var tokenSignatureAlg = gojwt.SigningMethodHS256

// Number of random bytes in a state nonce. 16 → 128-bit
const NONCE_SIZE = 16

const stateKeyInfo = "daybook oauth state v1"

// AuthClaims are issued by the external identity provider. Subject is the user ID.
type AuthClaims struct {
	Email string `json:"email,omitempty"`
	gojwt.RegisteredClaims
}

// StateClaims bind an OAuth round trip to the user who started it.
type StateClaims struct {
	UserID string `json:"userId"`
	Nonce  string `json:"nonce"`
	gojwt.RegisteredClaims
}

// GenerateJWT signs claims with HS256.
func GenerateJWT(claims gojwt.Claims, key []byte) (string, error) {
	token := gojwt.NewWithClaims(tokenSignatureAlg, claims)
	return token.SignedString(key)
}

func decodeJWT[T gojwt.Claims](tokenString string, claims T, key []byte, opts ...gojwt.ParserOption) (T, error) {
	var zero T

	opts = append(opts, gojwt.WithValidMethods([]string{tokenSignatureAlg.Alg()}))
	parsed, err := gojwt.ParseWithClaims(tokenString, claims, func(token *gojwt.Token) (any, error) {
		return key, nil
	}, opts...)

	if err != nil {
		return zero, err
	} else if parsed == nil || !parsed.Valid {
		return zero, ErrNonValidToken
	} else if c, ok := parsed.Claims.(T); ok {
		return c, nil
	}

	return zero, ErrInvalidClaimType
}

// Verifier checks bearer tokens.
type Verifier struct {
	key []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{key: []byte(secret)}
}

func (v *Verifier) Verify(tokenString string) (*AuthClaims, error) {
	claims, err := decodeJWT(tokenString, &AuthClaims{}, v.key, gojwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// StateSigner issues and checks OAuth state tokens. Its key is derived
// from the application secret so state tokens can never pass as bearer
// tokens and vice versa.
type StateSigner struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewStateSigner(secret string, ttl time.Duration) (*StateSigner, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("state ttl must be positive, got %v", ttl)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(stateKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("failed to derive state key: %w", err)
	}

	return &StateSigner{key: key, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the signer's time source.
func (s *StateSigner) WithClock(now func() time.Time) *StateSigner {
	s.now = now
	return s
}

func (s *StateSigner) Issue(userID string) (string, error) {
	nonce, err := Nonce()
	if err != nil {
		return "", err
	}

	now := s.now().UTC()
	claims := StateClaims{
		UserID: userID,
		Nonce:  nonce,
		RegisteredClaims: gojwt.RegisteredClaims{
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return GenerateJWT(claims, s.key)
}

// Verify returns the claims of a well-formed, correctly signed, unexpired
// state token.
func (s *StateSigner) Verify(tokenString string) (*StateClaims, error) {
	claims, err := decodeJWT(tokenString, &StateClaims{}, s.key,
		gojwt.WithExpirationRequired(),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" || claims.Nonce == "" {
		return nil, ErrNonValidToken
	}
	return claims, nil
}

// Nonce returns NONCE_SIZE random bytes, hex encoded.
func Nonce() (string, error) {
	b := make([]byte, NONCE_SIZE)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
