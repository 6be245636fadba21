package tokencrypt

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"
)

func newKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestRoundTrip(t *testing.T) {
	c, err := New(newKey(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, plain := range []string{"1//refresh-token", "x", string(bytes.Repeat([]byte("long"), 500))} {
		enc, err := c.Encrypt(plain)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		dec, err := c.Decrypt(enc)
		if err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if dec != plain {
			t.Fatalf("round trip mismatch: got %q want %q", dec, plain)
		}
	}
}

func TestEncrypt_FreshIV(t *testing.T) {
	c, _ := New(newKey(t))
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Fatalf("expected distinct ciphertexts for repeated plaintext")
	}

	raw, _ := base64.StdEncoding.DecodeString(a)
	if len(raw) != ivSize+tagSize+len("same") {
		t.Fatalf("unexpected layout length %d", len(raw))
	}
}

func TestEncrypt_Empty(t *testing.T) {
	c, _ := New(newKey(t))
	if _, err := c.Encrypt(""); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestNew_InvalidKey(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, 16))
	for _, key := range []string{"", "not base64!!", short} {
		if _, err := New(key); !errors.Is(err, ErrInvalidKey) {
			t.Fatalf("key %q: expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a, _ := New(newKey(t))
	b, _ := New(newKey(t))

	enc, _ := a.Encrypt("secret")
	if _, err := b.Decrypt(enc); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed, got %v", err)
	}
}

func TestDecrypt_Corrupt(t *testing.T) {
	c, _ := New(newKey(t))
	enc, _ := c.Encrypt("secret")
	raw, _ := base64.StdEncoding.DecodeString(enc)

	truncated := base64.StdEncoding.EncodeToString(raw[:ivSize+tagSize-1])
	if _, err := c.Decrypt(truncated); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for truncated input, got %v", err)
	}

	if _, err := c.Decrypt("%%%"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for bad base64, got %v", err)
	}

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-1] ^= 0xff
	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(flipped)); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed for tampered ciphertext, got %v", err)
	}

	tag := append([]byte(nil), raw...)
	tag[ivSize] ^= 0x01
	if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(tag)); !errors.Is(err, ErrDecryptFailed) {
		t.Fatalf("expected ErrDecryptFailed for tampered tag, got %v", err)
	}
}
