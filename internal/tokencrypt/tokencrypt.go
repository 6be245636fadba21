// Package tokencrypt seals provider refresh tokens for storage at rest.
//
// Ciphertexts are AES-256-GCM with a fresh 16 byte IV and are encoded as
// base64(IV || tag || ciphertext).
package tokencrypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
)

const (
	KeySize = 32
	ivSize  = 16
	tagSize = 16
)

var (
	ErrInvalidKey    = errors.New("encryption key must be base64 of exactly 32 bytes")
	ErrEmptyInput    = errors.New("nothing to encrypt")
	ErrMalformed     = errors.New("ciphertext is malformed")
	ErrDecryptFailed = errors.New("ciphertext failed authentication")
)

type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a base64 encoded 32 byte key.
func New(encodedKey string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(encodedKey)
	if err != nil || len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create block cipher: %w", err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, ivSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Cipher{aead: aead}, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyInput
	}

	iv := make([]byte, ivSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("failed to generate IV: %w", err)
	}

	// Seal appends the tag after the ciphertext; the stored layout puts it first.
	sealed := c.aead.Seal(nil, iv, []byte(plaintext), nil)
	body, tag := sealed[:len(sealed)-tagSize], sealed[len(sealed)-tagSize:]

	out := make([]byte, 0, ivSize+tagSize+len(body))
	out = append(out, iv...)
	out = append(out, tag...)
	out = append(out, body...)
	return base64.StdEncoding.EncodeToString(out), nil
}

func (c *Cipher) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrMalformed
	}
	if len(raw) < ivSize+tagSize {
		return "", ErrMalformed
	}

	iv := raw[:ivSize]
	tag := raw[ivSize : ivSize+tagSize]
	body := raw[ivSize+tagSize:]

	sealed := make([]byte, 0, len(body)+tagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	plain, err := c.aead.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}
