// Package crypt implements the field-level codec that keeps personal data
// encrypted at rest. Every stored field value passes through a Codec; the
// plaintext never reaches the database file. The construction is
// XChaCha20-Poly1305 with a fresh random 24-byte nonce prepended to each
// box, so nonce generation per call carries no reuse risk.
package crypt

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/haukened/hearth/internal/domain"
)

// KeySize is the required length of the symmetric key in bytes.
const KeySize = chacha20poly1305.KeySize

// Codec encrypts and decrypts individual text fields under one process-wide
// key. It is immutable after construction and safe for concurrent use.
// Rotating the key is out of scope: ciphertext written under an old key
// becomes unreadable and decrypts to ErrDecrypt.
type Codec struct {
	aead cipher.AEAD
}

// New constructs a Codec from a raw 32-byte key.
func New(key []byte) (*Codec, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("cipher key must be %d bytes, got %d", KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Codec{aead: aead}, nil
}

// KeyFromBase64 decodes a standard-base64 key string as supplied via
// configuration and checks its length.
func KeyFromBase64(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("cipher key is empty")
	}
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("cipher key is not valid base64: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("cipher key must decode to %d bytes, got %d", KeySize, len(key))
	}
	return key, nil
}

// Encrypt seals plaintext under a fresh random nonce. The returned box is
// nonce || ciphertext || tag.
func (c *Codec) Encrypt(plaintext string) ([]byte, error) {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return c.aead.Seal(nonce, nonce, []byte(plaintext), nil), nil
}

// Decrypt opens a box produced by Encrypt. Truncated input, tampered bytes,
// or a mismatched key all yield domain.ErrDecrypt; corrupted data is never
// returned silently.
func (c *Codec) Decrypt(box []byte) (string, error) {
	if len(box) < chacha20poly1305.NonceSizeX+chacha20poly1305.Overhead {
		return "", domain.ErrDecrypt
	}
	nonce, ciphertext := box[:chacha20poly1305.NonceSizeX], box[chacha20poly1305.NonceSizeX:]
	plaintext, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", domain.ErrDecrypt
	}
	return string(plaintext), nil
}
