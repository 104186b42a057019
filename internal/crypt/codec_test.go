package crypt

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/haukened/hearth/internal/domain"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestRoundTrip(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, plaintext := range []string{"", "Mina", "1990-07-04", "äöü emoji 🎂", "a longer value with spaces"} {
		box, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		got, err := c.Decrypt(box)
		if err != nil {
			t.Fatalf("Decrypt(%q): %v", plaintext, err)
		}
		if got != plaintext {
			t.Fatalf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestEncryptFreshNonce(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a, _ := c.Encrypt("same plaintext")
	b, _ := c.Encrypt("same plaintext")
	if bytes.Equal(a, b) {
		t.Fatalf("two encryptions of the same plaintext must not be identical")
	}
}

func TestTamperDetection(t *testing.T) {
	c, err := New(testKey(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	box, err := c.Encrypt("sensitive")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	for i := range box {
		flipped := make([]byte, len(box))
		copy(flipped, box)
		flipped[i] ^= 0x01
		if _, err := c.Decrypt(flipped); !errors.Is(err, domain.ErrDecrypt) {
			t.Fatalf("flipping byte %d must yield ErrDecrypt, got %v", i, err)
		}
	}
}

func TestWrongKey(t *testing.T) {
	c1, _ := New(testKey(t))
	c2, _ := New(testKey(t))
	box, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := c2.Decrypt(box); !errors.Is(err, domain.ErrDecrypt) {
		t.Fatalf("expected ErrDecrypt under wrong key, got %v", err)
	}
}

func TestDecryptMalformed(t *testing.T) {
	c, _ := New(testKey(t))
	for _, box := range [][]byte{nil, {}, {0x01}, make([]byte, 10)} {
		if _, err := c.Decrypt(box); !errors.Is(err, domain.ErrDecrypt) {
			t.Fatalf("expected ErrDecrypt for %d-byte box, got %v", len(box), err)
		}
	}
}

func TestNewRejectsBadKeyLength(t *testing.T) {
	for _, n := range []int{0, 16, 31, 33} {
		if _, err := New(make([]byte, n)); err == nil {
			t.Fatalf("expected error for %d-byte key", n)
		}
	}
}

func TestKeyFromBase64(t *testing.T) {
	raw := testKey(t)
	got, err := KeyFromBase64(base64.StdEncoding.EncodeToString(raw))
	if err != nil {
		t.Fatalf("KeyFromBase64: %v", err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("decoded key mismatch")
	}

	for _, bad := range []string{"", "not base64 !!!", base64.StdEncoding.EncodeToString(make([]byte, 16))} {
		if _, err := KeyFromBase64(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
