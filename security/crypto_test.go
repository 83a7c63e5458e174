package security

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/jime0083/BatsuGaku/apperr"
)

func testKey() string {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return base64.StdEncoding.EncodeToString(key)
}

func TestRoundTrip(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, plaintext := range []string{"", "a", "gho_abc123", strings.Repeat("x", 4096), "日本語トークン"} {
		blob, err := c.Encrypt(plaintext)
		if err != nil {
			t.Fatalf("Encrypt(%q): %v", plaintext, err)
		}
		got, err := c.Decrypt(blob)
		if err != nil {
			t.Fatalf("Decrypt(%q): %v", plaintext, err)
		}
		if got != plaintext {
			t.Errorf("round trip mismatch: got %q want %q", got, plaintext)
		}
	}
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	b, err := c.Encrypt("same plaintext")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if a == b {
		t.Error("two encryptions of the same plaintext produced identical blobs")
	}
}

func TestBadKeyLength(t *testing.T) {
	short := base64.StdEncoding.EncodeToString(make([]byte, 16))
	if _, err := New(short); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for 16-byte key, got %v", err)
	}

	if _, err := New("not-base64!!"); !errors.Is(err, apperr.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration for invalid base64 key, got %v", err)
	}
}

func TestTamperDetection(t *testing.T) {
	c, err := New(testKey())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	blob, err := c.Encrypt("secret token")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	raw, _ := base64.StdEncoding.DecodeString(blob)
	for _, i := range []int{0, 12, len(raw) - 1} { // nonce, tag, ciphertext
		mutated := make([]byte, len(raw))
		copy(mutated, raw)
		mutated[i] ^= 0x01
		if _, err := c.Decrypt(base64.StdEncoding.EncodeToString(mutated)); !errors.Is(err, apperr.ErrIntegrity) {
			t.Errorf("byte %d flipped: expected ErrIntegrity, got %v", i, err)
		}
	}

	if _, err := c.Decrypt("AAAA"); !errors.Is(err, apperr.ErrIntegrity) {
		t.Errorf("expected ErrIntegrity for truncated blob, got %v", err)
	}
}
