// Package security implements the token cipher used for every third-party
// credential persisted by this service.
//
// Blob layout: nonce (12 bytes) ‖ GCM tag (16 bytes) ‖ ciphertext, base64
// encoded. The tag sits between nonce and ciphertext so blobs stay readable
// by the existing mobile clients.
package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jime0083/BatsuGaku/apperr"
)

const (
	nonceSize = 12
	tagSize   = 16
)

// Cipher performs AES-256-GCM encryption with a process-wide key.
type Cipher struct {
	aead cipher.AEAD
}

// New builds a Cipher from a base64-encoded 256-bit key. Any other key
// length is a configuration error; the cipher refuses to operate rather
// than truncate or pad.
func New(base64Key string) (*Cipher, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid base64: %v", apperr.ErrConfiguration, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("%w: encryption key must be 32 bytes, got %d", apperr.ErrConfiguration, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfiguration, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrConfiguration, err)
	}
	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext with a fresh random nonce. Two calls with the
// same plaintext produce different blobs.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// Seal returns ciphertext ‖ tag; the blob wants nonce ‖ tag ‖ ciphertext.
	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct := sealed[:len(sealed)-tagSize]
	tag := sealed[len(sealed)-tagSize:]

	blob := make([]byte, 0, nonceSize+tagSize+len(ct))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Any tampering with nonce, tag
// or ciphertext fails with ErrIntegrity; no partial plaintext is returned.
func (c *Cipher) Decrypt(blob string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(blob)
	if err != nil {
		return "", fmt.Errorf("%w: blob is not valid base64", apperr.ErrIntegrity)
	}
	if len(raw) < nonceSize+tagSize {
		return "", fmt.Errorf("%w: blob too short", apperr.ErrIntegrity)
	}

	nonce := raw[:nonceSize]
	tag := raw[nonceSize : nonceSize+tagSize]
	ct := raw[nonceSize+tagSize:]

	sealed := make([]byte, 0, len(ct)+tagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrIntegrity, err)
	}
	return string(plaintext), nil
}
