// Package crypto seals sensitive patient fields (the CPF) at rest with
// AES-256-GCM and derives deterministic lookup hashes for them.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

var (
	ErrInvalidKey         = errors.New("encryption key must be 32 bytes")
	ErrCiphertextTooShort = errors.New("ciphertext too short")
	ErrNoKey              = errors.New("field encryption is not configured")
)

// KeyFromHex decodes a 64-char hex string into a 32-byte AES-256 key.
func KeyFromHex(hexKey string) ([]byte, error) {
	b, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	return b, nil
}

// FieldCipher encrypts and hashes individual column values with one key.
// The zero value (and a nil *FieldCipher) refuses to seal anything.
type FieldCipher struct {
	aead cipher.AEAD
	key  []byte
}

// NewFieldCipher builds a cipher from a hex key. An empty key yields a
// cipher that returns ErrNoKey, so deployments without patient CPFs can run
// without key material.
func NewFieldCipher(hexKey string) (*FieldCipher, error) {
	if hexKey == "" {
		return &FieldCipher{}, nil
	}
	key, err := KeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &FieldCipher{aead: gcm, key: key}, nil
}

func (c *FieldCipher) Enabled() bool { return c != nil && c.aead != nil }

// Seal returns base64(nonce || ciphertext).
func (c *FieldCipher) Seal(plaintext string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoKey
	}
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal.
func (c *FieldCipher) Open(encoded string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoKey
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}
	ns := c.aead.NonceSize()
	if len(data) < ns {
		return "", ErrCiphertextTooShort
	}
	plaintext, err := c.aead.Open(nil, data[:ns], data[ns:], nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}

// Lookup is a keyed digest of value, stable across calls, used for indexed
// equality lookups without storing the plaintext. Without a key it falls
// back to plain SHA-256.
func (c *FieldCipher) Lookup(value string) string {
	if !c.Enabled() {
		return Hash(value)
	}
	mac := hmac.New(sha256.New, c.key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// Hash returns the SHA-256 hex digest of value.
func Hash(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
