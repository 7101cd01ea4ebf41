// Package secret seals and opens the settings tokens embedded in list view pages.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"

	"github.com/kailas-cloud/dlf/internal/domain"
)

// MinKeyLength is the minimum accepted length of the configured secret.
const MinKeyLength = 16

const keyInfo = "dlf settings v1"

// Codec encrypts and decrypts settings payloads with AES-256-GCM.
// Safe for concurrent use.
type Codec struct {
	gcm cipher.AEAD
}

// NewCodec derives the cipher key from secret with HKDF-SHA256.
func NewCodec(secret string) (*Codec, error) {
	if len(secret) < MinKeyLength {
		return nil, fmt.Errorf("encryption key must be at least %d characters", MinKeyLength)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(keyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return &Codec{gcm: gcm}, nil
}

// Seal encrypts plain into a URL-safe token.
func (c *Codec) Seal(plain []byte) (string, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.gcm.Seal(nonce, nonce, plain, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token produced by Seal. Tokens in standard base64 are accepted too.
// Every failure wraps domain.ErrDecode and carries no key material.
func (c *Codec) Open(token string) ([]byte, error) {
	raw, err := decodeToken(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrDecode, err)
	}
	if len(raw) < c.gcm.NonceSize()+c.gcm.Overhead() {
		return nil, fmt.Errorf("%w: token too short", domain.ErrDecode)
	}

	nonce, ciphertext := raw[:c.gcm.NonceSize()], raw[c.gcm.NonceSize():]
	plain, err := c.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: authentication failed", domain.ErrDecode)
	}
	return plain, nil
}

func decodeToken(token string) ([]byte, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("empty token")
	}

	trimmed := strings.TrimRight(token, "=")
	if strings.ContainsAny(trimmed, "+/") {
		return base64.RawStdEncoding.DecodeString(trimmed)
	}
	return base64.RawURLEncoding.DecodeString(trimmed)
}
