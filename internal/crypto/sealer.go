package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	nonceLen   = 12
	gcmTagLen  = 16
	minSealLen = nonceLen + gcmTagLen // 28 bytes minimum
)

// Sealer encrypts and decrypts short strings (OAuth tokens) for at-rest
// storage using AES-256-GCM.
type Sealer struct {
	key [32]byte
}

// NewSealer derives a 32-byte sealing key from the given secret using
// HKDF-SHA256 and returns a Sealer bound to it.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, errors.New("sealing secret must not be empty")
	}

	var key [32]byte
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte("exchangekit token sealer v1"))
	if _, err := io.ReadFull(r, key[:]); err != nil {
		return nil, fmt.Errorf("derive sealing key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext. Output format: nonce(12) || ciphertext+tag.
func (s *Sealer) Seal(plaintext string) ([]byte, error) {
	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return nil, fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}

	nonce := make([]byte, nonceLen)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	ct := gcm.Seal(nil, nonce, []byte(plaintext), nil)

	out := make([]byte, 0, nonceLen+len(ct))
	out = append(out, nonce...)
	out = append(out, ct...)
	return out, nil
}

// Open decrypts data produced by Seal.
func (s *Sealer) Open(sealed []byte) (string, error) {
	if len(sealed) < minSealLen {
		return "", errors.New("sealed value too short")
	}

	nonce := sealed[:nonceLen]
	ct := sealed[nonceLen:]

	block, err := aes.NewCipher(s.key[:])
	if err != nil {
		return "", fmt.Errorf("create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plaintext), nil
}
