// Package secure provides the process-lifetime symmetric encryption and the
// unsalted SHA-256 fingerprint used by the crypto endpoints.
package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of every supported key
const KeySize = 32

// Algorithm names an AEAD construction
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM (default)
	AlgorithmAESGCM Algorithm = "aes-256-gcm"
	// AlgorithmChaCha20 is ChaCha20-Poly1305
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

var (
	ErrUnsupportedAlgorithm = errors.New("unsupported encryption algorithm")
	ErrMalformedToken       = errors.New("malformed token")
	ErrInvalidKey           = errors.New("key must be 32 bytes")
)

// Key is a symmetric key held only in memory
type Key []byte

// GenerateKey returns a fresh random key
func GenerateKey() (Key, error) {
	k := make(Key, KeySize)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		return nil, fmt.Errorf("failed to read random key: %w", err)
	}
	return k, nil
}

// Config is owned by the composition root and handed to NewEncryptor once
type Config struct {
	Algorithm Algorithm
	Key       Key
}

// Encryptor encrypts text into self-contained URL-safe tokens
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(token string) (string, error)
	Algorithm() Algorithm
}

type aeadEncryptor struct {
	alg  Algorithm
	aead cipher.AEAD
}

// NewEncryptor builds an Encryptor for cfg. An empty algorithm means AES-256-GCM.
func NewEncryptor(cfg Config) (Encryptor, error) {
	if len(cfg.Key) != KeySize {
		return nil, ErrInvalidKey
	}

	alg := cfg.Algorithm
	if alg == "" {
		alg = AlgorithmAESGCM
	}

	var (
		aead cipher.AEAD
		err  error
	)
	switch alg {
	case AlgorithmAESGCM:
		var block cipher.Block
		block, err = aes.NewCipher(cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to create AES cipher: %w", err)
		}
		aead, err = cipher.NewGCM(block)
	case AlgorithmChaCha20:
		aead, err = chacha20poly1305.New(cfg.Key)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s AEAD: %w", alg, err)
	}

	return &aeadEncryptor{alg: alg, aead: aead}, nil
}

func (e *aeadEncryptor) Algorithm() Algorithm { return e.alg }

// Encrypt seals plaintext under a fresh nonce; the token is base64url(nonce || ciphertext)
func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize(), e.aead.NonceSize()+len(plaintext)+e.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to read nonce: %w", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a token produced by Encrypt with the same key
func (e *aeadEncryptor) Decrypt(token string) (string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize+e.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrMalformedToken)
	}
	nonce, sealed := raw[:nonceSize], raw[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("decryption failed (wrong key or tampered data): %w", err)
	}
	return string(plaintext), nil
}
