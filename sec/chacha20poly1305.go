package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Read https://pkg.go.dev/golang.org/x/crypto/chacha20poly1305

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// XChaCha20Poly1305Cipher seals persisted state at rest.
// Sealed output layout: nonce || ciphertext+tag
type XChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

func NewXChaCha20Poly1305Cipher(key []byte) (*XChaCha20Poly1305Cipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &XChaCha20Poly1305Cipher{aead: aead}, nil
}

// NewXChaCha20Poly1305CipherFromBase64 accepts a raw-url or std base64 encoded 32-byte key
func NewXChaCha20Poly1305CipherFromBase64(encodedKey string) (*XChaCha20Poly1305Cipher, error) {
	key, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil {
		if key, err = base64.StdEncoding.DecodeString(encodedKey); err != nil {
			return nil, fmt.Errorf("decode key: %w", err)
		}
	}
	return NewXChaCha20Poly1305Cipher(key)
}

// Seal encrypts plaintext with a fresh random nonce. aad may be nil
func (c *XChaCha20Poly1305Cipher) Seal(plaintext, aad []byte) ([]byte, error) {
	// leave capacity for the ciphertext
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plaintext)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return c.aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open decrypts the output of Seal and checks it wasn't tampered with
func (c *XChaCha20Poly1305Cipher) Open(sealed, aad []byte) ([]byte, error) {
	nonceSize := c.aead.NonceSize()
	if len(sealed) < nonceSize+c.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := sealed[:nonceSize], sealed[nonceSize:]
	return c.aead.Open(nil, nonce, ciphertext, aad)
}
