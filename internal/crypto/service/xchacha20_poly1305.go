package service

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// XChaCha20Poly1305Cipher implements AEAD using XChaCha20-Poly1305.
//
// The extended 192-bit nonce makes random nonce generation safe for any
// practical number of messages under one key. Constant time on hardware
// without AES instructions.
type XChaCha20Poly1305Cipher struct {
	aead cipher.AEAD
}

// NewXChaCha20Poly1305 creates a new XChaCha20-Poly1305 cipher. The key must be exactly 32 bytes.
func NewXChaCha20Poly1305(key []byte) (*XChaCha20Poly1305Cipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create XChaCha20-Poly1305 cipher: %w", err)
	}

	return &XChaCha20Poly1305Cipher{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random 24-byte nonce.
func (c *XChaCha20Poly1305Cipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	return seal(c.aead, plaintext, aad)
}

// Decrypt authenticates and opens ciphertext.
func (c *XChaCha20Poly1305Cipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	return open(c.aead, ciphertext, nonce, aad)
}
