// Package service provides the cryptographic primitives of the vault: authenticated
// ciphers, slow key derivation from user identifiers and KMS keeper access.
package service

import (
	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and a fresh random nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt authenticates and decrypts ciphertext. Any failure is reported as
	// cryptoDomain.ErrAuthenticationFailed and no plaintext is returned.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver stretches a low-entropy identifier into a symmetric key.
type KeyDeriver interface {
	// Derive returns a KeySize key for input. A nil or empty salt makes Derive generate
	// a fresh random salt; otherwise the given salt is used as is and returned unchanged.
	// Callers own the returned key and must zero it after use.
	Derive(input string, salt []byte) (key, usedSalt []byte, err error)

	// Params returns the cost parameters this deriver applies.
	Params() cryptoDomain.KDFParams
}

// KDFManager defines the interface for creating key derivers.
type KDFManager interface {
	// CreateDeriver creates a KeyDeriver for the given parameters.
	CreateDeriver(params cryptoDomain.KDFParams) (KeyDeriver, error)
}
