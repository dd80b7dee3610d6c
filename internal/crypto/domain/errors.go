package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Cryptographic error definitions.
//
// Configuration and input errors wrap errors.ErrInvalidInput so they map to
// 422 responses. ErrAuthenticationFailed is deliberately standalone: it never
// reaches a client as a status code, it is reported per record instead.
var (
	// ErrUnsupportedAlgorithm indicates the requested cipher algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrUnsupportedKDF indicates the requested key derivation function is not supported.
	ErrUnsupportedKDF = errors.Wrap(errors.ErrInvalidInput, "unsupported key derivation function")

	// ErrInvalidKDFParams indicates key derivation cost parameters are missing or out of range.
	ErrInvalidKDFParams = errors.Wrap(errors.ErrInvalidInput, "invalid key derivation parameters")

	// ErrInvalidKeySize indicates the key is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEmptyKDFInput indicates key derivation was asked to stretch an empty identifier.
	ErrEmptyKDFInput = errors.Wrap(errors.ErrInvalidInput, "key derivation input is required")

	// ErrAuthenticationFailed indicates a ciphertext could not be authenticated.
	//
	// Returned for a wrong key, a tampered ciphertext, nonce or salt, a mismatched
	// associated data and malformed nonces alike. Callers must not be able to tell
	// these cases apart.
	ErrAuthenticationFailed = errors.New("authentication failed")
)
