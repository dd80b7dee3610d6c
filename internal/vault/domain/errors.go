package domain

import (
	"github.com/allisson/keyvault/internal/errors"
)

// Vault error definitions. Each wraps a standard error so HTTP mapping stays generic.
var (
	// ErrInvalidUserID indicates an empty user identifier.
	ErrInvalidUserID = errors.Wrap(errors.ErrInvalidInput, "user id is required")

	// ErrInvalidSecret indicates missing or malformed secret fields.
	ErrInvalidSecret = errors.Wrap(errors.ErrInvalidInput, "invalid secret")

	// ErrInvalidIndex indicates a negative or unparsable index.
	ErrInvalidIndex = errors.Wrap(errors.ErrInvalidInput, "invalid secret index")

	// ErrIndexOutOfRange indicates the index does not exist in the current collection.
	ErrIndexOutOfRange = errors.Wrap(errors.ErrOutOfRange, "secret index out of range")

	// ErrStaleRevision indicates the collection changed after the caller read it.
	ErrStaleRevision = errors.Wrap(errors.ErrConflict, "secret collection changed since it was read")

	// ErrStoreUnavailable indicates the durable store failed or timed out.
	ErrStoreUnavailable = errors.Wrap(errors.ErrUnavailable, "record store unavailable")

	// ErrCorruptCollection indicates the stored collection could not be decoded.
	ErrCorruptCollection = errors.Wrap(ErrStoreUnavailable, "stored collection is corrupted")

	// ErrCorruptRecord indicates a single stored record could not be decoded.
	ErrCorruptRecord = errors.New("stored record is corrupted")

	// ErrMalformedSecret indicates a record decrypted but did not hold a secret.
	ErrMalformedSecret = errors.New("decrypted record is not a valid secret")
)
