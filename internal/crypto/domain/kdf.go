package domain

import (
	"fmt"

	"github.com/allisson/keyvault/internal/errors"
)

// KDFAlgorithm identifies the password-based key derivation function.
type KDFAlgorithm string

const (
	// Argon2id is the memory-hard Argon2id function (RFC 9106).
	Argon2id KDFAlgorithm = "argon2id"

	// PBKDF2SHA256 is PBKDF2 with HMAC-SHA256.
	PBKDF2SHA256 KDFAlgorithm = "pbkdf2-sha256"
)

// KDFParams holds the cost parameters of a key derivation.
//
// The parameters are persisted next to each record. Only the fields relevant to
// Algorithm are set; the rest are zero and omitted from the wire format.
type KDFParams struct {
	Algorithm  KDFAlgorithm `json:"algorithm"`
	Time       uint32       `json:"time,omitempty"`
	MemoryKiB  uint32       `json:"memory_kib,omitempty"`
	Threads    uint8        `json:"threads,omitempty"`
	Iterations int          `json:"iterations,omitempty"`
}

// Upper bounds on stored cost parameters. Parameters are read back from stored
// records, so a tampered record must not be able to demand unbounded work.
const (
	MaxArgon2Time       = 64
	MaxArgon2MemoryKiB  = 2 * 1024 * 1024
	MaxPBKDF2Iterations = 10_000_000
)

// DefaultArgon2idParams returns the Argon2id parameters used for new records.
func DefaultArgon2idParams() KDFParams {
	return KDFParams{
		Algorithm: Argon2id,
		Time:      3,
		MemoryKiB: 64 * 1024,
		Threads:   2,
	}
}

// DefaultPBKDF2Params returns the PBKDF2-HMAC-SHA256 parameters used for new records.
func DefaultPBKDF2Params() KDFParams {
	return KDFParams{
		Algorithm:  PBKDF2SHA256,
		Iterations: 600_000,
	}
}

// Validate checks that the parameters describe a usable derivation.
func (p KDFParams) Validate() error {
	switch p.Algorithm {
	case Argon2id:
		if p.Time == 0 || p.MemoryKiB == 0 || p.Threads == 0 {
			return errors.Wrap(ErrInvalidKDFParams, "argon2id requires time, memory and threads")
		}
		if p.Time > MaxArgon2Time || p.MemoryKiB > MaxArgon2MemoryKiB {
			return errors.Wrap(ErrInvalidKDFParams, "argon2id cost exceeds the supported maximum")
		}
		if p.MemoryKiB < 8*uint32(p.Threads) {
			return errors.Wrap(ErrInvalidKDFParams, fmt.Sprintf("argon2id memory must be at least %d KiB", 8*uint32(p.Threads)))
		}
	case PBKDF2SHA256:
		if p.Iterations <= 0 || p.Iterations > MaxPBKDF2Iterations {
			return errors.Wrap(ErrInvalidKDFParams, "pbkdf2 iteration count out of range")
		}
	default:
		return ErrUnsupportedKDF
	}
	return nil
}
