package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// PBKDF2Deriver derives keys with PBKDF2-HMAC-SHA256. It exists for deployments
// that require a FIPS-approved derivation; Argon2id is the default.
type PBKDF2Deriver struct {
	params cryptoDomain.KDFParams
}

// NewPBKDF2Deriver creates a PBKDF2 deriver after validating params.
func NewPBKDF2Deriver(params cryptoDomain.KDFParams) (*PBKDF2Deriver, error) {
	if params.Algorithm != cryptoDomain.PBKDF2SHA256 {
		return nil, cryptoDomain.ErrUnsupportedKDF
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &PBKDF2Deriver{params: params}, nil
}

// Derive stretches input with PBKDF2-HMAC-SHA256.
func (d *PBKDF2Deriver) Derive(input string, salt []byte) (key, usedSalt []byte, err error) {
	return derive(input, salt, func(password, salt []byte) []byte {
		return pbkdf2.Key(password, salt, d.params.Iterations, cryptoDomain.KeySize, sha256.New)
	})
}

// Params returns the PBKDF2 cost parameters.
func (d *PBKDF2Deriver) Params() cryptoDomain.KDFParams {
	return d.params
}
