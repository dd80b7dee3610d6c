package service

import (
	"golang.org/x/crypto/argon2"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// Argon2idDeriver derives keys with Argon2id.
type Argon2idDeriver struct {
	params cryptoDomain.KDFParams
}

// NewArgon2idDeriver creates an Argon2id deriver after validating params.
func NewArgon2idDeriver(params cryptoDomain.KDFParams) (*Argon2idDeriver, error) {
	if params.Algorithm != cryptoDomain.Argon2id {
		return nil, cryptoDomain.ErrUnsupportedKDF
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Argon2idDeriver{params: params}, nil
}

// Derive stretches input with Argon2id.
func (d *Argon2idDeriver) Derive(input string, salt []byte) (key, usedSalt []byte, err error) {
	return derive(input, salt, func(password, salt []byte) []byte {
		return argon2.IDKey(
			password,
			salt,
			d.params.Time,
			d.params.MemoryKiB,
			d.params.Threads,
			cryptoDomain.KeySize,
		)
	})
}

// Params returns the Argon2id cost parameters.
func (d *Argon2idDeriver) Params() cryptoDomain.KDFParams {
	return d.params
}
