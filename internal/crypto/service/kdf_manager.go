package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// KDFManagerService implements the KDFManager interface.
type KDFManagerService struct{}

// NewKDFManager creates a new KDFManagerService.
func NewKDFManager() *KDFManagerService {
	return &KDFManagerService{}
}

// CreateDeriver creates the deriver matching params.Algorithm.
func (m *KDFManagerService) CreateDeriver(params cryptoDomain.KDFParams) (KeyDeriver, error) {
	switch params.Algorithm {
	case cryptoDomain.Argon2id:
		return NewArgon2idDeriver(params)
	case cryptoDomain.PBKDF2SHA256:
		return NewPBKDF2Deriver(params)
	default:
		return nil, cryptoDomain.ErrUnsupportedKDF
	}
}

// NewRandomSalt returns SaltSize bytes from the system CSPRNG.
func NewRandomSalt() ([]byte, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

func derive(input string, salt []byte, fn func(password, salt []byte) []byte) (key, usedSalt []byte, err error) {
	if input == "" {
		return nil, nil, cryptoDomain.ErrEmptyKDFInput
	}

	if len(salt) == 0 {
		salt, err = NewRandomSalt()
		if err != nil {
			return nil, nil, err
		}
	}

	password := []byte(input)
	defer cryptoDomain.Zero(password)

	return fn(password, salt), salt, nil
}
