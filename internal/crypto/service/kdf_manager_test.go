package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// Cheap parameters keep the suite fast. Production defaults are exercised
// through Validate in the domain package.
var testKDFParams = []cryptoDomain.KDFParams{
	{Algorithm: cryptoDomain.Argon2id, Time: 1, MemoryKiB: 64, Threads: 1},
	{Algorithm: cryptoDomain.PBKDF2SHA256, Iterations: 1000},
}

func TestKDFManagerService_CreateDeriver(t *testing.T) {
	manager := NewKDFManager()

	t.Run("Success_Argon2id", func(t *testing.T) {
		deriver, err := manager.CreateDeriver(testKDFParams[0])
		require.NoError(t, err)

		_, ok := deriver.(*Argon2idDeriver)
		assert.True(t, ok)
		assert.Equal(t, testKDFParams[0], deriver.Params())
	})

	t.Run("Success_PBKDF2", func(t *testing.T) {
		deriver, err := manager.CreateDeriver(testKDFParams[1])
		require.NoError(t, err)

		_, ok := deriver.(*PBKDF2Deriver)
		assert.True(t, ok)
	})

	t.Run("Error_Unsupported", func(t *testing.T) {
		_, err := manager.CreateDeriver(cryptoDomain.KDFParams{Algorithm: "bcrypt"})
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedKDF)
	})

	t.Run("Error_InvalidParams", func(t *testing.T) {
		_, err := manager.CreateDeriver(cryptoDomain.KDFParams{Algorithm: cryptoDomain.Argon2id})
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKDFParams)

		_, err = NewPBKDF2Deriver(cryptoDomain.KDFParams{Algorithm: cryptoDomain.Argon2id, Time: 1, MemoryKiB: 64, Threads: 1})
		assert.ErrorIs(t, err, cryptoDomain.ErrUnsupportedKDF)
	})
}

func TestKeyDeriver_Derive(t *testing.T) {
	manager := NewKDFManager()

	for _, params := range testKDFParams {
		t.Run(string(params.Algorithm), func(t *testing.T) {
			deriver, err := manager.CreateDeriver(params)
			require.NoError(t, err)

			t.Run("Success_GeneratesSalt", func(t *testing.T) {
				key, salt, err := deriver.Derive("user-123", nil)
				require.NoError(t, err)
				assert.Len(t, key, cryptoDomain.KeySize)
				assert.Len(t, salt, cryptoDomain.SaltSize)
			})

			t.Run("Success_FreshSaltPerCall", func(t *testing.T) {
				key1, salt1, err := deriver.Derive("user-123", nil)
				require.NoError(t, err)
				key2, salt2, err := deriver.Derive("user-123", nil)
				require.NoError(t, err)

				assert.NotEqual(t, salt1, salt2)
				assert.NotEqual(t, key1, key2)
			})

			t.Run("Success_SameSaltSameKey", func(t *testing.T) {
				key1, salt, err := deriver.Derive("user-123", nil)
				require.NoError(t, err)

				key2, usedSalt, err := deriver.Derive("user-123", salt)
				require.NoError(t, err)

				assert.Equal(t, salt, usedSalt)
				assert.Equal(t, key1, key2)
			})

			t.Run("Success_DifferentUserDifferentKey", func(t *testing.T) {
				key1, salt, err := deriver.Derive("user-1", nil)
				require.NoError(t, err)

				key2, _, err := deriver.Derive("user-2", salt)
				require.NoError(t, err)

				assert.NotEqual(t, key1, key2)
			})

			t.Run("Error_EmptyInput", func(t *testing.T) {
				key, salt, err := deriver.Derive("", nil)
				assert.ErrorIs(t, err, cryptoDomain.ErrEmptyKDFInput)
				assert.Nil(t, key)
				assert.Nil(t, salt)
			})
		})
	}
}

func TestNewRandomSalt(t *testing.T) {
	salt1, err := NewRandomSalt()
	require.NoError(t, err)
	salt2, err := NewRandomSalt()
	require.NoError(t, err)

	assert.Len(t, salt1, cryptoDomain.SaltSize)
	assert.NotEqual(t, salt1, salt2)
}
