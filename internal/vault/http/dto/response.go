package dto

import (
	"errors"
	"time"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	apperrors "github.com/allisson/keyvault/internal/errors"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// SaveSecretResponse describes a saved secret. The value is never echoed back.
type SaveSecretResponse struct {
	ID        string    `json:"id"`
	Index     int       `json:"index"`
	Revision  uint64    `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
}

// SecretResponse is one decrypted secret of a listing.
// SECURITY: Value holds the plaintext API key. Must be transmitted over HTTPS.
type SecretResponse struct {
	Index     int       `json:"index"`
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// FailureResponse reports a record that could not be decrypted.
type FailureResponse struct {
	Index  int    `json:"index"`
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ListSecretsResponse is the response of a listing.
type ListSecretsResponse struct {
	Data     []SecretResponse  `json:"data"`
	Failures []FailureResponse `json:"failures"`
	Revision uint64            `json:"revision"`
}

// Failure reasons exposed to clients.
const (
	ReasonAuthenticationFailed = "authentication_failed"
	ReasonUnsupportedFormat    = "unsupported_format"
	ReasonMalformedSecret      = "malformed_secret"
	ReasonCorruptRecord        = "corrupt_record"
	ReasonDecryptionFailed     = "decryption_failed"
)

// MapSaveResultToResponse converts a save result to an API response.
func MapSaveResultToResponse(result *vaultDomain.SaveResult) SaveSecretResponse {
	return SaveSecretResponse{
		ID:        result.RecordID.String(),
		Index:     result.Index,
		Revision:  result.Revision,
		CreatedAt: result.CreatedAt,
	}
}

// MapListingToResponse converts a listing to an API response.
func MapListingToResponse(listing *vaultDomain.Listing) ListSecretsResponse {
	data := make([]SecretResponse, 0, len(listing.Entries))
	for _, entry := range listing.Entries {
		data = append(data, SecretResponse{
			Index:     entry.Index,
			ID:        entry.RecordID.String(),
			Type:      entry.Secret.Type,
			Value:     entry.Secret.Value,
			CreatedAt: entry.CreatedAt,
		})
	}

	failures := make([]FailureResponse, 0, len(listing.Failures))
	for _, failure := range listing.Failures {
		failures = append(failures, FailureResponse{
			Index:  failure.Index,
			ID:     failure.RecordID.String(),
			Reason: FailureReason(failure.Err),
		})
	}

	return ListSecretsResponse{
		Data:     data,
		Failures: failures,
		Revision: listing.Revision,
	}
}

// FailureReason classifies a per-record failure without exposing error details.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, cryptoDomain.ErrAuthenticationFailed):
		return ReasonAuthenticationFailed
	case errors.Is(err, vaultDomain.ErrMalformedSecret):
		return ReasonMalformedSecret
	case errors.Is(err, vaultDomain.ErrCorruptRecord):
		return ReasonCorruptRecord
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return ReasonUnsupportedFormat
	default:
		return ReasonDecryptionFailed
	}
}
