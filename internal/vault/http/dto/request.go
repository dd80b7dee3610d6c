// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/keyvault/internal/validation"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
)

// SaveSecretRequest contains the parameters for saving an API key.
type SaveSecretRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Validate checks if the save secret request is valid.
func (r *SaveSecretRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Type,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoControlChars,
		),
		validation.Field(&r.Value,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}

// ToDomain converts the request into a domain secret.
func (r *SaveSecretRequest) ToDomain() vaultDomain.Secret {
	return vaultDomain.Secret{Type: r.Type, Value: r.Value}
}
