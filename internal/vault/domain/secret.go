// Package domain defines the core models of the API key vault: plaintext secrets,
// encrypted records and the per-user collection they are persisted in.
package domain

import (
	"encoding/json"
	"fmt"
	"log/slog"

	validation "github.com/jellydator/validation"

	"github.com/allisson/keyvault/internal/errors"
	customValidation "github.com/allisson/keyvault/internal/validation"
)

// Key types offered by the web form. Any other non-blank type is accepted.
const (
	TypeOpenAI   = "OpenAI"
	TypePrintify = "Printify"
)

// Secret is a plaintext API credential. It exists in memory only; the stored form
// is an EncryptedRecord.
type Secret struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Validate checks that both fields are present.
func (s Secret) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Type,
			validation.Required,
			customValidation.NotBlank,
			customValidation.NoControlChars,
			validation.RuneLength(1, 64),
		),
		validation.Field(&s.Value,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 8192),
		),
	)
	if err != nil {
		return errors.Wrap(ErrInvalidSecret, err.Error())
	}
	return nil
}

// Marshal serializes the secret to the plaintext that gets encrypted.
func (s Secret) Marshal() ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSecret parses a decrypted plaintext back into a Secret.
func UnmarshalSecret(data []byte) (Secret, error) {
	var s Secret
	if err := json.Unmarshal(data, &s); err != nil {
		return Secret{}, ErrMalformedSecret
	}
	if s.Type == "" || s.Value == "" {
		return Secret{}, ErrMalformedSecret
	}
	return s, nil
}

// String hides the value so secrets never leak through fmt or log calls.
func (s Secret) String() string {
	return fmt.Sprintf("Secret{Type: %q, Value: [REDACTED]}", s.Type)
}

// LogValue implements slog.LogValuer.
func (s Secret) LogValue() slog.Value {
	return slog.GroupValue(slog.String("type", s.Type))
}

// Masked returns the value with everything but the last four characters hidden.
func (s Secret) Masked() string {
	runes := []rune(s.Value)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
