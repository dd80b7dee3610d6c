package testutil

import (
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
)

// FastKDFParams returns Argon2id parameters cheap enough for unit tests.
func FastKDFParams() cryptoDomain.KDFParams {
	return cryptoDomain.KDFParams{
		Algorithm: cryptoDomain.Argon2id,
		Time:      1,
		MemoryKiB: 64,
		Threads:   1,
	}
}

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
