package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// RunSaveSecret encrypts and stores one API key for userID. When value is empty
// the key is read from io without echo.
func RunSaveSecret(
	ctx context.Context,
	useCase vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	userID string,
	keyType string,
	value string,
	format string,
	io IOTuple,
) error {
	if value == "" {
		var err error
		value, err = newPrompter(io).askHidden(fmt.Sprintf("Enter %s key: ", keyType))
		if err != nil {
			return err
		}
	}

	result, err := useCase.Save(ctx, userID, vaultDomain.Secret{Type: keyType, Value: value})
	if err != nil {
		return fmt.Errorf("failed to save secret: %w", err)
	}

	if format == "json" {
		if err := writeJSON(io.Writer, map[string]any{
			"id":         result.RecordID.String(),
			"index":      result.Index,
			"revision":   result.Revision,
			"created_at": result.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintln(io.Writer, "Secret saved successfully!")
		_, _ = fmt.Fprintf(io.Writer, "Index: %d\n", result.Index)
		_, _ = fmt.Fprintf(io.Writer, "ID: %s\n", result.RecordID)
		_, _ = fmt.Fprintf(io.Writer, "Revision: %d\n", result.Revision)
	}

	logger.Info("secret saved",
		slog.String("user_id", userID),
		slog.Int("index", result.Index),
	)
	return nil
}
