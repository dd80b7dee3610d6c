package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// RunDeleteSecret removes the record at index. A non-zero revision makes the
// delete fail when the collection changed since it was listed.
func RunDeleteSecret(
	ctx context.Context,
	useCase vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	userID string,
	index int,
	revision uint64,
	writer io.Writer,
) error {
	var err error
	if revision == vaultDomain.AnyRevision {
		err = useCase.DeleteAt(ctx, userID, index)
	} else {
		err = useCase.DeleteAtRevision(ctx, userID, index, revision)
	}
	if err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "Secret at index %d deleted.\n", index)
	logger.Info("secret deleted", slog.String("user_id", userID), slog.Int("index", index))
	return nil
}

// RunDeleteAllSecrets removes every record of userID after two confirmations,
// unless assumeYes is set.
func RunDeleteAllSecrets(
	ctx context.Context,
	useCase vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	userID string,
	assumeYes bool,
	io IOTuple,
) error {
	if !assumeYes {
		p := newPrompter(io)
		for _, question := range []string{
			fmt.Sprintf("Delete ALL secrets of %q?", userID),
			"This cannot be undone. Are you sure?",
		} {
			ok, err := p.confirm(question)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(io.Writer, "Aborted.")
				return nil
			}
		}
	}

	if err := useCase.DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete secrets: %w", err)
	}

	_, _ = fmt.Fprintln(io.Writer, "All secrets deleted.")
	logger.Info("all secrets deleted", slog.String("user_id", userID))
	return nil
}
