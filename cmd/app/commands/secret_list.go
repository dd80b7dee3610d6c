package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	cryptoDomain "github.com/allisson/keyvault/internal/crypto/domain"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

// RunListSecrets decrypts and prints the API keys of userID. Values are masked
// unless reveal is set. Records that fail to decrypt are reported by index.
func RunListSecrets(
	ctx context.Context,
	useCase vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	userID string,
	reveal bool,
	format string,
	writer io.Writer,
) error {
	listing, err := useCase.ListAll(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}

	display := func(value string) string {
		if reveal {
			return value
		}
		return maskValue(value)
	}

	if format == "json" {
		if err := writeListJSON(writer, listing, display); err != nil {
			return err
		}
	} else {
		writeListText(writer, listing, display)
	}

	logger.Debug("secrets listed",
		slog.String("user_id", userID),
		slog.Int("count", len(listing.Entries)),
		slog.Int("failures", len(listing.Failures)),
	)
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, cryptoDomain.ErrAuthenticationFailed):
		return "decryption failed"
	case errors.Is(err, vaultDomain.ErrCorruptRecord):
		return "corrupt record"
	default:
		return "unreadable record"
	}
}

func writeListText(writer io.Writer, listing *vaultDomain.Listing, display func(string) string) {
	if len(listing.Entries) == 0 && len(listing.Failures) == 0 {
		_, _ = fmt.Fprintln(writer, "No secrets stored.")
		return
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "INDEX\tTYPE\tVALUE\tCREATED AT")
	for _, entry := range listing.Entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n",
			entry.Index,
			entry.Secret.Type,
			display(entry.Secret.Value),
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	_ = tw.Flush()

	for _, failure := range listing.Failures {
		_, _ = fmt.Fprintf(writer, "Index %d: %s\n", failure.Index, failureReason(failure.Err))
	}
	_, _ = fmt.Fprintf(writer, "Revision: %d\n", listing.Revision)
}

func writeListJSON(writer io.Writer, listing *vaultDomain.Listing, display func(string) string) error {
	type entryJSON struct {
		Index int    `json:"index"`
		ID    string `json:"id"`
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	type failureJSON struct {
		Index  int    `json:"index"`
		ID     string `json:"id"`
		Reason string `json:"reason"`
	}

	entries := make([]entryJSON, 0, len(listing.Entries))
	for _, entry := range listing.Entries {
		entries = append(entries, entryJSON{
			Index: entry.Index,
			ID:    entry.RecordID.String(),
			Type:  entry.Secret.Type,
			Value: display(entry.Secret.Value),
		})
	}

	failures := make([]failureJSON, 0, len(listing.Failures))
	for _, failure := range listing.Failures {
		failures = append(failures, failureJSON{
			Index:  failure.Index,
			ID:     failure.RecordID.String(),
			Reason: failureReason(failure.Err),
		})
	}

	return writeJSON(writer, map[string]any{
		"data":     entries,
		"failures": failures,
		"revision": listing.Revision,
	})
}
