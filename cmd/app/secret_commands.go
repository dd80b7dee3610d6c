package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/keyvault/cmd/app/commands"
	"github.com/allisson/keyvault/internal/app"
	"github.com/allisson/keyvault/internal/config"
	vaultDomain "github.com/allisson/keyvault/internal/vault/domain"
	vaultUseCase "github.com/allisson/keyvault/internal/vault/usecase"
)

var (
	userFlag = &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Required: true,
		Usage:    "User identifier owning the collection",
	}
	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
)

// withVault loads the configuration, builds the vault use case and hands it to fn.
func withVault(
	ctx context.Context,
	fn func(useCase vaultUseCase.VaultUseCase, container *app.Container) error,
) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	container := app.NewContainer(cfg)
	defer func() { _ = container.Shutdown(ctx) }()

	useCase, err := container.VaultUseCase()
	if err != nil {
		return err
	}
	return fn(useCase, container)
}

func getSecretCommands() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Manage the API keys of a user",
		Commands: []*cli.Command{
			{
				Name:  "save",
				Usage: "Encrypt and store a new API key",
				Flags: []cli.Flag{
					userFlag,
					&cli.StringFlag{
						Name:     "type",
						Aliases:  []string{"t"},
						Required: true,
						Usage:    "Key type label (e.g., OpenAI, Printify)",
					},
					&cli.StringFlag{
						Name:  "value",
						Usage: "Key value (omit to be prompted with hidden input)",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withVault(ctx, func(useCase vaultUseCase.VaultUseCase, container *app.Container) error {
						return commands.RunSaveSecret(
							ctx,
							useCase,
							container.Logger(),
							cmd.String("user"),
							cmd.String("type"),
							cmd.String("value"),
							cmd.String("format"),
							commands.DefaultIO(),
						)
					})
				},
			},
			{
				Name:  "list",
				Usage: "List and decrypt the API keys of a user",
				Flags: []cli.Flag{
					userFlag,
					&cli.BoolFlag{
						Name:  "reveal",
						Usage: "Print key values instead of masking them",
					},
					formatFlag,
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withVault(ctx, func(useCase vaultUseCase.VaultUseCase, container *app.Container) error {
						return commands.RunListSecrets(
							ctx,
							useCase,
							container.Logger(),
							cmd.String("user"),
							cmd.Bool("reveal"),
							cmd.String("format"),
							commands.DefaultIO().Writer,
						)
					})
				},
			},
			{
				Name:  "delete",
				Usage: "Delete the API key at a position",
				Flags: []cli.Flag{
					userFlag,
					&cli.IntFlag{
						Name:     "index",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Zero-based position as printed by 'secret list'",
					},
					&cli.Uint64Flag{
						Name:  "revision",
						Value: vaultDomain.AnyRevision,
						Usage: "Revision the index was read at; the delete fails if the collection changed since",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withVault(ctx, func(useCase vaultUseCase.VaultUseCase, container *app.Container) error {
						return commands.RunDeleteSecret(
							ctx,
							useCase,
							container.Logger(),
							cmd.String("user"),
							int(cmd.Int("index")),
							cmd.Uint64("revision"),
							commands.DefaultIO().Writer,
						)
					})
				},
			},
			{
				Name:  "delete-all",
				Usage: "Delete every API key of a user",
				Flags: []cli.Flag{
					userFlag,
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Skip both confirmation prompts",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withVault(ctx, func(useCase vaultUseCase.VaultUseCase, container *app.Container) error {
						return commands.RunDeleteAllSecrets(
							ctx,
							useCase,
							container.Logger(),
							cmd.String("user"),
							cmd.Bool("yes"),
							commands.DefaultIO(),
						)
					})
				},
			},
		},
	}
}
