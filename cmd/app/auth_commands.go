package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/parsivoice/pasban/cmd/app/commands"
	"github.com/parsivoice/pasban/internal/app"
	authDomain "github.com/parsivoice/pasban/internal/auth/domain"
	authService "github.com/parsivoice/pasban/internal/auth/service"
	"github.com/parsivoice/pasban/internal/config"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-credential",
			Usage: "Create a new credential and append it to the credential file",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "id",
					Aliases:  []string{"i"},
					Required: true,
					Usage:    "Unique credential ID (e.g., assistant-ui)",
				},
				&cli.StringFlag{
					Name:    "tier",
					Aliases: []string{"t"},
					Value:   "user",
					Usage:   "Credential tier: admin, user, local, or demo",
				},
				&cli.StringFlag{
					Name:    "permissions",
					Aliases: []string{"p"},
					Usage:   "Comma-separated permission overrides (omit for tier defaults)",
				},
				&cli.StringFlag{
					Name:  "passphrase",
					Usage: "Store an argon2id passphrase hash instead of a generated API key",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				// Key generation must work before the credential file exists,
				// so the service is built over an empty table here instead of
				// being taken from the container.
				emptyTable := authDomain.NewCredentialTable(
					nil,
					authDomain.DefaultPermissions(),
					authDomain.DefaultProfiles(),
				)
				credentialService := authService.NewCredentialService(emptyTable, cfg.MinCredentialLength)

				return commands.RunCreateCredential(
					credentialService,
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.CredentialFile,
					cmd.String("id"),
					cmd.String("tier"),
					cmd.String("permissions"),
					cmd.String("passphrase"),
					cmd.String("format"),
				)
			},
		},
	}
}
