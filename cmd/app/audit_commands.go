package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/parsivoice/pasban/cmd/app/commands"
	"github.com/parsivoice/pasban/internal/app"
	"github.com/parsivoice/pasban/internal/config"
)

func getAuditCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "verify-audit-archive",
			Usage: "Verify the signatures of archived security events",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of events to verify per batch",
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

				auditUseCase, err := container.AuditUseCase()
				if err != nil {
					return err
				}

				return commands.RunVerifyAuditArchive(
					ctx,
					auditUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					int(cmd.Int("batch-size")),
					cmd.String("format"),
				)
			},
		},
	}
}
