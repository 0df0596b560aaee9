package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/parsivoice/pasban/cmd/app/commands"
	"github.com/parsivoice/pasban/internal/app"
	"github.com/parsivoice/pasban/internal/config"
)

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "keygen",
			Usage: "Generate the session token signing keypair",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "force",
					Value: false,
					Usage: "Replace an existing keypair (invalidates outstanding session tokens)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunKeygen(
					container.Logger(),
					commands.DefaultIO().Writer,
					cfg.StateDir,
					cmd.Bool("force"),
				)
			},
		},
	}
}
