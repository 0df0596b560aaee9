package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/parsivoice/pasban/cmd/app/commands"
	sandboxService "github.com/parsivoice/pasban/internal/sandbox/service"
)

func getSandboxCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "validate-command",
			Usage:     "Check a command line against the sandbox execution policy",
			ArgsUsage: "COMMAND [ARG...]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				validator := sandboxService.NewCommandValidator(sandboxService.DefaultAllowedExecutables())

				return commands.RunValidateCommand(
					validator,
					commands.DefaultIO().Writer,
					cmd.Args().Slice(),
					cmd.String("format"),
				)
			},
		},
	}
}
