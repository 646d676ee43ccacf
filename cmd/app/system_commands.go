package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/helpdesk/cmd/app/commands"
	"github.com/allisson/helpdesk/internal/app"
	"github.com/allisson/helpdesk/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "worker",
			Usage: "Process security events and sweep expired sessions",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.StartWorker(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "seal-secret",
			Usage: "Generate a random token secret and print its KMS ciphertext",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "KMS key URI (e.g., awskms://alias/helpdesk, base64key://...)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunSealSecret(
					ctx,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
				)
			},
		},
	}
}
