package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/rewardsync/cmd/app/commands"
	"github.com/allisson/rewardsync/internal/app"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the local API, the queue scheduler and the connectivity prober",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Apply the local store migrations for DB_DRIVER",
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				db, err := c.DB()
				if err != nil {
					return err
				}
				return commands.RunMigrations(c.Logger(), db, c.Config().DBDriver)
			}),
		},
	}
}
