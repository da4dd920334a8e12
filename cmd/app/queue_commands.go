package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/rewardsync/cmd/app/commands"
	"github.com/allisson/rewardsync/internal/app"
	"github.com/allisson/rewardsync/internal/config"
)

// withContainer builds a container from the environment for one command and
// shuts it down afterwards.
func withContainer(run func(ctx context.Context, cmd *cli.Command, c *app.Container) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg := config.Load()
		if err := cfg.Validate(); err != nil {
			return err
		}
		container := app.NewContainer(cfg)
		defer func() { _ = container.Shutdown(ctx) }()
		return run(ctx, cmd, container)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "text", Usage: "Output format: 'text' or 'json'"}
}

func userFlag(usage string) cli.Flag {
	return &cli.StringFlag{Name: "user", Aliases: []string{"u"}, Required: true, Usage: usage}
}

func getQueueCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "process-queue",
			Usage: "Submit pending mutations of a user once and print the outcomes",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Value: "all", Usage: "Queue to process: 'answer', 'upload' or 'all'"},
				userFlag("User whose pending mutations are submitted; mutations of other users are purged"),
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				scheduler, err := c.QueueScheduler(ctx)
				if err != nil {
					return err
				}
				return commands.RunProcessQueue(
					ctx,
					scheduler,
					c.IdentitySession(),
					c.NotificationFeed(),
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kind"),
					cmd.String("user"),
					cmd.String("format"),
				)
			}),
		},
		{
			Name:  "list-queue",
			Usage: "List pending mutations of every user",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "kind", Aliases: []string{"k"}, Required: true, Usage: "Queue to list: 'answer' or 'upload'"},
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				store, err := c.QueueService(ctx)
				if err != nil {
					return err
				}
				return commands.RunListQueue(ctx, store, c.Logger(), commands.DefaultIO().Writer,
					cmd.String("kind"), cmd.String("format"))
			}),
		},
		{
			Name:  "purge-queue",
			Usage: "Delete every pending mutation created by a user",
			Flags: []cli.Flag{
				userFlag("Owner whose pending mutations are deleted"),
				formatFlag(),
			},
			Action: withContainer(func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				store, err := c.QueueService(ctx)
				if err != nil {
					return err
				}
				return commands.RunPurgeQueue(ctx, store, c.Logger(), commands.DefaultIO().Writer,
					cmd.String("user"), cmd.String("format"))
			}),
		},
	}
}
