package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/patrick-jessen/enginectl/internal/cli"
)

func createGetCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Show one engine setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, base, func(ctx context.Context, app *cli.App) error {
				return app.Get(ctx, args[0])
			})
		},
	}
}

func createSetCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key>=<option>...",
		Short: "Change engine settings",
		Long: "Change one or more settings. Settings that need an explicit apply " +
			"are staged and applied per group once all values are set.",
		Example: `  enginectl set window.vsync=Enabled
  enginectl set "window.fullScreen=Full screen" window.size=1366x768`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, base, func(ctx context.Context, app *cli.App) error {
				return app.Set(ctx, args)
			})
		},
	}
}

func createOptionsCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "options <key>",
		Short: "List the options of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, base, func(_ context.Context, app *cli.App) error {
				return app.Options(args[0])
			})
		},
	}
}

func createPanelCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive settings panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, base, func(ctx context.Context, app *cli.App) error {
				return app.Panel(ctx)
			})
		},
	}
}

func createHistoryCommand(base cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent writes to the engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			n, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			return withApp(cmd, base, func(ctx context.Context, app *cli.App) error {
				return app.History(ctx, n)
			})
		},
	}
	cmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
	return cmd
}
