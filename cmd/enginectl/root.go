package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/patrick-jessen/enginectl/internal/cli"
	"github.com/patrick-jessen/enginectl/internal/storage"
)

// createNewRootCommand creates the main root command that shows help by default.
func createNewRootCommand() *cobra.Command {
	return newRootCommand(cli.Options{Fs: afero.NewOsFs()})
}

func newRootCommand(base cli.Options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "enginectl",
		Short:         "Inspect and change graphics engine settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	defaultConfig := storage.New(base.Fs).GetConfigPath()
	rootCmd.PersistentFlags().StringP("config", "c", defaultConfig, "Path to config file")

	rootCmd.AddCommand(
		createStatusCommand(base),
		createGetCommand(base),
		createSetCommand(base),
		createOptionsCommand(base),
		createPanelCommand(base),
		createHistoryCommand(base),
		createStubCommand(base),
		createInitCommand(base),
	)

	return rootCmd
}

// openApp reads the config flag and wires an app writing to the command's output.
func openApp(cmd *cobra.Command, base cli.Options) (context.Context, *cli.App, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	opts := base
	opts.ConfigPath = configPath
	opts.Out = cmd.OutOrStdout()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return cli.Open(ctx, opts)
}

// withApp runs fn with an app and closes it afterwards.
func withApp(cmd *cobra.Command, base cli.Options, fn func(context.Context, *cli.App) error) error {
	ctx, app, err := openApp(cmd, base)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(ctx, app)
}
