package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/patrick-jessen/enginectl/internal/cli"
)

// createStatusCommand creates the status command.
func createStatusCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:       "status [group]",
		Short:     "Show engine settings",
		Long:      "Read every setting of a group, or of all groups, from the engine",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"window", "texture", "renderer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			group := ""
			if len(args) == 1 {
				group = args[0]
			}
			return withApp(cmd, base, func(ctx context.Context, app *cli.App) error {
				return app.Status(ctx, group)
			})
		},
	}
}
