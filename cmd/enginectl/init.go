package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patrick-jessen/enginectl/internal/cli"
)

// createInitCommand creates the init command.
func createInitCommand(base cli.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			if err := cli.InitConfig(base.Fs, configPath); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
			return nil
		},
	}
}
