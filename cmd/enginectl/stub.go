package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/patrick-jessen/enginectl/internal/cli"
	"github.com/patrick-jessen/enginectl/internal/constants"
	"github.com/patrick-jessen/enginectl/internal/logging"
)

// createStubCommand creates the stub command, which serves a stand-in engine.
func createStubCommand(base cli.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Serve a stand-in engine settings endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := cmd.Flags().GetString("addr")
			if err != nil {
				return fmt.Errorf("failed to get addr flag: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			writer := base.LogWriter
			if writer == nil {
				writer = zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}
			}
			ctx, err = logging.New(ctx, base.Fs, logging.Config{
				Writer: writer,
				Engine: "stub",
				Level:  "debug",
			})
			if err != nil {
				return err
			}
			return cli.Stub(ctx, addr)
		},
	}
	cmd.Flags().String("addr", constants.DefaultStubAddr, "Listen address")
	return cmd
}
