// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// tvinputd hosts TV input sessions and exposes the admin surface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ManuGH/tvinput/internal/daemon"
	"github.com/ManuGH/tvinput/internal/log"
	"github.com/ManuGH/tvinput/internal/version"
)

// configPath is shared by every subcommand.
var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tvinputd",
		Short:         "TV input session service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (YAML)")

	root.AddCommand(newRunCmd(), newConfigCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the session service until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Configure logger with safe defaults until config is loaded
			log.Configure(log.Config{Level: "info", Service: "tvinputd", Version: version.Version})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := daemon.Bootstrap(ctx, configPath, version.Version)
			if err != nil {
				logger := log.WithComponent("daemon")
				logger.Error().
					Err(err).
					Str(log.FieldEvent, "startup.failed").
					Str("config_path", configPath).
					Msg("failed to start")
				return err
			}
			return app.Run(ctx)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
