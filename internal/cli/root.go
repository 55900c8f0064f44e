// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package cli implements lensctl, the operator command line for Lensfolio.

It shares configuration and infrastructure wiring with the API server, so the
same environment (or .env file) drives both. Commands print YAML by default and
JSON with --output json.

Commands:

  - migrate up | version
  - catalog show <photographer-id> | category <photographer-id> <category>
  - photographers list [--view best|grouped]
*/
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/taibuivan/lensfolio/internal/app"
	"github.com/taibuivan/lensfolio/internal/platform/config"
)

// # Global Options

type globalOptions struct {
	output  string
	verbose bool
}

// NewRootCmd assembles the lensctl command tree.
func NewRootCmd() *cobra.Command {
	options := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "lensctl",
		Short: "Operator tooling for the Lensfolio photographer catalog",
		Long: `lensctl inspects and maintains a Lensfolio deployment.

It reads the same environment variables as the API server (a .env file in the
working directory is loaded when present) and talks to the configured storage
driver directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(outputFormats, options.output) {
				return fmt.Errorf("unknown output format %q (expected yaml or json)", options.output)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&options.output, "output", "o", formatYAML, "output format: yaml or json")
	cmd.PersistentFlags().BoolVarP(&options.verbose, "verbose", "v", false, "log infrastructure events to stderr")

	cmd.AddCommand(newMigrateCmd(options))
	cmd.AddCommand(newCatalogCmd(options))
	cmd.AddCommand(newPhotographersCmd(options))

	return cmd
}

// # Infrastructure

// open loads configuration and connects the resources a command needs.
//
// The caller owns the returned infrastructure and must Close it.
func (options *globalOptions) open(cmd *cobra.Command, resources app.Options) (*app.Infrastructure, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	infra, err := app.Open(cmd.Context(), cfg, options.logger(cmd.ErrOrStderr()), resources)
	if err != nil {
		return nil, fmt.Errorf("open_infrastructure_failed: %w", err)
	}
	return infra, nil
}

func (options *globalOptions) logger(writer io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if options.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{Level: level}))
}

// print renders value to the command's stdout in the selected format.
func (options *globalOptions) print(cmd *cobra.Command, value any) error {
	return render(cmd.OutOrStdout(), options.output, value)
}
