// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"github.com/spf13/cobra"

	"github.com/taibuivan/lensfolio/internal/app"
)

// migrationReport is what both migrate subcommands print.
type migrationReport struct {
	Driver  string `json:"driver" yaml:"driver"`
	Version uint   `json:"version" yaml:"version"`
	Dirty   bool   `json:"dirty" yaml:"dirty"`
}

func newMigrateCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return options.reportMigration(cmd, true)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return options.reportMigration(cmd, false)
		},
	})

	return cmd
}

func (options *globalOptions) reportMigration(cmd *cobra.Command, apply bool) error {
	infra, err := options.open(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer infra.Close()

	if apply {
		if err := infra.Migrate(); err != nil {
			return err
		}
	}

	status, err := infra.MigrationStatus()
	if err != nil {
		return err
	}

	return options.print(cmd, migrationReport{
		Driver:  infra.Config.StorageDriver,
		Version: status.Version,
		Dirty:   status.Dirty,
	})
}
