// Copyright (c) 2026 Lensfolio. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taibuivan/lensfolio/internal/app"
	"github.com/taibuivan/lensfolio/internal/catalog"
)

// withCatalog opens read-only infrastructure and hands a query service to run.
//
// No file store is opened, so the service never touches stored images.
func (options *globalOptions) withCatalog(cmd *cobra.Command, run func(service *catalog.Service) (any, error)) error {
	infra, err := options.open(cmd, app.Options{})
	if err != nil {
		return err
	}
	defer infra.Close()

	service := catalog.NewService(infra.Catalogs, infra.Users, nil, infra.Logger)
	defer service.Wait()

	result, err := run(service)
	if err != nil {
		return err
	}
	return options.print(cmd, result)
}

func newCatalogCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect photographer catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <photographer-id>",
		Short: "Print a photographer profile with every image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return options.withCatalog(cmd, func(service *catalog.Service) (any, error) {
				return service.GetCatalog(cmd.Context(), args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "category <photographer-id> <category>",
		Short: "Print the images filed under one category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return options.withCatalog(cmd, func(service *catalog.Service) (any, error) {
				return service.GetImagesByCategory(cmd.Context(), args[0], args[1])
			})
		},
	})

	return cmd
}

func newPhotographersCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photographers",
		Short: "Inspect the photographer directory",
	}

	var view string
	list := &cobra.Command{
		Use:   "list",
		Short: "List every photographer with best images or grouped categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, ok := catalog.ParseViewMode(view)
			if !ok {
				return fmt.Errorf("unknown view %q (expected best or grouped)", view)
			}
			return options.withCatalog(cmd, func(service *catalog.Service) (any, error) {
				return service.ListAllPhotographers(cmd.Context(), mode)
			})
		},
	}
	list.Flags().StringVar(&view, "view", string(catalog.ViewBest), "listing view: best or grouped")

	cmd.AddCommand(list)
	return cmd
}
