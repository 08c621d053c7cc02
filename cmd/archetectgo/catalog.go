package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/madstone-tech/archetect-go/internal/core/usecases"
)

var catalogCmd = &cobra.Command{
	Use:     "catalog <location>",
	Aliases: []string{"cat"},
	Short:   "Select and render an archetype from a catalog",
	Long: `Catalog resolves a catalog bundle and walks its entry tree with a
sequence of interactive selections — descending through groups, re-loading
nested catalogs, and stopping at the chosen archetype — before rendering
it exactly as "render" would.`,
	GroupID: "render",
	Args:    cobra.ExactArgs(1),
	Example: `  archetectgo catalog ./my-catalog --destination ./my-service
  archetectgo catalog git::https://github.com/org/catalog.git`,
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	registerRenderFlags(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	opts, err := renderOptionsFromFlags(cmd)
	if err != nil {
		return err
	}

	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	return withTerminal(cmd.Context(), func(ctx context.Context, driver usecases.Driver) error {
		return c.RenderCatalog(ctx, args[0], driver, opts)
	})
}
