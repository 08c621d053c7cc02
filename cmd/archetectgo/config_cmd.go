package main

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the merged configuration as TOML (defaults, global, project, flags)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the configuration and cache directories in use",
	Args:  cobra.NoArgs,
	RunE:  runConfigPaths,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configPathsCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	out, err := toml.Marshal(c.Configuration)
	if err != nil {
		return fmt.Errorf("marshaling configuration: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigPaths(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "config:   %s\n", c.Layout.EtcDir)
	fmt.Fprintf(cmd.OutOrStdout(), "config.d: %s\n", c.Layout.EtcDDir)
	fmt.Fprintf(cmd.OutOrStdout(), "cache:    %s\n", c.Layout.CacheDir)
	return nil
}
