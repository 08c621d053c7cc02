// Package main implements the archetect-go CLI: a Cobra command tree over
// the render/catalog/cache/check/server/connect operations, wired through
// a layered Viper configuration (defaults → global XDG config → project
// config → environment → CLI flags).
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/madstone-tech/archetect-go/internal/adapters/config"
	"github.com/madstone-tech/archetect-go/internal/adapters/logging"
	"github.com/madstone-tech/archetect-go/internal/adapters/manifest"
	"github.com/madstone-tech/archetect-go/internal/adapters/source"
	"github.com/madstone-tech/archetect-go/internal/core/entities"
	"github.com/madstone-tech/archetect-go/internal/coordinator"
)

// Persistent flag values accessible to all subcommands.
var (
	cfgFile     string
	offlineFlag bool
	allowExec   bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "archetectgo",
	Short: "Render code archetypes from reusable, scripted templates",
	Long: `archetectgo renders archetype bundles — directory trees of templates driven
by a small sandboxed script — into a destination project, prompting
interactively for any value the script or its templates need and aren't
already supplied as an answer.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a configuration file (env: ARCHETECT_CONFIG)")
	rootCmd.PersistentFlags().BoolVar(&offlineFlag, "offline", false, "never fetch remote sources, use the cache only")
	rootCmd.PersistentFlags().BoolVar(&allowExec, "allow-exec", false, "allow archetype scripts to run external commands")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: "render", Title: "Rendering"},
		&cobra.Group{ID: "cache", Title: "Cache"},
		&cobra.Group{ID: "remote", Title: "Remote"},
	)
}

// Execute runs the root command; this is main.go's only entry point.
func Execute() error {
	return rootCmd.Execute()
}

func initConfig() error {
	viper.SetEnvPrefix("ARCHETECT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if cfgFile == "" {
		cfgFile = viper.GetString("config")
	}
	return nil
}

// buildCoordinator assembles the process-wide Coordinator from the layered
// configuration and the resolved XDG paths, honoring the --offline and
// --allow-exec flag overrides.
func buildCoordinator() (*coordinator.Coordinator, error) {
	paths := config.NewXDGPathResolver()

	cfgLoader := config.NewLoader(paths)
	cfg, err := cfgLoader.Load(cfgFile, ".")
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	cfg = config.ApplyFlagOverrides(cfg, &offlineFlag, &allowExec)

	layout := entities.Layout{
		EtcDir:   paths.ConfigDir(),
		EtcDDir:  paths.EtcDDir(),
		CacheDir: paths.CacheDir(),
	}
	if err := paths.EnsureDir(layout.CacheDir); err != nil {
		return nil, fmt.Errorf("preparing cache directory: %w", err)
	}

	resolver := source.NewResolver(layout.CacheDir, source.NewGoGitCloner(), cfg.Offline)
	manifests := manifest.NewLoader(coordinator.Version)

	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	logger := logging.New(level)

	return coordinator.New(cfg, layout, resolver, manifests, logger), nil
}
