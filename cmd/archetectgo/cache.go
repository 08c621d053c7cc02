package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/madstone-tech/archetect-go/internal/adapters/source"
)

var cacheCmd = &cobra.Command{
	Use:     "cache",
	Short:   "Inspect and manage the source cache",
	GroupID: "cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached source entries",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [location]",
	Short: "Clear a cached source entry, or the entire cache when no location is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cachePullCmd = &cobra.Command{
	Use:   "pull <location>",
	Short: "Force a fresh fetch of a source, bypassing the cache",
	Args:  cobra.ExactArgs(1),
	RunE:  runCachePull,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd, cachePullCmd)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	entries, err := os.ReadDir(c.Layout.CacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "cache is empty")
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "cache is empty")
		return nil
	}

	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Name(), info.ModTime().Format(time.RFC3339))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		if err := os.RemoveAll(c.Layout.CacheDir); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
		return nil
	}

	resolver, ok := c.Resolver.(*source.Resolver)
	if !ok {
		return fmt.Errorf("cache clear by location requires the default source resolver")
	}
	path := resolver.CachePath(args[0])
	if path == "" {
		return fmt.Errorf("%q has no cache entry (local sources are never cached)", args[0])
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clearing %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared cache entry for %q\n", args[0])
	return nil
}

func runCachePull(cmd *cobra.Command, args []string) error {
	c, err := buildCoordinator()
	if err != nil {
		return err
	}

	src, err := c.Resolver.Resolve(cmd.Context(), args[0], true)
	if err != nil {
		return fmt.Errorf("pulling %q: %w", args[0], err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pulled %q into %s\n", args[0], filepath.Clean(src.LocalPath))
	return nil
}
