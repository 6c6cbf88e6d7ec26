package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/Iron-Ham/smali2java/internal/cache"
	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the decompiled output tree",
	Long: `Inspect or reset the decompiled output tree.

Decompiled files are never invalidated automatically; 'cache clear' removes
all of them. Later decompiles recreate the tree as needed.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every decompiled file",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decompiled classes",
	Args:  cobra.NoArgs,
	RunE:  runCacheList,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the output tree location",
	Args:  cobra.NoArgs,
	RunE:  runCachePath,
}

var cacheListJSON bool

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cachePathCmd)

	cacheListCmd.Flags().BoolVar(&cacheListJSON, "json", false, "Print entries as JSON")
}

func loadStore() (*cache.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cache.NewStore(nil, cfg.ResolveCacheDir()), nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", store.Root(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared decompiled output in %s\n", store.Root())
	return nil
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	entries, err := store.Entries()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if cacheListJSON {
		if entries == nil {
			entries = []cache.Entry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No decompiled classes.")
		return nil
	}

	p := newPainter(out)
	for _, e := range entries {
		name := e.ClassName.Dotted()
		fmt.Fprintf(out, "%s  %s\n", p.paint(keyStyle, name), p.paint(dimStyle, p.fitPath(e.RealPath, len(name)+2)))
	}

	stats, err := store.Stats()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d classes, %d bytes\n", stats.Entries, stats.TotalBytes)
	return nil
}

func runCachePath(cmd *cobra.Command, args []string) error {
	store, err := loadStore()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Root())
	return nil
}
