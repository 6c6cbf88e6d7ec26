package cmd

import (
	"fmt"
	"io"

	"github.com/Iron-Ham/smali2java/internal/cache"
	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <virtual-id>",
	Short: "Print a decompiled file",
	Long: `Print the Java source a virtual id refers to, as printed by 'decompile'.

Example:
  smali2java show 'smali2java:/com/example/Foo.java?%2Fhome%2Fme%2F.cache%2Fsmali2java%2Fdecompiled%2Fcom%2Fexample%2FFoo.java'`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	rc, err := cache.NewStore(nil, cfg.ResolveCacheDir()).OpenString(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	_, err = io.Copy(cmd.OutOrStdout(), rc)
	return err
}
