package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Iron-Ham/smali2java/internal/watch"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Re-decompile smali files when they change",
	Long: `Watch directories and decompile every matching smali file that is
created or written, once writes have settled for watch.debounce_ms.

Press Ctrl+C to stop.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchInclude string
	watchInitial bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("backend", "", "Decompiler backend (default: decompiler.backend)")
	watchCmd.Flags().StringVar(&watchInclude, "include", "", "Glob for watched files (default: watch.include)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "Decompile every matching file once before watching")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	backend, err := a.backend(cmd)
	if err != nil {
		return err
	}

	include := a.cfg.Watch.Include
	if watchInclude != "" {
		include = watchInclude
	}
	matcher, err := watch.NewMatcher(include)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	p := newPainter(out)
	handle := func(ctx context.Context, path string) {
		printResult(out, p, decompileOne(ctx, backend, path))
	}

	if watchInitial {
		inputs, err := expandInputs(afero.NewOsFs(), args, matcher)
		if err != nil {
			return err
		}
		for _, r := range decompileAll(ctx, backend, inputs, a.cfg.Decompiler.Jobs) {
			printResult(out, p, r)
		}
	}

	w, err := watch.New(args, matcher, a.cfg.Watch.Debounce(), handle, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("watch started", "roots", w.Roots(), "include", include, "backend", string(backend.Name()))
	fmt.Fprintf(out, "Watching %d director%s for %s (Ctrl+C to stop)\n", len(w.Roots()), plural(len(w.Roots()), "y", "ies"), include)
	return w.Run(ctx)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
