package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Iron-Ham/smali2java/internal/decompiler"
	"github.com/Iron-Ham/smali2java/internal/errors"
	"github.com/Iron-Ham/smali2java/internal/watch"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var decompileCmd = &cobra.Command{
	Use:   "decompile <file|dir>...",
	Short: "Decompile smali files to Java",
	Long: `Decompile one or more single-class smali files.

Directories are searched for files matching watch.include (default "**.smali").
Each input prints the virtual id of its Java file, or the error and the
decompiler's output. The command fails if any input failed.

Examples:
  smali2java decompile smali/com/example/Foo.smali
  smali2java decompile --jobs 8 out/smali
  smali2java decompile --json smali_classes2 > results.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDecompile,
}

var (
	decompileJobs       int
	decompileJSON       bool
	decompileInclude    string
	decompileToolOutput bool
)

func init() {
	rootCmd.AddCommand(decompileCmd)

	decompileCmd.Flags().String("backend", "", "Decompiler backend (default: decompiler.backend)")
	decompileCmd.Flags().IntVarP(&decompileJobs, "jobs", "j", 0, "Inputs decompiled in parallel (default: decompiler.jobs)")
	decompileCmd.Flags().BoolVar(&decompileJSON, "json", false, "Print results as JSON")
	decompileCmd.Flags().StringVar(&decompileInclude, "include", "", "Glob for files inside directories (default: watch.include)")
	decompileCmd.Flags().BoolVar(&decompileToolOutput, "tool-output", false, "Echo each decompiler command line and its output to stderr")
}

// decompileResult is the outcome for one input.
type decompileResult struct {
	Input  string `json:"input"`
	ID     string `json:"id,omitempty"`
	Title  string `json:"title,omitempty"`
	Path   string `json:"path,omitempty"`
	Kind   string `json:"error_kind,omitempty"`
	Error  string `json:"error,omitempty"`
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`

	index int
}

func (r decompileResult) failed() bool { return r.Error != "" }

func runDecompile(cmd *cobra.Command, args []string) error {
	var extra []decompiler.Option
	if decompileToolOutput {
		extra = append(extra, decompiler.WithOutput(cmd.ErrOrStderr()))
	}
	a, err := newApp(cmd, extra...)
	if err != nil {
		return err
	}
	defer a.close()

	backend, err := a.backend(cmd)
	if err != nil {
		return err
	}

	jobs := a.cfg.Decompiler.Jobs
	if cmd.Flags().Changed("jobs") {
		if decompileJobs < 1 {
			return fmt.Errorf("--jobs must be at least 1")
		}
		jobs = decompileJobs
	}

	include := a.cfg.Watch.Include
	if decompileInclude != "" {
		include = decompileInclude
	}
	matcher, err := watch.NewMatcher(include)
	if err != nil {
		return err
	}

	inputs, err := expandInputs(afero.NewOsFs(), args, matcher)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no files matching %q found", include)
	}

	a.logger.Info("decompile batch started", "backend", string(backend.Name()), "inputs", len(inputs), "jobs", jobs)
	results := decompileAll(cmd.Context(), backend, inputs, jobs)

	out := cmd.OutOrStdout()
	if decompileJSON {
		if err := writeResultsJSON(out, results); err != nil {
			return err
		}
	} else {
		p := newPainter(out)
		for _, r := range results {
			printResult(out, p, r)
		}
	}

	failed := 0
	for _, r := range results {
		if r.failed() {
			failed++
		}
	}
	a.logger.Info("decompile batch finished", "inputs", len(results), "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(results))
	}
	return nil
}

// expandInputs replaces directories by the files matcher selects in them.
// Explicit files are kept even if they do not match. Duplicates are dropped.
func expandInputs(fs afero.Fs, args []string, matcher *watch.Matcher) ([]string, error) {
	seen := make(map[string]bool)
	var inputs []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			inputs = append(inputs, p)
		}
	}

	for _, arg := range args {
		info, err := fs.Stat(arg)
		if err != nil {
			if os.IsNotExist(err) {
				// Let the backend report it as invalid input
				add(arg)
				continue
			}
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		files, err := matcher.Expand(fs, arg)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return inputs, nil
}

// decompileAll runs at most jobs decompiles at once and returns results in
// input order.
func decompileAll(ctx context.Context, backend decompiler.Backend, inputs []string, jobs int) []decompileResult {
	p := pool.NewWithResults[decompileResult]().WithMaxGoroutines(jobs)
	for i, input := range inputs {
		i, input := i, input
		p.Go(func() decompileResult {
			r := decompileOne(ctx, backend, input)
			r.index = i
			return r
		})
	}
	results := p.Wait()
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })
	return results
}

func decompileOne(ctx context.Context, backend decompiler.Backend, input string) decompileResult {
	r := decompileResult{Input: input}
	id, err := backend.Decompile(ctx, input)
	if err != nil {
		r.Kind = errorKind(err)
		r.Error = err.Error()
		var toolErr *errors.ToolExecutionError
		if errors.As(err, &toolErr) {
			r.Stdout = toolErr.Stdout
			r.Stderr = toolErr.Stderr
		}
		return r
	}
	r.ID = id.String()
	r.Title = id.Title()
	r.Path = id.RealPath
	return r
}

// errorKind names the failure class of a decompile error for JSON output.
func errorKind(err error) string {
	var cfgErr *errors.ConfigurationError
	switch {
	case errors.Is(err, errors.ErrCanceled):
		return "canceled"
	case errors.Is(err, errors.ErrTimeout):
		return "timeout"
	case errors.Is(err, errors.ErrInvalidInput):
		return "invalid_input"
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.Is(err, errors.ErrToolFailed):
		return "tool"
	case errors.Is(err, errors.ErrOutputMissing):
		return "output_missing"
	case errors.Is(err, errors.ErrExecutionFailed):
		return "execution"
	default:
		return "error"
	}
}

func printResult(w io.Writer, p painter, r decompileResult) {
	if !r.failed() {
		fmt.Fprintf(w, "%s %s %s\n", p.paint(okStyle, "ok"), r.Input, p.paint(dimStyle, "-> "+r.ID))
		return
	}
	fmt.Fprintf(w, "%s %s: %s\n", p.paint(failStyle, "FAIL"), r.Input, r.Error)
	for _, block := range []string{r.Stdout, r.Stderr} {
		block = strings.TrimRight(block, "\n")
		if block == "" {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			fmt.Fprintf(w, "    %s\n", p.paint(dimStyle, p.fit(line, 4)))
		}
	}
}

func writeResultsJSON(w io.Writer, results []decompileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []decompileResult{}
	}
	return enc.Encode(results)
}
