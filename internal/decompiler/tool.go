package decompiler

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/Iron-Ham/smali2java/internal/errors"
	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/Iron-Ham/smali2java/internal/output"
	"github.com/Iron-Ham/smali2java/internal/process"
	"github.com/Iron-Ham/smali2java/internal/smali"
)

// ToolSpec describes how to drive one external decompiler.
type ToolSpec struct {
	Name        BackendName
	DisplayName string
	// OutputFlag precedes the output root on the command line.
	OutputFlag string
	// Extension of the files the tool writes, without the dot.
	Extension string
}

// JadxSpec drives jadx: `jadx <input> -ds <root> <options>`.
var JadxSpec = ToolSpec{
	Name:        BackendJadx,
	DisplayName: "JADX",
	OutputFlag:  "-ds",
	Extension:   "java",
}

// ToolBackend implements Backend for any tool described by a ToolSpec.
// It is safe for concurrent use.
type ToolBackend struct {
	spec ToolSpec
	root string
	opts options

	flight singleflight.Group

	// fingerprints maps a class to the input hash of its last successful
	// run. Only used when reuse is config.ReuseHash.
	fingerprints *lru.Cache[smali.ClassName, string]

	outMu sync.Mutex
}

// NewToolBackend creates a backend writing under outputRoot.
func NewToolBackend(spec ToolSpec, outputRoot string, opts ...Option) *ToolBackend {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newToolBackend(spec, outputRoot, o)
}

func newToolBackend(spec ToolSpec, outputRoot string, o options) *ToolBackend {
	root, err := filepath.Abs(outputRoot)
	if err != nil {
		root = filepath.Clean(outputRoot)
	}

	b := &ToolBackend{
		spec: spec,
		root: root,
		opts: o,
	}
	if o.reuse == config.ReuseHash {
		// lru.New only fails for a non-positive size, which WithReuse rules out.
		b.fingerprints, _ = lru.New[smali.ClassName, string](max(o.fingerprintEntries, 1))
	}
	return b
}

// Name implements Backend.
func (b *ToolBackend) Name() BackendName { return b.spec.Name }

// DisplayName implements Backend.
func (b *ToolBackend) DisplayName() string { return b.spec.DisplayName }

// OutputRoot returns the absolute directory the tool writes into.
func (b *ToolBackend) OutputRoot() string { return b.root }

// Decompile implements Backend.
//
// Configuration is read from the provider on every call. Concurrent calls
// for the same class share a single tool run. If ctx ends first the caller
// gets ErrCanceled while the shared run continues; only the configured
// timeout kills the tool.
func (b *ToolBackend) Decompile(ctx context.Context, inputPath string) (output.VirtualID, error) {
	log := b.opts.logger.WithBackend(string(b.spec.Name)).WithRequest()

	if abs, err := filepath.Abs(inputPath); err == nil {
		inputPath = abs
	}

	class, err := smali.ResolveFile(b.opts.fs, inputPath)
	if err != nil {
		log.Warn("class resolution failed", "input", inputPath, "error", err.Error())
		return output.VirtualID{}, err
	}
	log = log.WithClass(string(class))

	tool := b.opts.provider.ToolConfig(string(b.spec.Name))
	if err := b.checkExecutable(tool.Path); err != nil {
		log.Warn("decompiler not usable", "error", err.Error())
		return output.VirtualID{}, err
	}

	loc, err := output.Locate(b.root, class, b.spec.Extension)
	if err != nil {
		return output.VirtualID{}, errors.NewInvalidInputError("class name is not a valid output path", err).WithPath(inputPath)
	}

	ch := b.flight.DoChan(string(class), func() (any, error) {
		return b.invoke(ctx, log, inputPath, tool, loc)
	})
	// DoChan has registered this caller by the time it returns.
	log.Debug("waiting for decompile")

	select {
	case res := <-ch:
		if res.Shared {
			log.Debug("shared decompile result")
		}
		if res.Err != nil {
			return output.VirtualID{}, res.Err
		}
		return res.Val.(output.VirtualID), nil
	case <-ctx.Done():
		log.Info("caller stopped waiting", "reason", ctx.Err().Error())
		return output.VirtualID{}, fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
	}
}

func (b *ToolBackend) configKey() string {
	return "decompiler." + string(b.spec.Name) + ".path"
}

// checkExecutable fails unless path names an existing regular file.
func (b *ToolBackend) checkExecutable(path string) error {
	name := string(b.spec.Name)
	if path == "" {
		return errors.NewConfigurationError(name,
			fmt.Sprintf("%s executable path is not configured", b.spec.DisplayName),
			errors.ErrNotConfigured).WithKey(b.configKey())
	}

	info, err := b.opts.fs.Stat(path)
	if err != nil {
		return errors.NewConfigurationError(name,
			fmt.Sprintf("%s executable not found", b.spec.DisplayName),
			errors.Join(errors.ErrInvalidExecutable, err)).WithKey(b.configKey()).WithPath(path)
	}
	if !info.Mode().IsRegular() {
		return errors.NewConfigurationError(name,
			fmt.Sprintf("%s executable is not a regular file", b.spec.DisplayName),
			errors.ErrInvalidExecutable).WithKey(b.configKey()).WithPath(path)
	}
	return nil
}

// invoke runs the tool once and classifies the outcome. It runs detached
// from the first caller's cancellation so joiners still get a result.
func (b *ToolBackend) invoke(ctx context.Context, log *logging.Logger, inputPath string, tool config.ToolConfig, loc output.Location) (output.VirtualID, error) {
	runCtx := context.WithoutCancel(ctx)
	if b.opts.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, b.opts.timeout)
		defer cancel()
	}

	var sum string
	if b.fingerprints != nil {
		var err error
		sum, err = b.fingerprint(inputPath, tool)
		if err != nil {
			log.Warn("cannot fingerprint input", "error", err.Error())
		} else if prev, ok := b.fingerprints.Get(loc.ClassName); ok && prev == sum && b.isFile(loc.RealPath) {
			log.Info("input unchanged, reusing output", "output", loc.RealPath)
			return loc.VirtualID, nil
		}
	}

	// A cache reset may have removed the root since the last call.
	if err := b.opts.fs.MkdirAll(b.root, 0o755); err != nil {
		return output.VirtualID{}, errors.NewExecutionError(string(b.spec.Name), tool.Path,
			errors.Wrapf(err, "create output root %s", b.root))
	}

	cmd := process.Command{
		Executable: tool.Path,
		Args:       []string{inputPath, b.spec.OutputFlag, b.root},
		ExtraArgs:  tool.Options,
	}
	line := process.CommandLine(cmd)
	log.Info("decompile started", "input", inputPath, "command", line)

	res, runErr := b.opts.runner.Run(runCtx, cmd)
	b.mirror(line, res)
	log.Debug("decompiler output",
		"stdout", res.Stdout,
		"stderr", res.Stderr,
		"exit_code", res.ExitCode,
		"duration_ms", res.Duration.Milliseconds(),
	)

	vid, err := b.classify(runCtx, tool, loc, res, runErr)
	if err != nil {
		if b.fingerprints != nil {
			b.fingerprints.Remove(loc.ClassName)
		}
		log.Warn("decompile failed", "error", err.Error())
		return output.VirtualID{}, err
	}

	if b.fingerprints != nil && sum != "" {
		b.fingerprints.Add(loc.ClassName, sum)
	}
	log.Info("decompile finished", "output", loc.RealPath, "duration_ms", res.Duration.Milliseconds())
	return vid, nil
}

// classify maps a finished run onto the error taxonomy. Non-empty stderr
// fails the call whatever the exit code; jadx reports problems there even
// when it exits 0.
func (b *ToolBackend) classify(runCtx context.Context, tool config.ToolConfig, loc output.Location, res process.Result, runErr error) (output.VirtualID, error) {
	name := string(b.spec.Name)

	if runErr != nil {
		if errors.Is(runErr, context.DeadlineExceeded) || runCtx.Err() != nil {
			return output.VirtualID{}, errors.NewTimeoutError(
				fmt.Sprintf("%s %s", name, loc.ClassName), b.opts.timeout).WithCause(runErr)
		}
		return output.VirtualID{}, errors.NewExecutionError(name, tool.Path, runErr)
	}

	if res.Stderr != "" || res.ExitCode != 0 {
		return output.VirtualID{}, errors.NewToolExecutionError(name, res.ExitCode).WithOutput(res.Stdout, res.Stderr)
	}

	info, err := b.opts.fs.Stat(loc.RealPath)
	if err != nil {
		return output.VirtualID{}, errors.NewOutputMissingError(name, loc.RealPath, err).WithClassName(string(loc.ClassName))
	}
	if info.IsDir() {
		return output.VirtualID{}, errors.NewOutputMissingError(name, loc.RealPath,
			fmt.Errorf("%s is a directory", loc.RealPath)).WithClassName(string(loc.ClassName))
	}

	return loc.VirtualID, nil
}

func (b *ToolBackend) isFile(path string) bool {
	info, err := b.opts.fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// fingerprint returns the hex sha256 of the tool settings and the input
// file, so output from a differently configured tool is never reused.
func (b *ToolBackend) fingerprint(path string, tool config.ToolConfig) (string, error) {
	f, err := b.opts.fs.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%s\x00%s\x00", tool.Path, tool.Options)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// mirror copies one run to the output writer, if any.
func (b *ToolBackend) mirror(line string, res process.Result) {
	if b.opts.output == nil {
		return
	}

	b.outMu.Lock()
	defer b.outMu.Unlock()

	w := b.opts.output
	_, _ = fmt.Fprintf(w, "$ %s\n", line)
	writeBlock(w, res.Stdout)
	writeBlock(w, res.Stderr)
	if res.Duration > 0 {
		_, _ = fmt.Fprintf(w, "# exit %d after %s\n", res.ExitCode, res.Duration.Round(time.Millisecond))
	}
}

func writeBlock(w io.Writer, s string) {
	if s == "" {
		return
	}
	_, _ = io.WriteString(w, s)
	if s[len(s)-1] != '\n' {
		_, _ = io.WriteString(w, "\n")
	}
}

// compile-time check
var _ Backend = (*ToolBackend)(nil)
