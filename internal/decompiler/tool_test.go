package decompiler

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/Iron-Ham/smali2java/internal/errors"
	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/Iron-Ham/smali2java/internal/output"
	"github.com/Iron-Ham/smali2java/internal/process"
)

const (
	testRoot = "/out"
	testExe  = "/opt/jadx/bin/jadx"
)

// fakeRunner records commands and delegates to run.
type fakeRunner struct {
	calls atomic.Int32

	mu   sync.Mutex
	cmds []process.Command
	run  func(ctx context.Context, cmd process.Command) (process.Result, error)
}

func (f *fakeRunner) Run(ctx context.Context, cmd process.Command) (process.Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.cmds = append(f.cmds, cmd)
	f.mu.Unlock()
	if f.run == nil {
		return process.Result{}, nil
	}
	return f.run(ctx, cmd)
}

func (f *fakeRunner) lastCommand(t *testing.T) process.Command {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.cmds) == 0 {
		t.Fatal("runner was never called")
	}
	return f.cmds[len(f.cmds)-1]
}

// writesOutput returns a run func that writes rel under the output root, the
// way jadx does on success.
func writesOutput(fs afero.Fs, rel string) func(context.Context, process.Command) (process.Result, error) {
	return func(_ context.Context, cmd process.Command) (process.Result, error) {
		root := cmd.Args[2]
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return process.Result{}, err
		}
		if err := afero.WriteFile(fs, path, []byte("class X {}\n"), 0o644); err != nil {
			return process.Result{}, err
		}
		return process.Result{Stdout: "INFO  - done\n", Duration: time.Millisecond}, nil
	}
}

type fixture struct {
	fs       afero.Fs
	runner   *fakeRunner
	provider *config.StaticProvider
	backend  *ToolBackend
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, testExe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		fs:     fs,
		runner: &fakeRunner{},
		provider: config.NewStaticProvider(map[string]config.ToolConfig{
			"jadx": {Path: testExe, Options: "--no-res"},
		}),
	}
	all := append([]Option{WithFs(fs), WithRunner(f.runner), WithProvider(f.provider)}, opts...)
	f.backend = NewToolBackend(JadxSpec, testRoot, all...)
	return f
}

// input writes a smali file declaring class and returns its path.
func (f *fixture) input(t *testing.T, path, class string) string {
	t.Helper()
	content := fmt.Sprintf("# generated\n.class public final L%s;\n.super Ljava/lang/Object;\n", class)
	if err := afero.WriteFile(f.fs, path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDecompile_Success(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/com/example/Foo.smali", "com/example/Foo")
	f.runner.run = writesOutput(f.fs, "com/example/Foo.java")

	vid, err := f.backend.Decompile(context.Background(), in)
	if err != nil {
		t.Fatalf("Decompile() error = %v", err)
	}

	want := filepath.Join(testRoot, "com", "example", "Foo.java")
	decoded, err := output.ParseVirtualID(vid.String())
	if err != nil {
		t.Fatalf("ParseVirtualID() error = %v", err)
	}
	if decoded.RealPath != want {
		t.Errorf("RealPath = %q, want %q", decoded.RealPath, want)
	}
	if vid.DisplayPath != "/com/example/Foo.java" {
		t.Errorf("DisplayPath = %q", vid.DisplayPath)
	}

	cmd := f.runner.lastCommand(t)
	if cmd.Executable != testExe {
		t.Errorf("Executable = %q", cmd.Executable)
	}
	wantArgs := []string{in, "-ds", testRoot}
	if strings.Join(cmd.Args, "|") != strings.Join(wantArgs, "|") {
		t.Errorf("Args = %q, want %q", cmd.Args, wantArgs)
	}
	if cmd.ExtraArgs != "--no-res" {
		t.Errorf("ExtraArgs = %q", cmd.ExtraArgs)
	}
}

func TestDecompile_UnpackagedClassGoesToDefaultPackage(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/Foo.smali", "Foo")
	f.runner.run = writesOutput(f.fs, "defpackage/Foo.java")

	vid, err := f.backend.Decompile(context.Background(), in)
	if err != nil {
		t.Fatalf("Decompile() error = %v", err)
	}
	if want := filepath.Join(testRoot, "defpackage", "Foo.java"); vid.RealPath != want {
		t.Errorf("RealPath = %q, want %q", vid.RealPath, want)
	}
}

func TestDecompile_Classification(t *testing.T) {
	tests := []struct {
		name   string
		result process.Result
		write  bool
		check  func(t *testing.T, err error)
	}{
		{
			name:   "stderr with exit 0 is a tool error",
			result: process.Result{Stdout: "progress\n", Stderr: "ERROR - failed to decode\n"},
			write:  true,
			check: func(t *testing.T, err error) {
				var toolErr *errors.ToolExecutionError
				if !errors.As(err, &toolErr) {
					t.Fatalf("error = %v, want *ToolExecutionError", err)
				}
				if toolErr.ExitCode != 0 {
					t.Errorf("ExitCode = %d, want 0", toolErr.ExitCode)
				}
				if toolErr.Stdout != "progress\n" || toolErr.Stderr != "ERROR - failed to decode\n" {
					t.Errorf("captured output = %q / %q", toolErr.Stdout, toolErr.Stderr)
				}
				if !errors.Is(err, errors.ErrToolFailed) {
					t.Error("should match ErrToolFailed")
				}
			},
		},
		{
			name:   "non-zero exit without stderr is a tool error",
			result: process.Result{ExitCode: 1},
			write:  true,
			check: func(t *testing.T, err error) {
				var toolErr *errors.ToolExecutionError
				if !errors.As(err, &toolErr) || toolErr.ExitCode != 1 {
					t.Fatalf("error = %v, want *ToolExecutionError with exit 1", err)
				}
			},
		},
		{
			name:   "clean exit without file is output missing",
			result: process.Result{Stdout: "done\n"},
			write:  false,
			check: func(t *testing.T, err error) {
				var missing *errors.OutputMissingError
				if !errors.As(err, &missing) {
					t.Fatalf("error = %v, want *OutputMissingError", err)
				}
				want := filepath.Join(testRoot, "com", "example", "Foo.java")
				if missing.ExpectedPath != want {
					t.Errorf("ExpectedPath = %q, want %q", missing.ExpectedPath, want)
				}
				if missing.ClassName != "com/example/Foo" {
					t.Errorf("ClassName = %q", missing.ClassName)
				}
				if !strings.Contains(err.Error(), want) {
					t.Errorf("message should name the expected path: %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.input(t, "/src/Foo.smali", "com/example/Foo")
			write := writesOutput(f.fs, "com/example/Foo.java")
			f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
				if tt.write {
					if _, err := write(ctx, cmd); err != nil {
						return process.Result{}, err
					}
				}
				return tt.result, nil
			}

			_, err := f.backend.Decompile(context.Background(), in)
			if err == nil {
				t.Fatal("Decompile() should fail")
			}
			if !errors.IsUserFacing(err) {
				t.Errorf("error should be user facing: %v", err)
			}
			tt.check(t, err)
		})
	}
}

func TestDecompile_ConfigurationErrorsSpawnNothing(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		sentinel error
	}{
		{"unset", "", errors.ErrNotConfigured},
		{"missing", "/opt/missing/jadx", errors.ErrInvalidExecutable},
		{"directory", "/opt/jadx", errors.ErrInvalidExecutable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			in := f.input(t, "/src/Foo.smali", "com/example/Foo")
			f.provider.Set("jadx", config.ToolConfig{Path: tt.path})

			_, err := f.backend.Decompile(context.Background(), in)
			var cfgErr *errors.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want *ConfigurationError", err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v should match %v", err, tt.sentinel)
			}
			if cfgErr.Key != "decompiler.jadx.path" {
				t.Errorf("Key = %q", cfgErr.Key)
			}
			if n := f.runner.calls.Load(); n != 0 {
				t.Errorf("runner called %d times, want 0", n)
			}
		})
	}
}

func TestDecompile_InvalidInput(t *testing.T) {
	f := newFixture(t)
	if err := afero.WriteFile(f.fs, "/src/bad.smali", []byte(".method public foo()V\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{"/src/bad.smali", "/src/absent.smali"} {
		_, err := f.backend.Decompile(context.Background(), path)
		var invalid *errors.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("Decompile(%s) error = %v, want *InvalidInputError", path, err)
		}
		if invalid.Path != path {
			t.Errorf("Path = %q, want %q", invalid.Path, path)
		}
	}
	if n := f.runner.calls.Load(); n != 0 {
		t.Errorf("runner called %d times, want 0", n)
	}
}

func TestDecompile_ReadsConfigurationEveryCall(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = writesOutput(f.fs, "com/example/Foo.java")

	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatalf("first Decompile() error = %v", err)
	}

	other := "/usr/local/bin/jadx"
	if err := afero.WriteFile(f.fs, other, []byte("x"), 0o755); err != nil {
		t.Fatal(err)
	}
	f.provider.Set("jadx", config.ToolConfig{Path: other, Options: "--show-bad-code"})

	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatalf("second Decompile() error = %v", err)
	}
	cmd := f.runner.lastCommand(t)
	if cmd.Executable != other || cmd.ExtraArgs != "--show-bad-code" {
		t.Errorf("second call used %q %q, want the edited configuration", cmd.Executable, cmd.ExtraArgs)
	}
}

func TestDecompile_SpawnFailure(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = func(context.Context, process.Command) (process.Result, error) {
		return process.Result{ExitCode: 126}, &process.StartError{Executable: testExe, Err: fmt.Errorf("permission denied")}
	}

	_, err := f.backend.Decompile(context.Background(), in)
	var execErr *errors.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error = %v, want *ExecutionError", err)
	}
	if !errors.Is(err, errors.ErrExecutionFailed) {
		t.Error("should match ErrExecutionFailed")
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("message should carry the OS error text: %v", err)
	}
}

func TestDecompile_TimeoutKillsRun(t *testing.T) {
	f := newFixture(t, WithTimeout(50*time.Millisecond))
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = func(ctx context.Context, _ process.Command) (process.Result, error) {
		<-ctx.Done()
		return process.Result{ExitCode: -1}, ctx.Err()
	}

	_, err := f.backend.Decompile(context.Background(), in)
	var timeoutErr *errors.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("error = %v, want *TimeoutError", err)
	}
	if timeoutErr.Duration != 50*time.Millisecond {
		t.Errorf("Duration = %v", timeoutErr.Duration)
	}
	if !errors.Is(err, errors.ErrTimeout) {
		t.Error("should match ErrTimeout")
	}
}

// waitFor polls cond until it holds or the test deadline nears.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// syncBuffer is a bytes.Buffer safe to read while a logger writes to it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) count(substr string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Count(s.buf.String(), substr)
}

func TestDecompile_SingleFlight(t *testing.T) {
	logs := &syncBuffer{}
	f := newFixture(t, WithLogger(logging.NewLoggerWithWriter(logs, "debug", nil)))
	in1 := f.input(t, "/src/a/C.smali", "p/C")
	in2 := f.input(t, "/src/b/C.smali", "p/C")

	release := make(chan struct{})
	write := writesOutput(f.fs, "p/C.java")
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		<-release
		return write(ctx, cmd)
	}

	type result struct {
		vid output.VirtualID
		err error
	}
	results := make(chan result, 2)
	for _, in := range []string{in1, in2} {
		go func(path string) {
			vid, err := f.backend.Decompile(context.Background(), path)
			results <- result{vid, err}
		}(in)
	}

	// Each caller logs once it is parked on the shared run.
	waitFor(t, "both callers to join", func() bool { return logs.count("waiting for decompile") == 2 })
	close(release)

	a, b := <-results, <-results
	if a.err != nil || b.err != nil {
		t.Fatalf("errors = %v / %v", a.err, b.err)
	}
	if a.vid != b.vid {
		t.Errorf("results differ: %v vs %v", a.vid, b.vid)
	}
	if n := f.runner.calls.Load(); n != 1 {
		t.Errorf("tool invoked %d times, want 1", n)
	}
}

func TestDecompile_UnrelatedClassesRunConcurrently(t *testing.T) {
	f := newFixture(t)
	inA := f.input(t, "/src/A.smali", "p/A")
	inB := f.input(t, "/src/B.smali", "p/B")

	var started sync.WaitGroup
	started.Add(2)
	release := make(chan struct{})
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		started.Done()
		<-release
		name := strings.TrimSuffix(filepath.Base(cmd.Args[0]), ".smali")
		return writesOutput(f.fs, "p/"+name+".java")(ctx, cmd)
	}

	errs := make(chan error, 2)
	for _, in := range []string{inA, inB} {
		go func(path string) {
			_, err := f.backend.Decompile(context.Background(), path)
			errs <- err
		}(in)
	}

	// Both runs must be in the tool at once; a serialized backend deadlocks here.
	done := make(chan struct{})
	go func() { started.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("unrelated classes were serialized")
	}
	close(release)

	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			t.Errorf("Decompile() error = %v", err)
		}
	}
}

func TestDecompile_CallerCancellationLeavesRunAlive(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/C.smali", "p/C")

	release := make(chan struct{})
	runCtxErr := make(chan error, 1)
	write := writesOutput(f.fs, "p/C.java")
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		<-release
		runCtxErr <- ctx.Err()
		return write(ctx, cmd)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := f.backend.Decompile(ctx, in)
		errCh <- err
	}()

	waitFor(t, "run to start", func() bool { return f.runner.calls.Load() == 1 })
	cancel()

	err := <-errCh
	if !errors.Is(err, errors.ErrCanceled) {
		t.Fatalf("error = %v, want ErrCanceled", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should also match context.Canceled: %v", err)
	}

	close(release)
	if err := <-runCtxErr; err != nil {
		t.Errorf("tool context was canceled with the caller: %v", err)
	}
	waitFor(t, "output to be written", func() bool {
		ok, _ := afero.Exists(f.fs, filepath.Join(testRoot, "p", "C.java"))
		return ok
	})
}

func TestDecompile_RecreatesOutputRootAfterReset(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		if ok, _ := afero.DirExists(f.fs, cmd.Args[2]); !ok {
			return process.Result{Stderr: "output dir missing"}, nil
		}
		return writesOutput(f.fs, "com/example/Foo.java")(ctx, cmd)
	}

	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatalf("Decompile() error = %v", err)
	}
	if err := f.fs.RemoveAll(testRoot); err != nil {
		t.Fatal(err)
	}
	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatalf("Decompile() after reset error = %v", err)
	}
}

func TestDecompile_ReuseAlwaysReinvokes(t *testing.T) {
	f := newFixture(t)
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = writesOutput(f.fs, "com/example/Foo.java")

	for i := 0; i < 3; i++ {
		if _, err := f.backend.Decompile(context.Background(), in); err != nil {
			t.Fatal(err)
		}
	}
	if n := f.runner.calls.Load(); n != 3 {
		t.Errorf("tool invoked %d times, want 3", n)
	}
}

func TestDecompile_ReuseHash(t *testing.T) {
	f := newFixture(t, WithReuse(config.ReuseHash, 8))
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = writesOutput(f.fs, "com/example/Foo.java")
	ctx := context.Background()

	decompile := func() {
		t.Helper()
		if _, err := f.backend.Decompile(ctx, in); err != nil {
			t.Fatalf("Decompile() error = %v", err)
		}
	}

	decompile()
	decompile()
	if n := f.runner.calls.Load(); n != 1 {
		t.Fatalf("unchanged input invoked the tool %d times, want 1", n)
	}

	// Changed content
	if err := afero.WriteFile(f.fs, in, []byte(".class public Lcom/example/Foo;\n.field x:I\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	decompile()
	if n := f.runner.calls.Load(); n != 2 {
		t.Fatalf("changed input: tool invoked %d times, want 2", n)
	}

	// Output removed by a cache reset
	if err := f.fs.RemoveAll(testRoot); err != nil {
		t.Fatal(err)
	}
	decompile()
	if n := f.runner.calls.Load(); n != 3 {
		t.Fatalf("missing output: tool invoked %d times, want 3", n)
	}
}

func TestDecompile_ReuseHashTracksToolSettings(t *testing.T) {
	f := newFixture(t, WithReuse(config.ReuseHash, 8))
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = writesOutput(f.fs, "com/example/Foo.java")

	otherExe := "/opt/jadx-1.5/bin/jadx"
	if err := afero.WriteFile(f.fs, otherExe, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		name  string
		tool  config.ToolConfig
		calls int32
	}{
		{"first run", config.ToolConfig{Path: testExe, Options: "--no-res"}, 1},
		{"same settings", config.ToolConfig{Path: testExe, Options: "--no-res"}, 1},
		{"options changed", config.ToolConfig{Path: testExe, Options: "--no-res --deobf"}, 2},
		{"executable changed", config.ToolConfig{Path: otherExe, Options: "--no-res --deobf"}, 3},
	}
	for _, step := range steps {
		f.provider.Set("jadx", step.tool)
		if _, err := f.backend.Decompile(context.Background(), in); err != nil {
			t.Fatalf("%s: Decompile() error = %v", step.name, err)
		}
		if n := f.runner.calls.Load(); n != step.calls {
			t.Errorf("%s: tool invoked %d times, want %d", step.name, n, step.calls)
		}
	}
}

func TestDecompile_ReuseHashForgetsFailures(t *testing.T) {
	f := newFixture(t, WithReuse(config.ReuseHash, 8))
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	original, err := afero.ReadFile(f.fs, in)
	if err != nil {
		t.Fatal(err)
	}
	write := writesOutput(f.fs, "com/example/Foo.java")

	var fail atomic.Bool
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		res, err := write(ctx, cmd)
		if fail.Load() {
			res.Stderr = "boom"
		}
		return res, err
	}

	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	// A failed run for a changed input drops the remembered fingerprint...
	fail.Store(true)
	if err := afero.WriteFile(f.fs, in, []byte(".class public Lcom/example/Foo;\n.field y:J\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.backend.Decompile(context.Background(), in); err == nil {
		t.Fatal("expected tool failure")
	}

	// ...so going back to the original content runs the tool again.
	fail.Store(false)
	if err := afero.WriteFile(f.fs, in, original, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := f.backend.Decompile(context.Background(), in); err != nil {
		t.Fatal(err)
	}
	if n := f.runner.calls.Load(); n != 3 {
		t.Errorf("tool invoked %d times, want 3", n)
	}
}

func TestDecompile_MirrorsToolOutput(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, WithOutput(&buf))
	in := f.input(t, "/src/Foo.smali", "com/example/Foo")
	f.runner.run = func(ctx context.Context, cmd process.Command) (process.Result, error) {
		res, err := writesOutput(f.fs, "com/example/Foo.java")(ctx, cmd)
		res.Stderr = "WARN - skipped resources"
		return res, err
	}

	_, _ = f.backend.Decompile(context.Background(), in)

	out := buf.String()
	for _, want := range []string{"$ ", "-ds", "INFO  - done\n", "WARN - skipped resources\n", "# exit 0"} {
		if !strings.Contains(out, want) {
			t.Errorf("mirrored output missing %q:\n%s", want, out)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Decompiler.TimeoutSeconds = 7
	cfg.Cache.Reuse = config.ReuseHash
	cfg.Cache.FingerprintEntries = 3

	o := defaultOptions()
	for _, opt := range OptionsFromConfig(cfg) {
		opt(&o)
	}
	if o.timeout != 7*time.Second {
		t.Errorf("timeout = %v", o.timeout)
	}
	if o.reuse != config.ReuseHash || o.fingerprintEntries != 3 {
		t.Errorf("reuse = %q/%d", o.reuse, o.fingerprintEntries)
	}
}
