// Package decompiler turns smali files into Java source by driving an
// external decompiler executable.
//
// A Registry hands out one Backend per backend name. Each Decompile call
// resolves the class, checks the configured executable, runs the tool once
// per class even when callers race, and classifies the outcome into the
// error taxonomy of the errors package.
package decompiler

import (
	"context"
	"io"
	"time"

	"github.com/spf13/afero"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/Iron-Ham/smali2java/internal/logging"
	"github.com/Iron-Ham/smali2java/internal/output"
	"github.com/Iron-Ham/smali2java/internal/process"
)

// BackendName identifies a supported decompiler backend.
type BackendName string

const (
	BackendJadx BackendName = "jadx"
)

// Backend decompiles one smali file into a source file under the output root.
type Backend interface {
	Name() BackendName
	DisplayName() string
	// Decompile blocks until the class is decompiled or ctx is done. On
	// success the returned identifier decodes to the written file.
	Decompile(ctx context.Context, inputPath string) (output.VirtualID, error)
}

// options collects the collaborators shared by a registry and its backends.
type options struct {
	runner             process.Runner
	fs                 afero.Fs
	provider           config.Provider
	logger             *logging.Logger
	output             io.Writer
	timeout            time.Duration
	reuse              string
	fingerprintEntries int
}

func defaultOptions() options {
	return options{
		runner:             process.NewExecRunner(),
		fs:                 afero.NewOsFs(),
		provider:           config.NewViperProvider(nil),
		logger:             logging.NopLogger(),
		reuse:              config.ReuseAlways,
		fingerprintEntries: config.Default().Cache.FingerprintEntries,
	}
}

// Option configures a Registry or a ToolBackend.
type Option func(*options)

// WithRunner sets the process runner used to spawn the tool.
func WithRunner(r process.Runner) Option {
	return func(o *options) {
		if r != nil {
			o.runner = r
		}
	}
}

// WithFs sets the filesystem used to read inputs and check the executable and
// output file.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithProvider sets where executable settings are read from on each call.
func WithProvider(p config.Provider) Option {
	return func(o *options) {
		if p != nil {
			o.provider = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOutput mirrors each invocation's command line, stdout and stderr to w.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithTimeout kills a tool run that takes longer than d. Zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithReuse selects the cache reuse mode (config.ReuseAlways or
// config.ReuseHash) and, for hash mode, how many input fingerprints are kept.
func WithReuse(mode string, entries int) Option {
	return func(o *options) {
		if mode != "" {
			o.reuse = mode
		}
		if entries > 0 {
			o.fingerprintEntries = entries
		}
	}
}

// OptionsFromConfig translates the decompiler and cache settings of cfg.
func OptionsFromConfig(cfg *config.Config) []Option {
	return []Option{
		WithTimeout(cfg.Decompiler.Timeout()),
		WithReuse(cfg.Cache.Reuse, cfg.Cache.FingerprintEntries),
	}
}
