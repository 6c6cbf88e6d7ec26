package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete smali2java configuration
type Config struct {
	Decompiler DecompilerConfig `mapstructure:"decompiler" yaml:"decompiler" toml:"decompiler"`
	Cache      CacheConfig      `mapstructure:"cache" yaml:"cache" toml:"cache"`
	Logging    LoggingConfig    `mapstructure:"logging" yaml:"logging" toml:"logging"`
	Watch      WatchConfig      `mapstructure:"watch" yaml:"watch" toml:"watch"`
}

// DecompilerConfig selects and tunes the decompiler backend
type DecompilerConfig struct {
	// Backend is the decompiler used when --backend is not given (default: "jadx")
	Backend string `mapstructure:"backend" yaml:"backend" toml:"backend"`
	// Jobs is the number of inputs decompiled in parallel by the decompile command (default: 4)
	Jobs int `mapstructure:"jobs" yaml:"jobs" toml:"jobs"`
	// TimeoutSeconds kills a decompiler run that takes longer than this (0 = no timeout)
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds" toml:"timeout_seconds"`
	// Jadx holds the jadx executable settings
	Jadx ToolConfig `mapstructure:"jadx" yaml:"jadx" toml:"jadx"`
}

// ToolConfig is the per-backend executable configuration
type ToolConfig struct {
	// Path is the decompiler executable. It must reference an existing regular file.
	Path string `mapstructure:"path" yaml:"path" toml:"path"`
	// Options is a free-form option string appended to every invocation,
	// e.g. "--no-res --show-bad-code"
	Options string `mapstructure:"options" yaml:"options" toml:"options"`
}

// CacheConfig controls where decompiled output is kept and when it is reused
type CacheConfig struct {
	// Dir is the output root. Empty means <user cache dir>/smali2java/decompiled.
	// Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir" yaml:"dir" toml:"dir"`
	// Reuse controls whether an unchanged input skips the decompiler:
	// "always" re-runs the decompiler on every request (default),
	// "hash" skips it when the input's content hash matches the last successful run
	Reuse string `mapstructure:"reuse" yaml:"reuse" toml:"reuse"`
	// FingerprintEntries bounds the in-memory input hash cache used by reuse=hash (default: 512)
	FingerprintEntries int `mapstructure:"fingerprint_entries" yaml:"fingerprint_entries" toml:"fingerprint_entries"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether debug logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled" toml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level" toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups" toml:"max_backups"`
	// Compress gzips rotated log files (default: false)
	Compress bool `mapstructure:"compress" yaml:"compress" toml:"compress"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	// Include is the glob matched against paths relative to the watched root (default: "**.smali")
	Include string `mapstructure:"include" yaml:"include" toml:"include"`
	// DebounceMs waits for writes to settle before decompiling (default: 300)
	DebounceMs int `mapstructure:"debounce_ms" yaml:"debounce_ms" toml:"debounce_ms"`
}

// Reuse modes for CacheConfig.Reuse
const (
	ReuseAlways = "always"
	ReuseHash   = "hash"
)

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Decompiler: DecompilerConfig{
			Backend:        "jadx",
			Jobs:           4,
			TimeoutSeconds: 0, // Matches the historical behavior: wait for the tool
			Jadx: ToolConfig{
				Path:    "",
				Options: "",
			},
		},
		Cache: CacheConfig{
			Dir:                "", // Empty means use the user cache directory
			Reuse:              ReuseAlways,
			FingerprintEntries: 512,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
		Watch: WatchConfig{
			Include:    "**.smali",
			DebounceMs: 300,
		},
	}
}

// Timeout returns the decompiler timeout as a time.Duration (0 means disabled)
func (c *DecompilerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Debounce returns the watch debounce as a time.Duration
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// ResolveDir returns the resolved output root.
// If Dir is empty, it returns <user cache dir>/smali2java/decompiled.
// If Dir starts with ~, it expands to the user's home directory.
// Relative paths are resolved against the current directory.
func (c *CacheConfig) ResolveDir() string {
	if c.Dir == "" {
		return DefaultCacheDir()
	}

	path := expandHome(c.Dir)
	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}
	return path
}

// DefaultCacheDir returns the output root used when cache.dir is unset
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "smali2java", "decompiled")
}

// LogDir returns the directory holding smali2java.log and its backups:
// <user cache dir>/smali2java/logs
func LogDir() string {
	return filepath.Join(filepath.Dir(DefaultCacheDir()), "logs")
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	SetDefaultsOn(viper.GetViper())
}

// SetDefaultsOn registers default values on the given viper instance
func SetDefaultsOn(v *viper.Viper) {
	defaults := Default()

	// Decompiler defaults
	v.SetDefault("decompiler.backend", defaults.Decompiler.Backend)
	v.SetDefault("decompiler.jobs", defaults.Decompiler.Jobs)
	v.SetDefault("decompiler.timeout_seconds", defaults.Decompiler.TimeoutSeconds)
	v.SetDefault("decompiler.jadx.path", defaults.Decompiler.Jadx.Path)
	v.SetDefault("decompiler.jadx.options", defaults.Decompiler.Jadx.Options)

	// Cache defaults
	v.SetDefault("cache.dir", defaults.Cache.Dir)
	v.SetDefault("cache.reuse", defaults.Cache.Reuse)
	v.SetDefault("cache.fingerprint_entries", defaults.Cache.FingerprintEntries)

	// Logging defaults
	v.SetDefault("logging.enabled", defaults.Logging.Enabled)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	v.SetDefault("logging.compress", defaults.Logging.Compress)

	// Watch defaults
	v.SetDefault("watch.include", defaults.Watch.Include)
	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates the configuration held by v
func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "smali2java")
	}
	// Fall back to ~/.config/smali2java
	home, err := os.UserHomeDir()
	if err != nil {
		return ".smali2java"
	}
	return filepath.Join(home, ".config", "smali2java")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// ValidBackends returns the decompiler backends this build supports
func ValidBackends() []string {
	return []string{"jadx"}
}

// IsValidBackend checks if the given backend name is supported
func IsValidBackend(name string) bool {
	for _, valid := range ValidBackends() {
		if name == valid {
			return true
		}
	}
	return false
}

// ValidReuseModes returns the list of valid cache.reuse values
func ValidReuseModes() []string {
	return []string{ReuseAlways, ReuseHash}
}

// ResolveCacheDir returns the resolved output root for cfg
func (c *Config) ResolveCacheDir() string {
	return c.Cache.ResolveDir()
}
