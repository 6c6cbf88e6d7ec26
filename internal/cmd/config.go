package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify smali2java configuration",
	Long: `View or modify smali2java configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  smali2java config set decompiler.jadx.path /opt/jadx/bin/jadx
  smali2java config set decompiler.jadx.options "--no-res --show-bad-code"
  smali2java config set cache.reuse hash

Flags must come before the key; everything after it is taken literally.

Valid keys:
  decompiler.backend          - Default backend (jadx)
  decompiler.jobs             - Inputs decompiled in parallel
  decompiler.timeout_seconds  - Kill the decompiler after this long (0 = never)
  decompiler.jadx.path        - jadx executable
  decompiler.jadx.options     - Extra jadx options, split like a shell would
  cache.dir                   - Output tree (default: user cache dir)
  cache.reuse                 - always or hash
  cache.fingerprint_entries   - Input hashes remembered when cache.reuse=hash
  logging.enabled             - Write smali2java.log (true/false)
  logging.level               - debug, info, warn or error
  logging.max_size_mb         - Rotate the log past this size
  logging.max_backups         - Rotated logs kept
  logging.compress            - Gzip rotated logs (true/false)
  watch.include               - Glob for watched and expanded files
  watch.debounce_ms           - Settle time before a changed file is decompiled`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/smali2java/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

var (
	configFormat    string
	configInitForce bool
)

// configKeys maps every settable key to its value type.
var configKeys = map[string]string{
	"decompiler.backend":         "string",
	"decompiler.jobs":            "int",
	"decompiler.timeout_seconds": "int",
	"decompiler.jadx.path":       "string",
	"decompiler.jadx.options":    "string",
	"cache.dir":                  "string",
	"cache.reuse":                "string",
	"cache.fingerprint_entries":  "int",
	"logging.enabled":            "bool",
	"logging.level":              "string",
	"logging.max_size_mb":        "int",
	"logging.max_backups":        "int",
	"logging.compress":           "bool",
	"watch.include":              "string",
	"watch.debounce_ms":          "int",
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)

	configCmd.PersistentFlags().StringVar(&configFormat, "format", config.FormatYAML, "Output format for show and init (yaml or toml)")
	// Option strings such as "--no-res" are values, not flags.
	configSetCmd.Flags().SetInterspersed(false)
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	data, err := config.Marshal(cfg, configFormat)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	// Show where config is being read from
	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "# Config file: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "# Config file: (none - using defaults)\n")
	}
	fmt.Fprintf(out, "# Output tree: %s\n\n", cfg.ResolveCacheDir())
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nValid keys: %s", key, strings.Join(sortedConfigKeys(), ", "))
	}

	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = n
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}

	// Edit the file alone so defaults and environment values are not
	// written back into it.
	file := viper.New()
	file.SetConfigFile(configFile)
	if _, err := os.Stat(configFile); err == nil {
		if err := file.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	file.Set(key, typedValue)

	// Validate the result before touching the file
	check := viper.New()
	config.SetDefaultsOn(check)
	if err := check.MergeConfigMap(file.AllSettings()); err != nil {
		return err
	}
	if _, err := config.LoadFrom(check); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := file.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

func sortedConfigKeys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// defaultConfigYAML is written by 'config init'. It documents every option.
const defaultConfigYAML = `# smali2java configuration

decompiler:
  # Backend used when --backend is not given. Supported: jadx
  backend: jadx
  # Inputs decompiled in parallel by 'smali2java decompile'
  jobs: 4
  # Kill a decompiler run after this many seconds (0 = wait forever)
  timeout_seconds: 0
  jadx:
    # Path to the jadx executable (required), e.g. /opt/jadx/bin/jadx
    path: ""
    # Extra options appended to every jadx run, split like a shell would
    options: ""

cache:
  # Where decompiled files are written. Empty = <user cache dir>/smali2java/decompiled
  dir: ""
  # always: run the decompiler on every request
  # hash:   skip it when the input is unchanged since the last success
  reuse: always
  # Input hashes remembered when reuse is hash
  fingerprint_entries: 512

logging:
  enabled: true
  # debug, info, warn or error
  level: info
  max_size_mb: 10
  max_backups: 3
  compress: false

watch:
  # Glob matched against paths relative to each watched or expanded directory
  include: "**.smali"
  # Wait this long for writes to settle before decompiling
  debounce_ms: 300
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	format := strings.ToLower(configFormat)
	configFile := config.ConfigFile()

	var content []byte
	switch format {
	case "", config.FormatYAML, "yml":
		content = []byte(defaultConfigYAML)
	case config.FormatTOML:
		configFile = strings.TrimSuffix(configFile, filepath.Ext(configFile)) + ".toml"
		data, err := config.Marshal(config.Default(), config.FormatTOML)
		if err != nil {
			return err
		}
		content = append([]byte("# smali2java configuration\n\n"), data...)
	default:
		return fmt.Errorf("unsupported format %q (valid: %s)", configFormat, strings.Join(config.ValidFormats(), ", "))
	}

	// Check if config file already exists
	if _, err := os.Stat(configFile); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s\nUse 'smali2java config set' to modify values or --force to overwrite", configFile)
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, content, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created config file at %s\n", configFile)
	fmt.Fprintln(out, "Set decompiler.jadx.path before decompiling.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	configFile := config.ConfigFile()

	if viper.ConfigFileUsed() != "" {
		fmt.Fprintf(out, "Active config: %s\n", viper.ConfigFileUsed())
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", configFile)
	}

	// Also show config search paths
	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", filepath.Join(config.ConfigDir(), "config.{yaml,toml}"))
	fmt.Fprintf(out, "  2. ./config.{yaml,toml} (current directory)\n")
	fmt.Fprintln(out, "\nEnvironment variables: SMALI2JAVA_* (e.g., SMALI2JAVA_DECOMPILER_JADX_PATH)")
	fmt.Fprintf(out, "Log directory: %s\n", config.LogDir())
	return nil
}
