package cmd

import (
	"strings"

	"github.com/Iron-Ham/smali2java/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "smali2java",
	Short: "Decompile single smali classes to Java",
	Long: `smali2java turns a single-class smali file into Java source by driving an
external decompiler (jadx). Results are written under a per-user output tree
and reported as virtual identifiers that 'smali2java show' can read back.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/smali2java/config.yaml)")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// No config type: the extension decides between config.yaml and config.toml
		viper.SetConfigName("config")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("SMALI2JAVA")
	// e.g., SMALI2JAVA_DECOMPILER_JADX_PATH for decompiler.jadx.path
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
