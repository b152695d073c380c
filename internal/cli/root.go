package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mvp-joe/scriptdoc/internal/config"
	"github.com/mvp-joe/scriptdoc/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scriptdoc",
	Short: "Generate markdown documentation from AppleScript sources",
	Long: `scriptdoc reads AppleScript sources (plain text or compiled) and writes a
markdown page per script: a table of contents, an overview taken from the
leading comment, and one section per documented handler, heading and script
object.

Configuration is read from .scriptdoc/config.yml in the current directory and
from SCRIPTDOC_* environment variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .scriptdoc/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads configuration for the current directory, honoring --config.
func loadConfig() (*config.Config, string, error) {
	rootDir, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}

	loader := config.NewLoader(rootDir)
	if cfgFile != "" {
		loader = config.NewFileLoader(rootDir, cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, rootDir, nil
}

// newLogger builds the console logger. --verbose wins over --quiet.
func newLogger(cfg *config.Config, quiet bool, out io.Writer) zerolog.Logger {
	level := cfg.Logging.Level
	switch {
	case verbose:
		level = logging.LevelDebug
	case quiet:
		level = logging.LevelError
	}

	return logging.New(logging.Config{
		Level:   level,
		Console: true,
		Out:     out,
	})
}
