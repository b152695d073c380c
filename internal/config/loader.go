package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader that reads an explicit config file instead
// of searching rootDir/.scriptdoc.
func NewFileLoader(rootDir, configFile string) Loader {
	return &loader{
		rootDir:    rootDir,
		configFile: configFile,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (SCRIPTDOC_*)
// 2. Config file (.scriptdoc/config.yml or .scriptdoc/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ".scriptdoc"))
	}

	v.SetEnvPrefix("SCRIPTDOC")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., SCRIPTDOC_OUTPUT_DIR)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing file is fine unless the caller named one explicitly
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindEnvVars binds the scalar keys that may be overridden from the environment.
func bindEnvVars(v *viper.Viper) {
	v.BindEnv("render.url_prefix")

	v.BindEnv("output.dir")
	v.BindEnv("output.extension")
	v.BindEnv("output.incremental")

	v.BindEnv("decompiler.command")
	v.BindEnv("decompiler.compile_command")
	v.BindEnv("decompiler.raw_text")
	v.BindEnv("decompiler.timeout_seconds")

	v.BindEnv("watch.debounce_ms")

	v.BindEnv("logging.level")
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("render.url_prefix", defaults.Render.URLPrefix)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.extension", defaults.Output.Extension)
	v.SetDefault("output.incremental", defaults.Output.Incremental)

	v.SetDefault("decompiler.command", defaults.Decompiler.Command)
	v.SetDefault("decompiler.args", defaults.Decompiler.Args)
	v.SetDefault("decompiler.compile_command", defaults.Decompiler.CompileCommand)
	v.SetDefault("decompiler.raw_text", defaults.Decompiler.RawText)
	v.SetDefault("decompiler.timeout_seconds", defaults.Decompiler.TimeoutSeconds)
	v.SetDefault("decompiler.compiled_extensions", defaults.Decompiler.CompiledExtensions)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMs)

	v.SetDefault("logging.level", defaults.Logging.Level)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration from a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
