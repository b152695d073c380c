// Package config provides configuration loading for scriptdoc.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables (SCRIPTDOC_*)
//  3. Project config (.scriptdoc/config.yml)
//  4. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: SCRIPTDOC_
//   - Nested fields: use underscores (SCRIPTDOC_DECOMPILER_TIMEOUT_SECONDS)
package config

import (
	"path/filepath"
	"time"

	"github.com/mvp-joe/scriptdoc/internal/decompile"
)

// Config represents the complete scriptdoc configuration.
type Config struct {
	Render     RenderConfig     `yaml:"render" mapstructure:"render"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Decompiler DecompilerConfig `yaml:"decompiler" mapstructure:"decompiler"`
	Paths      PathsConfig      `yaml:"paths" mapstructure:"paths"`
	Watch      WatchConfig      `yaml:"watch" mapstructure:"watch"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// RenderConfig configures markdown rendering.
type RenderConfig struct {
	URLPrefix string `yaml:"url_prefix" mapstructure:"url_prefix"` // source link prefix; "{path}" is replaced by the input's relative path
}

// OutputConfig configures where generated documents go.
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`                 // empty means next to each input
	Extension   string `yaml:"extension" mapstructure:"extension"`     // e.g. ".md"
	Incremental bool   `yaml:"incremental" mapstructure:"incremental"` // skip unchanged inputs using .scriptdoc/state.db
}

// DecompilerConfig configures the external decompiler for compiled scripts.
type DecompilerConfig struct {
	Command            string   `yaml:"command" mapstructure:"command"`
	Args               []string `yaml:"args" mapstructure:"args"`
	CompileCommand     string   `yaml:"compile_command" mapstructure:"compile_command"` // compiles text sources before decompiling
	RawText            bool     `yaml:"raw_text" mapstructure:"raw_text"`               // read text sources as they are
	TimeoutSeconds     int      `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	CompiledExtensions []string `yaml:"compiled_extensions" mapstructure:"compiled_extensions"`
}

// PathsConfig defines which files a directory run picks up.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for inputs
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// WatchConfig configures watch mode.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Render: RenderConfig{
			URLPrefix: "",
		},
		Output: OutputConfig{
			Dir:         "",
			Extension:   ".md",
			Incremental: true,
		},
		Decompiler: DecompilerConfig{
			Command:            decompile.DefaultCommand,
			Args:               []string{},
			CompileCommand:     decompile.DefaultCompileCommand,
			RawText:            false,
			TimeoutSeconds:     int(decompile.DefaultTimeout / time.Second),
			CompiledExtensions: append([]string{}, decompile.DefaultCompiledExtensions...),
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.applescript",
				"**/*.scpt",
			},
			Ignore: []string{
				".git/**",
				"node_modules/**",
				"build/**",
			},
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DecompileConfig converts the decompiler section for the decompile package.
func (c *Config) DecompileConfig() decompile.Config {
	return decompile.Config{
		Command:            c.Decompiler.Command,
		Args:               c.Decompiler.Args,
		CompileCommand:     c.Decompiler.CompileCommand,
		RawText:            c.Decompiler.RawText,
		Timeout:            time.Duration(c.Decompiler.TimeoutSeconds) * time.Second,
		CompiledExtensions: c.Decompiler.CompiledExtensions,
	}
}

// StatePath is the manifest database used for incremental generation.
func StatePath(rootDir string) string {
	return filepath.Join(rootDir, ".scriptdoc", "state.db")
}

// Debounce returns the watch debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
