package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() reads .scriptdoc/config.yml and .scriptdoc/config.yaml
// - Load() merges a partial config file with defaults
// - Environment variables override config file values and defaults
// - NewFileLoader() reads an explicit file and fails when it is missing
// - Load() returns error for malformed YAML and invalid values
// - Validate() rejects each invalid field and reports several at once
// - DecompileConfig() and Debounce() convert units

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	configDir := filepath.Join(dir, ".scriptdoc")
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "", cfg.Render.URLPrefix)
	assert.Equal(t, "", cfg.Output.Dir)
	assert.Equal(t, ".md", cfg.Output.Extension)
	assert.True(t, cfg.Output.Incremental)
	assert.Equal(t, "osadecompile", cfg.Decompiler.Command)
	assert.Equal(t, "osacompile", cfg.Decompiler.CompileCommand)
	assert.False(t, cfg.Decompiler.RawText)
	assert.Equal(t, 30, cfg.Decompiler.TimeoutSeconds)
	assert.Equal(t, []string{".scpt", ".scptd"}, cfg.Decompiler.CompiledExtensions)
	assert.Contains(t, cfg.Paths.Include, "**/*.applescript")
	assert.Contains(t, cfg.Paths.Include, "**/*.scpt")
	assert.Contains(t, cfg.Paths.Ignore, ".git/**")
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
	assert.Equal(t, "info", cfg.Logging.Level)

	assert.NoError(t, Validate(cfg))
}

func TestLoad_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	t.Parallel()

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Output, cfg.Output)
	assert.Equal(t, expected.Decompiler.Command, cfg.Decompiler.Command)
	assert.Equal(t, expected.Paths.Include, cfg.Paths.Include)
	assert.Equal(t, expected.Watch, cfg.Watch)
}

func TestLoad_LoadsFromConfigYml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
render:
  url_prefix: https://example.com/src/{path}
output:
  dir: docs
  extension: .markdown
  incremental: false
decompiler:
  command: /usr/local/bin/decompile
  args: ["--plain"]
  timeout_seconds: 5
  compiled_extensions: [".scpt"]
paths:
  include: ["scripts/**/*.applescript"]
  ignore: ["scripts/old/**"]
watch:
  debounce_ms: 250
logging:
  level: debug
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/src/{path}", cfg.Render.URLPrefix)
	assert.Equal(t, "docs", cfg.Output.Dir)
	assert.Equal(t, ".markdown", cfg.Output.Extension)
	assert.False(t, cfg.Output.Incremental)
	assert.Equal(t, "/usr/local/bin/decompile", cfg.Decompiler.Command)
	assert.Equal(t, []string{"--plain"}, cfg.Decompiler.Args)
	assert.Equal(t, 5, cfg.Decompiler.TimeoutSeconds)
	assert.Equal(t, []string{".scpt"}, cfg.Decompiler.CompiledExtensions)
	assert.Equal(t, []string{"scripts/**/*.applescript"}, cfg.Paths.Include)
	assert.Equal(t, []string{"scripts/old/**"}, cfg.Paths.Ignore)
	assert.Equal(t, 250, cfg.Watch.DebounceMs)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_LoadsFromConfigYaml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
output:
  extension: .txt
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, ".txt", cfg.Output.Extension)
}

func TestLoad_MergesConfigWithDefaults(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
render:
  url_prefix: https://example.com/
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", cfg.Render.URLPrefix)
	assert.Equal(t, ".md", cfg.Output.Extension)
	assert.Equal(t, 30, cfg.Decompiler.TimeoutSeconds)
	assert.Equal(t, 500, cfg.Watch.DebounceMs)
}

func TestLoad_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
output:
  dir: from-file
decompiler:
  timeout_seconds: 5
`)

	t.Setenv("SCRIPTDOC_OUTPUT_DIR", "from-env")
	t.Setenv("SCRIPTDOC_DECOMPILER_TIMEOUT_SECONDS", "60")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Output.Dir)
	assert.Equal(t, 60, cfg.Decompiler.TimeoutSeconds)
}

func TestLoad_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	t.Setenv("SCRIPTDOC_RENDER_URL_PREFIX", "https://env.example/")
	t.Setenv("SCRIPTDOC_WATCH_DEBOUNCE_MS", "100")
	t.Setenv("SCRIPTDOC_LOGGING_LEVEL", "warn")

	cfg, err := NewLoader(t.TempDir()).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://env.example/", cfg.Render.URLPrefix)
	assert.Equal(t, 100, cfg.Watch.DebounceMs)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestNewFileLoader_ReadsExplicitFile(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  dir: elsewhere\n"), 0644))

	cfg, err := NewFileLoader(tempDir, path).Load()
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", cfg.Output.Dir)
}

func TestNewFileLoader_MissingFileIsAnError(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	_, err := NewFileLoader(tempDir, filepath.Join(tempDir, "missing.yml")).Load()
	assert.Error(t, err)
}

func TestLoad_ReturnsErrorForMalformedYaml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "output:\n  dir: [unclosed\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ReturnsErrorForInvalidValues(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
decompiler:
  timeout_seconds: 0
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.ErrorIs(t, err, ErrInvalidTimeout)
}

func TestValidate_RejectsInvalidFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"empty command", func(c *Config) { c.Decompiler.Command = "  " }, ErrEmptyCommand},
		{"empty compile command", func(c *Config) { c.Decompiler.CompileCommand = "" }, ErrEmptyCommand},
		{"negative timeout", func(c *Config) { c.Decompiler.TimeoutSeconds = -1 }, ErrInvalidTimeout},
		{"output extension without dot", func(c *Config) { c.Output.Extension = "md" }, ErrInvalidExtension},
		{"compiled extension without dot", func(c *Config) { c.Decompiler.CompiledExtensions = []string{"scpt"} }, ErrInvalidExtension},
		{"negative debounce", func(c *Config) { c.Watch.DebounceMs = -5 }, ErrInvalidDebounce},
		{"unknown log level", func(c *Config) { c.Logging.Level = "chatty" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Decompiler.Command = ""
	cfg.Decompiler.TimeoutSeconds = 0
	cfg.Watch.DebounceMs = -1

	err := Validate(cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrEmptyCommand)
	assert.ErrorIs(t, err, ErrInvalidTimeout)
	assert.ErrorIs(t, err, ErrInvalidDebounce)
}

func TestConfig_Conversions(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Decompiler.TimeoutSeconds = 7
	cfg.Decompiler.Args = []string{"-x"}
	cfg.Decompiler.RawText = true
	cfg.Watch.DebounceMs = 250

	dc := cfg.DecompileConfig()
	assert.Equal(t, "osadecompile", dc.Command)
	assert.Equal(t, []string{"-x"}, dc.Args)
	assert.Equal(t, "osacompile", dc.CompileCommand)
	assert.True(t, dc.RawText)
	assert.Equal(t, 7*time.Second, dc.Timeout)
	assert.Equal(t, []string{".scpt", ".scptd"}, dc.CompiledExtensions)

	assert.Equal(t, 250*time.Millisecond, cfg.Debounce())
	assert.Equal(t, filepath.Join("proj", ".scriptdoc", "state.db"), StatePath("proj"))
}

func TestValidate_RawTextAllowsEmptyCompileCommand(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Decompiler.CompileCommand = ""
	cfg.Decompiler.RawText = true

	assert.NoError(t, Validate(cfg))
}
