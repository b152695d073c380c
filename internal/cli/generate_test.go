package cli

// Test Plan for Generate Command:
// - executeGenerate writes a page next to a single file and reports it
// - executeGenerate --stdout prints the page without writing
// - executeGenerate walks directories into the output dir and reports progress
// - executeGenerate returns an error when any script fails, after finishing the rest
// - Flag combinations are validated (--title, --stdout, --watch)
// - Missing inputs are reported with ErrInputNotFound
// - A second directory run skips unchanged scripts unless --force is given

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/scriptdoc/internal/config"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var helperSource = strings.Join([]string{
	"-- Text helpers",
	"on trim(s)",
	"\t-- Trims s",
	"end trim",
}, "\n") + "\n"

// testConfig reads text sources as they are so results do not depend on
// the host having the script compiler installed.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Decompiler.RawText = true
	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestExecuteGenerate_SingleFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	input := filepath.Join(root, "Text.applescript")
	writeFile(t, input, helperSource)

	var out bytes.Buffer
	err := executeGenerate(context.Background(), testConfig(), root, generateOptions{
		Paths:     []string{input},
		URLPrefix: "https://example.com/{path}#L",
	}, &out, logging.Nop())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "Text.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "## [trim(s)](https://example.com/Text.applescript#L2)")
	assert.Contains(t, out.String(), "(4 lines, 1 sections)")
}

func TestExecuteGenerate_Stdout(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	input := filepath.Join(root, "Text.applescript")
	writeFile(t, input, helperSource)

	var out bytes.Buffer
	err := executeGenerate(context.Background(), testConfig(), root, generateOptions{
		Paths:  []string{input},
		Title:  "Text Helpers",
		Stdout: true,
	}, &out, logging.Nop())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out.String(), "# Text Helpers\n## Contents\n"))
	assert.NoFileExists(t, filepath.Join(root, "Text.md"))
}

func TestExecuteGenerate_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "scripts", "Text.applescript"), helperSource)
	writeFile(t, filepath.Join(root, "scripts", "lib", "More.applescript"), helperSource)
	writeFile(t, filepath.Join(root, "scripts", "notes.txt"), "ignored")
	docs := filepath.Join(root, "docs")

	var out bytes.Buffer
	err := executeGenerate(context.Background(), testConfig(), root, generateOptions{
		Paths:  []string{filepath.Join(root, "scripts")},
		Output: docs,
	}, &out, logging.Nop())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(docs, "scripts", "Text.md"))
	assert.FileExists(t, filepath.Join(docs, "scripts", "lib", "More.md"))
	assert.Contains(t, out.String(), "Found 2 script(s)")
	assert.Contains(t, out.String(), "✓ Generated 2 document(s)")
}

func TestExecuteGenerate_FailuresAreReported(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Good.applescript"), helperSource)
	writeFile(t, filepath.Join(root, "Bad.scpt"), "compiled bytes")

	cfg := testConfig()
	cfg.Decompiler.Command = filepath.Join(root, "no-such-decompiler")

	var out bytes.Buffer
	err := executeGenerate(context.Background(), cfg, root, generateOptions{
		Paths: []string{root},
		Quiet: true,
	}, &out, logging.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 script(s) failed")

	assert.FileExists(t, filepath.Join(root, "Good.md"))
	assert.NoFileExists(t, filepath.Join(root, "Bad.md"))
	assert.Contains(t, out.String(), "✗ "+filepath.Join(root, "Bad.scpt"))
	assert.NotContains(t, out.String(), "Found")
}

func TestExecuteGenerate_MissingInput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	err := executeGenerate(context.Background(), testConfig(), root, generateOptions{
		Paths: []string{filepath.Join(root, "missing.applescript")},
	}, &bytes.Buffer{}, logging.Nop())
	assert.ErrorIs(t, err, decompile.ErrInputNotFound)
}

func TestCheckGenerateOptions(t *testing.T) {
	t.Parallel()

	file := []string{"a.applescript"}
	dir := []string{"scripts"}

	tests := []struct {
		name  string
		opts  generateOptions
		files []string
		dirs  []string
		want  string
	}{
		{"title with one file", generateOptions{Title: "A"}, file, nil, ""},
		{"title with directory", generateOptions{Title: "A"}, nil, dir, "--title requires exactly one file input"},
		{"title with two files", generateOptions{Title: "A"}, []string{"a", "b"}, nil, "--title requires exactly one file input"},
		{"stdout with directory", generateOptions{Stdout: true}, nil, dir, "--stdout cannot be used with directory inputs"},
		{"watch with stdout", generateOptions{Watch: true, Stdout: true}, file, nil, "--watch cannot be combined with --stdout"},
		{"watch without directory", generateOptions{Watch: true}, file, nil, "--watch requires at least one directory input"},
		{"watch with directory", generateOptions{Watch: true}, nil, dir, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkGenerateOptions(tt.opts, tt.files, tt.dirs)
			if tt.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSplitInputs_BundleCountsAsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	bundle := filepath.Join(root, "Tool.scptd")
	require.NoError(t, os.MkdirAll(bundle, 0755))
	plain := filepath.Join(root, "scripts")
	require.NoError(t, os.MkdirAll(plain, 0755))

	files, dirs, err := splitInputs([]string{bundle, plain}, decompile.New(decompile.Config{}))
	require.NoError(t, err)
	assert.Equal(t, []string{bundle}, files)
	assert.Equal(t, []string{plain}, dirs)
}

func TestExecuteGenerate_IncrementalRuns(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Text.applescript"), helperSource)

	run := func(force bool) string {
		var out bytes.Buffer
		err := executeGenerate(context.Background(), testConfig(), root, generateOptions{
			Paths: []string{root},
			Force: force,
		}, &out, logging.Nop())
		require.NoError(t, err)
		return out.String()
	}

	first := run(false)
	assert.Contains(t, first, "✓ Generated 1 document(s)")
	assert.FileExists(t, config.StatePath(root))

	second := run(false)
	assert.Contains(t, second, "✓ Generated 0 document(s)")
	assert.Contains(t, second, "1 unchanged script(s) skipped")

	forced := run(true)
	assert.Contains(t, forced, "✓ Generated 1 document(s)")
	assert.NotContains(t, forced, "skipped")
}
