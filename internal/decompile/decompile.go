// Package decompile turns an input file into canonical decompiled script
// text: tab indentation and "\n" line endings.
//
// Compiled scripts are handed to an external decompiler (osadecompile on
// macOS). Plain-text sources are first compiled to a temporary script
// (osacompile) and decompiled from there, which normalizes indentation and
// keywords. When either tool is not installed, text sources are read as
// they are. Either way the result goes through Canonicalize before it
// reaches the parser.
package decompile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultCommand is the macOS script decompiler.
	DefaultCommand = "osadecompile"

	// DefaultCompileCommand is the macOS script compiler, run as
	// "<command> -o <output> <input>".
	DefaultCompileCommand = "osacompile"

	// DefaultTimeout bounds a single decompiler run.
	DefaultTimeout = 30 * time.Second
)

// DefaultCompiledExtensions are the inputs that need the external decompiler.
var DefaultCompiledExtensions = []string{".scpt", ".scptd"}

var (
	// ErrInputNotFound indicates the input path does not exist
	ErrInputNotFound = errors.New("input not found")

	// ErrInputUnreadable indicates the input exists but cannot be read
	ErrInputUnreadable = errors.New("input unreadable")

	// ErrDecompileFailed indicates the decompiler exited with an error
	ErrDecompileFailed = errors.New("decompile failed")

	// ErrCompileFailed indicates the compiler rejected a text source
	ErrCompileFailed = errors.New("compile failed")

	// ErrDecompileTimeout indicates the decompiler exceeded its timeout
	ErrDecompileTimeout = errors.New("decompile timed out")
)

// Normalizer produces canonical script text for an input path.
type Normalizer interface {
	Normalize(ctx context.Context, path string) (string, error)
}

// Config configures a Decompiler.
type Config struct {
	Command            string
	Args               []string // extra arguments placed before the input path
	CompileCommand     string   // compiler for text sources
	RawText            bool     // read text sources as they are, without compiling
	Timeout            time.Duration
	CompiledExtensions []string
}

// Decompiler is the default Normalizer.
type Decompiler struct {
	command  string
	args     []string
	compile  string
	rawText  bool
	timeout  time.Duration
	compiled map[string]bool
	lookPath func(string) (string, error)
}

// New creates a Decompiler, filling unset fields with defaults.
func New(cfg Config) *Decompiler {
	if cfg.Command == "" {
		cfg.Command = DefaultCommand
	}
	if cfg.CompileCommand == "" {
		cfg.CompileCommand = DefaultCompileCommand
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CompiledExtensions == nil {
		cfg.CompiledExtensions = DefaultCompiledExtensions
	}

	compiled := make(map[string]bool, len(cfg.CompiledExtensions))
	for _, ext := range cfg.CompiledExtensions {
		compiled[strings.ToLower(ext)] = true
	}

	return &Decompiler{
		command:  cfg.Command,
		args:     cfg.Args,
		compile:  cfg.CompileCommand,
		rawText:  cfg.RawText,
		timeout:  cfg.Timeout,
		compiled: compiled,
		lookPath: exec.LookPath,
	}
}

var _ Normalizer = (*Decompiler)(nil)

// IsCompiled reports whether path is routed through the external decompiler.
func (d *Decompiler) IsCompiled(path string) bool {
	return d.compiled[strings.ToLower(filepath.Ext(path))]
}

// Normalize returns the canonical text of the script at path.
func (d *Decompiler) Normalize(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return "", fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}

	if d.IsCompiled(path) {
		return d.decompile(ctx, path, path)
	}

	if d.CompilesText() {
		return d.roundTrip(ctx, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInputUnreadable, path, err)
	}
	return Canonicalize(string(data)), nil
}

// CompilesText reports whether text sources take the compile and decompile
// round trip. It is false when RawText is set or either tool is missing.
func (d *Decompiler) CompilesText() bool {
	if d.rawText {
		return false
	}
	if _, err := d.lookPath(d.compile); err != nil {
		return false
	}
	_, err := d.lookPath(d.command)
	return err == nil
}

// roundTrip compiles a text source into a temporary script and decompiles it.
func (d *Decompiler) roundTrip(ctx context.Context, path string) (string, error) {
	dir, err := os.MkdirTemp("", "scriptdoc-")
	if err != nil {
		return "", fmt.Errorf("failed to create compile directory: %w", err)
	}
	defer os.RemoveAll(dir)

	base := filepath.Base(path)
	compiled := filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+".scpt")

	if _, err := d.run(ctx, ErrCompileFailed, path, d.compile, "-o", compiled, path); err != nil {
		return "", err
	}
	return d.decompile(ctx, compiled, path)
}

// decompile runs the decompiler on a compiled script. Errors name input,
// the path the caller asked for.
func (d *Decompiler) decompile(ctx context.Context, compiled, input string) (string, error) {
	args := append(append([]string{}, d.args...), compiled)
	out, err := d.run(ctx, ErrDecompileFailed, input, d.command, args...)
	if err != nil {
		return "", err
	}
	return Canonicalize(out), nil
}

// run executes name with args and returns its stdout. A non-zero exit is
// reported as failed, wrapped around the command's stderr.
func (d *Decompiler) run(ctx context.Context, failed error, path, name string, args ...string) (string, error) {
	execCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: %s after %s", ErrDecompileTimeout, path, d.timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s: %s", failed, path, msg)
		}
		return "", fmt.Errorf("%w: %s: %v", failed, path, err)
	}

	return stdout.String(), nil
}

// Canonicalize converts "\r\n" and lone "\r" line endings to "\n".
func Canonicalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
