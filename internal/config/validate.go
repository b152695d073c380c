package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/mvp-joe/scriptdoc/internal/logging"
)

var (
	// ErrEmptyCommand indicates a missing decompiler command
	ErrEmptyCommand = errors.New("empty decompiler command")

	// ErrInvalidTimeout indicates a non-positive decompiler timeout
	ErrInvalidTimeout = errors.New("invalid decompiler timeout")

	// ErrInvalidExtension indicates an extension without a leading dot
	ErrInvalidExtension = errors.New("invalid extension")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidLogLevel indicates an unknown log level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid path pattern")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateOutput(&cfg.Output); err != nil {
		errs = append(errs, err)
	}

	if err := validateDecompiler(&cfg.Decompiler); err != nil {
		errs = append(errs, err)
	}

	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	if _, err := logging.ParseLevel(cfg.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidLogLevel, err))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateOutput(cfg *OutputConfig) error {
	if !strings.HasPrefix(cfg.Extension, ".") {
		return fmt.Errorf("%w: output extension must start with '.', got '%s'", ErrInvalidExtension, cfg.Extension)
	}
	return nil
}

func validateDecompiler(cfg *DecompilerConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.Command) == "" {
		errs = append(errs, fmt.Errorf("%w: command is required", ErrEmptyCommand))
	}

	if !cfg.RawText && strings.TrimSpace(cfg.CompileCommand) == "" {
		errs = append(errs, fmt.Errorf("%w: compile_command is required unless raw_text is set", ErrEmptyCommand))
	}

	if cfg.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds must be positive, got %d", ErrInvalidTimeout, cfg.TimeoutSeconds))
	}

	for _, ext := range cfg.CompiledExtensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Errorf("%w: compiled extension must start with '.', got '%s'", ErrInvalidExtension, ext))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	var errs []error

	patterns := append(append([]string{}, cfg.Include...), cfg.Ignore...)
	for _, p := range patterns {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, p, err))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// A single error is returned unchanged so errors.Is keeps working.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return &multiError{
		errs: errs,
		msg:  fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - ")),
	}
}

// multiError keeps every joined error reachable through errors.Is.
type multiError struct {
	errs []error
	msg  string
}

func (m *multiError) Error() string   { return m.msg }
func (m *multiError) Unwrap() []error { return m.errs }
