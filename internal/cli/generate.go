package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mvp-joe/scriptdoc/internal/config"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/storage"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	outputFlag    string
	urlPrefixFlag string
	titleFlag     string
	stdoutFlag    bool
	quietFlag     bool
	watchFlag     bool
	forceFlag     bool
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [paths...]",
	Short: "Generate markdown documentation for scripts",
	Long: `Generate writes one markdown page per script. Files are documented
directly; directories are searched with the configured include and ignore
patterns (paths.include / paths.ignore).

Each page is written next to its script as <name>.md unless an output
directory is given, in which case the directory layout is mirrored there.

Examples:
  # Document every script under the current directory
  scriptdoc generate

  # Document one script and print the page instead of writing it
  scriptdoc generate Mail.applescript --stdout

  # Link handler headings to the source on GitHub
  scriptdoc generate --url-prefix 'https://github.com/me/repo/blob/main/{path}#L'

  # Regenerate pages as scripts change
  scriptdoc generate scripts --watch
`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output directory (default: next to each script)")
	generateCmd.Flags().StringVar(&urlPrefixFlag, "url-prefix", "", "Link prefix for handler headings; {path} is replaced by the script path")
	generateCmd.Flags().StringVar(&titleFlag, "title", "", "Page title (single file only)")
	generateCmd.Flags().BoolVar(&stdoutFlag, "stdout", false, "Print pages instead of writing files")
	generateCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	generateCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch directories and regenerate changed scripts")
	generateCmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Regenerate scripts even when unchanged since the last run")
}

// generateOptions are the command-line settings of one generate run.
type generateOptions struct {
	Paths     []string
	Output    string
	URLPrefix string
	Title     string
	Stdout    bool
	Quiet     bool
	Watch     bool
	Force     bool
}

func runGenerate(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, rootDir, err := loadConfig()
	if err != nil {
		return err
	}

	opts := generateOptions{
		Paths:     args,
		Output:    outputFlag,
		URLPrefix: urlPrefixFlag,
		Title:     titleFlag,
		Stdout:    stdoutFlag,
		Quiet:     quietFlag,
		Watch:     watchFlag,
		Force:     forceFlag,
	}

	log := newLogger(cfg, opts.Quiet, cmd.ErrOrStderr())
	return executeGenerate(ctx, cfg, rootDir, opts, cmd.OutOrStdout(), log)
}

// executeGenerate runs generate with loaded configuration. Flags override
// the configured output directory and URL prefix.
func executeGenerate(ctx context.Context, cfg *config.Config, rootDir string, opts generateOptions, out io.Writer, log zerolog.Logger) error {
	if len(opts.Paths) == 0 {
		opts.Paths = []string{"."}
	}
	if opts.Output != "" {
		cfg.Output.Dir = opts.Output
	}
	if opts.URLPrefix != "" {
		cfg.Render.URLPrefix = opts.URLPrefix
	}

	normalizer := decompile.New(cfg.DecompileConfig())

	files, dirs, err := splitInputs(opts.Paths, normalizer)
	if err != nil {
		return err
	}
	if err := checkGenerateOptions(opts, files, dirs); err != nil {
		return err
	}

	gen := generator.New(generator.Options{
		RootDir:   rootDir,
		OutputDir: cfg.Output.Dir,
		Extension: cfg.Output.Extension,
		URLPrefix: cfg.Render.URLPrefix,
		Title:     opts.Title,
		Include:   cfg.Paths.Include,
		Ignore:    cfg.Paths.Ignore,
		Force:     opts.Force,
	}, normalizer, log)

	if cfg.Output.Incremental && !opts.Stdout {
		manifest, err := storage.OpenManifest(config.StatePath(rootDir))
		if err != nil {
			return err
		}
		defer manifest.Close()
		gen.SetStateStore(manifest)
	}

	failed := 0
	for _, file := range files {
		if opts.Stdout {
			res, err := gen.Render(ctx, file)
			if err != nil {
				return err
			}
			fmt.Fprint(out, res.Markdown)
			continue
		}

		res, err := gen.Generate(ctx, file)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", file, err)
			failed++
			continue
		}
		if !opts.Quiet {
			fmt.Fprintf(out, "✓ %s → %s (%d lines, %d sections)\n", file, res.Output, res.Lines, res.Sections)
		}
	}

	gen.SetProgressReporter(NewCLIProgressReporter(opts.Quiet, out))
	for _, dir := range dirs {
		stats, err := gen.GenerateAll(ctx, dir)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return fmt.Errorf("generation cancelled")
			}
			return err
		}
		for _, f := range stats.Failures {
			fmt.Fprintf(out, "✗ %s: %v\n", f.Input, f.Err)
		}
		if stats.Skipped > 0 && !opts.Quiet {
			fmt.Fprintf(out, "  %s unchanged script(s) skipped (use --force to regenerate)\n", formatNumber(stats.Skipped))
		}
		failed += stats.Failed
	}

	if opts.Watch {
		if err := watchDirs(ctx, gen, dirs, cfg, out, opts.Quiet); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d script(s) failed", failed)
	}
	return nil
}

// splitInputs separates files from directories. Script bundles are
// directories on disk but count as files.
func splitInputs(paths []string, normalizer *decompile.Decompiler) (files, dirs []string, err error) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil, fmt.Errorf("%w: %s", decompile.ErrInputNotFound, p)
			}
			return nil, nil, fmt.Errorf("%w: %s: %v", decompile.ErrInputUnreadable, p, err)
		}
		if info.IsDir() && !normalizer.IsCompiled(p) {
			dirs = append(dirs, filepath.Clean(p))
		} else {
			files = append(files, p)
		}
	}
	return files, dirs, nil
}

func checkGenerateOptions(opts generateOptions, files, dirs []string) error {
	if opts.Title != "" && (len(files) != 1 || len(dirs) != 0) {
		return fmt.Errorf("--title requires exactly one file input")
	}
	if opts.Stdout && len(dirs) > 0 {
		return fmt.Errorf("--stdout cannot be used with directory inputs")
	}
	if opts.Watch && opts.Stdout {
		return fmt.Errorf("--watch cannot be combined with --stdout")
	}
	if opts.Watch && len(dirs) == 0 {
		return fmt.Errorf("--watch requires at least one directory input")
	}
	return nil
}

// watchDirs regenerates changed scripts under dirs until ctx is cancelled.
func watchDirs(ctx context.Context, gen *generator.Generator, dirs []string, cfg *config.Config, out io.Writer, quiet bool) error {
	for _, dir := range dirs {
		w, err := generator.NewWatcher(gen, dir, cfg.Debounce())
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.OnResult(func(input string, res *generator.Result, err error) {
			if err != nil {
				fmt.Fprintf(out, "✗ %s: %v\n", input, err)
				return
			}
			if !quiet {
				fmt.Fprintf(out, "✓ %s → %s\n", input, res.Output)
			}
		})
		w.Start(ctx)
		defer w.Stop()
	}

	if !quiet {
		fmt.Fprintln(out, "Watching for changes (Ctrl+C to stop)...")
	}
	<-ctx.Done()
	return nil
}
