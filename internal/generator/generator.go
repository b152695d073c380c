// Package generator drives documentation generation: it normalizes an input
// script, parses and renders it, and writes the markdown next to the input
// or into an output directory. Batch runs discover inputs with glob
// patterns and keep going past individual failures.
package generator

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/logging"
	"github.com/mvp-joe/scriptdoc/internal/render"
	"github.com/mvp-joe/scriptdoc/internal/script"
	"github.com/rs/zerolog"
)

// PathPlaceholder in a URL prefix is replaced by the input's path relative
// to the root directory.
const PathPlaceholder = "{path}"

// Options configures a Generator.
type Options struct {
	RootDir   string   // base for relative paths (default: ".")
	OutputDir string   // empty writes next to each input
	Extension string   // output extension (default: ".md")
	URLPrefix string   // may contain {path}
	Title     string   // overrides the derived title; meant for single inputs
	Include   []string // batch include globs
	Ignore    []string // batch ignore globs
	Force     bool     // regenerate inputs the state store reports as up to date
}

// Result describes one generated document.
type Result struct {
	Input    string
	Output   string // empty when nothing was written
	Markdown string
	Lines    int
	Sections int
}

// Failure records an input that could not be generated.
type Failure struct {
	Input string
	Err   error
}

// Stats summarizes a batch run.
type Stats struct {
	RunID      string
	Discovered int
	Generated  int
	Skipped    int // unchanged since the last run
	Failed     int
	Failures   []Failure
	Elapsed    time.Duration
}

// Generator turns script inputs into markdown documents.
type Generator struct {
	opts       Options
	normalizer decompile.Normalizer
	writer     *AtomicWriter
	progress   ProgressReporter
	state      StateStore
	log        zerolog.Logger
}

// New creates a Generator. A nil normalizer uses the default decompiler.
func New(opts Options, normalizer decompile.Normalizer, log zerolog.Logger) *Generator {
	if opts.RootDir == "" {
		opts.RootDir = "."
	}
	if opts.Extension == "" {
		opts.Extension = ".md"
	}
	if normalizer == nil {
		normalizer = decompile.New(decompile.Config{})
	}

	return &Generator{
		opts:       opts,
		normalizer: normalizer,
		writer:     NewAtomicWriter(),
		progress:   &NoOpProgressReporter{},
		log:        logging.Component(log, "generator"),
	}
}

// SetProgressReporter installs the reporter used by GenerateAll.
func (g *Generator) SetProgressReporter(p ProgressReporter) {
	if p == nil {
		p = &NoOpProgressReporter{}
	}
	g.progress = p
}

// Load normalizes and parses input.
func (g *Generator) Load(ctx context.Context, input string) (*script.Document, error) {
	text, err := g.normalizer.Normalize(ctx, input)
	if err != nil {
		return nil, err
	}
	return script.Parse(text), nil
}

// RenderOptions returns the title and resolved URL prefix for input.
func (g *Generator) RenderOptions(input string) render.Options {
	return render.Options{
		Title:     g.title(input),
		URLPrefix: g.urlPrefix(input),
	}
}

// RootDir is the base directory for relative paths.
func (g *Generator) RootDir() string {
	return g.opts.RootDir
}

// Render produces the document for input without writing it.
func (g *Generator) Render(ctx context.Context, input string) (*Result, error) {
	doc, err := g.Load(ctx, input)
	if err != nil {
		return nil, err
	}

	markdown := render.Render(doc, g.RenderOptions(input))

	return &Result{
		Input:    input,
		Markdown: markdown,
		Lines:    len(doc.Lines),
		Sections: render.Sections(doc),
	}, nil
}

// Generate renders input and writes the document atomically.
func (g *Generator) Generate(ctx context.Context, input string) (*Result, error) {
	res, err := g.Render(ctx, input)
	if err != nil {
		return nil, err
	}

	output := g.OutputPath(input)
	if err := g.writer.Write(output, res.Markdown); err != nil {
		return nil, err
	}
	res.Output = output
	g.record(ctx, res)

	g.log.Debug().
		Str("input", input).
		Str("output", output).
		Int("lines", res.Lines).
		Int("sections", res.Sections).
		Msg("generated")

	return res, nil
}

// GenerateAll generates every input discovered under root. Inputs the state
// store reports as unchanged are skipped. Individual failures are collected
// in the stats; only discovery errors and context cancellation abort the run.
func (g *Generator) GenerateAll(ctx context.Context, root string) (*Stats, error) {
	start := time.Now()
	stats := &Stats{RunID: uuid.NewString()}
	log := g.log.With().Str("run_id", stats.RunID).Logger()

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", decompile.ErrInputNotFound, root)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	discovery, err := g.NewDiscovery(root)
	if err != nil {
		return nil, err
	}

	g.progress.OnDiscoveryStart()
	inputs, err := discovery.Discover()
	if err != nil {
		return nil, fmt.Errorf("failed to discover inputs: %w", err)
	}
	stats.Discovered = len(inputs)
	g.progress.OnDiscoveryComplete(len(inputs))
	log.Debug().Str("root", root).Int("inputs", len(inputs)).Msg("discovery complete")

	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			stats.Elapsed = time.Since(start)
			return stats, err
		}

		if g.upToDate(ctx, input) {
			stats.Skipped++
			log.Debug().Str("input", input).Msg("unchanged, skipping")
			g.progress.OnFileProcessed(input, nil)
			continue
		}

		_, err := g.Generate(ctx, input)
		if err != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{Input: input, Err: err})
			log.Warn().Err(err).Str("input", input).Msg("generation failed")
		} else {
			stats.Generated++
		}
		g.progress.OnFileProcessed(input, err)
	}

	stats.Elapsed = time.Since(start)
	g.progress.OnComplete(stats)
	log.Info().
		Int("generated", stats.Generated).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.Elapsed).
		Msg("batch complete")

	return stats, nil
}

// NewDiscovery builds the input discovery for root, excluding the output
// directory.
func (g *Generator) NewDiscovery(root string) (*Discovery, error) {
	discovery, err := NewDiscovery(root, g.opts.Include, g.opts.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid path pattern: %w", err)
	}
	if g.opts.OutputDir != "" {
		discovery.Exclude(g.opts.OutputDir)
	}
	return discovery, nil
}

// OutputPath is where the document for input is written. With an output
// directory the input's directory layout under the root is mirrored.
func (g *Generator) OutputPath(input string) string {
	name := g.title(input) + g.opts.Extension
	if g.opts.OutputDir == "" {
		return filepath.Join(filepath.Dir(input), name)
	}

	rel, ok := g.relative(input)
	if !ok {
		return filepath.Join(g.opts.OutputDir, name)
	}
	return filepath.Join(g.opts.OutputDir, filepath.FromSlash(path.Dir(rel)), name)
}

// title is the configured title or the input's base name without extension.
func (g *Generator) title(input string) string {
	if g.opts.Title != "" {
		return g.opts.Title
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (g *Generator) urlPrefix(input string) string {
	if !strings.Contains(g.opts.URLPrefix, PathPlaceholder) {
		return g.opts.URLPrefix
	}
	rel, ok := g.relative(input)
	if !ok {
		rel = filepath.Base(input)
	}
	return strings.ReplaceAll(g.opts.URLPrefix, PathPlaceholder, rel)
}

// relative returns input relative to the root, slash-separated, and whether
// it lies inside the root.
func (g *Generator) relative(input string) (string, bool) {
	root, err := filepath.Abs(g.opts.RootDir)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return rel, true
}
