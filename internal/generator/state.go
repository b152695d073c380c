package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"

	"github.com/mvp-joe/scriptdoc/internal/storage"
)

// StateStore remembers what was generated so unchanged inputs can be skipped.
type StateStore interface {
	Lookup(ctx context.Context, input string) (*storage.Entry, error)
	Record(ctx context.Context, e storage.Entry) error
}

var _ StateStore = (*storage.Manifest)(nil)

// SetStateStore enables incremental generation. nil disables it.
func (g *Generator) SetStateStore(s StateStore) {
	g.state = s
}

// upToDate reports whether input's recorded generation matches its current
// content and settings and the output still exists. Any error means "no".
func (g *Generator) upToDate(ctx context.Context, input string) bool {
	if g.state == nil || g.opts.Force {
		return false
	}

	entry, err := g.state.Lookup(ctx, g.stateKey(input))
	if err != nil || entry == nil {
		return false
	}
	if entry.OptionsHash != g.optionsHash(input) {
		return false
	}
	if _, err := os.Stat(entry.Output); err != nil {
		return false
	}

	hash, err := fingerprint(input)
	if err != nil {
		return false
	}
	return hash == entry.InputHash
}

// record stores a successful generation. Failures are logged, not returned.
func (g *Generator) record(ctx context.Context, res *Result) {
	if g.state == nil {
		return
	}

	hash, err := fingerprint(res.Input)
	if err != nil {
		g.log.Warn().Err(err).Str("input", res.Input).Msg("failed to fingerprint input")
		return
	}

	err = g.state.Record(ctx, storage.Entry{
		Input:       g.stateKey(res.Input),
		InputHash:   hash,
		OptionsHash: g.optionsHash(res.Input),
		Output:      res.Output,
		Lines:       res.Lines,
		Sections:    res.Sections,
	})
	if err != nil {
		g.log.Warn().Err(err).Str("input", res.Input).Msg("failed to record generation")
	}
}

// stateKey identifies input in the manifest: its root-relative path when it
// lies under the root, else its absolute path.
func (g *Generator) stateKey(input string) string {
	if rel, ok := g.relative(input); ok {
		return rel
	}
	if abs, err := filepath.Abs(input); err == nil {
		return abs
	}
	return input
}

// optionsHash digests every setting that changes the rendered page.
func (g *Generator) optionsHash(input string) string {
	opts := g.RenderOptions(input)
	h := sha256.New()
	for _, p := range []string{opts.Title, opts.URLPrefix, g.OutputPath(input)} {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// fingerprint hashes a file, or every file of a bundle directory in walk
// order together with its relative path.
func fingerprint(input string) (string, error) {
	h := sha256.New()
	err := filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(input, path)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(h, f)
		return err
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
