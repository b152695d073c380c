package generator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// configDir is never searched for inputs.
const configDir = ".scriptdoc"

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
}

// Discovery finds script inputs under a root directory with glob patterns
// and ignore rules. Patterns match slash-separated paths relative to the root.
type Discovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
	excluded       []string // relative directories skipped outright
}

// NewDiscovery creates a discovery for rootDir.
func NewDiscovery(rootDir string, include, ignore []string) (*Discovery, error) {
	d := &Discovery{
		rootDir:  rootDir,
		excluded: []string{configDir},
	}

	var err error
	if d.includes, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if d.ignorePatterns, err = compilePatterns(ignore); err != nil {
		return nil, err
	}

	return d, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledPattern{pattern: pattern, glob: g})
	}
	return compiled, nil
}

// Exclude skips dir and everything below it. Directories outside the root
// are ignored.
func (d *Discovery) Exclude(dir string) {
	rel, ok := d.relative(dir)
	if !ok || rel == "." {
		return
	}
	d.excluded = append(d.excluded, rel)
}

// Discover walks the tree and returns matching inputs in lexical order.
// A directory that matches an include pattern (a script bundle) is
// returned as a single input and not descended into.
func (d *Discovery) Discover() ([]string, error) {
	inputs := []string{}

	err := filepath.Walk(d.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(d.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		if relPath == "." {
			return nil
		}

		if d.ShouldIgnore(relPath) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Matches(relPath) {
			inputs = append(inputs, path)
			if info.IsDir() {
				return filepath.SkipDir
			}
		}

		return nil
	})

	return inputs, err
}

// ShouldIgnore checks if a relative path is excluded or matches any ignore
// pattern.
func (d *Discovery) ShouldIgnore(relPath string) bool {
	for _, dir := range d.excluded {
		if relPath == dir || strings.HasPrefix(relPath, dir+"/") {
			return true
		}
	}

	if matchesAnyPattern(relPath, d.ignorePatterns) {
		return true
	}

	// "node_modules" should match pattern "node_modules/**"
	return matchesAnyPattern(relPath+"/**", d.ignorePatterns)
}

// Matches checks if a relative path matches any include pattern.
func (d *Discovery) Matches(relPath string) bool {
	return matchesAnyPattern(relPath, d.includes)
}

// relative returns path relative to the root, slash-separated, and whether
// it lies inside the root.
func (d *Discovery) relative(path string) (string, bool) {
	root, err := filepath.Abs(d.rootDir)
	if err != nil {
		return "", false
	}
	abs, err := filepath.Abs(path)
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

func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
	}

	// Root files have no slash, so "**/*.applescript" would miss
	// "Mail.applescript". Retry those with the **/ prefix removed.
	if !strings.Contains(path, "/") {
		for _, cp := range patterns {
			if !strings.HasPrefix(cp.pattern, "**/") {
				continue
			}
			simplified, err := glob.Compile(strings.TrimPrefix(cp.pattern, "**/"), '/')
			if err == nil && simplified.Match(path) {
				return true
			}
		}
	}

	return false
}
