package generator

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is the quiet period before changed inputs are regenerated.
const DefaultDebounce = 500 * time.Millisecond

// ResultFunc receives the outcome of each regeneration in watch mode.
type ResultFunc func(input string, res *Result, err error)

// Watcher watches a root directory and regenerates inputs as they change.
type Watcher struct {
	gen          *Generator
	discovery    *Discovery
	rootDir      string
	watcher      *fsnotify.Watcher
	debounceTime time.Duration
	onResult     ResultFunc
	log          zerolog.Logger
	stopCh       chan struct{}
	doneCh       chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewWatcher creates a watcher for rootDir. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(gen *Generator, rootDir string, debounce time.Duration) (*Watcher, error) {
	discovery, err := gen.NewDiscovery(rootDir)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		gen:          gen,
		discovery:    discovery,
		rootDir:      rootDir,
		watcher:      watcher,
		debounceTime: debounce,
		onResult:     func(string, *Result, error) {},
		log:          gen.log.With().Str("watch_root", rootDir).Logger(),
		stopCh:       make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if _, err := os.Stat(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}

	if err := w.addDirectoriesRecursively(rootDir); err != nil {
		watcher.Close()
		return nil, err
	}

	return w, nil
}

// OnResult installs the callback for regeneration outcomes. Call it before
// Start.
func (w *Watcher) OnResult(fn ResultFunc) {
	if fn != nil {
		w.onResult = fn
	}
}

// Start begins watching for file changes. It does nothing after the first
// call or after Stop.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.stopped {
		return
	}
	w.started = true
	go w.watch(ctx)
}

// Stop stops the watcher and waits for the event loop to exit. It is safe to
// call more than once, and without a prior Start.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	started := w.started
	w.mu.Unlock()

	close(w.stopCh)
	if started {
		<-w.doneCh
	} else {
		close(w.doneCh)
	}
	w.watcher.Close()
}

// Done is closed once the event loop has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

// watch is the main event loop with debouncing logic.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	regenCh := make(chan struct{}, 1)
	changed := make(map[string]bool)

	stopTimer := func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && w.shouldWatchDirectory(event.Name) {
					if err := w.addDirectoriesRecursively(event.Name); err != nil {
						w.log.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
					}
				}
			}

			if !w.shouldProcessEvent(event) {
				continue
			}
			changed[event.Name] = true

			stopTimer()
			debounceTimer = time.AfterFunc(w.debounceTime, func() {
				select {
				case regenCh <- struct{}{}:
				default:
				}
			})

		case <-regenCh:
			w.regenerate(ctx, changed)
			changed = make(map[string]bool)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// regenerate generates each changed input that still exists.
func (w *Watcher) regenerate(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}

	inputs := make([]string, 0, len(changed))
	for input := range changed {
		inputs = append(inputs, input)
	}
	sort.Strings(inputs)

	w.log.Info().Int("inputs", len(inputs)).Msg("regenerating changed inputs")

	for _, input := range inputs {
		if _, err := os.Stat(input); err != nil {
			w.log.Debug().Str("input", input).Msg("input gone, skipping")
			continue
		}
		res, err := w.gen.Generate(ctx, input)
		if err != nil {
			w.log.Warn().Err(err).Str("input", input).Msg("regeneration failed")
		}
		w.onResult(input, res, err)
	}
}

// shouldProcessEvent checks if an event should trigger regeneration.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}

	relPath, err := filepath.Rel(w.rootDir, event.Name)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)

	if w.discovery.ShouldIgnore(relPath) {
		return false
	}
	return w.discovery.Matches(relPath)
}

// shouldWatchDirectory checks if a directory should be watched.
func (w *Watcher) shouldWatchDirectory(path string) bool {
	relPath, err := filepath.Rel(w.rootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	if relPath == "." {
		return true
	}
	return !w.discovery.ShouldIgnore(relPath)
}

// addDirectoriesRecursively adds all directories in the tree to the watcher.
func (w *Watcher) addDirectoriesRecursively(rootPath string) error {
	return filepath.Walk(rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// One unreadable directory should not stop the watch
			w.log.Warn().Err(err).Str("path", path).Msg("error accessing path")
			return nil
		}

		if !info.IsDir() {
			return nil
		}

		if !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}

		if err := w.watcher.Add(path); err != nil {
			w.log.Warn().Err(err).Str("dir", path).Msg("failed to watch directory")
		}
		return nil
	})
}
