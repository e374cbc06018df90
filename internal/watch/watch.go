// Package watch turns file system events under the source tree into
// debounced, classified change batches.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/pageinject/internal/foundation/errors"
	"git.home.luguber.info/inful/pageinject/internal/injector"
	"git.home.luguber.info/inful/pageinject/internal/logfields"
	"git.home.luguber.info/inful/pageinject/internal/pathglob"
)

// Default debounce windows.
const (
	DefaultQuietWindow = 200 * time.Millisecond
	DefaultMaxDelay    = 2 * time.Second
)

// Handler receives one batch of changes. Batches are delivered one at a time
// from the Run goroutine, in first-seen order, without ignored paths.
type Handler func(ctx context.Context, changes []Change)

// Options configures a Watcher.
type Options struct {
	// QuietWindow is how long the tree must stay quiet before a batch is delivered.
	QuietWindow time.Duration
	// MaxDelay bounds how long a continuous burst can postpone delivery.
	MaxDelay time.Duration
	Logger   *slog.Logger
}

// Watcher watches the source root, the manifest directory and the watchFile
// pattern bases.
type Watcher struct {
	classifier Classifier
	handler    Handler
	opts       Options
	logger     *slog.Logger
	fs         *fsnotify.Watcher
	ready      chan struct{}

	pending []Change
	index   map[string]int
}

// New creates a Watcher. Call Run to start it.
func New(classifier Classifier, handler Handler, opts Options) (*Watcher, error) {
	if handler == nil {
		return nil, ferrors.ValidationError("watch handler is required").Build()
	}
	if classifier.Root == "" {
		return nil, ferrors.ValidationError("watch root is required").Build()
	}
	if opts.QuietWindow <= 0 {
		opts.QuietWindow = DefaultQuietWindow
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = DefaultMaxDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create file watcher").Build()
	}

	return &Watcher{
		classifier: classifier,
		handler:    handler,
		opts:       opts,
		logger:     logger,
		fs:         fw,
		ready:      make(chan struct{}),
		index:      make(map[string]int),
	}, nil
}

// Ready is closed once every directory is registered and events are flowing.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run registers the watched directories and delivers batches until ctx is
// done. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		if err := w.fs.Close(); err != nil {
			w.logger.Error("Error closing file watcher", logfields.Error(err))
		}
	}()

	if err := w.addTree(w.classifier.Root); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to watch source root").
			WithContext("path", w.classifier.Root).
			Build()
	}
	for _, dir := range w.extraDirs() {
		if err := w.addTree(dir); err != nil {
			w.logger.Warn("Failed to watch directory", logfields.Path(dir), logfields.Error(err))
		}
	}
	w.logger.Info("Watching for changes", logfields.Root(w.classifier.Root), logfields.Manifest(w.classifier.Manifest))
	close(w.ready)

	quietTimer := newStoppedTimer()
	maxTimer := newStoppedTimer()
	var quietC, maxC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			quietTimer.Stop()
			maxTimer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.onEvent(event) {
				continue
			}
			resetTimer(quietTimer, w.opts.QuietWindow)
			quietC = quietTimer.C
			if maxC == nil {
				resetTimer(maxTimer, w.opts.MaxDelay)
				maxC = maxTimer.C
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("File watcher error", logfields.Error(err))

		case <-quietC:
			maxTimer.Stop()
			quietC, maxC = nil, nil
			w.flush(ctx)

		case <-maxC:
			quietTimer.Stop()
			quietC, maxC = nil, nil
			w.flush(ctx)
		}
	}
}

// onEvent records event and reports whether a change became pending.
func (w *Watcher) onEvent(event fsnotify.Event) bool {
	kind, ok := kindOf(event.Op)
	if !ok {
		return false
	}

	if kind == injector.ChangeCreate {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
			}
			return false
		}
	}

	class := w.classifier.Classify(event.Name)
	if class == ClassIgnored {
		return false
	}
	// Safe-write editors and sed -i rename a temp file over the manifest,
	// which only surfaces as a Create.
	if class == ClassManifest && kind == injector.ChangeCreate {
		kind = injector.ChangeUpdate
	}
	w.logger.Debug("File change detected",
		logfields.Path(event.Name), logfields.Event(string(kind)), slog.String("class", class.String()))
	w.add(Change{Path: filepath.Clean(event.Name), Kind: kind, Class: class})
	return true
}

func (w *Watcher) add(c Change) {
	if i, ok := w.index[c.Path]; ok {
		w.pending[i].Kind = merge(w.pending[i].Kind, c.Kind)
		return
	}
	w.index[c.Path] = len(w.pending)
	w.pending = append(w.pending, c)
}

func (w *Watcher) flush(ctx context.Context) {
	if len(w.pending) == 0 {
		return
	}
	batch := w.pending
	w.pending = nil
	clear(w.index)
	w.handler(ctx, batch)
}

// extraDirs returns the manifest directory and the existing bases of the
// watchFile patterns that lie outside the source root.
func (w *Watcher) extraDirs() []string {
	var dirs []string
	if w.classifier.Manifest != "" {
		dirs = append(dirs, filepath.Dir(w.classifier.Manifest))
	}
	if w.classifier.BaseDir != "" {
		for _, pattern := range w.classifier.WatchFiles {
			base := filepath.Join(w.classifier.BaseDir, filepath.FromSlash(pathglob.Base(pattern)))
			if info, err := os.Stat(base); err != nil || !info.IsDir() {
				base = filepath.Dir(base)
			}
			dirs = append(dirs, base)
		}
	}

	out := dirs[:0]
	for _, dir := range dirs {
		if _, inside := relative(w.classifier.Root, dir); inside || dir == w.classifier.Root {
			continue
		}
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		out = append(out, dir)
	}
	return out
}

// addTree watches dir and its subdirectories, skipping hidden directories
// and node_modules.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
}

func skipDir(name string) bool {
	return name == "node_modules" || strings.HasPrefix(name, ".")
}

func kindOf(op fsnotify.Op) (injector.ChangeKind, bool) {
	switch {
	case op.Has(fsnotify.Create):
		return injector.ChangeCreate, true
	case op.Has(fsnotify.Write):
		return injector.ChangeUpdate, true
	case op.Has(fsnotify.Remove), op.Has(fsnotify.Rename):
		return injector.ChangeDelete, true
	default:
		return "", false
	}
}

func newStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}

func resetTimer(t *time.Timer, after time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(after)
}
