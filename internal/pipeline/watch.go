package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/AnyUserName/memecap/internal/manifest"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long a file must stay quiet before it is
// processed.
const DefaultDebounce = 500 * time.Millisecond

// Watcher processes image files as they are created or rewritten in a
// directory.
type Watcher struct {
	proc     *Processor
	inDir    string
	outDir   string
	log      *zap.Logger
	Debounce time.Duration

	// OnResult, if set, is called after every processed file.
	OnResult func(src Source, img manifest.Image, err error)

	mu      sync.Mutex
	pending map[string]*time.Timer
	written map[string]struct{}
	wg      sync.WaitGroup
}

// NewWatcher creates a watcher writing outputs to outDir.
func NewWatcher(proc *Processor, inDir, outDir string, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		proc:     proc,
		inDir:    inDir,
		outDir:   outDir,
		log:      log,
		Debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
		written:  make(map[string]struct{}),
	}
}

// Run watches until ctx is cancelled, then waits for in-flight files.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.inDir); err != nil {
		return fmt.Errorf("watch %s: %w", w.inDir, err)
	}
	w.log.Info("watching", zap.String("dir", w.inDir), zap.String("out", w.outDir))

	defer w.wg.Wait()
	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if strings.HasPrefix(filepath.Base(event.Name), ".") || !IsImage(event.Name) {
				continue
			}
			if w.isOutput(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.Debounce, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.handle(ctx, path)
	})
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
}

// isOutput reports whether path is a file the watcher wrote itself, which
// happens when the output directory is the watched one.
func (w *Watcher) isOutput(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.written[filepath.Clean(path)]
	return ok
}

func (w *Watcher) markWritten(img manifest.Image) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, rel := range []string{img.Main.Path, img.Thumb.Path} {
		w.written[filepath.Join(w.outDir, filepath.FromSlash(rel))] = struct{}{}
	}
}

func (w *Watcher) handle(ctx context.Context, path string) {
	if w.isOutput(path) {
		return
	}
	rel, err := filepath.Rel(w.inDir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	src := Source{Location: path, Key: KeyFor(rel), Format: formatFor(path)}

	var img manifest.Image
	res, err := w.proc.Process(ctx, path)
	if err == nil {
		img, err = WriteResult(w.outDir, src, res)
		if err == nil {
			w.markWritten(img)
		}
	}
	if err != nil {
		w.log.Error("process failed", zap.String("file", rel), zap.Error(err))
	} else {
		w.log.Info("processed", zap.String("file", rel), zap.String("main", img.Main.Path))
	}
	if w.OnResult != nil {
		w.OnResult(src, img, err)
	}
}
