// Package watch feeds .edi files dropped into a directory through the same
// Coordinator path an HTTP POST would use. It infers message_type from the
// UNH segment and container_scope from the file's base name.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nezpik/pistology-tos/internal/edi/ingest"
	"github.com/nezpik/pistology-tos/internal/logging"
	"github.com/nezpik/pistology-tos/internal/types"
)

const debounceWindow = 250 * time.Millisecond

// Watcher watches a directory for .edi files and ingests them.
type Watcher struct {
	dir         string
	coordinator *ingest.Coordinator
	notify      logging.Notifier

	fsw *fsnotify.Watcher

	mu        sync.Mutex
	pending   map[string]*time.Timer
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// New starts watching dir. The watcher runs until its context is
// cancelled or Close is called.
func New(dir string, coordinator *ingest.Coordinator, notify logging.Notifier) (*Watcher, error) {
	if notify == nil {
		notify = logging.Noop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:         dir,
		coordinator: coordinator,
		notify:      notify,
		fsw:         fsw,
		pending:     make(map[string]*time.Timer),
	}, nil
}

// Start begins processing filesystem events in the background.
func (w *Watcher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case event, ok := <-w.fsw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if !strings.EqualFold(filepath.Ext(event.Name), ".edi") {
					continue
				}
				w.debounce(ctx, event.Name)

			case err, ok := <-w.fsw.Errors:
				if !ok {
					return
				}
				w.notify.Warnf("folder watcher error: %v", err)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// debounce collapses repeated events for the same path within
// debounceWindow into a single ingest attempt. Each scheduled timer is
// tracked on w.wg so Close can't return while a debounced ingest is
// still in flight.
func (w *Watcher) debounce(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		if t.Stop() {
			// Timer was cancelled before firing; its callback, and the
			// wg.Done it would have run, never happens - account for it
			// here instead.
			w.wg.Done()
		}
	}
	w.wg.Add(1)
	var self *time.Timer
	self = time.AfterFunc(debounceWindow, func() {
		defer w.wg.Done()
		w.mu.Lock()
		// A new event for this path may have raced this timer's fire
		// against debounce() replacing the map entry; only the timer
		// still installed for path is allowed to proceed, so a
		// superseded fire neither deletes the newer entry nor
		// double-ingests.
		current, stillCurrent := w.pending[path]
		if stillCurrent && current == self {
			delete(w.pending, path)
		}
		w.mu.Unlock()
		if !stillCurrent || current != self {
			return
		}
		w.ingestFile(ctx, path)
	})
	w.pending[path] = self
}

func (w *Watcher) ingestFile(ctx context.Context, path string) {
	content, err := os.ReadFile(path) // #nosec G304 - path comes from our own directory watch, not user input
	if err != nil {
		w.notify.Warnf("folder watcher: read %s: %v", path, err)
		return
	}

	messageType, ok := inferMessageType(string(content))
	if !ok {
		w.notify.Warnf("folder watcher: %s has no recognizable UNH message type, skipping", path)
		return
	}

	scope := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	view, err := w.coordinator.Ingest(ctx, ingest.Request{
		ContainerScope: scope,
		MessageType:    messageType,
		Content:        string(content),
	})
	if err != nil {
		w.notify.Warnf("folder watcher: ingest %s failed: %v", path, err)
		return
	}
	w.notify.Infof("folder watcher: ingested %s as %s envelope %d", path, messageType, view.ID)
}

// inferMessageType reads the first sub-component of the UNH segment's
// third field, e.g. "UNH+1+BAPLIE:D:95B:UN" -> BAPLIE. The UNH tag and
// the message type are matched case-insensitively.
func inferMessageType(content string) (types.MessageType, bool) {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(strings.ToUpper(line), "UNH") {
			continue
		}
		fields := strings.Split(line, "+")
		if len(fields) < 3 {
			return "", false
		}
		sub := strings.Split(fields[2], ":")
		mt := types.MessageType(strings.ToUpper(sub[0]))
		if mt.Valid() {
			return mt, true
		}
		return "", false
	}
	return "", false
}

// Close stops the watcher, cancels any debounce timers that haven't
// fired yet, and waits for the event loop and any in-flight debounced
// ingest to finish before releasing resources.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}

	w.mu.Lock()
	for _, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.mu.Unlock()

	w.wg.Wait()

	return w.fsw.Close()
}
