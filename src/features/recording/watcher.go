package recording

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultSettleDelay = 5 * time.Second

// SpoolWatcher monitors a drop directory for playback event files written by
// host-side hooks. Each file holds one JSON-encoded PlaybackEvent; ingested
// files are removed, malformed ones are set aside with a .bad suffix so a
// stuck file can't wedge the spool.
//
// A file is only parsed once it has seen no events for settleDelay, so a
// writer still streaming the file cannot get its half-written event set
// aside as malformed.
type SpoolWatcher struct {
	watcher     *fsnotify.Watcher
	service     *Service
	spoolPath   string
	settleDelay time.Duration
	stopChan    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewSpoolWatcher creates a new spool watcher feeding the recording service.
func NewSpoolWatcher(service *Service, spoolPath string) (*SpoolWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &SpoolWatcher{
		watcher:     watcher,
		service:     service,
		spoolPath:   spoolPath,
		settleDelay: defaultSettleDelay,
		stopChan:    make(chan struct{}),
		pending:     make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the spool directory. Files already present from a
// previous run are scheduled for ingestion as well.
func (w *SpoolWatcher) Start(ctx context.Context) error {
	slog.Info("Starting spool watcher", "path", w.spoolPath)

	if err := w.watcher.Add(w.spoolPath); err != nil {
		return err
	}

	w.scheduleExisting(ctx)
	go w.watchLoop(ctx)

	slog.Info("Spool watcher started successfully")
	return nil
}

// Stop stops the spool watcher and cancels pending ingestions.
func (w *SpoolWatcher) Stop() {
	close(w.stopChan)

	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.watcher.Close()
}

func (w *SpoolWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isEventFile(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Spool watcher error", "error", err)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// schedule starts or resets the settle timer for a file. Each Create or
// Write event pushes ingestion back by settleDelay.
func (w *SpoolWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		select {
		case <-w.stopChan:
			return
		default:
		}
		w.ingestFile(ctx, path)
	})
}

// scheduleExisting queues files left over from before the watcher started.
func (w *SpoolWatcher) scheduleExisting(ctx context.Context) {
	entries, err := os.ReadDir(w.spoolPath)
	if err != nil {
		slog.Error("Failed to scan spool directory", "path", w.spoolPath, "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isEventFile(entry.Name()) {
			continue
		}
		w.schedule(ctx, filepath.Join(w.spoolPath, entry.Name()))
	}
}

func (w *SpoolWatcher) ingestFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("Spool file not readable", "file", path, "error", err)
		return
	}

	var event PlaybackEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Warn("Setting aside malformed spool file", "file", path, "error", err)
		w.setAside(path)
		return
	}

	if _, err := w.service.Record(ctx, &event); err != nil {
		slog.Warn("Setting aside unprocessable spool file", "file", path, "error", err)
		w.setAside(path)
		return
	}

	if err := os.Remove(path); err != nil {
		slog.Warn("Failed to remove ingested spool file", "file", path, "error", err)
	}
}

func (w *SpoolWatcher) setAside(path string) {
	if err := os.Rename(path, path+".bad"); err != nil {
		slog.Error("Failed to set aside spool file", "file", path, "error", err)
	}
}

func isEventFile(path string) bool {
	return strings.HasSuffix(path, ".json")
}
