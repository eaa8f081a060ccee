package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// File reads the key from a single file.
//
// This supports Kubernetes-style secret mounting where the key is projected
// as a file. Permissions are validated so an accidentally world-readable key
// is rejected (0600 or 0400 only).
//
// The source can optionally watch for changes and drop its cache when the
// file is rotated.
type File struct {
	// Path is the key file location.
	Path string

	// Watch enables change detection for key rotation.
	Watch bool

	mu      sync.RWMutex
	cached  string
	loaded  bool
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
}

// NewFile creates a file source for the given path.
//
// The watcher is attached to the parent directory rather than the file
// itself, because atomic rotation replaces the file and would otherwise
// detach the watch.
func NewFile(path string, watch bool) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("key file path is empty")
	}

	f := &File{
		Path:   path,
		Watch:  watch,
		stopCh: make(chan struct{}),
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}

		dir := filepath.Dir(path)
		if err := watcher.Add(dir); err != nil {
			_ = watcher.Close() // Best effort close on error path
			return nil, fmt.Errorf("failed to watch key file directory: %w", err)
		}

		f.watcher = watcher
		go f.watchLoop()

		slog.Info("file-based key source started with watching", "path", path)
	} else {
		slog.Info("file-based key source started without watching", "path", path)
	}

	return f, nil
}

// APIKey returns the key from the file, reading it on first use and after
// each Refresh.
//
// The file must be a regular file with 0600 or 0400 permissions.
func (f *File) APIKey(ctx context.Context) (string, error) {
	f.mu.RLock()
	if f.loaded {
		key := f.cached
		f.mu.RUnlock()
		return key, nil
	}
	f.mu.RUnlock()

	info, err := os.Stat(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("key file not found: %s", f.Path)
		}
		return "", fmt.Errorf("failed to stat key file: %w", err)
	}

	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("key file is not a regular file: %s", f.Path)
	}

	mode := info.Mode().Perm()
	if mode != 0600 && mode != 0400 {
		return "", fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", f.Path, mode)
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}

	// Trim whitespace (file-based keys commonly end with a newline)
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", fmt.Errorf("key file is empty: %s", f.Path)
	}

	f.mu.Lock()
	f.cached = key
	f.loaded = true
	f.mu.Unlock()

	return key, nil
}

// Name returns the source name.
func (f *File) Name() string {
	return "file"
}

// Refresh drops the cached key, forcing a re-read on the next call.
func (f *File) Refresh(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	slog.Debug("refreshing file-based key cache", "path", f.Path)
	f.cached = ""
	f.loaded = false

	return nil
}

// Close stops the file watcher and cleans up resources.
func (f *File) Close() error {
	if f.watcher != nil {
		close(f.stopCh)
		return f.watcher.Close()
	}
	return nil
}

// watchLoop reacts to changes of the key file and drops the cache so the
// rotated key takes effect without a restart.
func (f *File) watchLoop() {
	base := filepath.Base(f.Path)

	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}

			// The watch covers the whole directory; ignore siblings.
			if filepath.Base(event.Name) != base {
				continue
			}

			if event.Op&fsnotify.Write == fsnotify.Write ||
				event.Op&fsnotify.Create == fsnotify.Create {

				slog.Debug("key file change detected, refreshing",
					"file", base,
					"op", event.Op.String(),
				)

				if err := f.Refresh(context.Background()); err != nil {
					slog.Error("failed to refresh key after file change",
						"error", err,
					)
				}
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}

			slog.Error("key file watcher error", "error", err)

		case <-f.stopCh:
			return
		}
	}
}
