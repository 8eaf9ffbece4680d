package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher is a Source that reloads the credential file whenever it changes on disk.
type Watcher struct {
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.RWMutex
	current Credential
	lastErr error
}

// Watch starts watching the directory holding path. initial is the credential loaded at startup.
func Watch(path string, initial Credential, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create credential watcher: %w", err)
	}
	// Editors and secret mounts replace files by rename, so watch the parent directory.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	w := &Watcher{
		path:    filepath.Clean(path),
		logger:  logger,
		watcher: fw,
		done:    make(chan struct{}),
		current: initial,
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) Current() (Credential, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastErr != nil {
		return Credential{}, fmt.Errorf("%w: %v", ErrRefresh, w.lastErr)
	}
	return w.current, nil
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("credential watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.path)
	if err == nil {
		var cred Credential
		cred, err = Parse(data)
		if err == nil {
			w.mu.Lock()
			w.current = cred
			w.lastErr = nil
			w.mu.Unlock()
			w.logger.Info("credential reloaded", zap.String("path", w.path), zap.String("key_id", cred.PrivateKeyID))
			return
		}
	}
	w.mu.Lock()
	w.lastErr = err
	w.mu.Unlock()
	w.logger.Error("credential reload failed", zap.String("path", w.path), zap.Error(err))
}
