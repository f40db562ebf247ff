package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ReloadCallback is invoked after a successful hot reload with the
// previous and newly-loaded configuration.
type ReloadCallback func(oldConfig, newConfig *Config)

// Watcher reloads Config from disk whenever the watched file changes,
// debouncing bursts of filesystem events into a single reload.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	configFile string
	current    *Config
	callbacks  []ReloadCallback
	mu         sync.RWMutex
	cancel     context.CancelFunc
	done       chan struct{}
	log        *logrus.Entry
}

// NewWatcher builds a Watcher for configFile, seeded with the config
// already loaded from it.
func NewWatcher(configFile string, initial *Config, log *logrus.Entry) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Watcher{
		fsWatcher:  fw,
		configFile: configFile,
		current:    initial,
		done:       make(chan struct{}),
		log:        log,
	}, nil
}

// AddCallback registers fn to run after every successful reload.
func (w *Watcher) AddCallback(fn ReloadCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Start begins watching the config file's directory for changes. The
// caller must call Stop to release the underlying fsnotify watcher.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.configFile)
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("watching config directory %s: %w", dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.loop(ctx)
	return nil
}

// Stop halts the watcher and closes the underlying fsnotify handle.
func (w *Watcher) Stop() error {
	if w.cancel != nil {
		w.cancel()
	}
	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		w.log.Warn("config watcher stop timed out")
	}
	return w.fsWatcher.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)

	debounce := time.NewTimer(0)
	if !debounce.Stop() {
		<-debounce.C
	}

	target := filepath.Base(w.configFile)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				debounce.Reset(300 * time.Millisecond)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("config watcher error")

		case <-debounce.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	newCfg, err := Load(w.configFile)
	if err != nil {
		w.log.WithError(err).Error("config hot reload failed, keeping previous config")
		return
	}

	w.mu.Lock()
	oldCfg := w.current
	w.current = newCfg
	callbacks := make([]ReloadCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()

	w.log.Info("config reloaded")
	for _, cb := range callbacks {
		cb(oldCfg, newCfg)
	}
}

// Current returns the most recently loaded configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
