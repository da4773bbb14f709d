package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/penwyp/timecat/logging"
)

// Watcher watches the configuration file for changes and reloads it so the
// tracker can pick up tunables (idle threshold, poll interval) without a
// restart.
type Watcher struct {
	path      string
	config    *Config
	loader    *Loader
	onChange  func(*Config)
	watcher   *fsnotify.Watcher
	stopCh    chan struct{}
	mu        sync.RWMutex
	debouncer *debouncer
}

// NewWatcher creates a new configuration file watcher
func NewWatcher(path string, onChange func(*Config)) (*Watcher, error) {
	expandedPath := os.ExpandEnv(path)

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	loader := NewLoader()
	loader.AddSource(NewFileSource(expandedPath))
	loader.AddValidator(NewStandardValidator())

	w := &Watcher{
		path:      expandedPath,
		loader:    loader,
		onChange:  onChange,
		watcher:   fsWatcher,
		stopCh:    make(chan struct{}),
		debouncer: newDebouncer(500 * time.Millisecond),
	}

	return w, nil
}

// Start starts watching the configuration file
func (w *Watcher) Start() error {
	cfg, err := w.loader.LoadWithDefaults()
	if err != nil {
		return fmt.Errorf("failed to load initial configuration: %w", err)
	}

	w.mu.Lock()
	w.config = cfg
	w.mu.Unlock()

	if err := w.addWatches(); err != nil {
		return fmt.Errorf("failed to add file watches: %w", err)
	}

	go w.processEvents()
	return nil
}

// Stop stops watching the configuration file
func (w *Watcher) Stop() error {
	close(w.stopCh)
	w.debouncer.stop()
	return w.watcher.Close()
}

// Current returns the current configuration
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// addWatches adds file system watches
func (w *Watcher) addWatches() error {
	if _, err := os.Stat(w.path); err == nil {
		if err := w.watcher.Add(w.path); err != nil {
			return fmt.Errorf("failed to watch config file %s: %w", w.path, err)
		}
	}

	// Watch the directory too so editor rename-on-save is seen
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch config directory %s: %w", dir, err)
	}

	return nil
}

// processEvents processes file system events
func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.LogWarnf("config watcher error: %v", err)

		case <-w.stopCh:
			return
		}
	}
}

// handleEvent handles a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Name != w.path {
		return
	}

	// Debounce rapid successive events
	w.debouncer.debounce(func() {
		w.reloadConfig()
	})
}

// reloadConfig reloads the configuration from file
func (w *Watcher) reloadConfig() {
	if _, err := os.Stat(w.path); os.IsNotExist(err) {
		logging.LogWarnf("config file deleted: %s", w.path)
		return
	}

	cfg, err := w.loader.LoadWithDefaults()
	if err != nil {
		logging.LogErrorf("failed to reload configuration: %v", err)
		return
	}

	w.mu.Lock()
	oldConfig := w.config
	w.config = cfg
	w.mu.Unlock()

	if !w.configChanged(oldConfig, cfg) {
		return
	}

	if w.onChange != nil {
		w.onChange(cfg)
	}

	logging.LogInfof("configuration reloaded from %s", w.path)
}

// configChanged checks if configuration has meaningfully changed
func (w *Watcher) configChanged(old, new *Config) bool {
	if old == nil || new == nil {
		return true
	}
	return fmt.Sprintf("%+v", old) != fmt.Sprintf("%+v", new)
}

// debouncer helps debounce rapid successive events
type debouncer struct {
	delay    time.Duration
	timer    *time.Timer
	callback func()
	mu       sync.Mutex
}

// newDebouncer creates a new debouncer
func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay}
}

// debounce debounces a function call
func (d *debouncer) debounce(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}

	d.callback = callback
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.callback != nil {
			d.callback()
		}
	})
}

// stop cancels any pending debounced call
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.callback = nil
}
