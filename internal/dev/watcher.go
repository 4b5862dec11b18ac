// Package dev implements development-mode support: a file watcher and
// the live-reload WebSocket hub. Production builds never start either.
package dev

import (
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultIgnore are path patterns skipped by the watcher.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"dist",
	"tmp",
	"*_test.go",
	"*.tmp",
	"*.swp",
	"*~",
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Dirs are the directory trees to watch.
	Dirs []string

	// Ignore are glob patterns matched against base names, plus
	// directory names pruned from the walk.
	Ignore []string

	// Debounce coalesces change bursts into one event.
	// Default: 100ms.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher watches directory trees and reports coalesced changes.
type Watcher struct {
	config  WatcherConfig
	fw      *fsnotify.Watcher
	changes chan string
	done    chan struct{}
	once    sync.Once
}

// NewWatcher creates and starts a watcher. Changed file paths arrive
// on Changes, debounced.
func NewWatcher(config WatcherConfig) (*Watcher, error) {
	if config.Debounce <= 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		config:  config,
		fw:      fw,
		changes: make(chan string, 16),
		done:    make(chan struct{}),
	}

	for _, dir := range config.Dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	go w.loop()
	return w, nil
}

// Changes delivers changed paths, one per debounce window.
func (w *Watcher) Changes() <-chan string { return w.changes }

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fw.Close()
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(d.Name()) {
			return filepath.SkipDir
		}
		return w.fw.Add(path)
	})
}

func (w *Watcher) ignored(name string) bool {
	for _, pattern := range w.config.Ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if !strings.ContainsAny(pattern, "*?[") && pattern == name {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending string
	)
	for {
		var timerC <-chan time.Time
		if timer != nil {
			timerC = timer.C
		}
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if w.ignored(filepath.Base(event.Name)) {
				continue
			}
			// New directories join the watch set.
			if event.Op&fsnotify.Create != 0 {
				_ = w.addTree(event.Name)
			}
			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.config.Debounce)
			} else {
				timer.Reset(w.config.Debounce)
			}
		case <-timerC:
			timer = nil
			select {
			case w.changes <- pending:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.config.Logger.Warn("watch error", "err", err)
		}
	}
}
