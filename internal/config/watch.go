package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadFunc is invoked with the freshly loaded configuration whenever the
// watched file changes. It runs on the debounce timer's goroutine, not on
// the goroutine that called Watch; callers that need to serialize reload
// with other work should hand off to their own channel.
type ReloadFunc func(*Config)

const debounceDelay = 150 * time.Millisecond

// Watch watches path for changes and calls onReload with the parsed
// configuration after each settled change. It watches the parent directory
// rather than the file itself so atomic renames (the pattern SaveTo uses)
// are still observed. Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, onReload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(path)
	filename := filepath.Base(path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	var mu sync.Mutex
	var timer *time.Timer

	trigger := func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			cfg, err := LoadFrom(path)
			if err != nil {
				return
			}
			onReload(cfg)
		})
		mu.Unlock()
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			mu.Unlock()
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				trigger()
			}

		case _, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}
