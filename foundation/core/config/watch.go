// File: watch.go
// Title: Configuration File Watching Implementation
// Description: Reloads a configuration file when it changes on disk and
//              notifies registered change handlers. The parent directory is
//              watched so that editors which replace the file on save are
//              picked up.
// Author: msto63
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2026-10-19
//
// Change History:
// - 2025-01-25 v0.1.0: Initial polling implementation
// - 2026-10-19 v0.2.0: Replaced polling with fsnotify

package config

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

func (c *Config) startWatching() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return mdwerror.Wrap(err, "failed to create file watcher").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.startWatching")
	}

	dir := filepath.Dir(c.filePath)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return mdwerror.Wrap(err, "failed to watch config directory").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.startWatching").
			WithDetail("dir", dir)
	}

	c.watcher = watcher
	c.done = make(chan struct{})
	go c.watchLoop(watcher, c.done)
	return nil
}

func (c *Config) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	target := filepath.Clean(c.filePath)
	for {
		select {
		case <-done:
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				// reload errors keep the previous data; a half-written
				// file is retried on the next write event
				_ = c.reload()
			}
		case _, ok := <-watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// reload re-reads the file and notifies handlers with snapshots of the old
// and new data
func (c *Config) reload() error {
	content, err := os.ReadFile(c.filePath)
	if err != nil {
		return mdwerror.Wrap(err, "failed to read config file during reload").
			WithCode(mdwerror.CodeConfigError).
			WithOperation("config.reload").
			WithDetail("filePath", c.filePath)
	}

	newData, err := parseContent(content, c.format)
	if err != nil {
		return mdwerror.Wrap(err, "failed to parse config file during reload").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("config.reload").
			WithDetail("filePath", c.filePath)
	}

	c.mu.Lock()
	oldConfig := &Config{data: deepCopyMap(c.data), format: c.format, envPrefix: c.envPrefix}
	c.data = mergeDefaults(newData, c.defaults)
	newConfig := &Config{data: deepCopyMap(c.data), format: c.format, envPrefix: c.envPrefix}
	watchers := append([]ChangeHandler(nil), c.watchers...)
	c.mu.Unlock()

	for _, handler := range watchers {
		if handler != nil {
			handler(oldConfig, newConfig)
		}
	}
	return nil
}

// StopWatching stops file monitoring
func (c *Config) StopWatching() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watcher == nil {
		return
	}
	close(c.done)
	c.watcher.Close()
	c.watcher = nil
}

// IsWatching returns whether file monitoring is active
func (c *Config) IsWatching() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.watcher != nil
}
