// File: config/config.go
// Package config implements the file-backed, hot-reloadable configuration
// store (spec §5 "Global services... process-scoped", §6 "Environment").
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Store keeps the teacher's control/config.go shape — a mutex-guarded map
// with atomic snapshot and a list of reload listeners — and adds file
// loading via sigs.k8s.io/yaml and a github.com/fsnotify/fsnotify watcher,
// since the teacher never needed a file-backed config (its ConfigStore is
// populated entirely over the wire).

package config

import (
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"sigs.k8s.io/yaml"
)

// Values is the decoded shape of a tizonia-go config file: a default URI, a
// verbosity level, and a free-form per-component key bag (credentials,
// device ids) keyed by role; Component(role) returns that role's whole bag
// (spec §6 "Environment").
type Values struct {
	DefaultURI string         `json:"defaultUri"`
	Verbosity  int            `json:"verbosity"`
	Components map[string]any `json:"components"`
}

// Store is a dynamic, file-backed config with snapshot and reload listeners.
type Store struct {
	mu        sync.RWMutex
	values    Values
	listeners []func(Values)

	watcher *fsnotify.Watcher
	path    string
}

// Load reads and decodes a YAML config file into a new Store.
func Load(path string) (*Store, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v Values
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return &Store{values: v, path: path}, nil
}

// Snapshot returns a copy of the current decoded values.
func (s *Store) Snapshot() Values {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values
}

// Component returns one component's config bag by role, if present.
func (s *Store) Component(role string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values.Components[role]
	return v, ok
}

// OnReload registers a listener invoked (on its own goroutine) whenever the
// config file changes on disk.
func (s *Store) OnReload(fn func(Values)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Watch starts an fsnotify watch on the config file; each write event
// reloads the file and dispatches every registered listener. Call Close to
// stop watching.
func (s *Store) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(s.path); err != nil {
		w.Close()
		return err
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					s.reload()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()
	return nil
}

func (s *Store) reload() {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var v Values
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return
	}
	s.mu.Lock()
	s.values = v
	listeners := make([]func(Values), len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()
	for _, fn := range listeners {
		go fn(v)
	}
}

// Close stops the file watcher, if one was started.
func (s *Store) Close() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()
	if w == nil {
		return nil
	}
	return w.Close()
}
