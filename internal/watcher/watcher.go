// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package watcher redacts PDFs as they appear in a folder.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"finredact/internal/paths"
)

// Handler processes one settled file
type Handler func(ctx context.Context, path string) error

// Options configures a Watcher
type Options struct {
	// Debounce is how long a file must stay quiet before it is handled.
	// Scanners and copy tools write PDFs in several bursts.
	Debounce time.Duration
	// Filter selects the files to handle. Defaults to PDFs that do not
	// carry Suffix.
	Filter func(path string) bool
	Suffix string
	Logger *zap.Logger
}

// Watcher calls a handler for every new or rewritten file in a folder
type Watcher struct {
	dir     string
	handler Handler
	opts    Options
	fs      *fsnotify.Watcher

	mu      sync.Mutex
	timers  map[string]*time.Timer
	pending sync.WaitGroup
	running sync.Mutex // handlers run one at a time
}

// New starts watching dir
func New(dir string, handler Handler, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	if opts.Suffix == "" {
		opts.Suffix = paths.DefaultSuffix
	}
	if opts.Filter == nil {
		suffix := opts.Suffix
		opts.Filter = func(path string) bool {
			base := filepath.Base(path)
			stem := strings.TrimSuffix(base, filepath.Ext(base))
			return paths.IsPDF(base) && !strings.HasSuffix(stem, suffix) && !strings.HasPrefix(base, ".")
		}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:     dir,
		handler: handler,
		opts:    opts,
		fs:      fsw,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Run dispatches events until ctx is done, then waits for handlers that
// already started.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.shutdown()
	w.opts.Logger.Info("watching folder", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && w.opts.Filter(event.Name) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.opts.Logger.Warn("watch error", zap.Error(err))
		}
	}
}

// schedule (re)starts the debounce timer for path
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok && t.Stop() {
		w.pending.Done()
	}
	w.pending.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.opts.Debounce, func() {
		defer w.pending.Done()

		w.mu.Lock()
		if w.timers[path] == timer {
			delete(w.timers, path)
		}
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}

		w.running.Lock()
		defer w.running.Unlock()
		if err := w.handler(ctx, path); err != nil {
			w.opts.Logger.Error("failed to process watched file", zap.String("path", path), zap.Error(err))
			return
		}
		w.opts.Logger.Info("processed watched file", zap.String("path", path))
	})
	w.timers[path] = timer
}

func (w *Watcher) shutdown() {
	w.mu.Lock()
	for path, t := range w.timers {
		if t.Stop() {
			w.pending.Done()
		}
		delete(w.timers, path)
	}
	w.mu.Unlock()

	w.pending.Wait()
	w.fs.Close()
}
