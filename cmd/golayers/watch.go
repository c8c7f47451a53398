// watch.go - Re-render when input files change.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounce = 200 * time.Millisecond

func runWatch(ctx context.Context, args []string) error {
	o, err := parseOptions("watch", args)
	if err != nil {
		return err
	}

	inputs := watchedFiles(o)
	w, err := newWatcher(inputs)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer w.Close()

	rebuild := func() {
		cfg, err := o.loadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		setupLogging(cfg)
		if err := build(ctx, o, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("Done: %s (%s)\n", o.output, time.Now().Format(time.TimeOnly))
	}

	rebuild()
	fmt.Printf("Watching %d file(s), press Ctrl+C to stop\n", len(inputs))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			fmt.Printf("Changed: %s\n", name)
			timer = time.After(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Warning: watch: %v\n", err)
		case <-timer:
			timer = nil
			rebuild()
		}
	}
}

func watchedFiles(o *options) []string {
	var files []string
	for _, p := range []string{o.creative, o.brand, o.bundle, o.script, o.configPath} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		files = append(files, p)
	}
	return files
}

// watcher reports changes to a fixed set of files. Directories are watched
// rather than the files so editors that replace files on save still trigger.
type watcher struct {
	fs     *fsnotify.Watcher
	files  map[string]bool
	Events chan string
	Errors chan error
	done   chan struct{}
}

func newWatcher(files []string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &watcher{
		fs:     fw,
		files:  make(map[string]bool),
		Events: make(chan string, 16),
		Errors: make(chan error, 1),
		done:   make(chan struct{}),
	}
	dirs := make(map[string]bool)
	for _, f := range files {
		w.files[f] = true
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	go w.run()
	return w, nil
}

func (w *watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !w.files[name] {
				continue
			}
			select {
			case w.Events <- name:
			case <-w.done:
				return
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.done:
			return
		}
	}
}

func (w *watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}
