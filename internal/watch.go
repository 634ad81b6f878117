package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounce is how long a file must stay quiet after a write before it is
// processed, so that an editor's burst of writes yields one run.
const debounce = 100 * time.Millisecond

// watchState is the engine's watch mode.
type watchState struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirs     []string
	onResult func(Result, error)
	pending  map[string]*time.Timer
	done     chan struct{}
	delay    time.Duration
}

// Watch registers the directories to watch and the callback invoked with
// the result of every re-run. A nil callback logs the issues instead.
func (e *Engine) Watch(dirs []string, onResult func(Result, error)) error {
	e.watch.mu.Lock()
	defer e.watch.mu.Unlock()

	if e.watch.watcher != nil {
		return errors.New("watch already configured")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating watcher: %w", err)
	}
	e.watch.watcher = watcher
	e.watch.dirs = dirs
	e.watch.onResult = onResult
	e.watch.pending = make(map[string]*time.Timer)
	if e.watch.delay == 0 {
		e.watch.delay = debounce
	}
	return nil
}

// StartWatching adds every directory under the registered roots, except
// ignored ones, and starts processing events.
func (e *Engine) StartWatching() error {
	e.watch.mu.Lock()
	defer e.watch.mu.Unlock()

	if e.watch.watcher == nil {
		return errors.New("no directories registered, call Watch first")
	}
	if e.watch.done != nil {
		return errors.New("already watching")
	}

	for _, dir := range e.watch.dirs {
		if err := e.addTree(dir); err != nil {
			return fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}

	e.watch.done = make(chan struct{})
	go e.watchLoop(e.watch.watcher, e.watch.done)
	return nil
}

// StopWatching closes the watcher and waits for the event loop to exit.
// Pending debounced files are dropped.
func (e *Engine) StopWatching() error {
	e.watch.mu.Lock()
	done := e.watch.done
	if done == nil {
		e.watch.mu.Unlock()
		e.logger.Warn("not watching")
		return nil
	}
	for name, timer := range e.watch.pending {
		timer.Stop()
		delete(e.watch.pending, name)
	}
	err := e.watch.watcher.Close()
	e.watch.mu.Unlock()

	<-done

	e.watch.mu.Lock()
	e.watch.watcher = nil
	e.watch.done = nil
	e.watch.mu.Unlock()
	return err
}

// addTree watches root and every directory below it. The caller holds
// e.watch.mu.
func (e *Engine) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if e.isIgnoredPath(path) {
			return filepath.SkipDir
		}
		return e.watch.watcher.Add(path)
	})
}

func (e *Engine) watchLoop(watcher *fsnotify.Watcher, done chan struct{}) {
	defer close(done)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			e.handleFileEvent(event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			e.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (e *Engine) handleFileEvent(event fsnotify.Event) {
	e.watch.mu.Lock()
	defer e.watch.mu.Unlock()

	if event.Has(fsnotify.Create) && isDir(event.Name) {
		if err := e.addTree(event.Name); err != nil {
			e.logger.Warn("cannot watch new directory", zap.String("dir", event.Name), zap.Error(err))
		}
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if !strings.HasSuffix(event.Name, ".php") || e.isIgnoredPath(event.Name) {
		return
	}

	name := event.Name
	if timer, ok := e.watch.pending[name]; ok {
		timer.Reset(e.watch.delay)
		return
	}
	e.watch.pending[name] = time.AfterFunc(e.watch.delay, func() {
		e.watch.mu.Lock()
		delete(e.watch.pending, name)
		onResult := e.watch.onResult
		e.watch.mu.Unlock()

		e.processWatched(name, onResult)
	})
}

func (e *Engine) processWatched(filename string, onResult func(Result, error)) {
	result, err := e.Run(filename)
	if err != nil {
		e.logger.Error("error processing file", zap.String("file", filename), zap.Error(err))
	}
	if onResult != nil {
		onResult(result, err)
		return
	}
	if err == nil {
		e.reportIssues(result)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (e *Engine) reportIssues(result Result) {
	if len(result.Issues) == 0 {
		e.logger.Info("no issues found", zap.String("file", result.Filename))
		return
	}

	e.logger.Info("found issues", zap.String("file", result.Filename), zap.Int("count", len(result.Issues)))
	for _, issue := range result.Issues {
		e.logger.Info(issue.Message,
			zap.String("rule", issue.Rule),
			zap.Int("line", issue.Start.Line),
			zap.String("suggestion", issue.Suggestion),
		)
	}
}
