package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/midnight/engine/core"
)

// Watcher reloads a config file when it changes on disk and hands the new
// value to every subscriber. A file that fails to load is logged and
// ignored; subscribers keep the last good config.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher

	mutex       sync.Mutex
	subscribers []chan *Config
	current     *Config

	done     chan struct{}
	stopped  chan struct{}
	isClosed bool
}

func NewWatcher(path string, current *Config) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file instead of
	// writing it in place.
	if err := fsWatch.Add(filepath.Dir(path)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		fsnotify: fsWatch,
		current:  current,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.start()
	return w, nil
}

// Subscribe returns a channel that receives each reloaded config. Only the
// latest pending value is kept for a slow reader.
func (w *Watcher) Subscribe() <-chan *Config {
	ch := make(chan *Config, 1)
	w.mutex.Lock()
	w.subscribers = append(w.subscribers, ch)
	w.mutex.Unlock()
	return ch
}

func (w *Watcher) Current() *Config {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.current
}

func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return errors.New("config watcher already closed")
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	<-w.stopped
	return nil
}

func (w *Watcher) start() {
	defer close(w.stopped)
	for {
		select {
		case e := <-w.fsnotify.Events:
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}

		case err := <-w.fsnotify.Errors:
			if err != nil {
				core.LogError("%s", err)
			}

		case <-w.done:
			w.fsnotify.Close()
			w.mutex.Lock()
			for _, ch := range w.subscribers {
				close(ch)
			}
			w.subscribers = nil
			w.mutex.Unlock()
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		core.LogWarn("Ignoring config change: %s", err)
		return
	}
	core.LogInfo("Config %s reloaded.", w.path)

	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.current = cfg
	for _, ch := range w.subscribers {
		// Drop a value the subscriber has not read yet.
		select {
		case <-ch:
		default:
		}
		ch <- cfg
	}
}
