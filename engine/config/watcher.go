package config

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/hdrp/engine/core"
)

// Source hands out the settings a frame should use. Callers must treat
// the returned value as read-only.
type Source interface {
	Settings() *Settings
}

type staticSource struct {
	s *Settings
}

func (ss staticSource) Settings() *Settings {
	return ss.s
}

// Static wraps fixed settings as a Source.
func Static(s *Settings) Source {
	return staticSource{s: s}
}

/**
 * @brief Watches a settings file and republishes it on every write.
 * A file that fails to parse keeps the last good settings live.
 */
type Watcher struct {
	path    string
	current atomic.Pointer[Settings]
	reloads atomic.Uint64

	fsnotify *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	isClosed bool
	mu       sync.Mutex

	// Reloaded, if set, receives each successfully reloaded settings value.
	Reloaded chan *Settings
}

func NewWatcher(path string) (*Watcher, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fsWatch.Close()
		return nil, err
	}
	// editors replace files on save, so watch the directory and filter by name
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		done:     make(chan struct{}),
	}
	w.current.Store(s)
	return w, nil
}

func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
}

func (w *Watcher) Settings() *Settings {
	return w.current.Load()
}

// Reloads counts successful reloads since the watcher was created.
func (w *Watcher) Reloads() uint64 {
	return w.reloads.Load()
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isClosed {
		return errors.New("settings watcher already closed")
	}
	w.isClosed = true
	close(w.done)
	w.wg.Wait()
	return w.fsnotify.Close()
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.reload()
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("settings watcher: %s", err.Error())

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) reload() {
	s, err := Load(w.path)
	if err != nil {
		core.LogError("settings reload rejected, keeping previous values: %s", err.Error())
		return
	}
	w.current.Store(s)
	w.reloads.Add(1)
	core.LogInfo("settings reloaded from %s (light loop %s, debug view %d)", w.path, s.Pipeline.LightLoop, s.Debug.DebugViewMaterial)
	if w.Reloaded != nil {
		// drop a stale value nobody picked up so the latest always lands
		select {
		case w.Reloaded <- s:
		default:
			select {
			case <-w.Reloaded:
			default:
			}
			select {
			case w.Reloaded <- s:
			default:
			}
		}
	}
}
