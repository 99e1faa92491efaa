package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads config.toml when it changes on disk.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(Config)
	log      *zap.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
	done  chan struct{}
}

// Watch starts watching the directory holding path. Editors usually replace
// the file instead of writing it in place, so events are matched by name.
// onChange runs on the watcher goroutine.
func Watch(path string, onChange func(Config), log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create config watcher")
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		_ = fw.Close()
		return nil, errors.Wrapf(err, "watch %s", filepath.Dir(path))
	}
	w := &Watcher{
		path:     filepath.Clean(path),
		watcher:  fw,
		onChange: onChange,
		log:      log,
		debounce: 100 * time.Millisecond,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.log.Debug("config changed", zap.String("file", ev.Name), zap.String("op", ev.Op.String()))
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := LoadFile(w.path)
	if err != nil {
		w.log.Warn("config reload failed", zap.Error(err))
		return
	}
	w.log.Info("config reloaded", zap.String("path", w.path))
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	err := w.watcher.Close()
	<-w.done
	return err
}
