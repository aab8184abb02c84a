package catalog

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Update is a reloaded catalog or the error that prevented reloading it.
type Update struct {
	Catalog *Catalog
	Err     error
}

// Watcher reloads the services file when it changes on disk.
// The parent directory is watched so editors that replace the file are seen too.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	log      *zap.Logger
	debounce time.Duration

	updates  chan Update
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// Watch starts watching path. Rapid saves within debounce are coalesced into one reload.
func Watch(path string, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve services path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	w := &Watcher{
		path:     abs,
		watcher:  fw,
		log:      log,
		debounce: debounce,
		updates:  make(chan Update),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run()
	log.Info("watching services file", zap.String("path", abs))
	return w, nil
}

// Updates delivers reloads. It is closed when the watcher stops.
func (w *Watcher) Updates() <-chan Update { return w.updates }

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.doneCh)
	defer close(w.updates)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("services file changed", zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("services watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			c, err := Load(w.path)
			if err != nil {
				w.log.Warn("services reload failed", zap.Error(err))
			}
			select {
			case w.updates <- Update{Catalog: c, Err: err}:
			case <-w.stopCh:
				return
			}
		}
	}
}
