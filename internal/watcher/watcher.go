package watcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/emberstate/emberfront/internal/elogger"
)

// Watcher observes a source tree recursively and forwards qualifying change
// events as path strings. Directory events and events on the configuration
// file are dropped before they reach the channel.
type Watcher struct {
	Events <-chan string

	fsw *fsnotify.Watcher
}

func Start(folder, configFile string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	outCh := make(chan string, 100)
	w := &Watcher{Events: outCh, fsw: fsw}

	go func() {
		defer close(outCh)
		for {
			select {
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					// Freshly created folders join the watch set so
					// files added under them keep triggering rebuilds.
					if event.Op&fsnotify.Create == fsnotify.Create {
						fsw.Add(event.Name)
					}
					continue
				}
				if IgnorePath(event.Name, configFile) {
					continue
				}
				elogger.Info("msg", "Detected change", "path", event.Name)
				select {
				case outCh <- event.Name:
				default:
				}
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				elogger.Warn("msg", "Watcher error", "err", err)
			}
		}
	}()

	err = filepath.Walk(folder, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
	if err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// IgnorePath reports whether a change on path should not trigger a rebuild.
func IgnorePath(path, configFile string) bool {
	if configFile == "" {
		return false
	}
	return filepath.Base(path) == filepath.Base(configFile) ||
		strings.HasSuffix(path, ".config.json")
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}
