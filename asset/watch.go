package asset

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// watcher turns file system writes under an asset root into reload requests.
type watcher struct {
	root    string
	fsw     *fsnotify.Watcher
	logger  *log.Logger
	once    sync.Once
	closeCh chan struct{}
}

func newWatcher(root string, logger *log.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{
		root:    root,
		fsw:     fsw,
		logger:  logger,
		closeCh: make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive watches dir and every directory below it. fsnotify watches
// are not recursive on their own.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(p)
		}
		return nil
	})
}

// run forwards changed asset paths to reload until ctx is done or the
// watcher is closed. A path is reloaded once its file has been quiet for
// reloadDebounce, so a save split over several writes reloads the final
// content.
func (w *watcher) run(ctx context.Context, reload func(assetPath string)) error {
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						w.logger.Warn("cannot watch new directory", "dir", event.Name, "err", err)
					}
					continue
				}
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			assetPath, ok := w.assetPath(event.Name)
			if !ok {
				continue
			}
			if t, seen := timers[assetPath]; seen {
				t.Reset(reloadDebounce)
				continue
			}
			timers[assetPath] = time.AfterFunc(reloadDebounce, func() {
				reload(assetPath)
			})

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("asset watcher", "err", err)

		case <-w.closeCh:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// assetPath maps a file system path to the server-relative asset path. A
// change to "x.png.meta" reloads "x.png".
func (w *watcher) assetPath(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil || rel == "." || rel == ".." || filepath.IsAbs(rel) {
		return "", false
	}
	if len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator) {
		return "", false
	}
	if ext := filepath.Ext(rel); ext == ".meta" {
		rel = rel[:len(rel)-len(ext)]
	}
	return cleanPath(rel), true
}

func (w *watcher) close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
	})
	return err
}
