package pluginhost

import (
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 500 * time.Millisecond

// watchDirs watches every configured plugin directory and reloads a
// plugin's metadata file when it changes, debounced the same way a
// single-file watcher would be: a burst of writes (editors often write a
// file in several syscalls) collapses into one reload.
func (h *Host) watchDirs() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, dir := range h.dirs {
		if err := w.Add(dir); err != nil {
			h.log.Warn().Err(err).Str("dir", dir).Msg("watching plugin directory failed")
		}
	}
	h.watcher = w

	go h.watchLoop()
	return nil
}

func (h *Host) watchLoop() {
	defer func() {
		if err := h.watcher.Close(); err != nil {
			h.log.Error().Err(err).Msg("closing plugin directory watcher failed")
		}
	}()
	for {
		select {
		case ev, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			switch {
			case strings.HasSuffix(ev.Name, metadataSuffix):
				h.scheduleReload(ev.Name)
			case strings.HasSuffix(ev.Name, ".so"):
				h.scheduleReload(strings.TrimSuffix(ev.Name, ".so") + metadataSuffix)
			}
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.log.Error().Err(err).Msg("plugin directory watcher error")
		case <-h.stop:
			return
		}
	}
}

// scheduleReload debounces a burst of filesystem events on path into a
// single reload, delayed watchDebounce after the last one seen.
func (h *Host) scheduleReload(path string) {
	h.debounceMu.Lock()
	defer h.debounceMu.Unlock()

	if t, pending := h.debounceTimers[path]; pending {
		t.Stop()
	}
	h.debounceTimers[path] = time.AfterFunc(watchDebounce, func() {
		h.debounceMu.Lock()
		delete(h.debounceTimers, path)
		h.debounceMu.Unlock()
		h.reloadPath(path)
	})
}
