package pluginhost

import (
	"plugin"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/loop"
	"github.com/nymea/nymea-sub004/internal/model"
)

// TypeLoader is the slice of internal/types.Registry Host needs: handed a
// plugin's raw metadata document, it builds and registers the plugin's
// Vendor/ThingClass graph.
type TypeLoader interface {
	LoadPlugin(pluginID model.ID, raw []byte) (model.Plugin, error)
}

type loadedPlugin struct {
	metadata model.Plugin
	instance ThingPlugin
	dir      string
}

// Host discovers, loads and owns every plugin instance, routing
// ThingManager's PluginHost calls to the right one and re-posting every
// plugin callback onto the core loop.
type Host struct {
	log         *zerolog.Logger
	loop        *loop.Loop
	types       TypeLoader
	sink        ManagerCallbacks
	config      ConfigStore
	coreVersion Version

	autoMonitoringCron string

	mu      sync.Mutex
	plugins map[model.ID]*loadedPlugin
	byName  map[string]model.ID

	dynMu   sync.Mutex
	dynamic map[string]*plugin.Plugin

	dirs []string

	cron     *cron.Cron
	cronJobs map[model.ID]cron.EntryID

	watcher        *fsnotify.Watcher
	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer
	stop           chan struct{}
}

// NewHost builds a Host. dirs is scanned, in order, for "<name>.plugin.yaml"
// metadata documents; autoMonitoringCron is the cron expression
// startMonitoringAuto is scheduled on for every loaded plugin (e.g. "*/5 * * * *").
func NewHost(types TypeLoader, sink ManagerCallbacks, config ConfigStore, l *loop.Loop, coreVersion Version, dirs []string, autoMonitoringCron string) *Host {
	return &Host{
		log:                logger.Plugins(),
		loop:               l,
		types:              types,
		sink:               sink,
		config:             config,
		coreVersion:        coreVersion,
		autoMonitoringCron: autoMonitoringCron,
		plugins:            make(map[model.ID]*loadedPlugin),
		byName:             make(map[string]model.ID),
		dynamic:            make(map[string]*plugin.Plugin),
		dirs:               dirs,
		cron:               cron.New(),
		cronJobs:           make(map[model.ID]cron.EntryID),
		debounceTimers:     make(map[string]*time.Timer),
		stop:               make(chan struct{}),
	}
}

// Start scans every configured directory, loads what it finds, begins
// watching for changes and starts the shared cron scheduler.
func (h *Host) Start() error {
	for _, dir := range h.dirs {
		paths, err := scanDir(dir)
		if err != nil {
			h.log.Warn().Err(err).Str("dir", dir).Msg("scanning plugin directory failed")
			continue
		}
		for _, p := range paths {
			h.loadOne(dir, p)
		}
	}
	h.cron.Start()
	return h.watchDirs()
}

// Stop tears down the directory watcher and the cron scheduler.
func (h *Host) Stop() {
	close(h.stop)
	ctx := h.cron.Stop()
	<-ctx.Done()
}
