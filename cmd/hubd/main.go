// Command hubd runs the integration and rule orchestration core: it loads
// bundled interface definitions and plugins, restores persisted things and
// rules, and drives the core loop until told to stop.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nymea/nymea-sub004/internal/cache"
	"github.com/nymea/nymea-sub004/internal/config"
	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/loop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/notify"
	"github.com/nymea/nymea-sub004/internal/pluginhost"
	"github.com/nymea/nymea-sub004/internal/rules"
	"github.com/nymea/nymea-sub004/internal/status"
	"github.com/nymea/nymea-sub004/internal/store"
	"github.com/nymea/nymea-sub004/internal/things"
	"github.com/nymea/nymea-sub004/internal/timemanager"
	"github.com/nymea/nymea-sub004/internal/translation"
	"github.com/nymea/nymea-sub004/internal/types"
)

// ruleSink breaks the construction cycle between things.Manager (which
// needs a RuleSink at New time) and rules.RuleEngine (which needs
// things.Manager as its StateReader/Dispatcher at New time): it is handed
// to things.New first, empty, then pointed at the real engine once built.
type ruleSink struct {
	engine *rules.RuleEngine
}

func (s *ruleSink) OnEvent(ev model.Event)      { s.engine.OnEvent(ev) }
func (s *ruleSink) OnStateChanged()             { s.engine.OnStateChanged() }
func (s *ruleSink) OnThingRemoved(id model.ID)  { s.engine.OnThingRemoved(id) }
func (s *ruleSink) FindRules(id model.ID) []model.ID {
	return s.engine.FindRules(id)
}
func (s *ruleSink) ApplyRemovalPolicy(id model.ID, policy map[model.ID]model.RemovalPolicy) {
	s.engine.ApplyRemovalPolicy(id, policy)
}

// managerCallbacks breaks the matching construction cycle on the plugin
// side: pluginhost.NewHost needs a ManagerCallbacks sink before
// things.Manager exists, and things.New needs the already-built *Host as
// its PluginHost. The proxy is built first, empty, and pointed at the real
// manager once it exists.
type managerCallbacks struct {
	manager     *things.Manager
	translation *translation.Service
}

// translate resolves a plugin display message through the translation
// service. The core-wide callback boundary here has no per-plugin id to key
// the catalog on (ManagerCallbacks carries only opID/thingID), so lookups
// use model.NilID; a message with no catalog entry for NilID just falls
// back to itself unchanged, same as if translation had never run.
func (c *managerCallbacks) translate(displayMessage string) string {
	if displayMessage == "" {
		return displayMessage
	}
	return c.translation.Translate(model.NilID, displayMessage, "en", displayMessage)
}

func (c *managerCallbacks) OnEventEmitted(thingID, eventTypeID model.ID, params model.ParamValues) {
	c.manager.OnEventEmitted(thingID, eventTypeID, params)
}
func (c *managerCallbacks) OnStateChanged(thingID, stateTypeID model.ID, value interface{}) {
	c.manager.OnStateChanged(thingID, stateTypeID, value)
}
func (c *managerCallbacks) OnAutoThingAppeared(pluginID model.ID, d model.ThingDescriptor) {
	c.manager.OnAutoThingAppeared(pluginID, d)
}
func (c *managerCallbacks) OnAutoThingDisappeared(thingID model.ID) {
	c.manager.OnAutoThingDisappeared(thingID)
}
func (c *managerCallbacks) OnDiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor) {
	c.manager.OnDiscoveryFinished(opID, code, descriptors)
}
func (c *managerCallbacks) OnSetupFinished(opID, thingID model.ID, code status.Code, displayMessage string) {
	c.manager.OnSetupFinished(opID, thingID, code, c.translate(displayMessage))
}
func (c *managerCallbacks) OnPairingStarted(txID model.ID, oAuthURL string) {
	c.manager.OnPairingStarted(txID, oAuthURL)
}
func (c *managerCallbacks) OnPairingFinished(opID model.ID, code status.Code) {
	c.manager.OnPairingFinished(opID, code)
}
func (c *managerCallbacks) OnActionFinished(opID model.ID, code status.Code, displayMessage string) {
	c.manager.OnActionFinished(opID, code, c.translate(displayMessage))
}
func (c *managerCallbacks) OnBrowseFinished(opID model.ID, code status.Code, result model.BrowseResult) {
	c.manager.OnBrowseFinished(opID, code, result)
}
func (c *managerCallbacks) OnBrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem) {
	c.manager.OnBrowserItemFinished(opID, code, item)
}
func (c *managerCallbacks) OnExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string) {
	c.manager.OnExecuteBrowserItemFinished(opID, code, c.translate(displayMessage))
}
func (c *managerCallbacks) OnExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string) {
	c.manager.OnExecuteBrowserItemActionFinished(opID, code, c.translate(displayMessage))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("hubd: loading configuration failed: " + err.Error())
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Pretty)
	log := logger.Log

	db, err := store.Open(store.Config{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		DBName:   cfg.DB.Name,
		SSLMode:  cfg.DB.SSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to persistence store failed")
	}
	defer db.Close()

	redisCache := cache.New(cache.Config{
		Enabled:  cfg.Cache.Enabled,
		Host:     cfg.Cache.Host,
		Port:     cfg.Cache.Port,
		Password: cfg.Cache.Password,
		DB:       cfg.Cache.DB,
	})
	defer redisCache.Close()
	cachedStore := cache.NewCachedStore(db, redisCache)

	bus := notify.Connect(notify.Config{URL: cfg.NATS.URL, User: cfg.NATS.User, Password: cfg.NATS.Password})
	defer bus.Close()

	translationSvc := translation.New()
	loadPluginTranslations(translationSvc, cfg.Plugins.Dirs)

	typeRegistry := types.New()
	for _, dir := range cfg.Types.InterfaceDirs {
		loadInterfaceDefinitions(typeRegistry, dir)
	}

	coreVersion, err := pluginhost.ParseVersion(cfg.Plugins.APIVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid core api version configured")
	}

	coreLoop := loop.New(cfg.LoopCapacity)

	sink := &ruleSink{}
	mgrCB := &managerCallbacks{translation: translationSvc}
	pluginHost := pluginhost.NewHost(typeRegistry, mgrCB, db, coreLoop, coreVersion, cfg.Plugins.Dirs, cfg.Plugins.AutoMonitoringCron)
	thingManager := things.New(typeRegistry, pluginHost, cachedStore, bus, sink)
	mgrCB.manager = thingManager

	ruleEngine := rules.New(thingManager, thingManager, bus)
	ruleEngine.SetStore(db)
	sink.engine = ruleEngine

	thingManager.LoadFromStore()
	ruleEngine.LoadFromStore()

	if err := pluginHost.Start(); err != nil {
		log.Fatal().Err(err).Msg("starting plugin host failed")
	}
	defer pluginHost.Stop()

	tm := timemanager.New()
	ruleEngine.SetClock(tm.CurrentDateTime)
	tm.OnDateTimeChanged(func(dt time.Time) {
		coreLoop.Post(func() {
			ruleEngine.OnTick(dt)
		})
	})
	tm.OnTick(func() {
		coreLoop.Post(func() {
			thingManager.OnTick(tm.CurrentDateTime())
		})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go coreLoop.Run(ctx)

	tmCtx, tmCancel := context.WithCancel(ctx)
	defer tmCancel()
	go tm.Run(tmCtx)

	log.Info().Msg("hubd started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("hubd shutting down")
	tm.Stop()
	cancel()
	<-coreLoop.Done()
}

// loadInterfaceDefinitions registers every *.yaml file under dir as a
// bundled interface definition.
func loadInterfaceDefinitions(r *types.Registry, dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		logger.Types().Warn().Err(err).Str("dir", dir).Msg("scanning interface directory failed")
		return
	}
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Types().Warn().Err(err).Str("path", path).Msg("reading interface definition failed")
			continue
		}
		if err := r.AddInterfaceDefinition(raw); err != nil {
			logger.Types().Warn().Err(err).Str("path", path).Msg("parsing interface definition failed")
		}
	}
}

// pluginTranslationsDoc is the on-disk shape of a "<plugin>.translations.yaml"
// file: one plugin id and a locale -> (stringId -> text) table.
type pluginTranslationsDoc struct {
	PluginID string                       `yaml:"pluginId"`
	Locales  map[string]map[string]string `yaml:"locales"`
}

// loadPluginTranslations registers every "*.translations.yaml" file found
// alongside a plugin's metadata, per the catalog format described in
// SPEC_FULL.md's TranslationService section.
func loadPluginTranslations(svc *translation.Service, dirs []string) {
	for _, dir := range dirs {
		matches, err := filepath.Glob(filepath.Join(dir, "*.translations.yaml"))
		if err != nil {
			continue
		}
		for _, path := range matches {
			raw, err := os.ReadFile(path)
			if err != nil {
				logger.Translation().Warn().Err(err).Str("path", path).Msg("reading translation file failed")
				continue
			}
			var doc pluginTranslationsDoc
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				logger.Translation().Warn().Err(err).Str("path", path).Msg("parsing translation file failed")
				continue
			}
			pluginID, err := model.ParseID(doc.PluginID)
			if err != nil {
				logger.Translation().Warn().Err(err).Str("path", path).Msg("invalid plugin id in translation file")
				continue
			}
			svc.LoadPluginTranslations(pluginID, doc.Locales)
		}
	}
}
