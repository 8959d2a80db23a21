package pluginhost

import (
	"os"

	"github.com/nymea/nymea-sub004/internal/model"
)

// loadOne loads a single plugin metadata file found under dir. A failure
// anywhere in the pipeline is logged and the plugin is skipped; one broken
// plugin must never stop the rest of the directory from loading.
func (h *Host) loadOne(dir, metadataPath string) {
	raw, err := os.ReadFile(metadataPath)
	if err != nil {
		h.log.Warn().Err(err).Str("path", metadataPath).Msg("reading plugin metadata failed")
		return
	}

	peek, err := peekMetadata(raw)
	if err != nil {
		h.log.Warn().Err(err).Str("path", metadataPath).Msg("InvalidMetadata: peeking plugin metadata failed")
		return
	}

	declared, err := ParseVersion(peek.APIVersion)
	if err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("InvalidMetadata: malformed apiVersion, plugin skipped")
		return
	}
	if !Compatible(h.coreVersion, declared) {
		h.log.Warn().Str("plugin", peek.Name).Str("pluginVersion", declared.String()).
			Str("coreVersion", h.coreVersion.String()).Msg("plugin api version incompatible, skipped")
		return
	}

	pluginID, err := model.ParseID(peek.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("InvalidMetadata: malformed plugin id, skipped")
		return
	}

	instance, err := h.loadPluginObject(metadataPath, peek)
	if err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("loading plugin object failed, skipped")
		return
	}

	metadata, err := h.types.LoadPlugin(pluginID, raw)
	if err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("InvalidMetadata: building type graph failed, skipped")
		return
	}

	persisted, err := h.config.LoadPluginConfig(pluginID)
	if err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("loading persisted plugin config failed, defaults used")
		persisted = nil
	}
	metadata.ConfigValues = mergeConfig(metadata.ParamTypes, persisted)

	cb := &boundCallbacks{pluginID: pluginID, loop: h.loop, sink: h.sink}
	if err := instance.Init(metadata, cb); err != nil {
		h.log.Warn().Err(err).Str("plugin", peek.Name).Msg("plugin init failed, skipped")
		return
	}

	h.mu.Lock()
	if oldID, existed := h.byName[peek.Name]; existed {
		delete(h.plugins, oldID)
		h.unscheduleAutoMonitoring(oldID)
	}
	h.plugins[pluginID] = &loadedPlugin{metadata: metadata, instance: instance, dir: dir}
	h.byName[peek.Name] = pluginID
	h.mu.Unlock()

	h.scheduleAutoMonitoring(pluginID, instance)
	h.log.Info().Str("plugin", peek.Name).Str("id", pluginID.String()).Msg("plugin loaded")
}

// reloadPath re-loads the plugin whose metadata file changed. It is always
// called from a debounce timer goroutine (see scheduleReload), never the
// core loop, so it only
// touches Host's own plugin registry, never ThingManager state directly.
func (h *Host) reloadPath(metadataPath string) {
	if _, err := os.Stat(metadataPath); err != nil {
		h.log.Debug().Str("path", metadataPath).Msg("plugin metadata file gone, not reloading")
		return
	}
	for _, dir := range h.dirs {
		h.loadOne(dir, metadataPath)
	}
}

// mergeConfig overlays persisted values onto each ParamType's default so a
// param dropped from storage (or never persisted) still gets a value.
func mergeConfig(paramTypes []model.ParamType, persisted model.ParamValues) model.ParamValues {
	out := make(model.ParamValues, len(paramTypes))
	for _, pt := range paramTypes {
		out[pt.ID] = pt.DefaultValue
	}
	for id, v := range persisted {
		out[id] = v
	}
	return out
}

func (h *Host) lookup(pluginID model.ID) (*loadedPlugin, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.plugins[pluginID]
	return p, ok
}
