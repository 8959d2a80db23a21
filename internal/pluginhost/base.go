package pluginhost

import "github.com/nymea/nymea-sub004/internal/model"

// BasePlugin gives every ThingPlugin method a no-op default. A concrete
// plugin embeds it and overrides only the operations its thing classes
// actually need.
type BasePlugin struct {
	Callbacks Callbacks
}

func (p *BasePlugin) Init(metadata model.Plugin, callbacks Callbacks) error {
	p.Callbacks = callbacks
	return nil
}

func (p *BasePlugin) StartMonitoringAuto() {}

func (p *BasePlugin) Discover(opID model.ID, thingClassID model.ID, params model.ParamValues) {}

func (p *BasePlugin) SetupThing(opID model.ID, thing model.Thing) {}

func (p *BasePlugin) PostSetup(thing model.Thing) {}

func (p *BasePlugin) ThingRemoved(thing model.Thing) {}

func (p *BasePlugin) StartPairing(opID model.ID, thingClassID model.ID, name string, params model.ParamValues) {
}

func (p *BasePlugin) ConfirmPairing(opID model.ID, username, secret string) {}

func (p *BasePlugin) ExecuteAction(opID model.ID, action model.Action) {}

func (p *BasePlugin) Browse(opID model.ID, thingID model.ID, itemID, locale string) {}

func (p *BasePlugin) BrowserItem(opID model.ID, thingID model.ID, itemID, locale string) {}

func (p *BasePlugin) ExecuteBrowserItem(opID model.ID, thingID model.ID, itemID string) {}

func (p *BasePlugin) ExecuteBrowserItemAction(opID model.ID, thingID model.ID, itemID string, params model.ParamValues) {
}
