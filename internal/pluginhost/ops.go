package pluginhost

import (
	"fmt"

	"github.com/nymea/nymea-sub004/internal/model"
)

// These methods implement things.PluginHost structurally: ThingManager
// depends on that interface, not on this package, so there is no import
// here to satisfy — only the method set has to line up.

func (h *Host) Discover(opID, pluginID, thingClassID model.ID, params model.ParamValues) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.Discover(opID, thingClassID, params)
	return nil
}

func (h *Host) SetupThing(opID, pluginID model.ID, thing model.Thing) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.SetupThing(opID, thing)
	return nil
}

func (h *Host) PostSetup(pluginID model.ID, thing model.Thing) {
	p, ok := h.lookup(pluginID)
	if !ok {
		return
	}
	go p.instance.PostSetup(thing)
}

func (h *Host) ThingRemoved(pluginID model.ID, thing model.Thing) {
	p, ok := h.lookup(pluginID)
	if !ok {
		return
	}
	go p.instance.ThingRemoved(thing)
}

func (h *Host) StartPairing(opID, pluginID, thingClassID model.ID, name string, params model.ParamValues) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.StartPairing(opID, thingClassID, name, params)
	return nil
}

func (h *Host) ConfirmPairing(opID, pluginID model.ID, username, secret string) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.ConfirmPairing(opID, username, secret)
	return nil
}

func (h *Host) ExecuteAction(opID, pluginID model.ID, action model.Action) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.ExecuteAction(opID, action)
	return nil
}

func (h *Host) Browse(opID, pluginID, thingID model.ID, itemID, locale string) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.Browse(opID, thingID, itemID, locale)
	return nil
}

func (h *Host) BrowserItem(opID, pluginID, thingID model.ID, itemID, locale string) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.BrowserItem(opID, thingID, itemID, locale)
	return nil
}

func (h *Host) ExecuteBrowserItem(opID, pluginID, thingID model.ID, itemID string) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.ExecuteBrowserItem(opID, thingID, itemID)
	return nil
}

func (h *Host) ExecuteBrowserItemAction(opID, pluginID, thingID model.ID, itemID string, params model.ParamValues) error {
	p, ok := h.lookup(pluginID)
	if !ok {
		return fmt.Errorf("pluginhost: unknown plugin %s", pluginID)
	}
	go p.instance.ExecuteBrowserItemAction(opID, thingID, itemID, params)
	return nil
}
