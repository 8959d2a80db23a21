// Package mock is a compiled-in plugin simulating a single on/off lamp,
// used to exercise PluginHost end to end without real hardware.
package mock

import (
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/pluginhost"
	"github.com/nymea/nymea-sub004/internal/status"
)

const pluginName = "mocklamp"

var powerStateTypeID = model.MustParseID("44444444-4444-4444-4444-444444444444")

func init() {
	pluginhost.RegisterBuiltin(pluginName, func() pluginhost.ThingPlugin { return &Plugin{} })
}

// Plugin simulates a lamp whose power state the core can set and read
// back immediately: there is no real transport delay to model.
type Plugin struct {
	pluginhost.BasePlugin
}

func (p *Plugin) SetupThing(opID model.ID, thing model.Thing) {
	p.Callbacks.SetupFinished(opID, thing.ID, status.NoError, "")
}

func (p *Plugin) ExecuteAction(opID model.ID, action model.Action) {
	if v, ok := action.Params[powerStateTypeID]; ok {
		p.Callbacks.StateChanged(action.ThingID, powerStateTypeID, v)
	}
	p.Callbacks.ActionFinished(opID, status.NoError, "")
}
