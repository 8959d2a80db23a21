package pluginhost

import (
	"github.com/nymea/nymea-sub004/internal/loop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// boundCallbacks is the Callbacks instance handed to one plugin at Init: it
// already knows which plugin it belongs to, so a plugin never has to pass
// its own id back in. Every call is re-posted onto the core loop before it
// reaches sink, since a plugin may call back from any goroutine it likes.
type boundCallbacks struct {
	pluginID model.ID
	loop     *loop.Loop
	sink     ManagerCallbacks
}

func (c *boundCallbacks) EmitEvent(thingID, eventTypeID model.ID, params model.ParamValues) {
	c.loop.Post(func() { c.sink.OnEventEmitted(thingID, eventTypeID, params) })
}

func (c *boundCallbacks) StateChanged(thingID, stateTypeID model.ID, value interface{}) {
	c.loop.Post(func() { c.sink.OnStateChanged(thingID, stateTypeID, value) })
}

func (c *boundCallbacks) AutoThingAppeared(d model.ThingDescriptor) {
	c.loop.Post(func() { c.sink.OnAutoThingAppeared(c.pluginID, d) })
}

func (c *boundCallbacks) AutoThingDisappeared(thingID model.ID) {
	c.loop.Post(func() { c.sink.OnAutoThingDisappeared(thingID) })
}

func (c *boundCallbacks) DiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor) {
	c.loop.Post(func() { c.sink.OnDiscoveryFinished(opID, code, descriptors) })
}

func (c *boundCallbacks) SetupFinished(opID, thingID model.ID, code status.Code, displayMessage string) {
	c.loop.Post(func() { c.sink.OnSetupFinished(opID, thingID, code, displayMessage) })
}

func (c *boundCallbacks) PairingStarted(txID model.ID, oAuthURL string) {
	c.loop.Post(func() { c.sink.OnPairingStarted(txID, oAuthURL) })
}

func (c *boundCallbacks) PairingFinished(opID model.ID, code status.Code) {
	c.loop.Post(func() { c.sink.OnPairingFinished(opID, code) })
}

func (c *boundCallbacks) ActionFinished(opID model.ID, code status.Code, displayMessage string) {
	c.loop.Post(func() { c.sink.OnActionFinished(opID, code, displayMessage) })
}

func (c *boundCallbacks) BrowseFinished(opID model.ID, code status.Code, result model.BrowseResult) {
	c.loop.Post(func() { c.sink.OnBrowseFinished(opID, code, result) })
}

func (c *boundCallbacks) BrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem) {
	c.loop.Post(func() { c.sink.OnBrowserItemFinished(opID, code, item) })
}

func (c *boundCallbacks) ExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string) {
	c.loop.Post(func() { c.sink.OnExecuteBrowserItemFinished(opID, code, displayMessage) })
}

func (c *boundCallbacks) ExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string) {
	c.loop.Post(func() { c.sink.OnExecuteBrowserItemActionFinished(opID, code, displayMessage) })
}
