// Package pluginhost loads plugin artifacts (built-in or dynamically
// compiled .so objects), checks their declared API version against the
// core's, and routes ThingManager's operations to the owning plugin
// instance and the plugin's callbacks back onto the core loop.
package pluginhost

import (
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// ThingPlugin is what every plugin object, built-in or dynamically loaded,
// must implement. Every method here is the Go side of one "operation
// invoked by the core" from the plugin contract; a plugin is expected to
// answer through Callbacks, not through a return value, since the
// underlying hardware call is almost always asynchronous.
type ThingPlugin interface {
	// Init hands the plugin its persisted config values (merged with
	// declared defaults for params never persisted) and the Callbacks bound
	// to this plugin instance.
	Init(metadata model.Plugin, callbacks Callbacks) error

	// StartMonitoringAuto asks the plugin to begin (or re-run) a sweep for
	// auto createMethod things; plugins backed by polling hardware call
	// this on every scheduled tick rather than maintaining their own timer.
	StartMonitoringAuto()

	Discover(opID model.ID, thingClassID model.ID, params model.ParamValues)
	SetupThing(opID model.ID, thing model.Thing)
	PostSetup(thing model.Thing)
	ThingRemoved(thing model.Thing)
	StartPairing(opID model.ID, thingClassID model.ID, name string, params model.ParamValues)
	ConfirmPairing(opID model.ID, username, secret string)
	ExecuteAction(opID model.ID, action model.Action)
	Browse(opID model.ID, thingID model.ID, itemID, locale string)
	BrowserItem(opID model.ID, thingID model.ID, itemID, locale string)
	ExecuteBrowserItem(opID model.ID, thingID model.ID, itemID string)
	ExecuteBrowserItemAction(opID model.ID, thingID model.ID, itemID string, params model.ParamValues)
}

// Callbacks is the core-facing half of the contract: a plugin instance
// calls these, from whatever goroutine it pleases, to report results and
// emit events. The Host implementation re-posts every call onto the core
// loop before it reaches ThingManager.
type Callbacks interface {
	EmitEvent(thingID, eventTypeID model.ID, params model.ParamValues)
	StateChanged(thingID, stateTypeID model.ID, value interface{})
	AutoThingAppeared(d model.ThingDescriptor)
	AutoThingDisappeared(thingID model.ID)
	DiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor)
	SetupFinished(opID, thingID model.ID, code status.Code, displayMessage string)
	PairingStarted(txID model.ID, oAuthURL string)
	PairingFinished(opID model.ID, code status.Code)
	ActionFinished(opID model.ID, code status.Code, displayMessage string)
	BrowseFinished(opID model.ID, code status.Code, result model.BrowseResult)
	BrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem)
	ExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string)
	ExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string)
}

// ManagerCallbacks is the ThingManager subset Host forwards plugin
// callbacks to. *things.Manager already implements this by name; Host
// never imports the things package to avoid a cycle (things imports
// pluginhost's sibling contract, things.PluginHost, defined over there).
type ManagerCallbacks interface {
	OnEventEmitted(thingID, eventTypeID model.ID, params model.ParamValues)
	OnStateChanged(thingID, stateTypeID model.ID, value interface{})
	OnAutoThingAppeared(pluginID model.ID, d model.ThingDescriptor)
	OnAutoThingDisappeared(thingID model.ID)
	OnDiscoveryFinished(opID model.ID, code status.Code, descriptors []model.ThingDescriptor)
	OnSetupFinished(opID, thingID model.ID, code status.Code, displayMessage string)
	OnPairingStarted(txID model.ID, oAuthURL string)
	OnPairingFinished(opID model.ID, code status.Code)
	OnActionFinished(opID model.ID, code status.Code, displayMessage string)
	OnBrowseFinished(opID model.ID, code status.Code, result model.BrowseResult)
	OnBrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem)
	OnExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string)
	OnExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string)
}

// ConfigStore is the persistence slice Host needs: plugin config values
// saved per paramTypeId with enough type information for lossless restore.
// internal/store implements this alongside things.Store and rules' store
// contract.
type ConfigStore interface {
	SavePluginConfig(pluginID model.ID, values model.ParamValues) error
	LoadPluginConfig(pluginID model.ID) (model.ParamValues, error)
}
