package things

import "github.com/nymea/nymea-sub004/internal/model"

// PluginHost is the subset of PluginHost operations ThingManager drives.
// Every method dispatches work to the owning plugin and returns immediately;
// the plugin replies later through one of Manager's On*Finished callbacks,
// always re-posted onto the core loop before it touches Manager state.
type PluginHost interface {
	Discover(opID model.ID, pluginID model.ID, thingClassID model.ID, params model.ParamValues) error
	SetupThing(opID model.ID, pluginID model.ID, thing model.Thing) error
	PostSetup(pluginID model.ID, thing model.Thing)
	ThingRemoved(pluginID model.ID, thing model.Thing)
	StartPairing(opID model.ID, pluginID model.ID, thingClassID model.ID, name string, params model.ParamValues) error
	ConfirmPairing(opID model.ID, pluginID model.ID, username, secret string) error
	ExecuteAction(opID model.ID, pluginID model.ID, action model.Action) error
	Browse(opID model.ID, pluginID model.ID, thingID model.ID, itemID string, locale string) error
	BrowserItem(opID model.ID, pluginID model.ID, thingID model.ID, itemID string, locale string) error
	ExecuteBrowserItem(opID model.ID, pluginID model.ID, thingID model.ID, itemID string) error
	ExecuteBrowserItemAction(opID model.ID, pluginID model.ID, thingID model.ID, itemID string, params model.ParamValues) error
}

// TypeSource is the read-only view into the loaded type graph ThingManager
// needs: ThingManager never mutates a ThingClass, only looks one up to
// validate params and know which plugin/interfaces own it.
type TypeSource interface {
	ThingClass(id model.ID) (model.ThingClass, bool)
	ThingClassesImplementing(interfaceName string) []model.ThingClass
}

// Store is the persistence role ThingManager owns: configured things, their
// settings, and the cached state values of their cached StateTypes.
type Store interface {
	SaveThing(t model.Thing) error
	DeleteThing(id model.ID) error
	LoadThings() ([]model.Thing, error)
	SaveStateValue(thingID, stateTypeID model.ID, value interface{}) error
	LoadStateValues() (map[model.ID]model.ParamValues, error)
	DeleteStateValues(thingID model.ID) error
}

// Notifier is the ThingManager's slice of the notification bus.
type Notifier interface {
	ThingAdded(t model.Thing)
	ThingRemoved(id model.ID)
	ThingChanged(t model.Thing)
	ThingSettingChanged(thingID, paramTypeID model.ID, value interface{})
	StateChanged(thingID, stateTypeID model.ID, value interface{})
	EventTriggered(ev model.Event)
}

// RuleSink is the RuleEngine's inbound side, as seen from ThingManager:
// events (including synthesized state-change events), state changes, and
// thing removal, so the engine can prune or cascade rules referencing a
// deleted thing.
type RuleSink interface {
	OnEvent(ev model.Event)
	// OnStateChanged re-evaluates state-based rule activation immediately
	// after a state write, independently of the synthesized stateChanged
	// event OnEvent also receives: spec.md §2/§4.6 list state-change as its
	// own evaluation trigger alongside events and ticks.
	OnStateChanged()
	OnThingRemoved(thingID model.ID)
	FindRules(thingID model.ID) []model.ID
	ApplyRemovalPolicy(thingID model.ID, policy map[model.ID]model.RemovalPolicy)
}
