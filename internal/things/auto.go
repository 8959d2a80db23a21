package things

import "github.com/nymea/nymea-sub004/internal/model"

// OnAutoThingAppeared is PluginHost's callback when a plugin detects a thing
// of an auto createMethod coming online by itself. A descriptor matching an
// already-configured thing (by ExistingThingID) triggers a reconfigure
// instead of a second add, per "auto-created things that re-appear while
// already configured trigger a reconfigure".
func (m *Manager) OnAutoThingAppeared(pluginID model.ID, d model.ThingDescriptor) {
	if d.ExistingThingID != nil {
		if _, ok := m.things[*d.ExistingThingID]; ok {
			m.ReconfigureThing(*d.ExistingThingID, d.Params, true)
			return
		}
	}

	class, ok := m.types.ThingClass(d.ThingClassID)
	if !ok {
		m.log.Warn().Str("thingClass", d.ThingClassID.String()).Msg("auto-appeared thing references unknown class; dropped")
		return
	}

	t := model.Thing{
		ID:           model.NewID(),
		ThingClassID: d.ThingClassID,
		PluginID:     class.PluginID,
		Name:         d.Title,
		ParentID:     d.ParentID,
		Params:       d.Params.Clone(),
		Settings:     defaultSettings(class),
		States:       defaultStates(class),
		AutoCreated:  true,
		SetupStatus:  model.SetupStatusInProgress,
	}
	m.things[t.ID] = t
	m.beginSetup(t, true)
}

// OnAutoThingDisappeared is PluginHost's callback when an auto-created thing
// the plugin no longer sees should be removed. Rule-referencing policy is
// not asked for here: an auto-disappearance is not a user action, so any
// rule referencing it is simply pruned rather than blocking the removal.
func (m *Manager) OnAutoThingDisappeared(thingID model.ID) {
	t, ok := m.things[thingID]
	if !ok || !t.AutoCreated {
		return
	}
	m.removeOne(thingID, nil)
}
