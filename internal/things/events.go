package things

import "github.com/nymea/nymea-sub004/internal/model"

// OnStateChanged is PluginHost's callback whenever a plugin reports a new
// state value. A no-op write (value unchanged) is dropped silently; a real
// change is persisted (if the StateType is cached), surfaced to the
// notification bus, and synthesized into a stateChanged Event so rules can
// react to it the same way they react to a plugin-emitted Event.
func (m *Manager) OnStateChanged(thingID, stateTypeID model.ID, value interface{}) {
	t, ok := m.things[thingID]
	if !ok {
		return
	}
	if old, existed := t.States[stateTypeID]; existed && old == value {
		return
	}
	t.States[stateTypeID] = value
	m.things[thingID] = t

	class, ok := m.types.ThingClass(t.ThingClassID)
	if ok {
		if st, ok := class.StateTypeByID(stateTypeID); ok && st.Cached {
			if err := m.store.SaveStateValue(thingID, stateTypeID, value); err != nil {
				m.log.Error().Err(err).Msg("persisting state value failed")
			}
		}
	}

	m.notifier.StateChanged(thingID, stateTypeID, value)

	// By convention a state's synthesized stateChanged EventType shares the
	// StateType's id, with the changed value under the same ParamType id.
	ev := model.Event{
		EventTypeID:   stateTypeID,
		ThingID:       thingID,
		Params:        model.ParamValues{stateTypeID: value},
		IsStateChange: true,
	}
	m.notifier.EventTriggered(ev)
	// The state change is its own evaluation trigger for state-based rules
	// (spec.md §2/§4.6), independent of the synthesized event OnEvent
	// consumes for event-based rules.
	m.rules.OnStateChanged()
	m.rules.OnEvent(ev)
}

// OnEventEmitted is PluginHost's callback for a plugin-originated Event that
// isn't a state change (e.g. a doorbell press).
func (m *Manager) OnEventEmitted(thingID, eventTypeID model.ID, params model.ParamValues) {
	if _, ok := m.things[thingID]; !ok {
		return
	}
	ev := model.Event{ThingID: thingID, EventTypeID: eventTypeID, Params: params}
	m.notifier.EventTriggered(ev)
	m.rules.OnEvent(ev)
}
