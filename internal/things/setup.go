package things

import (
	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/paramvalidator"
	"github.com/nymea/nymea-sub004/internal/status"
)

// AddConfiguredThing adds a thing of a user-creatable, justAdd class.
func (m *Manager) AddConfiguredThing(thingClassID model.ID, name string, params model.ParamValues, id *model.ID) (model.ID, <-chan asyncop.Result, status.Code) {
	class, ok := m.types.ThingClass(thingClassID)
	if !ok {
		return model.NilID, nil, status.ThingClassNotFound
	}
	if !class.SupportsCreateMethod(model.CreateMethodUser) {
		return model.NilID, nil, status.CreationMethodNotSupported
	}
	if class.SetupMethod != model.SetupMethodJustAdd {
		return model.NilID, nil, status.SetupMethodNotSupported
	}
	validated, verr := paramvalidator.Validate(class.ParamTypes, params, paramvalidator.SourceUser)
	if verr != nil {
		return model.NilID, nil, verr.Code
	}

	thingID, code := m.allocateID(id)
	if !code.Ok() {
		return model.NilID, nil, code
	}

	t := model.Thing{
		ID:           thingID,
		ThingClassID: thingClassID,
		PluginID:     class.PluginID,
		Name:         name,
		Params:       validated,
		Settings:     defaultSettings(class),
		States:       defaultStates(class),
		SetupStatus:  model.SetupStatusInProgress,
	}
	m.things[t.ID] = t
	return t.ID, m.beginSetup(t, true), status.Async
}

// AddDiscoveredThing consumes a cached ThingDescriptor: final params are the
// descriptor's params overridden per-ParamType by paramOverrides.
func (m *Manager) AddDiscoveredThing(thingClassID model.ID, name string, descriptorID model.ID, overrides model.ParamValues, id *model.ID) (model.ID, <-chan asyncop.Result, status.Code) {
	class, ok := m.types.ThingClass(thingClassID)
	if !ok {
		return model.NilID, nil, status.ThingClassNotFound
	}
	entry, ok := m.descriptors[descriptorID]
	if !ok {
		return model.NilID, nil, status.ThingDescriptorNotFound
	}
	delete(m.descriptors, descriptorID)

	merged := entry.descriptor.Params.Clone()
	for k, v := range overrides {
		merged[k] = v
	}
	validated, verr := paramvalidator.Validate(class.ParamTypes, merged, paramvalidator.SourceDiscovery)
	if verr != nil {
		return model.NilID, nil, verr.Code
	}

	thingID, code := m.allocateID(id)
	if !code.Ok() {
		return model.NilID, nil, code
	}

	t := model.Thing{
		ID:           thingID,
		ThingClassID: thingClassID,
		PluginID:     class.PluginID,
		Name:         name,
		ParentID:     entry.descriptor.ParentID,
		Params:       validated,
		Settings:     defaultSettings(class),
		States:       defaultStates(class),
		SetupStatus:  model.SetupStatusInProgress,
	}
	m.things[t.ID] = t
	return t.ID, m.beginSetup(t, true), status.Async
}

// ReconfigureThing re-runs setup on an existing thing with new params: the
// plugin is notified the old instance is gone, setup state is cleared, new
// params are applied, and setupThing is invoked again. The thing's last
// working state values are kept in memory until the new setup succeeds.
func (m *Manager) ReconfigureThing(thingID model.ID, params model.ParamValues, fromDiscovery bool) (<-chan asyncop.Result, status.Code) {
	t, ok := m.things[thingID]
	if !ok {
		return nil, status.ThingNotFound
	}
	class, ok := m.types.ThingClass(t.ThingClassID)
	if !ok {
		return nil, status.ThingClassNotFound
	}
	src := paramvalidator.SourceUser
	if fromDiscovery {
		src = paramvalidator.SourceDiscovery
	}
	validated, verr := paramvalidator.Validate(class.ParamTypes, params, src)
	if verr != nil {
		return nil, verr.Code
	}

	m.plugins.ThingRemoved(t.PluginID, t)
	t.SetupStatus = model.SetupStatusInProgress
	t.SetupError = status.NoError
	t.Params = validated
	m.things[thingID] = t
	return m.beginSetup(t, false), status.Async
}

// EditThing updates a thing's display name only.
func (m *Manager) EditThing(thingID model.ID, name string) status.Code {
	t, ok := m.things[thingID]
	if !ok {
		return status.ThingNotFound
	}
	t.Name = name
	m.things[thingID] = t
	if err := m.store.SaveThing(t); err != nil {
		m.log.Error().Err(err).Msg("persisting edited thing failed")
	}
	m.notifier.ThingChanged(t.Clone())
	return status.NoError
}

// SetThingSettings validates settings against the class's settingsTypes and
// emits a ThingSettingChanged notification per modified value.
func (m *Manager) SetThingSettings(thingID model.ID, settings model.ParamValues) status.Code {
	t, ok := m.things[thingID]
	if !ok {
		return status.ThingNotFound
	}
	class, ok := m.types.ThingClass(t.ThingClassID)
	if !ok {
		return status.ThingClassNotFound
	}
	validated, verr := paramvalidator.Validate(class.SettingsTypes, settings, paramvalidator.SourceUser)
	if verr != nil {
		return verr.Code
	}
	for ptID, v := range validated {
		if old, existed := t.Settings[ptID]; !existed || old != v {
			m.notifier.ThingSettingChanged(thingID, ptID, v)
		}
	}
	t.Settings = validated
	m.things[thingID] = t
	if err := m.store.SaveThing(t); err != nil {
		m.log.Error().Err(err).Msg("persisting thing settings failed")
	}
	return status.NoError
}

func (m *Manager) allocateID(id *model.ID) (model.ID, status.Code) {
	if id == nil {
		return model.NewID(), status.NoError
	}
	if _, exists := m.things[*id]; exists {
		return model.NilID, status.DuplicateUUID
	}
	return *id, status.NoError
}

func defaultSettings(class model.ThingClass) model.ParamValues {
	out := make(model.ParamValues, len(class.SettingsTypes))
	for _, pt := range class.SettingsTypes {
		out[pt.ID] = pt.DefaultValue
	}
	return out
}

func defaultStates(class model.ThingClass) model.ParamValues {
	out := make(model.ParamValues, len(class.StateTypes))
	for _, st := range class.StateTypes {
		out[st.ID] = st.DefaultValue
	}
	return out
}

// beginSetup restores any cached state values for this thing (from a prior
// run, or a previous instance of the same class) before the plugin ever
// sees it, then asks the plugin to set the thing up. initialAdd marks a
// setup for a thing that did not exist before this call (a fresh add,
// auto-appearance or pairing, as opposed to a reconfigure of an
// already-configured thing): per spec.md §7, a failure here drops the thing
// from the live set entirely rather than leaving it in `failed` state.
func (m *Manager) beginSetup(t model.Thing, initialAdd bool) <-chan asyncop.Result {
	if cached, err := m.store.LoadStateValues(); err == nil {
		if values, ok := cached[t.ID]; ok {
			for k, v := range values {
				t.States[k] = v
			}
			m.things[t.ID] = t
		}
	}
	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindSetup, opID, asyncop.DefaultTimeout(asyncop.KindSetup), func() {
		m.ops.TimeoutNow(asyncop.KindSetup, opID)
	})
	m.trackOp(asyncop.KindSetup, opID, t.ID, initialAdd)
	if err := m.plugins.SetupThing(opID, t.PluginID, t); err != nil {
		m.failSetup(t.ID, status.HardwareFailure, "", initialAdd)
		m.ops.Complete(asyncop.KindSetup, opID, status.HardwareFailure, nil)
	}
	return ch
}

// OnSetupFinished is PluginHost's callback once a plugin's setupThing call
// completes.
func (m *Manager) OnSetupFinished(opID model.ID, thingID model.ID, code status.Code, displayMessage string) {
	initialAdd := m.opOwners[opID].initialAdd
	if code.Ok() {
		m.completeSetup(thingID)
	} else {
		m.failSetup(thingID, code, displayMessage, initialAdd)
	}
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindSetup, opID, code, thingID)
}

func (m *Manager) completeSetup(thingID model.ID) {
	t, ok := m.things[thingID]
	if !ok {
		return
	}
	t.SetupStatus = model.SetupStatusComplete
	t.SetupError = status.NoError
	t.SetupDisplayMessage = ""
	m.things[thingID] = t
	if err := m.store.SaveThing(t); err != nil {
		m.log.Error().Err(err).Msg("persisting thing after setup failed")
	}
	m.plugins.PostSetup(t.PluginID, t)
	m.notifier.ThingAdded(t.Clone())
	m.log.Info().Str("thing", thingID.String()).Msg("thing setup complete")
}

func (m *Manager) failSetup(thingID model.ID, code status.Code, displayMessage string, initialAdd bool) {
	t, ok := m.things[thingID]
	if !ok {
		return
	}

	if initialAdd {
		// Never persisted, never announced: drop it entirely rather than
		// leaving a half-added thing in the live set.
		delete(m.things, thingID)
		m.log.Warn().Str("thing", thingID.String()).Str("code", string(code)).Msg("initial setup failed; thing discarded")
		return
	}

	t.SetupStatus = model.SetupStatusFailed
	t.SetupError = code
	t.SetupDisplayMessage = displayMessage
	m.things[thingID] = t
	if err := m.store.SaveThing(t); err != nil {
		m.log.Error().Err(err).Msg("persisting failed thing failed")
	}
	m.log.Warn().Str("thing", thingID.String()).Str("code", string(code)).Msg("thing setup failed")
}
