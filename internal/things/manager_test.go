package things

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// fakeTypes is a minimal TypeSource backed by a fixed set of classes.
type fakeTypes struct {
	classes map[model.ID]model.ThingClass
}

func newFakeTypes() *fakeTypes { return &fakeTypes{classes: map[model.ID]model.ThingClass{}} }

func (f *fakeTypes) ThingClass(id model.ID) (model.ThingClass, bool) {
	c, ok := f.classes[id]
	return c, ok
}

func (f *fakeTypes) ThingClassesImplementing(interfaceName string) []model.ThingClass {
	var out []model.ThingClass
	for _, c := range f.classes {
		for _, i := range c.Interfaces {
			if i == interfaceName {
				out = append(out, c)
			}
		}
	}
	return out
}

// fakePlugins completes every suspension point synchronously and
// successfully, unless scripted otherwise via setupResult.
type fakePlugins struct {
	setupResult  status.Code
	setupCalls   int
	removedCalls int
	manager      *Manager
}

func (p *fakePlugins) Discover(opID, pluginID, thingClassID model.ID, params model.ParamValues) error {
	return nil
}

func (p *fakePlugins) SetupThing(opID, pluginID model.ID, thing model.Thing) error {
	p.setupCalls++
	code := p.setupResult
	if code == "" {
		code = status.NoError
	}
	p.manager.OnSetupFinished(opID, thing.ID, code, "")
	return nil
}

func (p *fakePlugins) PostSetup(pluginID model.ID, thing model.Thing) {}

func (p *fakePlugins) ThingRemoved(pluginID model.ID, thing model.Thing) {
	p.removedCalls++
}

func (p *fakePlugins) StartPairing(opID, pluginID, thingClassID model.ID, name string, params model.ParamValues) error {
	return nil
}
func (p *fakePlugins) ConfirmPairing(opID, pluginID model.ID, username, secret string) error {
	return nil
}
func (p *fakePlugins) ExecuteAction(opID, pluginID model.ID, action model.Action) error { return nil }
func (p *fakePlugins) Browse(opID, pluginID, thingID model.ID, itemID, locale string) error {
	return nil
}
func (p *fakePlugins) BrowserItem(opID, pluginID, thingID model.ID, itemID, locale string) error {
	return nil
}
func (p *fakePlugins) ExecuteBrowserItem(opID, pluginID, thingID model.ID, itemID string) error {
	return nil
}
func (p *fakePlugins) ExecuteBrowserItemAction(opID, pluginID, thingID model.ID, itemID string, params model.ParamValues) error {
	return nil
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	things map[model.ID]model.Thing
	states map[model.ID]model.ParamValues
}

func newFakeStore() *fakeStore {
	return &fakeStore{things: map[model.ID]model.Thing{}, states: map[model.ID]model.ParamValues{}}
}

func (s *fakeStore) SaveThing(t model.Thing) error {
	s.things[t.ID] = t.Clone()
	return nil
}
func (s *fakeStore) DeleteThing(id model.ID) error {
	delete(s.things, id)
	return nil
}
func (s *fakeStore) LoadThings() ([]model.Thing, error) {
	var out []model.Thing
	for _, t := range s.things {
		out = append(out, t)
	}
	return out, nil
}
func (s *fakeStore) SaveStateValue(thingID, stateTypeID model.ID, value interface{}) error {
	if s.states[thingID] == nil {
		s.states[thingID] = model.ParamValues{}
	}
	s.states[thingID][stateTypeID] = value
	return nil
}
func (s *fakeStore) LoadStateValues() (map[model.ID]model.ParamValues, error) {
	return s.states, nil
}
func (s *fakeStore) DeleteStateValues(thingID model.ID) error {
	delete(s.states, thingID)
	return nil
}

// fakeNotifier counts notifications without asserting payload shape.
type fakeNotifier struct {
	added, removed, changed, settingChanged, stateChanged, eventTriggered int
}

func (n *fakeNotifier) ThingAdded(model.Thing)   { n.added++ }
func (n *fakeNotifier) ThingRemoved(model.ID)    { n.removed++ }
func (n *fakeNotifier) ThingChanged(model.Thing) { n.changed++ }
func (n *fakeNotifier) ThingSettingChanged(model.ID, model.ID, interface{}) {
	n.settingChanged++
}
func (n *fakeNotifier) StateChanged(model.ID, model.ID, interface{}) { n.stateChanged++ }
func (n *fakeNotifier) EventTriggered(model.Event)                  { n.eventTriggered++ }

// fakeRuleSink is a no-op RuleSink.
type fakeRuleSink struct {
	removedThings []model.ID
}

func (r *fakeRuleSink) OnEvent(model.Event)     {}
func (r *fakeRuleSink) OnStateChanged()         {}
func (r *fakeRuleSink) OnThingRemoved(id model.ID) {
	r.removedThings = append(r.removedThings, id)
}
func (r *fakeRuleSink) FindRules(model.ID) []model.ID { return nil }
func (r *fakeRuleSink) ApplyRemovalPolicy(model.ID, map[model.ID]model.RemovalPolicy) {}

func paramType(name string, readOnly bool) (model.ID, model.ParamType) {
	id := model.NewID()
	return id, model.ParamType{ID: id, Name: name, Type: model.TypeInt, DefaultValue: 0, ReadOnly: readOnly}
}

func newTestManager() (*Manager, *fakeTypes, *fakePlugins, *fakeStore, *fakeNotifier, *fakeRuleSink) {
	types := newFakeTypes()
	plugins := &fakePlugins{}
	store := newFakeStore()
	notifier := &fakeNotifier{}
	ruleSink := &fakeRuleSink{}
	m := New(types, plugins, store, notifier, ruleSink)
	plugins.manager = m
	return m, types, plugins, store, notifier, ruleSink
}

func justAddClass(classID, pluginID model.ID, paramTypes []model.ParamType) model.ThingClass {
	return model.ThingClass{
		ID:            classID,
		PluginID:      pluginID,
		Name:          "test-class",
		CreateMethods: []model.CreateMethod{model.CreateMethodUser, model.CreateMethodDiscovery},
		SetupMethod:   model.SetupMethodJustAdd,
		ParamTypes:    paramTypes,
	}
}

func TestAddConfiguredThing_Succeeds(t *testing.T) {
	m, types, plugins, _, notifier, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	types.classes[classID] = justAddClass(classID, pluginID, nil)

	id, ch, code := m.AddConfiguredThing(classID, "lamp", model.ParamValues{}, nil)
	require.Equal(t, status.Async, code)
	res := <-ch
	assert.True(t, res.Code.Ok())
	assert.Equal(t, 1, plugins.setupCalls)
	assert.Equal(t, 1, notifier.added)

	thing, ok := m.Thing(id)
	require.True(t, ok)
	assert.Equal(t, model.SetupStatusComplete, thing.SetupStatus)
}

// Seed scenario 4: discovery descriptor consumed by add, with override
// params taking precedence over descriptor params per ParamType.
func TestAddDiscoveredThing_OverridesDescriptorParams_AndConsumesDescriptor(t *testing.T) {
	m, types, _, _, _, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	p1ID, p1 := paramType("p1", false)
	p2ID, p2 := paramType("p2", false)
	types.classes[classID] = justAddClass(classID, pluginID, []model.ParamType{p1, p2})

	descID := model.NewID()
	m.descriptors[descID] = descriptorEntry{descriptor: model.ThingDescriptor{
		ID: descID, ThingClassID: classID,
		Params: model.ParamValues{p1ID: 1, p2ID: 2},
	}}

	id, ch, code := m.AddDiscoveredThing(classID, "lamp", descID, model.ParamValues{p2ID: 5}, nil)
	require.Equal(t, status.Async, code)
	res := <-ch
	require.True(t, res.Code.Ok())

	thing, ok := m.Thing(id)
	require.True(t, ok)
	assert.Equal(t, 1, thing.Params[p1ID])
	assert.Equal(t, 5, thing.Params[p2ID])

	_, _, code = m.AddDiscoveredThing(classID, "lamp2", descID, nil, nil)
	assert.Equal(t, status.ThingDescriptorNotFound, code)
}

// Per spec.md §4.4, a cached ThingDescriptor expires ~30s after discovery
// completes; OnTick (wired to TimeManager's per-second tick) is what
// actually purges it.
func TestOnTick_ExpiresStaleDescriptors(t *testing.T) {
	m, _, _, _, _, _ := newTestManager()
	descID := model.NewID()
	now := time.Now()
	m.descriptors[descID] = descriptorEntry{
		descriptor: model.ThingDescriptor{ID: descID},
		expiresAt:  now.Add(-time.Second),
	}

	m.OnTick(now)
	_, stillCached := m.descriptors[descID]
	assert.False(t, stillCached)
}

// Seed scenario 5: reconfigure enforces read-only params unless the values
// came from discovery.
func TestReconfigureThing_EnforcesReadOnly_UnlessFromDiscovery(t *testing.T) {
	m, types, _, _, _, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	pID, p := paramType("p", true)
	types.classes[classID] = justAddClass(classID, pluginID, []model.ParamType{p})

	id, ch, code := m.AddConfiguredThing(classID, "lamp", model.ParamValues{}, nil)
	require.Equal(t, status.Async, code)
	<-ch

	_, code = m.ReconfigureThing(id, model.ParamValues{pID: 7}, false)
	assert.Equal(t, status.ParameterNotWritable, code)

	ch2, code := m.ReconfigureThing(id, model.ParamValues{pID: 7}, true)
	require.Equal(t, status.Async, code)
	res := <-ch2
	require.True(t, res.Code.Ok())

	thing, _ := m.Thing(id)
	assert.Equal(t, 7, thing.Params[pID])
}

// Per spec.md §7: a setup failure on an initial add drops the thing from
// the live set entirely, while a reconfigure failure leaves it present in
// `failed` state with its prior working values untouched otherwise.
func TestAddConfiguredThing_SetupFailure_ThingNotAddedToLiveSet(t *testing.T) {
	m, types, plugins, _, notifier, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	types.classes[classID] = justAddClass(classID, pluginID, nil)
	plugins.setupResult = status.SetupFailed

	id, ch, code := m.AddConfiguredThing(classID, "lamp", model.ParamValues{}, nil)
	require.Equal(t, status.Async, code)
	res := <-ch
	assert.Equal(t, status.SetupFailed, res.Code)
	assert.Equal(t, 0, notifier.added)

	_, ok := m.Thing(id)
	assert.False(t, ok, "thing must not remain in the live set after a failed initial add")
}

func TestReconfigureThing_SetupFailure_ThingRemainsInFailedState(t *testing.T) {
	m, types, plugins, _, _, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	pID, p := paramType("p", false)
	types.classes[classID] = justAddClass(classID, pluginID, []model.ParamType{p})

	id, ch, _ := m.AddConfiguredThing(classID, "lamp", model.ParamValues{pID: 1}, nil)
	<-ch

	plugins.setupResult = status.SetupFailed
	ch2, code := m.ReconfigureThing(id, model.ParamValues{pID: 2}, false)
	require.Equal(t, status.Async, code)
	res := <-ch2
	assert.Equal(t, status.SetupFailed, res.Code)

	thing, ok := m.Thing(id)
	require.True(t, ok, "a reconfigure failure must leave the thing in the live set")
	assert.Equal(t, model.SetupStatusFailed, thing.SetupStatus)
	assert.Equal(t, status.SetupFailed, thing.SetupError)
}

// Seed scenario 6: removing a parent cascades to every descendant.
func TestRemoveConfiguredThing_CascadesToChildren(t *testing.T) {
	m, types, plugins, store, notifier, ruleSink := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	types.classes[classID] = justAddClass(classID, pluginID, nil)

	parentID, ch, _ := m.AddConfiguredThing(classID, "parent", model.ParamValues{}, nil)
	<-ch

	child1ID, ch, _ := m.AddConfiguredThing(classID, "child1", model.ParamValues{}, nil)
	<-ch
	t1, _ := m.Thing(child1ID)
	t1.ParentID = &parentID
	m.things[child1ID] = t1

	child2ID, ch, _ := m.AddConfiguredThing(classID, "child2", model.ParamValues{}, nil)
	<-ch
	t2, _ := m.Thing(child2ID)
	t2.ParentID = &parentID
	m.things[child2ID] = t2

	code, affected := m.RemoveConfiguredThing(parentID, nil)
	require.Equal(t, status.NoError, code)
	assert.Empty(t, affected)

	for _, id := range []model.ID{parentID, child1ID, child2ID} {
		_, ok := m.Thing(id)
		assert.False(t, ok)
		_, ok = store.things[id]
		assert.False(t, ok)
	}
	assert.Equal(t, 3, notifier.removed)
	assert.Equal(t, 3, plugins.removedCalls)
	assert.ElementsMatch(t, []model.ID{parentID, child1ID, child2ID}, ruleSink.removedThings)
}

func TestAddConfiguredThing_DuplicateID_Rejected(t *testing.T) {
	m, types, _, _, _, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	types.classes[classID] = justAddClass(classID, pluginID, nil)

	id := model.NewID()
	_, ch, code := m.AddConfiguredThing(classID, "lamp", model.ParamValues{}, &id)
	require.Equal(t, status.Async, code)
	<-ch

	_, _, code = m.AddConfiguredThing(classID, "lamp2", model.ParamValues{}, &id)
	assert.Equal(t, status.DuplicateUUID, code)
}

func TestAddConfiguredThing_CreationMethodNotSupported(t *testing.T) {
	m, types, _, _, _, _ := newTestManager()
	classID, pluginID := model.NewID(), model.NewID()
	class := justAddClass(classID, pluginID, nil)
	class.CreateMethods = []model.CreateMethod{model.CreateMethodAuto}
	types.classes[classID] = class

	_, _, code := m.AddConfiguredThing(classID, "lamp", model.ParamValues{}, nil)
	assert.Equal(t, status.CreationMethodNotSupported, code)
}
