package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

type fakeReader struct {
	states map[model.ID]interface{}
	iface  map[string][]InterfaceStateRef
}

func newFakeReader() *fakeReader {
	return &fakeReader{states: map[model.ID]interface{}{}, iface: map[string][]InterfaceStateRef{}}
}

func (f *fakeReader) StateValue(thingID, stateTypeID model.ID) (interface{}, bool) {
	v, ok := f.states[stateTypeID]
	return v, ok
}

func (f *fakeReader) ThingsWithInterfaceState(interfaceName, stateName string) []InterfaceStateRef {
	return f.iface[interfaceName+"."+stateName]
}

type fakeDispatcher struct {
	thingCalls     int
	interfaceCalls int
	browserCalls   int
	lastParams     model.ParamValues
}

func (d *fakeDispatcher) ExecuteThingAction(thingID, actionTypeID model.ID, params model.ParamValues) error {
	d.thingCalls++
	d.lastParams = params
	return nil
}

func (d *fakeDispatcher) ExecuteInterfaceAction(interfaceName, actionName string, params model.ParamValues) error {
	d.interfaceCalls++
	return nil
}

func (d *fakeDispatcher) ExecuteBrowserAction(thingID model.ID, browserItemID string, params model.ParamValues) error {
	d.browserCalls++
	return nil
}

type fakeNotifier struct {
	activeChanges int
	lastActive    bool
	added         int
	removed       int
	configChanged int
}

func (n *fakeNotifier) RuleAdded(Rule)                      { n.added++ }
func (n *fakeNotifier) RuleRemoved(model.ID)                { n.removed++ }
func (n *fakeNotifier) RuleConfigurationChanged(Rule)       { n.configChanged++ }
func (n *fakeNotifier) RuleActiveChanged(id model.ID, a bool) {
	n.activeChanges++
	n.lastActive = a
}

func newEngine() (*RuleEngine, *fakeReader, *fakeDispatcher, *fakeNotifier) {
	r := newFakeReader()
	d := &fakeDispatcher{}
	n := &fakeNotifier{}
	return New(r, d, n), r, d, n
}

func stateRule(thingID, stateTypeID model.ID) Rule {
	return Rule{
		Enabled: true,
		StateEvaluator: &StateEvaluator{Descriptor: &StateDescriptor{
			ThingID: &thingID, StateTypeID: stateTypeID, Operator: OpEq, Value: true,
		}},
		Actions:     []RuleAction{{Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID()}},
		ExitActions: []RuleAction{{Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID()}},
	}
}

func TestAddRule_RejectsEmptyRule(t *testing.T) {
	e, _, _, _ := newEngine()
	_, code := e.AddRule(Rule{})
	assert.Equal(t, status.InvalidRuleFormat, code)
}

func TestAddRule_RejectsActionsOnlyNoTrigger(t *testing.T) {
	e, _, _, _ := newEngine()
	_, code := e.AddRule(Rule{Actions: []RuleAction{{Type: RuleActionThing, ThingID: model.NewID(), ActionTypeID: model.NewID()}}})
	assert.Equal(t, status.InvalidRuleFormat, code)
}

func TestAddRule_Succeeds(t *testing.T) {
	e, _, _, n := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, code := e.AddRule(stateRule(thingID, stateTypeID))
	require.True(t, code.Ok())
	assert.NotEqual(t, model.NilID, id)
	assert.Equal(t, 1, n.added)
}

func TestStateRule_FiresActionsOnActivate_AndExitOnDeactivate(t *testing.T) {
	e, reader, dispatcher, notifier := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, code := e.AddRule(stateRule(thingID, stateTypeID))
	require.True(t, code.Ok())

	reader.states[stateTypeID] = true
	e.OnTick(time.Now())
	assert.Equal(t, 1, dispatcher.thingCalls)
	assert.Equal(t, 1, notifier.activeChanges)
	assert.True(t, notifier.lastActive)

	r, _ := e.GetRuleDetails(id)
	assert.True(t, r.Active)

	reader.states[stateTypeID] = false
	e.OnTick(time.Now())
	assert.Equal(t, 2, dispatcher.thingCalls) // exit action fired too
	assert.Equal(t, 2, notifier.activeChanges)
	assert.False(t, notifier.lastActive)
}

func TestStateRule_NoRefireWhileStillActive(t *testing.T) {
	e, reader, dispatcher, _ := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	e.AddRule(stateRule(thingID, stateTypeID))

	reader.states[stateTypeID] = true
	e.OnTick(time.Now())
	e.OnTick(time.Now())
	assert.Equal(t, 1, dispatcher.thingCalls)
}

// Seed scenario from spec.md §8.2: a state-based rule must react to a state
// change immediately, not only on the next per-minute tick.
func TestStateRule_OnStateChanged_FiresWithoutWaitingForTick(t *testing.T) {
	e, reader, dispatcher, notifier := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, code := e.AddRule(stateRule(thingID, stateTypeID))
	require.True(t, code.Ok())

	reader.states[stateTypeID] = true
	e.OnStateChanged()
	assert.Equal(t, 1, dispatcher.thingCalls)
	assert.Equal(t, 1, notifier.activeChanges)
	assert.True(t, notifier.lastActive)

	r, _ := e.GetRuleDetails(id)
	assert.True(t, r.Active)

	reader.states[stateTypeID] = false
	e.OnStateChanged()
	assert.Equal(t, 2, dispatcher.thingCalls) // exit action fired too
	assert.False(t, notifier.lastActive)
}

// An event-based rule's actions never fire from OnStateChanged alone, only
// from its own matching event via OnEvent.
func TestEventRule_OnStateChanged_DoesNotFire(t *testing.T) {
	e, _, dispatcher, _ := newEngine()
	thingID, eventTypeID := model.NewID(), model.NewID()
	rule := Rule{
		Enabled:          true,
		EventDescriptors: []EventDescriptor{{ThingID: thingID, EventTypeID: eventTypeID}},
		Actions:          []RuleAction{{Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID()}},
	}
	_, code := e.AddRule(rule)
	require.True(t, code.Ok())

	e.OnStateChanged()
	assert.Equal(t, 0, dispatcher.thingCalls)
}

func TestEventRule_FiresOnMatchingEvent(t *testing.T) {
	e, _, dispatcher, _ := newEngine()
	thingID, eventTypeID := model.NewID(), model.NewID()
	rule := Rule{
		Enabled:          true,
		EventDescriptors: []EventDescriptor{{ThingID: thingID, EventTypeID: eventTypeID}},
		Actions:          []RuleAction{{Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID()}},
	}
	_, code := e.AddRule(rule)
	require.True(t, code.Ok())

	e.OnEvent(model.Event{ThingID: thingID, EventTypeID: eventTypeID})
	assert.Equal(t, 1, dispatcher.thingCalls)

	e.OnEvent(model.Event{ThingID: thingID, EventTypeID: model.NewID()}) // different event, no match
	assert.Equal(t, 1, dispatcher.thingCalls)
}

func TestEventRule_ParamsResolveFromTriggeringEvent(t *testing.T) {
	e, _, dispatcher, _ := newEngine()
	thingID, eventTypeID, eventParamTypeID, actionParamTypeID := model.NewID(), model.NewID(), model.NewID(), model.NewID()
	rule := Rule{
		Enabled:          true,
		EventDescriptors: []EventDescriptor{{ThingID: thingID, EventTypeID: eventTypeID}},
		Actions: []RuleAction{{
			Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID(),
			Params: RuleActionParams{{ParamTypeID: actionParamTypeID, EventTypeID: &eventTypeID, EventParamTypeID: &eventParamTypeID}},
		}},
	}
	e.AddRule(rule)

	e.OnEvent(model.Event{ThingID: thingID, EventTypeID: eventTypeID, Params: model.ParamValues{eventParamTypeID: 21.5}})
	require.Equal(t, 1, dispatcher.thingCalls)
	assert.Equal(t, 21.5, dispatcher.lastParams[actionParamTypeID])
}

// Seed scenario from spec.md §8: an event descriptor gated by a calendar
// item spanning 23:00-00:59 daily. The same event only dispatches while the
// calendar window is active.
func TestEventRule_GatedByCalendarAcrossMidnight(t *testing.T) {
	e, _, dispatcher, _ := newEngine()
	thingID, eventTypeID := model.NewID(), model.NewID()
	tod := mustTOD(t, "23:00")
	rule := Rule{
		Enabled:          true,
		EventDescriptors: []EventDescriptor{{ThingID: thingID, EventTypeID: eventTypeID}},
		TimeDescriptor: TimeDescriptor{
			CalendarItems: []CalendarItem{{StartTime: &tod, DurationMin: 120, Repeating: RepeatingOption{Mode: RepeatDaily}}},
		},
		Actions: []RuleAction{{Type: RuleActionThing, ThingID: thingID, ActionTypeID: model.NewID()}},
	}
	_, code := e.AddRule(rule)
	require.True(t, code.Ok())

	fire := func(clock time.Time) {
		e.SetClock(func() time.Time { return clock })
		e.OnEvent(model.Event{ThingID: thingID, EventTypeID: eventTypeID})
	}

	fire(at(2026, 3, 10, 22, 0))
	assert.Equal(t, 0, dispatcher.thingCalls, "22:00 is before the calendar window opens")

	fire(at(2026, 3, 10, 23, 30))
	assert.Equal(t, 1, dispatcher.thingCalls, "23:30 is inside the window")

	fire(at(2026, 3, 11, 0, 30))
	assert.Equal(t, 2, dispatcher.thingCalls, "00:30 next day is still inside the window")

	fire(at(2026, 3, 11, 1, 0))
	assert.Equal(t, 2, dispatcher.thingCalls, "01:00 is after the window closes")
}

func TestRemoveThingReferences_DeletesRuleLeftEmpty(t *testing.T) {
	e, _, _, notifier := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, _ := e.AddRule(stateRule(thingID, stateTypeID))

	e.RemoveThingReferences(thingID)
	_, code := e.GetRuleDetails(id)
	assert.Equal(t, status.RuleNotFound, code)
	assert.Equal(t, 1, notifier.removed)
}

func TestRemoveThingReferences_PrunesButKeepsMultiThingRule(t *testing.T) {
	e, _, _, notifier := newEngine()
	thingA, thingB, stateTypeID := model.NewID(), model.NewID(), model.NewID()
	rule := Rule{
		Enabled: true,
		StateEvaluator: &StateEvaluator{Operator: EvalOr, Children: []StateEvaluator{
			{Descriptor: &StateDescriptor{ThingID: &thingA, StateTypeID: stateTypeID, Operator: OpEq, Value: true}},
			{Descriptor: &StateDescriptor{ThingID: &thingB, StateTypeID: stateTypeID, Operator: OpEq, Value: true}},
		}},
		Actions: []RuleAction{{Type: RuleActionThing, ThingID: thingA, ActionTypeID: model.NewID()}},
	}
	id, _ := e.AddRule(rule)

	e.RemoveThingReferences(thingA)
	r, code := e.GetRuleDetails(id)
	require.True(t, code.Ok())
	assert.Equal(t, 0, notifier.removed)
	assert.Equal(t, 1, notifier.configChanged)
	assert.True(t, r.StateEvaluator.IsLeaf())
	assert.Equal(t, thingB, *r.StateEvaluator.Descriptor.ThingID)
}

func TestExecuteActions_RejectsUnknownRule(t *testing.T) {
	e, _, _, _ := newEngine()
	assert.Equal(t, status.RuleNotFound, e.ExecuteActions(model.NewID()))
}

func TestDisableRule_StopsTickEvaluation(t *testing.T) {
	e, reader, dispatcher, _ := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, _ := e.AddRule(stateRule(thingID, stateTypeID))
	e.DisableRule(id)

	reader.states[stateTypeID] = true
	e.OnTick(time.Now())
	assert.Equal(t, 0, dispatcher.thingCalls)
}
