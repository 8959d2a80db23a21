package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// A thing removal referencing several rules is resolved per a caller-supplied
// policy map: cascade removes the rule outright, update prunes just the
// reference. Rules a policy map doesn't mention are left alone (the caller is
// expected to have already confirmed every referencing rule has an entry).
func TestApplyRemovalPolicy_CascadeAndUpdateMixed(t *testing.T) {
	e, _, _, notifier := newEngine()
	thingID, other, stateTypeID := model.NewID(), model.NewID(), model.NewID()

	cascadeRule := stateRule(thingID, stateTypeID)
	cascadeID, _ := e.AddRule(cascadeRule)

	updateRule := Rule{
		Enabled: true,
		StateEvaluator: &StateEvaluator{Operator: EvalOr, Children: []StateEvaluator{
			{Descriptor: &StateDescriptor{ThingID: &thingID, StateTypeID: stateTypeID, Operator: OpEq, Value: true}},
			{Descriptor: &StateDescriptor{ThingID: &other, StateTypeID: stateTypeID, Operator: OpEq, Value: true}},
		}},
		Actions: []RuleAction{{Type: RuleActionThing, ThingID: other, ActionTypeID: model.NewID()}},
	}
	updateID, _ := e.AddRule(updateRule)

	untouchedRule := stateRule(other, stateTypeID)
	untouchedID, _ := e.AddRule(untouchedRule)

	notifier.added, notifier.removed, notifier.configChanged = 0, 0, 0

	e.ApplyRemovalPolicy(thingID, map[model.ID]model.RemovalPolicy{
		cascadeID: model.PolicyCascade,
		updateID:  model.PolicyUpdate,
	})

	_, code := e.GetRuleDetails(cascadeID)
	assert.Equal(t, status.RuleNotFound, code, "cascade policy removes the rule outright")

	kept, code := e.GetRuleDetails(updateID)
	require.True(t, code.Ok(), "update policy keeps the rule, pruned")
	assert.True(t, kept.StateEvaluator.IsLeaf())
	assert.Equal(t, other, *kept.StateEvaluator.Descriptor.ThingID)

	_, code = e.GetRuleDetails(untouchedID)
	assert.True(t, code.Ok(), "a rule absent from the policy map is left untouched")

	assert.Equal(t, 1, notifier.removed)
	assert.Equal(t, 1, notifier.configChanged)
}

// An update policy that would leave a rule with no state/event trigger and no
// actions removes it outright instead of keeping an empty husk.
func TestApplyRemovalPolicy_UpdateEmptiesRule_RemovesIt(t *testing.T) {
	e, _, _, notifier := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	rule := stateRule(thingID, stateTypeID)
	id, _ := e.AddRule(rule)
	notifier.removed, notifier.configChanged = 0, 0

	e.ApplyRemovalPolicy(thingID, map[model.ID]model.RemovalPolicy{id: model.PolicyUpdate})

	_, code := e.GetRuleDetails(id)
	assert.Equal(t, status.RuleNotFound, code)
	assert.Equal(t, 1, notifier.removed)
	assert.Equal(t, 0, notifier.configChanged)
}

// OnThingRemoved is the unconditional safety-net path ThingManager calls
// after policy resolution (or when a thing had no rule references at all):
// it prunes every remaining reference regardless of policy.
func TestOnThingRemoved_PrunesUnconditionally(t *testing.T) {
	e, _, _, notifier := newEngine()
	thingID, stateTypeID := model.NewID(), model.NewID()
	id, _ := e.AddRule(stateRule(thingID, stateTypeID))
	notifier.removed = 0

	e.OnThingRemoved(thingID)

	_, code := e.GetRuleDetails(id)
	assert.Equal(t, status.RuleNotFound, code)
	assert.Equal(t, 1, notifier.removed)
}
