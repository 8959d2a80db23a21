package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nymea/nymea-sub004/internal/model"
)

// FilterByParamTypeID must filter strictly by ParamTypeID, never by value
// equality: two params can legitimately share the same Value (e.g. both
// unset, or both zero) while addressing different ParamTypes, and a value
// comparison would wrongly merge them. This is the fix for the historical
// self-comparison bug SPEC_FULL.md documents.
func TestRuleActionParams_FilterByParamTypeID(t *testing.T) {
	pt1, pt2 := model.NewID(), model.NewID()
	params := RuleActionParams{
		{ParamTypeID: pt1, Value: 5},
		{ParamTypeID: pt2, Value: 5}, // same Value, different ParamTypeID
	}

	got := params.FilterByParamTypeID(pt1)
	assert.Len(t, got, 1)
	assert.Equal(t, pt1, got[0].ParamTypeID)

	got = params.FilterByParamTypeID(pt2)
	assert.Len(t, got, 1)
	assert.Equal(t, pt2, got[0].ParamTypeID)

	assert.Empty(t, params.FilterByParamTypeID(model.NewID()))
}

func TestRuleActionParam_Discriminants(t *testing.T) {
	eventTypeID, eventParamTypeID := model.NewID(), model.NewID()
	stateThingID, stateTypeID := model.NewID(), model.NewID()

	value := RuleActionParam{ParamTypeID: model.NewID(), Value: 42}
	assert.True(t, value.IsValueBased())
	assert.False(t, value.IsEventBased())
	assert.False(t, value.IsStateBased())

	event := RuleActionParam{ParamTypeID: model.NewID(), EventTypeID: &eventTypeID, EventParamTypeID: &eventParamTypeID}
	assert.False(t, event.IsValueBased())
	assert.True(t, event.IsEventBased())
	assert.False(t, event.IsStateBased())

	state := RuleActionParam{ParamTypeID: model.NewID(), StateThingID: &stateThingID, StateTypeID: &stateTypeID}
	assert.False(t, state.IsValueBased())
	assert.False(t, state.IsEventBased())
	assert.True(t, state.IsStateBased())
}
