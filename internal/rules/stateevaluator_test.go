package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nymea/nymea-sub004/internal/model"
)

// Interface-addressed StateDescriptors use "any match" union semantics
// (spec.md §9 Open Questions, resolved in SPEC_FULL.md §C.3): true iff at
// least one thing implementing the interface satisfies the condition.
func TestStateDescriptor_InterfaceAddressed_AnyMatch(t *testing.T) {
	reader := newFakeReader()
	// Two concrete things implement "lamp", each with its own concrete
	// StateTypeID backing the interface's "power" state name.
	stateA, stateB := model.NewID(), model.NewID()
	reader.iface["lamp.power"] = []InterfaceStateRef{
		{ThingID: model.NewID(), StateTypeID: stateA},
		{ThingID: model.NewID(), StateTypeID: stateB},
	}
	reader.states[stateA] = false
	reader.states[stateB] = false

	d := StateDescriptor{Interface: "lamp", StateName: "power", Operator: OpEq, Value: true}
	assert.False(t, d.Evaluate(reader), "neither thing is on")

	reader.states[stateB] = true
	assert.True(t, d.Evaluate(reader), "at least one implementing thing matches (any-match union semantics)")
}

func TestStateDescriptor_InterfaceAddressed_NoImplementors_IsFalse(t *testing.T) {
	reader := newFakeReader()
	d := StateDescriptor{Interface: "lamp", StateName: "power", Operator: OpEq, Value: true}
	assert.False(t, d.Evaluate(reader))
}

func TestStateDescriptor_DirectlyAddressed_UnknownThing_IsFalse(t *testing.T) {
	reader := newFakeReader()
	thingID, stateTypeID := model.NewID(), model.NewID()
	d := StateDescriptor{ThingID: &thingID, StateTypeID: stateTypeID, Operator: OpEq, Value: true}
	assert.False(t, d.Evaluate(reader))
}

func TestStateEvaluator_AndOr(t *testing.T) {
	reader := newFakeReader()
	thingID, stA, stB := model.NewID(), model.NewID(), model.NewID()
	reader.states[stA] = 70
	reader.states[stB] = true

	and := StateEvaluator{Operator: EvalAnd, Children: []StateEvaluator{
		{Descriptor: &StateDescriptor{ThingID: &thingID, StateTypeID: stA, Operator: OpGte, Value: 65.0}},
		{Descriptor: &StateDescriptor{ThingID: &thingID, StateTypeID: stB, Operator: OpEq, Value: true}},
	}}
	assert.True(t, and.Evaluate(reader))

	reader.states[stA] = 60
	assert.False(t, and.Evaluate(reader))

	or := StateEvaluator{Operator: EvalOr, Children: and.Children}
	assert.True(t, or.Evaluate(reader), "stB alone still satisfies an or")
}

// Seed scenario 2: StateEvaluator = (intState >= 65 AND boolState == true).
func TestStateEvaluator_SeedScenario_EnterExitBoundaries(t *testing.T) {
	reader := newFakeReader()
	thingID, intType, boolType := model.NewID(), model.NewID(), model.NewID()
	eval := StateEvaluator{Operator: EvalAnd, Children: []StateEvaluator{
		{Descriptor: &StateDescriptor{ThingID: &thingID, StateTypeID: intType, Operator: OpGte, Value: 65.0}},
		{Descriptor: &StateDescriptor{ThingID: &thingID, StateTypeID: boolType, Operator: OpEq, Value: true}},
	}}

	cases := []struct {
		boolVal  bool
		intVal   int
		expected bool
	}{
		{false, 66, false},
		{true, 66, true},
		{true, 64, false},
		{true, 65, true},
	}
	for _, c := range cases {
		reader.states[boolType] = c.boolVal
		reader.states[intType] = c.intVal
		assert.Equal(t, c.expected, eval.Evaluate(reader))
	}
}
