// Package rules implements the RuleEngine: rule storage, the StateEvaluator
// tree, CalendarItem/TimeEventItem time logic, and action-parameter
// resolution.
package rules

import (
	"fmt"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// StateOperator is the comparison a StateDescriptor leaf applies.
type StateOperator string

const (
	OpEq  StateOperator = "eq"
	OpNeq StateOperator = "neq"
	OpLt  StateOperator = "lt"
	OpLte StateOperator = "lte"
	OpGt  StateOperator = "gt"
	OpGte StateOperator = "gte"
)

// StateDescriptor is a leaf condition over one Thing's state, addressed
// either directly by ThingID+StateTypeID or by Interface+StateName. Interface-addressed descriptors match against every configured
// thing implementing that interface and are true iff at least one matches
// ("any match" union semantics).
type StateDescriptor struct {
	ThingID     *model.ID
	StateTypeID model.ID

	Interface string
	StateName string

	Operator StateOperator
	Value    interface{}
}

// IsInterfaceAddressed reports whether this descriptor addresses an
// interface rather than a concrete thing.
func (d StateDescriptor) IsInterfaceAddressed() bool {
	return d.ThingID == nil
}

// StateReader is the read-only view into live state the RuleEngine needs to
// evaluate a StateDescriptor. ThingManager implements it without needing to
// import this package (Go interfaces are satisfied structurally).
type StateReader interface {
	// StateValue returns the current value of one thing's state, or
	// ok=false if the thing or state type doesn't exist.
	StateValue(thingID model.ID, stateTypeID model.ID) (value interface{}, ok bool)
	// ThingsWithInterfaceState returns, for every configured (complete)
	// thing implementing interfaceName, the concrete StateTypeID backing
	// stateName on that thing.
	ThingsWithInterfaceState(interfaceName, stateName string) []InterfaceStateRef
}

// InterfaceStateRef binds an interface-addressed state to one concrete
// thing/stateType pair.
type InterfaceStateRef struct {
	ThingID     model.ID
	StateTypeID model.ID
}

// Evaluate resolves one StateDescriptor leaf against live state.
func (d StateDescriptor) Evaluate(r StateReader) bool {
	if !d.IsInterfaceAddressed() {
		v, ok := r.StateValue(*d.ThingID, d.StateTypeID)
		if !ok {
			return false
		}
		return compare(d.Operator, v, d.Value)
	}

	refs := r.ThingsWithInterfaceState(d.Interface, d.StateName)
	for _, ref := range refs {
		v, ok := r.StateValue(ref.ThingID, ref.StateTypeID)
		if ok && compare(d.Operator, v, d.Value) {
			return true
		}
	}
	return false
}

// compare applies ParamValidator's type-coercion rules: comparable numeric
// types compare numerically, strings/bools compare for equality only;
// incomparable types evaluate false.
func compare(op StateOperator, actual, expected interface{}) bool {
	if fa, ok := toFloat(actual); ok {
		if fe, ok := toFloat(expected); ok {
			return compareFloat(op, fa, fe)
		}
	}
	switch op {
	case OpEq:
		return actual == expected
	case OpNeq:
		return actual != expected
	default:
		return false // lt/lte/gt/gte on non-numeric, incomparable types
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

func compareFloat(op StateOperator, a, b float64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpNeq:
		return a != b
	case OpLt:
		return a < b
	case OpLte:
		return a <= b
	case OpGt:
		return a > b
	case OpGte:
		return a >= b
	default:
		return false
	}
}

// EvaluatorOp is the boolean combinator for an internal StateEvaluator node.
type EvaluatorOp string

const (
	EvalAnd EvaluatorOp = "and"
	EvalOr  EvaluatorOp = "or"
)

// StateEvaluator is a tree of nodes: each internal node has an operator over
// children; each leaf wraps one StateDescriptor.
type StateEvaluator struct {
	Operator   EvaluatorOp
	Children   []StateEvaluator
	Descriptor *StateDescriptor // non-nil only on a leaf
}

// IsLeaf reports whether this node is a StateDescriptor leaf.
func (e StateEvaluator) IsLeaf() bool { return e.Descriptor != nil }

// Validate recursively checks that every node is either a well-formed leaf
// or a well-formed internal node (exactly one of Descriptor/Children set).
func (e StateEvaluator) Validate() *status.Code {
	invalid := status.InvalidStateEvaluatorValue
	if e.IsLeaf() {
		if len(e.Children) > 0 {
			return &invalid
		}
		if e.Descriptor.Interface == "" && e.Descriptor.ThingID == nil {
			return &invalid
		}
		return nil
	}
	if len(e.Children) == 0 {
		return &invalid
	}
	if e.Operator != EvalAnd && e.Operator != EvalOr {
		return &invalid
	}
	for _, c := range e.Children {
		if code := c.Validate(); code != nil {
			return code
		}
	}
	return nil
}

// Evaluate recursively evaluates the tree against live state.
func (e StateEvaluator) Evaluate(r StateReader) bool {
	if e.IsLeaf() {
		return e.Descriptor.Evaluate(r)
	}
	switch e.Operator {
	case EvalAnd:
		for _, c := range e.Children {
			if !c.Evaluate(r) {
				return false
			}
		}
		return true
	case EvalOr:
		for _, c := range e.Children {
			if c.Evaluate(r) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (e StateEvaluator) String() string {
	if e.IsLeaf() {
		return fmt.Sprintf("(%v %s %v)", e.Descriptor.ThingID, e.Descriptor.Operator, e.Descriptor.Value)
	}
	return fmt.Sprintf("%s%v", e.Operator, e.Children)
}
