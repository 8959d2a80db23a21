package rules

import (
	"time"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// Kind is a Rule's evaluation archetype, derived from which fields are set
//.
type Kind int

const (
	// KindEvent: has EventDescriptors or TimeEventItems — actions fire once
	// per matching event, gated by StateEvaluator and calendar activity.
	KindEvent Kind = iota
	// KindState: has only StateEvaluator and/or CalendarItems — maintains an
	// Active flag; actions/exitActions fire on transition.
	KindState
)

// Rule is a persisted unit (triggers, gate, actions, exitActions) evaluated
// by the RuleEngine.
type Rule struct {
	ID               model.ID
	Name             string
	Enabled          bool
	Executable       bool
	TimeDescriptor   TimeDescriptor
	EventDescriptors []EventDescriptor
	StateEvaluator   *StateEvaluator
	Actions          []RuleAction
	ExitActions      []RuleAction

	// Active is the derived activation flag for state-based rules; it stays
	// false for event-based rules, mixed ones included.
	Active           bool
	LastActiveChange time.Time
}

// Kind classifies the rule's archetype: event-based if it
// carries EventDescriptors or TimeEventItems, state-based otherwise.
func (r Rule) Kind() Kind {
	if len(r.EventDescriptors) > 0 || len(r.TimeDescriptor.TimeEventItems) > 0 {
		return KindEvent
	}
	return KindState
}

// IsMixed reports whether an event-based rule is additionally gated by
// state and/or calendar.
func (r Rule) IsMixed() bool {
	return r.Kind() == KindEvent && (r.StateEvaluator != nil || len(r.TimeDescriptor.CalendarItems) > 0)
}

// Validate enforces the rule-level invariants: at least one of
// eventDescriptors, stateEvaluator or timeDescriptor must be non-empty, and
// at least one of actions/exitActions must be present.
func (r Rule) Validate() *status.Code {
	invalid := status.InvalidRuleFormat

	hasEvents := len(r.EventDescriptors) > 0
	hasState := r.StateEvaluator != nil
	hasTime := !r.TimeDescriptor.IsEmpty()
	if !hasEvents && !hasState && !hasTime {
		return &invalid
	}

	if len(r.Actions) == 0 && len(r.ExitActions) == 0 {
		return &invalid
	}

	if r.StateEvaluator != nil {
		if code := r.StateEvaluator.Validate(); code != nil {
			c := status.InvalidStateEvaluatorValue
			return &c
		}
	}

	for _, ci := range r.TimeDescriptor.CalendarItems {
		if code := ci.Validate(); code != nil {
			return code
		}
	}
	for _, tei := range r.TimeDescriptor.TimeEventItems {
		if code := tei.Validate(); code != nil {
			return code
		}
	}

	kindIsEvent := r.Kind() == KindEvent
	for _, a := range r.Actions {
		if a.IsEventBased() && !kindIsEvent {
			return &invalid
		}
	}
	for _, a := range r.ExitActions {
		if a.IsEventBased() {
			return &invalid // exit actions never observe the triggering event
		}
	}

	return nil
}

// ReferencesThing reports whether the rule mentions thingID anywhere: event
// descriptors, state evaluator leaves, or action/exit-action targets. Used
// by removeConfiguredThing's cascade/update policy.
func (r Rule) ReferencesThing(thingID model.ID) bool {
	for _, ed := range r.EventDescriptors {
		if ed.ThingID == thingID {
			return true
		}
	}
	if r.StateEvaluator != nil && evaluatorReferencesThing(*r.StateEvaluator, thingID) {
		return true
	}
	for _, a := range append(append([]RuleAction{}, r.Actions...), r.ExitActions...) {
		if (a.Type == RuleActionThing || a.Type == RuleActionBrowser) && a.ThingID == thingID {
			return true
		}
		for _, p := range a.Params {
			if p.IsStateBased() && *p.StateThingID == thingID {
				return true
			}
		}
	}
	return false
}

func evaluatorReferencesThing(e StateEvaluator, thingID model.ID) bool {
	if e.IsLeaf() {
		return e.Descriptor.ThingID != nil && *e.Descriptor.ThingID == thingID
	}
	for _, c := range e.Children {
		if evaluatorReferencesThing(c, thingID) {
			return true
		}
	}
	return false
}

// WithoutThing returns a copy of the rule with every reference to thingID
// pruned (event descriptors dropped, state-evaluator leaves referencing it
// removed, actions/exitActions referencing it removed) and whether the
// result is now empty.
func (r Rule) WithoutThing(thingID model.ID) (Rule, bool) {
	out := r
	out.EventDescriptors = nil
	for _, ed := range r.EventDescriptors {
		if ed.ThingID != thingID {
			out.EventDescriptors = append(out.EventDescriptors, ed)
		}
	}
	if r.StateEvaluator != nil {
		out.StateEvaluator = pruneEvaluator(*r.StateEvaluator, thingID)
	}
	out.Actions = pruneActions(r.Actions, thingID)
	out.ExitActions = pruneActions(r.ExitActions, thingID)

	empty := len(out.EventDescriptors) == 0 && out.StateEvaluator == nil &&
		out.TimeDescriptor.IsEmpty() && len(out.Actions) == 0 && len(out.ExitActions) == 0
	return out, empty
}

func pruneActions(actions []RuleAction, thingID model.ID) []RuleAction {
	var out []RuleAction
	for _, a := range actions {
		if (a.Type == RuleActionThing || a.Type == RuleActionBrowser) && a.ThingID == thingID {
			continue
		}
		out = append(out, a)
	}
	return out
}

func pruneEvaluator(e StateEvaluator, thingID model.ID) *StateEvaluator {
	if e.IsLeaf() {
		if e.Descriptor.ThingID != nil && *e.Descriptor.ThingID == thingID {
			return nil
		}
		cp := e
		return &cp
	}
	var children []StateEvaluator
	for _, c := range e.Children {
		if pruned := pruneEvaluator(c, thingID); pruned != nil {
			children = append(children, *pruned)
		}
	}
	if len(children) == 0 {
		return nil
	}
	if len(children) == 1 {
		return &children[0]
	}
	return &StateEvaluator{Operator: e.Operator, Children: children}
}
