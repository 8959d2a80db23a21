package rules

import "github.com/nymea/nymea-sub004/internal/model"

// RuleActionParam is one parameter of a RuleAction. It is exactly one of
// value-based, event-based or state-based.
type RuleActionParam struct {
	ParamTypeID model.ID
	Value       interface{} // value-based

	EventTypeID      *model.ID // event-based
	EventParamTypeID *model.ID

	StateThingID *model.ID // state-based
	StateTypeID  *model.ID
}

func (p RuleActionParam) IsValueBased() bool { return p.Value != nil }
func (p RuleActionParam) IsEventBased() bool {
	return p.EventTypeID != nil && p.EventParamTypeID != nil
}
func (p RuleActionParam) IsStateBased() bool {
	return p.StateThingID != nil && p.StateTypeID != nil
}

// RuleActionParams is the full param list of one RuleAction.
type RuleActionParams []RuleActionParam

// FilterByParamTypeID returns the params matching paramTypeID. This filters
// strictly by ParamTypeID; historical versions of this logic compared a
// parameter to itself instead of filtering by id —
// that bug is not reproduced here.
func (ps RuleActionParams) FilterByParamTypeID(id model.ID) RuleActionParams {
	var out RuleActionParams
	for _, p := range ps {
		if p.ParamTypeID == id {
			out = append(out, p)
		}
	}
	return out
}

// RuleActionType discriminates how a RuleAction addresses its target: one
// thing directly, every thing implementing an interface, or a browser item.
type RuleActionType int

const (
	RuleActionThing RuleActionType = iota
	RuleActionInterface
	RuleActionBrowser
)

// RuleAction is a reference to an ActionType (on one thing, or fanned out
// across an interface) or to a browser item, with params resolved at
// execution time.
type RuleAction struct {
	Type RuleActionType

	ThingID      model.ID // RuleActionThing, RuleActionBrowser (the thing owning the browser item)
	ActionTypeID model.ID // RuleActionThing

	Interface       string // RuleActionInterface
	InterfaceAction string // RuleActionInterface

	BrowserItemID string // RuleActionBrowser

	Params RuleActionParams
}

// IsEventBased reports whether any param is event-based; such a RuleAction
// is only valid inside an event-based rule.
func (a RuleAction) IsEventBased() bool {
	for _, p := range a.Params {
		if p.IsEventBased() {
			return true
		}
	}
	return false
}

// IsStateBased reports whether any param is state-based.
func (a RuleAction) IsStateBased() bool {
	for _, p := range a.Params {
		if p.IsStateBased() {
			return true
		}
	}
	return false
}

// EventParamMatch optionally constrains an EventDescriptor to events whose
// named param compares to value a given way.
type EventParamMatch struct {
	ParamTypeID model.ID
	Operator    StateOperator
	Value       interface{}
}

// EventDescriptor selects which Events a rule reacts to: a specific
// EventType on a specific Thing, optionally filtered by param values.
type EventDescriptor struct {
	ThingID     model.ID
	EventTypeID model.ID
	ParamMatch  []EventParamMatch
}

// Matches reports whether ev satisfies this descriptor.
func (d EventDescriptor) Matches(ev model.Event) bool {
	if ev.ThingID != d.ThingID || ev.EventTypeID != d.EventTypeID {
		return false
	}
	for _, m := range d.ParamMatch {
		v, ok := ev.Params[m.ParamTypeID]
		if !ok || !compare(m.Operator, v, m.Value) {
			return false
		}
	}
	return true
}
