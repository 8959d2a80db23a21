package rules

import "github.com/nymea/nymea-sub004/internal/model"

// ResolveParams computes the concrete parameter values for one RuleAction at
// execution time: value-based params pass through unchanged, event-based
// params pull from the triggering event's params, state-based params read
// current live state.
func ResolveParams(a RuleAction, ev *model.Event, r StateReader) model.ParamValues {
	out := make(model.ParamValues, len(a.Params))
	for _, p := range a.Params {
		switch {
		case p.IsValueBased():
			out[p.ParamTypeID] = p.Value
		case p.IsEventBased():
			if ev == nil {
				continue
			}
			if v, ok := ev.Params[*p.EventParamTypeID]; ok {
				out[p.ParamTypeID] = v
			}
		case p.IsStateBased():
			if v, ok := r.StateValue(*p.StateThingID, *p.StateTypeID); ok {
				out[p.ParamTypeID] = v
			}
		}
	}
	return out
}
