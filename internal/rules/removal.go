package rules

import "github.com/nymea/nymea-sub004/internal/model"

// OnThingRemoved prunes every rule referencing thingID unconditionally. It is
// the safety net ThingManager calls after a removal has already been cleared
// by policy (or had no rule references to begin with); any rule a caller's
// policy map didn't resolve is pruned here rather than left dangling.
func (e *RuleEngine) OnThingRemoved(thingID model.ID) {
	e.RemoveThingReferences(thingID)
}

// ApplyRemovalPolicy resolves every rule referencing thingID per policy:
// PolicyCascade removes the rule outright, PolicyUpdate prunes just the
// reference to thingID (removing the rule if that empties it). Rules with no
// entry in policy are left untouched; callers are expected to have already
// confirmed every referencing rule has one.
func (e *RuleEngine) ApplyRemovalPolicy(thingID model.ID, policy map[model.ID]model.RemovalPolicy) {
	var kept []Rule
	for _, r := range e.rules {
		if !r.ReferencesThing(thingID) {
			kept = append(kept, r)
			continue
		}
		p, ok := policy[r.ID]
		if !ok {
			kept = append(kept, r)
			continue
		}
		if p == model.PolicyCascade {
			e.log.Info().Str("rule", r.ID.String()).Msg("rule removed: cascade policy on thing removal")
			e.unpersist(r.ID)
			e.notifier.RuleRemoved(r.ID)
			continue
		}
		pruned, empty := r.WithoutThing(thingID)
		if empty {
			e.log.Info().Str("rule", r.ID.String()).Msg("rule removed: update policy emptied it")
			e.unpersist(r.ID)
			e.notifier.RuleRemoved(r.ID)
			continue
		}
		kept = append(kept, pruned)
		e.persist(pruned)
		e.notifier.RuleConfigurationChanged(pruned)
	}
	e.rules = kept
}
