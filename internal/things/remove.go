package things

import (
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// RemoveConfiguredThing removes a thing and every descendant in its parent
// chain. If any of them is referenced by a rule, the removal is rejected
// with ThingInRule unless policy supplies an explicit cascade/update
// resolution for every affected rule.
func (m *Manager) RemoveConfiguredThing(thingID model.ID, policy map[model.ID]model.RemovalPolicy) (status.Code, []model.ID) {
	if _, ok := m.things[thingID]; !ok {
		return status.ThingNotFound, nil
	}

	subtree := m.collectSubtree(thingID)

	affected := map[model.ID]struct{}{}
	var affectedOrdered []model.ID
	for _, id := range subtree {
		for _, ruleID := range m.rules.FindRules(id) {
			if _, seen := affected[ruleID]; !seen {
				affected[ruleID] = struct{}{}
				affectedOrdered = append(affectedOrdered, ruleID)
			}
		}
	}

	if len(affectedOrdered) > 0 {
		if policy == nil {
			return status.ThingInRule, affectedOrdered
		}
		var unresolved []model.ID
		for _, ruleID := range affectedOrdered {
			if _, ok := policy[ruleID]; !ok {
				unresolved = append(unresolved, ruleID)
			}
		}
		if len(unresolved) > 0 {
			return status.ThingInRule, unresolved
		}
	}

	// Deepest descendants first, so a thing is never removed while its
	// child still references it.
	for i := len(subtree) - 1; i >= 0; i-- {
		m.removeOne(subtree[i], policy)
	}
	return status.NoError, nil
}

// collectSubtree returns thingID followed by every descendant, parents
// before children (breadth-first), matching the order removal must undo.
func (m *Manager) collectSubtree(thingID model.ID) []model.ID {
	out := []model.ID{thingID}
	frontier := []model.ID{thingID}
	for len(frontier) > 0 {
		var next []model.ID
		for _, pid := range frontier {
			for _, t := range m.things {
				if t.ParentID != nil && *t.ParentID == pid {
					out = append(out, t.ID)
					next = append(next, t.ID)
				}
			}
		}
		frontier = next
	}
	return out
}

func (m *Manager) removeOne(thingID model.ID, policy map[model.ID]model.RemovalPolicy) {
	t, ok := m.things[thingID]
	if !ok {
		return
	}

	m.cancelOpsForThing(thingID, status.ThingNotFound)
	m.rules.ApplyRemovalPolicy(thingID, policy)
	m.rules.OnThingRemoved(thingID)

	delete(m.things, thingID)
	delete(m.descriptors, thingID)

	m.plugins.ThingRemoved(t.PluginID, t)
	if err := m.store.DeleteThing(thingID); err != nil {
		m.log.Error().Err(err).Msg("deleting thing from store failed")
	}
	if err := m.store.DeleteStateValues(thingID); err != nil {
		m.log.Error().Err(err).Msg("deleting cached state values failed")
	}
	m.notifier.ThingRemoved(thingID)
	m.log.Info().Str("thing", thingID.String()).Msg("thing removed")
}
