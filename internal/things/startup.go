package things

import "github.com/nymea/nymea-sub004/internal/model"

// LoadFromStore restores every persisted thing and re-runs its setup in
// parent-before-child order: each pass takes things whose parent is either
// unset or already taken, so a child's plugin object never stands up before
// its parent's does. A pass that places nothing while things remain means a
// parent cycle, which is corruption rather than something retryable.
func (m *Manager) LoadFromStore() {
	persisted, err := m.store.LoadThings()
	if err != nil {
		m.log.Error().Err(err).Msg("loading persisted things failed")
		return
	}

	remaining := make([]model.Thing, 0, len(persisted))
	for _, t := range persisted {
		if _, ok := m.types.ThingClass(t.ThingClassID); !ok {
			m.log.Warn().Str("thing", t.ID.String()).Str("thingClass", t.ThingClassID.String()).
				Msg("thing class not loaded; thing retained in storage but not instantiated")
			continue
		}
		remaining = append(remaining, t)
	}

	taken := make(map[model.ID]bool, len(remaining))
	for len(remaining) > 0 {
		var placedThisPass []model.Thing
		var stillRemaining []model.Thing
		for _, t := range remaining {
			if t.ParentID == nil || taken[*t.ParentID] {
				placedThisPass = append(placedThisPass, t)
			} else {
				stillRemaining = append(stillRemaining, t)
			}
		}
		if len(placedThisPass) == 0 {
			for _, t := range stillRemaining {
				m.log.Error().Str("thing", t.ID.String()).Msg("parent cycle detected at startup; thing not instantiated")
			}
			return
		}
		for _, t := range placedThisPass {
			m.things[t.ID] = t
			taken[t.ID] = true
			m.beginSetup(t, false)
		}
		remaining = stillRemaining
	}
}
