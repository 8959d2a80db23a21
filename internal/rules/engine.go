package rules

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// Store is the persistence role RuleEngine owns: the rules themselves,
// keyed by id. Mirrors things.Store's role in shape; a nil Store (the
// default after New) leaves the engine purely in-memory, which is all unit
// tests need.
type Store interface {
	SaveRule(r Rule) error
	DeleteRule(id model.ID) error
	LoadRules() ([]Rule, error)
}

// RuleEngine owns the rule set and evaluates it against ticks and events.
// Every exported method assumes it is called from the single core loop
// goroutine; RuleEngine takes no locks of its own.
type RuleEngine struct {
	rules []Rule // insertion order, mirrors GetRules ordering

	reader     StateReader
	dispatcher Dispatcher
	notifier   Notifier
	store      Store
	log        *zerolog.Logger
	now        func() time.Time
}

// New builds a RuleEngine. reader gives the evaluator live state access;
// dispatcher executes resolved actions; notifier publishes rule lifecycle
// events. Call SetStore and LoadFromStore before serving requests if rules
// should survive a restart. The clock defaults to time.Now; wire it to
// TimeManager.CurrentDateTime (via SetClock) so an event's calendar gate
// respects the same test-overridden clock a tick's gate does.
func New(reader StateReader, dispatcher Dispatcher, notifier Notifier) *RuleEngine {
	return &RuleEngine{
		reader:     reader,
		dispatcher: dispatcher,
		notifier:   notifier,
		log:        logger.Rules(),
		now:        time.Now,
	}
}

// SetStore attaches the persistence role. Mirrors things.Manager's
// constructor-then-LoadFromStore split: New stays usable standalone for
// tests, while a wired daemon attaches a store before loading.
func (e *RuleEngine) SetStore(s Store) {
	e.store = s
}

// SetClock overrides the clock OnEvent uses to evaluate a rule's calendar
// gate. Tests that drive TimeManager.SetTime should point this at
// TimeManager.CurrentDateTime so event-triggered and tick-triggered
// evaluation agree on "now".
func (e *RuleEngine) SetClock(now func() time.Time) {
	e.now = now
}

// LoadFromStore restores every persisted rule. Rules referencing a now
// unknown type are kept verbatim: RuleEngine has no TypeSource of its own to
// validate against, so a stale reference only surfaces once the rule
// actually tries to dispatch.
func (e *RuleEngine) LoadFromStore() {
	if e.store == nil {
		return
	}
	persisted, err := e.store.LoadRules()
	if err != nil {
		e.log.Error().Err(err).Msg("loading persisted rules failed")
		return
	}
	e.rules = persisted
}

func (e *RuleEngine) persist(r Rule) {
	if e.store == nil {
		return
	}
	if err := e.store.SaveRule(r); err != nil {
		e.log.Error().Err(err).Msg("persisting rule failed")
	}
}

func (e *RuleEngine) unpersist(id model.ID) {
	if e.store == nil {
		return
	}
	if err := e.store.DeleteRule(id); err != nil {
		e.log.Error().Err(err).Msg("deleting persisted rule failed")
	}
}

func (e *RuleEngine) indexOf(id model.ID) int {
	for i, r := range e.rules {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// GetRules returns every rule, in the order they were added.
func (e *RuleEngine) GetRules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// GetRuleDetails returns one rule by id.
func (e *RuleEngine) GetRuleDetails(id model.ID) (Rule, status.Code) {
	if i := e.indexOf(id); i >= 0 {
		return e.rules[i], status.NoError
	}
	return Rule{}, status.RuleNotFound
}

// FindRules returns the ids of every rule referencing thingID.
func (e *RuleEngine) FindRules(thingID model.ID) []model.ID {
	var ids []model.ID
	for _, r := range e.rules {
		if r.ReferencesThing(thingID) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// AddRule validates and stores a new rule, assigning it an ID if unset.
func (e *RuleEngine) AddRule(r Rule) (model.ID, status.Code) {
	if code := r.Validate(); code != nil {
		return model.NilID, *code
	}
	if r.ID == model.NilID {
		r.ID = model.NewID()
	}
	if e.indexOf(r.ID) >= 0 {
		return model.NilID, status.DuplicateUUID
	}
	r.Executable = true
	r.LastActiveChange = time.Now()
	e.rules = append(e.rules, r)
	e.log.Info().Str("rule", r.ID.String()).Str("name", r.Name).Msg("rule added")
	e.persist(r)
	e.notifier.RuleAdded(r)
	return r.ID, status.NoError
}

// EditRule replaces an existing rule's definition wholesale, preserving its
// id, Enabled flag and Active/LastActiveChange state.
func (e *RuleEngine) EditRule(r Rule) status.Code {
	i := e.indexOf(r.ID)
	if i < 0 {
		return status.RuleNotFound
	}
	if code := r.Validate(); code != nil {
		return *code
	}
	r.Enabled = e.rules[i].Enabled
	r.Active = e.rules[i].Active
	r.LastActiveChange = e.rules[i].LastActiveChange
	e.rules[i] = r
	e.log.Info().Str("rule", r.ID.String()).Msg("rule configuration changed")
	e.persist(r)
	e.notifier.RuleConfigurationChanged(r)
	return status.NoError
}

// RemoveRule deletes a rule.
func (e *RuleEngine) RemoveRule(id model.ID) status.Code {
	i := e.indexOf(id)
	if i < 0 {
		return status.RuleNotFound
	}
	e.rules = append(e.rules[:i], e.rules[i+1:]...)
	e.log.Info().Str("rule", id.String()).Msg("rule removed")
	e.unpersist(id)
	e.notifier.RuleRemoved(id)
	return status.NoError
}

// EnableRule/DisableRule toggle whether a rule is evaluated at all. A
// disabled rule's Active flag is left untouched so re-enabling doesn't spuriously
// refire an exit action.
func (e *RuleEngine) EnableRule(id model.ID) status.Code {
	i := e.indexOf(id)
	if i < 0 {
		return status.RuleNotFound
	}
	e.rules[i].Enabled = true
	e.persist(e.rules[i])
	return status.NoError
}

func (e *RuleEngine) DisableRule(id model.ID) status.Code {
	i := e.indexOf(id)
	if i < 0 {
		return status.RuleNotFound
	}
	e.rules[i].Enabled = false
	e.persist(e.rules[i])
	return status.NoError
}

// ExecuteActions runs a rule's actions on demand, bypassing its trigger
// conditions.
func (e *RuleEngine) ExecuteActions(id model.ID) status.Code {
	i := e.indexOf(id)
	if i < 0 {
		return status.RuleNotFound
	}
	if !e.rules[i].Executable {
		return status.ItemNotExecutable
	}
	e.executeActions(e.rules[i].Actions, nil)
	return status.NoError
}

// ExecuteExitActions runs a rule's exit actions on demand.
func (e *RuleEngine) ExecuteExitActions(id model.ID) status.Code {
	i := e.indexOf(id)
	if i < 0 {
		return status.RuleNotFound
	}
	if !e.rules[i].Executable {
		return status.ItemNotExecutable
	}
	e.executeActions(e.rules[i].ExitActions, nil)
	return status.NoError
}

// RemoveThingReferences prunes every rule mentioning thingID, deleting rules
// left empty by the prune and notifying the configuration change on the
// rest.
func (e *RuleEngine) RemoveThingReferences(thingID model.ID) {
	var kept []Rule
	for _, r := range e.rules {
		if !r.ReferencesThing(thingID) {
			kept = append(kept, r)
			continue
		}
		pruned, empty := r.WithoutThing(thingID)
		if empty {
			e.log.Info().Str("rule", r.ID.String()).Msg("rule removed: its only referenced thing was deleted")
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

// OnTick is driven by TimeManager's minute-aligned dateTimeChanged signal:
// recompute calendar gating, fire any TimeEventItems as synthetic triggers,
// then recompute state-based activation.
func (e *RuleEngine) OnTick(dt time.Time) {
	for i := range e.rules {
		r := &e.rules[i]
		if !r.Enabled {
			continue
		}

		calendarActive := r.TimeDescriptor.CalendarActive(dt)

		if r.Kind() == KindEvent {
			if len(r.TimeDescriptor.FiredTimeEvents(dt)) == 0 {
				continue
			}
			if !calendarActive {
				continue
			}
			if r.StateEvaluator != nil && !r.StateEvaluator.Evaluate(e.reader) {
				continue
			}
			e.executeActions(r.Actions, nil)
			continue
		}

		e.evaluateStateBased(r, calendarActive)
	}
}

// OnEvent fires the actions of every enabled event-based rule whose
// EventDescriptors match ev, gated by calendar activity and, for mixed
// rules, the StateEvaluator.
func (e *RuleEngine) OnEvent(ev model.Event) {
	for i := range e.rules {
		r := &e.rules[i]
		if !r.Enabled || r.Kind() != KindEvent || len(r.EventDescriptors) == 0 {
			continue
		}
		matched := false
		for _, ed := range r.EventDescriptors {
			if ed.Matches(ev) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		if !r.TimeDescriptor.CalendarActive(e.now()) {
			continue
		}
		if r.StateEvaluator != nil && !r.StateEvaluator.Evaluate(e.reader) {
			continue
		}
		e.executeActions(r.Actions, &ev)
	}
}

// OnStateChanged re-evaluates every enabled state-based rule's activation
// immediately, rather than waiting for the next per-minute tick: spec.md §2
// and §4.6 require the engine to react to a state change as its own
// trigger, not just to `dateTimeChanged`, so seed scenario §8.2's
// (intState>=65 AND boolState==true) rule transitions within the same core
// loop iteration as the state write instead of up to ~60s late.
// Event-based rules (including mixed ones gated by a StateEvaluator) still
// only fire from their own matching event via OnEvent; a bare state change
// with no accompanying event descriptor match never fires an event-based
// rule's actions.
func (e *RuleEngine) OnStateChanged() {
	now := e.now()
	for i := range e.rules {
		r := &e.rules[i]
		if !r.Enabled || r.Kind() != KindState {
			continue
		}
		e.evaluateStateBased(r, r.TimeDescriptor.CalendarActive(now))
	}
}

// evaluateStateBased recomputes a state-based rule's Active flag and fires
// actions or exitActions on transition.
func (e *RuleEngine) evaluateStateBased(r *Rule, calendarActive bool) {
	active := calendarActive
	if r.StateEvaluator != nil {
		active = active && r.StateEvaluator.Evaluate(e.reader)
	}
	if active == r.Active {
		return
	}
	r.Active = active
	r.LastActiveChange = time.Now()
	e.log.Info().Str("rule", r.ID.String()).Bool("active", active).Msg("rule active state changed")
	e.notifier.RuleActiveChanged(r.ID, active)
	if active {
		e.executeActions(r.Actions, nil)
	} else {
		e.executeActions(r.ExitActions, nil)
	}
}
