// Package things implements ThingManager: the lifecycle of configured
// things (discover, pair, setup, reconfigure, remove), their param/state
// validation, and the async-operation suspension points that front plugin
// work.
package things

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/rules"
	"github.com/nymea/nymea-sub004/internal/status"
)

// Manager owns every configured Thing. Every exported method assumes it
// runs on the single core loop goroutine.
type Manager struct {
	things      map[model.ID]model.Thing
	descriptors map[model.ID]descriptorEntry
	pairings    map[model.ID]model.PairingTransaction
	pairingOps  map[model.ID]model.ID

	ops      *asyncop.Tracker
	opOwners map[model.ID]opOwner // opID -> (kind, thingID), for ops addressing a specific thing

	types    TypeSource
	plugins  PluginHost
	store    Store
	notifier Notifier
	rules    RuleSink

	log *zerolog.Logger
}

type descriptorEntry struct {
	descriptor model.ThingDescriptor
	expiresAt  time.Time
}

type opOwner struct {
	kind       asyncop.Kind
	thingID    model.ID
	initialAdd bool // true if thingID had no prior configuration before this op started
}

// trackOp records that opID addresses thingID, so a removal in flight can
// cancel it instead of leaving it to resolve against a thing that no longer
// exists. initialAdd marks a setup op for a thing that did not exist before
// this op (addConfiguredThing/addDiscoveredThing/a brand new auto-appeared
// or paired thing), as opposed to a reconfigure of an already-known thing:
// per spec.md §7, only the former is dropped from the live set on failure.
func (m *Manager) trackOp(kind asyncop.Kind, opID, thingID model.ID, initialAdd bool) {
	m.opOwners[opID] = opOwner{kind: kind, thingID: thingID, initialAdd: initialAdd}
}

// untrackOp forgets opID once it has resolved through the normal path.
func (m *Manager) untrackOp(opID model.ID) {
	delete(m.opOwners, opID)
}

// cancelOpsForThing cancels every outstanding op addressing thingID with
// code, dropping any later plugin callback for it.
func (m *Manager) cancelOpsForThing(thingID model.ID, code status.Code) {
	for opID, owner := range m.opOwners {
		if owner.thingID != thingID {
			continue
		}
		m.ops.Cancel(owner.kind, opID, code)
		delete(m.opOwners, opID)
	}
}

const descriptorTTL = 30 * time.Second

// New builds an empty Manager; call LoadFromStore to restore persisted
// things before serving requests.
func New(types TypeSource, plugins PluginHost, store Store, notifier Notifier, rules RuleSink) *Manager {
	return &Manager{
		things:      make(map[model.ID]model.Thing),
		descriptors: make(map[model.ID]descriptorEntry),
		pairings:    make(map[model.ID]model.PairingTransaction),
		pairingOps:  make(map[model.ID]model.ID),
		ops:         asyncop.New(),
		opOwners:    make(map[model.ID]opOwner),
		types:       types,
		plugins:     plugins,
		store:       store,
		notifier:    notifier,
		rules:       rules,
		log:         logger.Things(),
	}
}

// Thing returns a copy of one configured thing.
func (m *Manager) Thing(id model.ID) (model.Thing, bool) {
	t, ok := m.things[id]
	if !ok {
		return model.Thing{}, false
	}
	return t.Clone(), true
}

// Things returns a copy of every configured thing.
func (m *Manager) Things() []model.Thing {
	out := make([]model.Thing, 0, len(m.things))
	for _, t := range m.things {
		out = append(out, t.Clone())
	}
	return out
}

// StateValue implements rules.StateReader: it only considers things whose
// setup has completed, matching the rule that only complete things are
// valid sources of state for evaluation.
func (m *Manager) StateValue(thingID, stateTypeID model.ID) (interface{}, bool) {
	t, ok := m.things[thingID]
	if !ok || t.SetupStatus != model.SetupStatusComplete {
		return nil, false
	}
	v, ok := t.States[stateTypeID]
	return v, ok
}

// ThingsWithInterfaceState implements rules.StateReader's interface fan-out:
// every complete thing whose class implements interfaceName, resolved to
// the concrete StateTypeID backing stateName.
func (m *Manager) ThingsWithInterfaceState(interfaceName, stateName string) []rules.InterfaceStateRef {
	var refs []rules.InterfaceStateRef
	for _, class := range m.types.ThingClassesImplementing(interfaceName) {
		st, ok := stateTypeByName(class, stateName)
		if !ok {
			continue
		}
		for _, t := range m.things {
			if t.ThingClassID == class.ID && t.SetupStatus == model.SetupStatusComplete {
				refs = append(refs, rules.InterfaceStateRef{ThingID: t.ID, StateTypeID: st.ID})
			}
		}
	}
	return refs
}

func stateTypeByName(class model.ThingClass, name string) (model.StateType, bool) {
	for _, st := range class.StateTypes {
		if st.Name == name {
			return st, true
		}
	}
	return model.StateType{}, false
}

// ExecuteThingAction implements rules.Dispatcher for one directly addressed
// thing.
func (m *Manager) ExecuteThingAction(thingID, actionTypeID model.ID, params model.ParamValues) error {
	_, _, code := m.ExecuteAction(model.Action{ThingID: thingID, ActionTypeID: actionTypeID, Params: params, Trigger: model.TriggerRule})
	if !code.Ok() && code != status.Async {
		return codeErr{code}
	}
	return nil
}

// ExecuteInterfaceAction implements rules.Dispatcher's interface fan-out:
// every complete thing implementing interfaceName gets its own independent
// Action dispatch; one failing target does not cancel the rest.
func (m *Manager) ExecuteInterfaceAction(interfaceName, actionName string, params model.ParamValues) error {
	var firstErr error
	for _, class := range m.types.ThingClassesImplementing(interfaceName) {
		at, ok := actionTypeByName(class, actionName)
		if !ok {
			continue
		}
		for _, t := range m.things {
			if t.ThingClassID != class.ID || t.SetupStatus != model.SetupStatusComplete {
				continue
			}
			if err := m.ExecuteThingAction(t.ID, at.ID, params); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func actionTypeByName(class model.ThingClass, name string) (model.ActionType, bool) {
	for _, at := range class.ActionTypes {
		if at.Name == name {
			return at, true
		}
	}
	return model.ActionType{}, false
}

// ExecuteBrowserAction implements rules.Dispatcher for browser-item actions,
// dispatching to the public async ExecuteBrowserItemAction and discarding the
// handle: a rule doesn't wait on a browser item any more than it waits on a
// thing action.
func (m *Manager) ExecuteBrowserAction(thingID model.ID, browserItemID string, params model.ParamValues) error {
	_, _, code := m.ExecuteBrowserItemAction(thingID, browserItemID, params)
	if !code.Ok() && code != status.Async {
		return codeErr{code}
	}
	return nil
}

type codeErr struct{ code status.Code }

func (e codeErr) Error() string { return string(e.code) }
