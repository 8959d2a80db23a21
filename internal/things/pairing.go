package things

import (
	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/paramvalidator"
	"github.com/nymea/nymea-sub004/internal/status"
)

// PairThing begins a pairing handshake against a class that requires one
// (anything other than justAdd). The transaction is later consumed by
// ConfirmPairing.
func (m *Manager) PairThing(thingClassID model.ID, name string, params model.ParamValues) (model.ID, <-chan asyncop.Result, status.Code) {
	class, ok := m.types.ThingClass(thingClassID)
	if !ok {
		return model.NilID, nil, status.ThingClassNotFound
	}
	if class.SetupMethod == model.SetupMethodJustAdd {
		return model.NilID, nil, status.SetupMethodNotSupported
	}
	validated, verr := paramvalidator.Validate(class.ParamTypes, params, paramvalidator.SourceUser)
	if verr != nil {
		return model.NilID, nil, verr.Code
	}

	txID := model.NewID()
	m.pairings[txID] = model.PairingTransaction{
		ID: txID, ThingClassID: thingClassID, Params: validated, Name: name,
	}

	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindPairing, opID, asyncop.DefaultTimeout(asyncop.KindPairing), func() {
		m.ops.TimeoutNow(asyncop.KindPairing, opID)
		delete(m.pairings, txID)
	})
	if err := m.plugins.StartPairing(opID, class.PluginID, thingClassID, name, validated); err != nil {
		delete(m.pairings, txID)
		m.ops.Complete(asyncop.KindPairing, opID, status.HardwareFailure, nil)
	}
	return txID, ch, status.Async
}

// OnPairingStarted records an optional OAuth URL on pairing transaction
// txID.
func (m *Manager) OnPairingStarted(txID model.ID, oAuthURL string) {
	tx, ok := m.pairings[txID]
	if !ok {
		return
	}
	tx.OAuthURL = oAuthURL
	m.pairings[txID] = tx
}

// ConfirmPairing completes a pairing transaction; on success it starts a
// setup for the resulting thing, adding or updating it.
func (m *Manager) ConfirmPairing(txID model.ID, username, secret string) (<-chan asyncop.Result, status.Code) {
	tx, ok := m.pairings[txID]
	if !ok {
		return nil, status.PairingTransactionIDNotFound
	}
	class, ok := m.types.ThingClass(tx.ThingClassID)
	if !ok {
		delete(m.pairings, txID)
		return nil, status.ThingClassNotFound
	}

	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindPairing, opID, asyncop.DefaultTimeout(asyncop.KindPairing), func() {
		m.ops.TimeoutNow(asyncop.KindPairing, opID)
	})
	if err := m.plugins.ConfirmPairing(opID, class.PluginID, username, secret); err != nil {
		delete(m.pairings, txID)
		m.ops.Complete(asyncop.KindPairing, opID, status.AuthenticationFailure, nil)
		return ch, status.Async
	}

	// The setup itself is kicked off once OnPairingFinished reports success;
	// stash the transaction id alongside the op so the callback can find it.
	m.pairingOps[opID] = txID
	return ch, status.Async
}

// OnPairingFinished is PluginHost's callback once confirmPairing completes.
// On success, a thing is created (or, if tx.ThingID was set, reconfigured)
// and its own setup begins; the pairing op resolves with the thing's id as
// soon as that setup has been started, without waiting for its outcome.
func (m *Manager) OnPairingFinished(opID model.ID, code status.Code) {
	txID, ok := m.pairingOps[opID]
	if !ok {
		return
	}
	delete(m.pairingOps, opID)
	tx, ok := m.pairings[txID]
	delete(m.pairings, txID)
	if !ok {
		m.ops.Complete(asyncop.KindPairing, opID, status.PairingTransactionIDNotFound, nil)
		return
	}
	if !code.Ok() {
		m.ops.Complete(asyncop.KindPairing, opID, code, nil)
		return
	}

	class, ok := m.types.ThingClass(tx.ThingClassID)
	if !ok {
		m.ops.Complete(asyncop.KindPairing, opID, status.ThingClassNotFound, nil)
		return
	}

	var t model.Thing
	initialAdd := tx.ThingID == nil
	if !initialAdd {
		t, ok = m.things[*tx.ThingID]
		if !ok {
			m.ops.Complete(asyncop.KindPairing, opID, status.ThingNotFound, nil)
			return
		}
		t.Params = tx.Params
	} else {
		t = model.Thing{
			ID:           model.NewID(),
			ThingClassID: tx.ThingClassID,
			PluginID:     class.PluginID,
			Name:         tx.Name,
			ParentID:     tx.ParentID,
			Params:       tx.Params,
			Settings:     defaultSettings(class),
			States:       defaultStates(class),
		}
	}
	t.SetupStatus = model.SetupStatusInProgress
	m.things[t.ID] = t
	m.beginSetup(t, initialAdd)
	m.ops.Complete(asyncop.KindPairing, opID, status.NoError, t.ID)
}
