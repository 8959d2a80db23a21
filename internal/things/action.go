package things

import (
	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/paramvalidator"
	"github.com/nymea/nymea-sub004/internal/status"
)

// ExecuteAction validates action.Params against the owning ActionType and
// routes the call to the thing's plugin.
func (m *Manager) ExecuteAction(action model.Action) (model.ID, <-chan asyncop.Result, status.Code) {
	t, ok := m.things[action.ThingID]
	if !ok {
		return model.NilID, nil, status.ThingNotFound
	}
	if t.SetupStatus != model.SetupStatusComplete {
		return model.NilID, nil, status.ThingNotFound
	}
	class, ok := m.types.ThingClass(t.ThingClassID)
	if !ok {
		return model.NilID, nil, status.ThingClassNotFound
	}
	at, ok := class.ActionTypeByID(action.ActionTypeID)
	if !ok {
		return model.NilID, nil, status.ActionTypeNotFound
	}
	validated, verr := paramvalidator.Validate(at.ParamTypes, action.Params, paramvalidator.SourceUser)
	if verr != nil {
		return model.NilID, nil, verr.Code
	}
	action.Params = validated

	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindAction, opID, asyncop.DefaultTimeout(asyncop.KindAction), func() {
		m.ops.TimeoutNow(asyncop.KindAction, opID)
	})
	m.trackOp(asyncop.KindAction, opID, t.ID, false)
	if err := m.plugins.ExecuteAction(opID, t.PluginID, action); err != nil {
		m.ops.Complete(asyncop.KindAction, opID, status.HardwareFailure, nil)
		return opID, ch, status.Async
	}
	return opID, ch, status.Async
}

// OnActionFinished is PluginHost's callback once executeAction completes.
func (m *Manager) OnActionFinished(opID model.ID, code status.Code, displayMessage string) {
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindAction, opID, code, displayMessage)
}
