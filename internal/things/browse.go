package things

import (
	"github.com/nymea/nymea-sub004/internal/asyncop"
	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/status"
)

// BrowseThing lists the children of itemID ("" for the root) on a browsable
// thing, localized to locale.
func (m *Manager) BrowseThing(thingID model.ID, itemID string, locale string) (model.ID, <-chan asyncop.Result, status.Code) {
	t, code := m.browsableThing(thingID)
	if !code.Ok() {
		return model.NilID, nil, code
	}
	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindBrowse, opID, asyncop.DefaultTimeout(asyncop.KindBrowse), func() {
		m.ops.TimeoutNow(asyncop.KindBrowse, opID)
	})
	m.trackOp(asyncop.KindBrowse, opID, thingID, false)
	if err := m.plugins.Browse(opID, t.PluginID, thingID, itemID, locale); err != nil {
		m.untrackOp(opID)
		m.ops.Complete(asyncop.KindBrowse, opID, status.HardwareFailure, nil)
	}
	return opID, ch, status.Async
}

// OnBrowseFinished is PluginHost's callback once BrowseThing completes.
func (m *Manager) OnBrowseFinished(opID model.ID, code status.Code, result model.BrowseResult) {
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindBrowse, opID, code, result)
}

// BrowserItem fetches the details of a single item, rather than listing its
// children.
func (m *Manager) BrowserItem(thingID model.ID, itemID string, locale string) (model.ID, <-chan asyncop.Result, status.Code) {
	t, code := m.browsableThing(thingID)
	if !code.Ok() {
		return model.NilID, nil, code
	}
	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindBrowse, opID, asyncop.DefaultTimeout(asyncop.KindBrowse), func() {
		m.ops.TimeoutNow(asyncop.KindBrowse, opID)
	})
	m.trackOp(asyncop.KindBrowse, opID, thingID, false)
	if err := m.plugins.BrowserItem(opID, t.PluginID, thingID, itemID, locale); err != nil {
		m.untrackOp(opID)
		m.ops.Complete(asyncop.KindBrowse, opID, status.HardwareFailure, nil)
	}
	return opID, ch, status.Async
}

// OnBrowserItemFinished is PluginHost's callback once BrowserItem completes.
func (m *Manager) OnBrowserItemFinished(opID model.ID, code status.Code, item model.BrowserItem) {
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindBrowse, opID, code, item)
}

// ExecuteBrowserItem invokes itemID itself (e.g. plays a media file), rather
// than one of its actions.
func (m *Manager) ExecuteBrowserItem(thingID model.ID, itemID string) (model.ID, <-chan asyncop.Result, status.Code) {
	t, code := m.browsableThing(thingID)
	if !code.Ok() {
		return model.NilID, nil, code
	}
	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindBrowse, opID, asyncop.DefaultTimeout(asyncop.KindBrowse), func() {
		m.ops.TimeoutNow(asyncop.KindBrowse, opID)
	})
	m.trackOp(asyncop.KindBrowse, opID, thingID, false)
	if err := m.plugins.ExecuteBrowserItem(opID, t.PluginID, thingID, itemID); err != nil {
		m.untrackOp(opID)
		m.ops.Complete(asyncop.KindBrowse, opID, status.HardwareFailure, nil)
	}
	return opID, ch, status.Async
}

// OnExecuteBrowserItemFinished is PluginHost's callback once
// ExecuteBrowserItem completes.
func (m *Manager) OnExecuteBrowserItemFinished(opID model.ID, code status.Code, displayMessage string) {
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindBrowse, opID, code, displayMessage)
}

// ExecuteBrowserItemAction invokes one of itemID's declared actions with
// params. This is the public, async-handle-returning operation; rule-driven
// browser actions go through ExecuteBrowserAction instead, which fires and
// forgets.
func (m *Manager) ExecuteBrowserItemAction(thingID model.ID, itemID string, params model.ParamValues) (model.ID, <-chan asyncop.Result, status.Code) {
	t, code := m.browsableThing(thingID)
	if !code.Ok() {
		return model.NilID, nil, code
	}
	opID := model.NewID()
	ch := m.ops.Begin(asyncop.KindBrowse, opID, asyncop.DefaultTimeout(asyncop.KindBrowse), func() {
		m.ops.TimeoutNow(asyncop.KindBrowse, opID)
	})
	m.trackOp(asyncop.KindBrowse, opID, thingID, false)
	if err := m.plugins.ExecuteBrowserItemAction(opID, t.PluginID, thingID, itemID, params); err != nil {
		m.untrackOp(opID)
		m.ops.Complete(asyncop.KindBrowse, opID, status.HardwareFailure, nil)
	}
	return opID, ch, status.Async
}

// OnExecuteBrowserItemActionFinished is PluginHost's callback once
// ExecuteBrowserItemAction completes.
func (m *Manager) OnExecuteBrowserItemActionFinished(opID model.ID, code status.Code, displayMessage string) {
	m.untrackOp(opID)
	m.ops.Complete(asyncop.KindBrowse, opID, code, displayMessage)
}

// browsableThing resolves thingID to a Thing whose class declares browsable
// support and which has completed setup.
func (m *Manager) browsableThing(thingID model.ID) (model.Thing, status.Code) {
	t, ok := m.things[thingID]
	if !ok || t.SetupStatus != model.SetupStatusComplete {
		return model.Thing{}, status.ThingNotFound
	}
	class, ok := m.types.ThingClass(t.ThingClassID)
	if !ok {
		return model.Thing{}, status.ThingClassNotFound
	}
	if !class.Browsable {
		return model.Thing{}, status.UnsupportedFeature
	}
	return t, status.NoError
}
