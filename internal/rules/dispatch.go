package rules

import "github.com/nymea/nymea-sub004/internal/model"

// Dispatcher executes resolved RuleActions against things, interfaces and
// browser items. The RuleEngine resolves params and chooses which actions to
// fire; it never talks to ThingManager directly.
type Dispatcher interface {
	ExecuteThingAction(thingID model.ID, actionTypeID model.ID, params model.ParamValues) error
	// ExecuteInterfaceAction fans the action out to every configured thing
	// implementing interfaceName; a single thing's failure does not cancel
	// the others.
	ExecuteInterfaceAction(interfaceName, actionName string, params model.ParamValues) error
	// ExecuteBrowserAction fires a browser-item action on thingID's plugin;
	// named distinctly from ThingManager's public ExecuteBrowserItemAction,
	// which instead returns an async handle.
	ExecuteBrowserAction(thingID model.ID, browserItemID string, params model.ParamValues) error
}

// Notifier emits the RuleEngine's portion of the notification bus: ruleAdded, ruleRemoved, ruleActiveChanged, ruleConfigurationChanged.
type Notifier interface {
	RuleAdded(r Rule)
	RuleRemoved(id model.ID)
	RuleActiveChanged(id model.ID, active bool)
	RuleConfigurationChanged(r Rule)
}

// executeActions resolves and dispatches each RuleAction in turn, logging
// (not aborting on) individual failures — one broken action in a rule must
// not prevent its siblings from running.
func (e *RuleEngine) executeActions(actions []RuleAction, ev *model.Event) {
	for _, a := range actions {
		params := ResolveParams(a, ev, e.reader)
		var err error
		switch a.Type {
		case RuleActionThing:
			err = e.dispatcher.ExecuteThingAction(a.ThingID, a.ActionTypeID, params)
		case RuleActionInterface:
			err = e.dispatcher.ExecuteInterfaceAction(a.Interface, a.InterfaceAction, params)
		case RuleActionBrowser:
			err = e.dispatcher.ExecuteBrowserAction(a.ThingID, a.BrowserItemID, params)
		}
		if err != nil {
			e.log.Error().Err(err).Msg("rule action failed")
		}
	}
}
