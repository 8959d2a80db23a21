package model

import (
	"time"

	"github.com/nymea/nymea-sub004/internal/status"
)

// SetupStatus is a Thing's position in its setup state machine.
type SetupStatus string

const (
	SetupStatusNone       SetupStatus = "none"
	SetupStatusInProgress SetupStatus = "inProgress"
	SetupStatusComplete   SetupStatus = "complete"
	SetupStatusFailed     SetupStatus = "failed"
)

// ParamValues is a paramTypeId -> value mapping.
type ParamValues map[ID]interface{}

// Clone returns a shallow copy.
func (p ParamValues) Clone() ParamValues {
	out := make(ParamValues, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Thing is a configured device or service instance.
type Thing struct {
	ID             ID
	ThingClassID   ID
	PluginID       ID
	Name           string
	ParentID       *ID
	Params         ParamValues // immutable after setup
	Settings       ParamValues // user-mutable
	States         ParamValues // keyed by StateType id
	AutoCreated    bool
	SetupStatus    SetupStatus
	SetupError     status.Code
	SetupDisplayMessage string
}

// Clone deep-copies the maps so callers cannot mutate a Thing behind the
// ThingManager's back.
func (t Thing) Clone() Thing {
	c := t
	c.Params = t.Params.Clone()
	c.Settings = t.Settings.Clone()
	c.States = t.States.Clone()
	if t.ParentID != nil {
		id := *t.ParentID
		c.ParentID = &id
	}
	return c
}

// ThingDescriptor is a provisional thing produced by discovery or
// auto-appearance, pending add or discard.
type ThingDescriptor struct {
	ID              ID
	ThingClassID    ID
	Title           string
	Description     string
	ParentID        *ID
	ExistingThingID *ID
	Params          ParamValues
	CreatedAt       time.Time
}

// PairingTransaction tracks an in-progress pairing handshake.
type PairingTransaction struct {
	ID           ID
	ThingClassID ID
	ThingID      *ID
	Params       ParamValues
	Name         string
	ParentID     *ID
	OAuthURL     string
	CreatedAt    time.Time
}

// ActionTrigger distinguishes a user-initiated action from one dispatched by
// the RuleEngine.
type ActionTrigger string

const (
	TriggerUser ActionTrigger = "user"
	TriggerRule ActionTrigger = "rule"
)

// Action is a transient request to invoke one ActionType on one Thing.
type Action struct {
	ActionTypeID ID
	ThingID      ID
	Params       ParamValues
	Trigger      ActionTrigger
}

// Event is a transient notification from a Thing, either plugin-emitted or
// synthesized from a state change.
type Event struct {
	EventTypeID   ID
	ThingID       ID
	Params        ParamValues
	IsStateChange bool
}

// Plugin is one loaded plugin: its declared config ParamTypes and current
// values, kept for lossless persistence.
type Plugin struct {
	ID          ID
	Name        string
	ParamTypes  []ParamType
	ConfigValues ParamValues
	IsBuiltIn   bool
}
