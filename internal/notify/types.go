package notify

import "time"

// ThingAddedEvent is published when a thing finishes setup successfully.
type ThingAddedEvent struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	ThingID      string    `json:"thing_id"`
	ThingClassID string    `json:"thing_class_id"`
	Name         string    `json:"name"`
}

// ThingRemovedEvent is published when a thing is deleted.
type ThingRemovedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	ThingID   string    `json:"thing_id"`
}

// ThingChangedEvent is published on a name/parent/class-level change to a
// thing (not its settings, which get their own event).
type ThingChangedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	ThingID   string    `json:"thing_id"`
	Name      string    `json:"name"`
}

// ThingSettingChangedEvent is published when one of a thing's mutable
// settings is updated.
type ThingSettingChangedEvent struct {
	EventID     string      `json:"event_id"`
	Timestamp   time.Time   `json:"timestamp"`
	ThingID     string      `json:"thing_id"`
	ParamTypeID string      `json:"param_type_id"`
	Value       interface{} `json:"value"`
}

// StateChangedEvent is published whenever a thing's state value changes,
// the highest-volume event the bus carries.
type StateChangedEvent struct {
	EventID     string      `json:"event_id"`
	Timestamp   time.Time   `json:"timestamp"`
	ThingID     string      `json:"thing_id"`
	StateTypeID string      `json:"state_type_id"`
	Value       interface{} `json:"value"`
}

// EventTriggeredEvent is published for every Event, plugin-emitted ones and
// synthesized stateChanged events alike, so a state change publishes both a
// StateChangedEvent and an EventTriggeredEvent.
type EventTriggeredEvent struct {
	EventID     string                 `json:"event_id"`
	Timestamp   time.Time              `json:"timestamp"`
	ThingID     string                 `json:"thing_id"`
	EventTypeID string                 `json:"event_type_id"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// RuleAddedEvent is published when a rule is created.
type RuleAddedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	RuleID    string    `json:"rule_id"`
	Name      string    `json:"name"`
}

// RuleRemovedEvent is published when a rule is deleted.
type RuleRemovedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	RuleID    string    `json:"rule_id"`
}

// RuleConfigurationChangedEvent is published when a rule's definition is
// edited, including the implicit edits from a referenced thing's removal.
type RuleConfigurationChangedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	RuleID    string    `json:"rule_id"`
}

// RuleActiveChangedEvent is published when a state-based rule's derived
// Active flag flips.
type RuleActiveChangedEvent struct {
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`
	RuleID    string    `json:"rule_id"`
	Active    bool      `json:"active"`
}
