package notify

// NATS subject constants, one per notification the core publishes.
// Format: hub.<domain>.<action>

const (
	SubjectThingAdded           = "hub.thing.added"
	SubjectThingRemoved         = "hub.thing.removed"
	SubjectThingChanged         = "hub.thing.changed"
	SubjectThingSettingChanged  = "hub.thing.settingChanged"
	SubjectStateChanged         = "hub.thing.stateChanged"
	SubjectEventTriggered       = "hub.thing.eventTriggered"

	SubjectRuleAdded               = "hub.rule.added"
	SubjectRuleRemoved             = "hub.rule.removed"
	SubjectRuleConfigurationChanged = "hub.rule.configurationChanged"
	SubjectRuleActiveChanged       = "hub.rule.activeChanged"

	// SubjectDLQPrefix is the prefix DLQSubject puts in front of a subject,
	// mirroring the teacher's dead-letter convention. Bus.publish does not
	// retry a failed publish and sends nothing to a dead-letter subject.
	SubjectDLQPrefix = "hub.dlq"
)

// DLQSubject returns the dead-letter subject for a given subject.
func DLQSubject(subject string) string {
	return SubjectDLQPrefix + "." + subject
}
