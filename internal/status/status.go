// Package status defines the stable status codes returned synchronously by
// every ThingManager and RuleEngine operation. No operation
// crossing that boundary returns a bare error; internal errors are logged
// and translated to the nearest Code before being handed back to a caller.
package status

// Code is a stable, wire-friendly result code.
type Code string

// ThingManager API status codes.
const (
	NoError                     Code = "NoError"
	PluginNotFound              Code = "PluginNotFound"
	VendorNotFound              Code = "VendorNotFound"
	ThingNotFound                Code = "ThingNotFound"
	ThingClassNotFound          Code = "ThingClassNotFound"
	ActionTypeNotFound          Code = "ActionTypeNotFound"
	StateTypeNotFound           Code = "StateTypeNotFound"
	EventTypeNotFound           Code = "EventTypeNotFound"
	ThingDescriptorNotFound     Code = "ThingDescriptorNotFound"
	MissingParameter            Code = "MissingParameter"
	InvalidParameter            Code = "InvalidParameter"
	SetupFailed                 Code = "SetupFailed"
	DuplicateUUID               Code = "DuplicateUuid"
	CreationMethodNotSupported  Code = "CreationMethodNotSupported"
	SetupMethodNotSupported     Code = "SetupMethodNotSupported"
	HardwareNotAvailable        Code = "HardwareNotAvailable"
	HardwareFailure             Code = "HardwareFailure"
	AuthenticationFailure       Code = "AuthenticationFailure"
	ThingInUse                  Code = "ThingInUse"
	ThingInRule                 Code = "ThingInRule"
	ThingIsChild                Code = "ThingIsChild"
	PairingTransactionIDNotFound Code = "PairingTransactionIdNotFound"
	ParameterNotWritable        Code = "ParameterNotWritable"
	ItemNotFound                Code = "ItemNotFound"
	ItemNotExecutable           Code = "ItemNotExecutable"
	UnsupportedFeature          Code = "UnsupportedFeature"
	Timeout                     Code = "Timeout"
	Async                       Code = "Async"
)

// RuleEngine API status codes.
const (
	RuleNotFound              Code = "RuleNotFound"
	InvalidRuleFormat         Code = "InvalidRuleFormat"
	TypeNotFound              Code = "TypeNotFound"
	InvalidStateEvaluatorValue Code = "InvalidStateEvaluatorValue"
	InvalidRepeatingOption    Code = "InvalidRepeatingOption"
	InvalidCalendarItem       Code = "InvalidCalendarItem"
	InvalidTimeEventItem      Code = "InvalidTimeEventItem"
	NetworkError              Code = "NetworkError"
)

// Ok reports whether code represents success.
func (c Code) Ok() bool { return c == NoError }
