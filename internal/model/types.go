package model

// SemanticType is the value kind a ParamType/StateType carries.
type SemanticType string

const (
	TypeBool    SemanticType = "bool"
	TypeInt     SemanticType = "int"
	TypeUint    SemanticType = "uint"
	TypeDouble  SemanticType = "double"
	TypeString  SemanticType = "string"
	TypeUUID    SemanticType = "uuid"
	TypeVariant SemanticType = "variant"
)

// InputType hints at how a param should be presented to a user (display
// only; the core never renders UI, it just carries the hint through).
type InputType string

const (
	InputTypeNone     InputType = ""
	InputTypePassword InputType = "password"
	InputTypeTextArea InputType = "textArea"
	InputTypeTextLine InputType = "textLine"
	InputTypeColor    InputType = "color"
	InputTypeDate     InputType = "date"
)

// ParamType describes one parameter/state slot: its semantic type, default,
// and (optionally) a range or an explicit allow-list. Immutable once parsed
// from plugin metadata.
type ParamType struct {
	ID             ID
	Name           string
	DisplayName    string
	Type           SemanticType
	DefaultValue   interface{}
	MinValue       interface{} `yaml:"minValue,omitempty"`
	MaxValue       interface{} `yaml:"maxValue,omitempty"`
	AllowedValues  []interface{} `yaml:"allowedValues,omitempty"`
	Unit           string `yaml:"unit,omitempty"`
	InputType      InputType `yaml:"inputType,omitempty"`
	ReadOnly       bool `yaml:"readOnly,omitempty"`
	Index          int
}

// StateType describes a piece of a Thing's observable state.
type StateType struct {
	ID                ID
	Name              string
	DisplayName       string
	Type              SemanticType
	DefaultValue      interface{}
	MinValue          interface{}
	MaxValue          interface{}
	AllowedValues     []interface{}
	Unit              string
	Cached            bool
	Writable          bool
	DisplayNameEvent  string
	DisplayNameAction string
}

// ActionType / EventType describe an operation or notification a ThingClass
// supports, each carrying its own ParamType list.
type ActionType struct {
	ID          ID
	Name        string
	DisplayName string
	ParamTypes  []ParamType
}

type EventType struct {
	ID          ID
	Name        string
	DisplayName string
	ParamTypes  []ParamType
}

// Interface is a named capability set a ThingClass may implement: a subset
// of required StateTypes, ActionTypes and EventTypes (matched by name),
// optionally inheriting from parent interfaces.
type Interface struct {
	Name       string
	Parents    []string
	States     []string
	Actions    []string
	Events     []string
}

// CreateMethod is how a ThingClass instance may come into being.
type CreateMethod string

const (
	CreateMethodUser      CreateMethod = "user"
	CreateMethodDiscovery CreateMethod = "discovery"
	CreateMethodAuto      CreateMethod = "auto"
)

// SetupMethod is the pairing flow a ThingClass requires.
type SetupMethod string

const (
	SetupMethodJustAdd          SetupMethod = "justAdd"
	SetupMethodDisplayPin       SetupMethod = "displayPin"
	SetupMethodEnterPin         SetupMethod = "enterPin"
	SetupMethodPushButton       SetupMethod = "pushButton"
	SetupMethodUserAndPassword  SetupMethod = "userAndPassword"
	SetupMethodOAuth            SetupMethod = "oAuth"
)

// Vendor is created when a plugin is loaded and lives with the PluginHost.
type Vendor struct {
	ID          ID
	Name        string
	DisplayName string
}

// ThingClass is the immutable type/schema a Thing conforms to.
type ThingClass struct {
	ID                 ID
	VendorID           ID
	PluginID           ID
	Name               string
	DisplayName        string
	CreateMethods      []CreateMethod
	SetupMethod        SetupMethod
	ParamTypes         []ParamType
	SettingsTypes      []ParamType
	DiscoveryParamTypes []ParamType
	StateTypes         []StateType
	ActionTypes        []ActionType
	EventTypes         []EventType
	Interfaces         []string
	Browsable          bool
}

// SupportsCreateMethod reports whether m is one of the class's CreateMethods.
func (c ThingClass) SupportsCreateMethod(m CreateMethod) bool {
	for _, cm := range c.CreateMethods {
		if cm == m {
			return true
		}
	}
	return false
}

// ParamTypeByID looks up a param type by id.
func (c ThingClass) ParamTypeByID(id ID) (ParamType, bool) {
	for _, p := range c.ParamTypes {
		if p.ID == id {
			return p, true
		}
	}
	return ParamType{}, false
}

// StateTypeByID looks up a state type by id.
func (c ThingClass) StateTypeByID(id ID) (StateType, bool) {
	for _, s := range c.StateTypes {
		if s.ID == id {
			return s, true
		}
	}
	return StateType{}, false
}

// ActionTypeByID looks up an action type by id.
func (c ThingClass) ActionTypeByID(id ID) (ActionType, bool) {
	for _, a := range c.ActionTypes {
		if a.ID == id {
			return a, true
		}
	}
	return ActionType{}, false
}
