// Package types implements the TypeRegistry: parsing plugin metadata
// documents and bundled interface definitions into the in-memory
// Vendor/ThingClass/ParamType graph the rest of the core reads from.
package types

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/nymea/nymea-sub004/internal/model"
)

// paramTypeDoc mirrors the on-disk shape of a ParamType declaration.
type paramTypeDoc struct {
	ID            string        `yaml:"id" validate:"required,uuid"`
	Name          string        `yaml:"name" validate:"required"`
	DisplayName   string        `yaml:"displayName"`
	Type          string        `yaml:"type" validate:"required,oneof=bool int uint double string uuid variant"`
	DefaultValue  interface{}   `yaml:"defaultValue"`
	MinValue      interface{}   `yaml:"minValue"`
	MaxValue      interface{}   `yaml:"maxValue"`
	AllowedValues []interface{} `yaml:"allowedValues"`
	Unit          string        `yaml:"unit"`
	InputType     string        `yaml:"inputType"`
	ReadOnly      bool          `yaml:"readOnly"`
}

// stateTypeDoc mirrors a StateType declaration.
type stateTypeDoc struct {
	ID                string        `yaml:"id" validate:"required,uuid"`
	Name              string        `yaml:"name" validate:"required"`
	DisplayName       string        `yaml:"displayName"`
	Type              string        `yaml:"type" validate:"required,oneof=bool int uint double string uuid variant"`
	DefaultValue      interface{}   `yaml:"defaultValue"`
	MinValue          interface{}   `yaml:"minValue"`
	MaxValue          interface{}   `yaml:"maxValue"`
	PossibleValues    []interface{} `yaml:"possibleValues"`
	Unit              string        `yaml:"unit"`
	Cached            bool          `yaml:"cached"`
	Writable          bool          `yaml:"writable"`
	DisplayNameEvent  string        `yaml:"displayNameEvent"`
	DisplayNameAction string        `yaml:"displayNameAction"`
}

// actionOrEventTypeDoc mirrors an ActionType/EventType declaration; both
// shapes are identical (id, name, displayName, paramTypes).
type actionOrEventTypeDoc struct {
	ID          string         `yaml:"id" validate:"required,uuid"`
	Name        string         `yaml:"name" validate:"required"`
	DisplayName string         `yaml:"displayName"`
	ParamTypes  []paramTypeDoc `yaml:"paramTypes"`
}

// thingClassDoc mirrors a ThingClass declaration.
type thingClassDoc struct {
	ID                  string                 `yaml:"id" validate:"required,uuid"`
	Name                string                 `yaml:"name" validate:"required"`
	DisplayName         string                 `yaml:"displayName"`
	CreateMethods       []string               `yaml:"createMethods" validate:"required,dive,oneof=user discovery auto"`
	SetupMethod         string                 `yaml:"setupMethod" validate:"required,oneof=justAdd displayPin enterPin pushButton userAndPassword oAuth"`
	Interfaces          []string               `yaml:"interfaces"`
	ParamTypes          []paramTypeDoc         `yaml:"paramTypes"`
	SettingsTypes       []paramTypeDoc         `yaml:"settingsTypes"`
	DiscoveryParamTypes []paramTypeDoc         `yaml:"discoveryParamTypes"`
	StateTypes          []stateTypeDoc         `yaml:"stateTypes"`
	ActionTypes         []actionOrEventTypeDoc `yaml:"actionTypes"`
	EventTypes          []actionOrEventTypeDoc `yaml:"eventTypes"`
	Browsable           bool                   `yaml:"browsable"`
}

// vendorDoc mirrors a Vendor declaration.
type vendorDoc struct {
	ID          string          `yaml:"id" validate:"required,uuid"`
	Name        string          `yaml:"name" validate:"required"`
	DisplayName string          `yaml:"displayName"`
	ThingClasses []thingClassDoc `yaml:"thingClasses"`
}

// pluginDoc is the root of a plugin metadata document.
type pluginDoc struct {
	ID          string         `yaml:"id" validate:"required,uuid"`
	Name        string         `yaml:"name" validate:"required"`
	DisplayName string         `yaml:"displayName"`
	BuiltIn     bool           `yaml:"builtIn"`
	ParamTypes  []paramTypeDoc `yaml:"paramTypes"`
	Vendors     []vendorDoc    `yaml:"vendors" validate:"required,min=1"`
}

var docValidator = validator.New()

// parsePluginDoc unmarshals and struct-validates raw plugin metadata. Any
// failure is reported as a single InvalidMetadata-class error; the
// registry's LoadPlugin treats it as fatal for the whole document, and skips
// single vendors/classes only for errors raised while building them.
func parsePluginDoc(raw []byte) (pluginDoc, error) {
	var doc pluginDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return pluginDoc{}, fmt.Errorf("parsing plugin metadata: %w", err)
	}
	if err := docValidator.Struct(doc); err != nil {
		return pluginDoc{}, fmt.Errorf("validating plugin metadata: %w", err)
	}
	return doc, nil
}

func toSemanticType(s string) model.SemanticType { return model.SemanticType(s) }
func toInputType(s string) model.InputType       { return model.InputType(s) }

func toParamType(d paramTypeDoc, index int) (model.ParamType, error) {
	id, err := model.ParseID(d.ID)
	if err != nil {
		return model.ParamType{}, fmt.Errorf("paramType %q: %w", d.Name, err)
	}
	return model.ParamType{
		ID:            id,
		Name:          d.Name,
		DisplayName:   d.DisplayName,
		Type:          toSemanticType(d.Type),
		DefaultValue:  d.DefaultValue,
		MinValue:      d.MinValue,
		MaxValue:      d.MaxValue,
		AllowedValues: d.AllowedValues,
		Unit:          d.Unit,
		InputType:     toInputType(d.InputType),
		ReadOnly:      d.ReadOnly,
		Index:         index,
	}, nil
}

func toParamTypes(docs []paramTypeDoc) ([]model.ParamType, error) {
	out := make([]model.ParamType, 0, len(docs))
	for i, d := range docs {
		pt, err := toParamType(d, i)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}

func toStateType(d stateTypeDoc) (model.StateType, error) {
	id, err := model.ParseID(d.ID)
	if err != nil {
		return model.StateType{}, fmt.Errorf("stateType %q: %w", d.Name, err)
	}
	return model.StateType{
		ID:                id,
		Name:              d.Name,
		DisplayName:       d.DisplayName,
		Type:              toSemanticType(d.Type),
		DefaultValue:      d.DefaultValue,
		MinValue:          d.MinValue,
		MaxValue:          d.MaxValue,
		AllowedValues:     d.PossibleValues,
		Unit:              d.Unit,
		Cached:            d.Cached,
		Writable:          d.Writable,
		DisplayNameEvent:  d.DisplayNameEvent,
		DisplayNameAction: d.DisplayNameAction,
	}, nil
}

func toActionOrEventType(d actionOrEventTypeDoc) (model.ID, string, string, []model.ParamType, error) {
	id, err := model.ParseID(d.ID)
	if err != nil {
		return model.NilID, "", "", nil, fmt.Errorf("type %q: %w", d.Name, err)
	}
	pts, err := toParamTypes(d.ParamTypes)
	if err != nil {
		return model.NilID, "", "", nil, err
	}
	return id, d.Name, d.DisplayName, pts, nil
}
