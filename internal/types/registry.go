package types

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nymea/nymea-sub004/internal/logger"
	"github.com/nymea/nymea-sub004/internal/model"
)

// Registry is the in-memory type graph: every Vendor and ThingClass known to
// the core, plus the bundled interface definitions classes are checked
// against. Read-only once plugin loading has finished; things.Manager holds
// it as TypeSource.
type Registry struct {
	interfaces map[string]interfaceDoc
	vendors    map[model.ID]model.Vendor
	classes    map[model.ID]model.ThingClass
	byIface    map[string][]model.ID // interface name -> class ids implementing it, rebuilt on every class add

	log *zerolog.Logger
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{
		interfaces: make(map[string]interfaceDoc),
		vendors:    make(map[model.ID]model.Vendor),
		classes:    make(map[model.ID]model.ThingClass),
		byIface:    make(map[string][]model.ID),
		log:        logger.Types(),
	}
}

// AddInterfaceDefinition registers one bundled interface definition from its
// raw declarative document.
func (r *Registry) AddInterfaceDefinition(raw []byte) error {
	doc, err := parseInterfaceDoc(raw)
	if err != nil {
		return err
	}
	r.interfaces[doc.Name] = doc
	return nil
}

// Interface looks up a loaded interface definition by name.
func (r *Registry) Interface(name string) (model.Interface, bool) {
	doc, ok := r.interfaces[name]
	if !ok {
		return model.Interface{}, false
	}
	return model.Interface{Name: doc.Name, Parents: doc.Parents, States: doc.States, Actions: doc.Actions, Events: doc.Events}, true
}

// LoadPlugin parses a plugin metadata document and registers every vendor and
// thing class it declares. A single invalid class or vendor is skipped (with
// an InvalidMetadata-class warning logged) without failing the rest of the
// document, per the "the rest of the plugin still loads" contract.
func (r *Registry) LoadPlugin(pluginID model.ID, raw []byte) (model.Plugin, error) {
	doc, err := parsePluginDoc(raw)
	if err != nil {
		return model.Plugin{}, fmt.Errorf("InvalidMetadata: %w", err)
	}

	pluginParams, err := toParamTypes(doc.ParamTypes)
	if err != nil {
		return model.Plugin{}, fmt.Errorf("InvalidMetadata: plugin %q: %w", doc.Name, err)
	}

	for _, vd := range doc.Vendors {
		vendorID, err := model.ParseID(vd.ID)
		if err != nil {
			r.log.Warn().Err(err).Str("vendor", vd.Name).Msg("InvalidMetadata: vendor skipped")
			continue
		}
		r.vendors[vendorID] = model.Vendor{ID: vendorID, Name: vd.Name, DisplayName: vd.DisplayName}

		for _, cd := range vd.ThingClasses {
			class, err := r.buildThingClass(cd, vendorID, pluginID)
			if err != nil {
				r.log.Warn().Err(err).Str("thingClass", cd.Name).Msg("InvalidMetadata: thing class skipped")
				continue
			}
			r.addClass(class)
		}
	}

	return model.Plugin{ID: pluginID, Name: doc.Name, ParamTypes: pluginParams, IsBuiltIn: doc.BuiltIn}, nil
}

func (r *Registry) buildThingClass(cd thingClassDoc, vendorID, pluginID model.ID) (model.ThingClass, error) {
	id, err := model.ParseID(cd.ID)
	if err != nil {
		return model.ThingClass{}, err
	}
	paramTypes, err := toParamTypes(cd.ParamTypes)
	if err != nil {
		return model.ThingClass{}, err
	}
	settingsTypes, err := toParamTypes(cd.SettingsTypes)
	if err != nil {
		return model.ThingClass{}, err
	}
	discoveryParamTypes, err := toParamTypes(cd.DiscoveryParamTypes)
	if err != nil {
		return model.ThingClass{}, err
	}
	stateTypes := make([]model.StateType, 0, len(cd.StateTypes))
	for _, sd := range cd.StateTypes {
		st, err := toStateType(sd)
		if err != nil {
			return model.ThingClass{}, err
		}
		stateTypes = append(stateTypes, st)
	}
	actionTypes := make([]model.ActionType, 0, len(cd.ActionTypes))
	for _, ad := range cd.ActionTypes {
		aid, name, display, pts, err := toActionOrEventType(ad)
		if err != nil {
			return model.ThingClass{}, err
		}
		actionTypes = append(actionTypes, model.ActionType{ID: aid, Name: name, DisplayName: display, ParamTypes: pts})
	}
	eventTypes := make([]model.EventType, 0, len(cd.EventTypes))
	for _, ed := range cd.EventTypes {
		eid, name, display, pts, err := toActionOrEventType(ed)
		if err != nil {
			return model.ThingClass{}, err
		}
		eventTypes = append(eventTypes, model.EventType{ID: eid, Name: name, DisplayName: display, ParamTypes: pts})
	}

	createMethods := make([]model.CreateMethod, 0, len(cd.CreateMethods))
	for _, cm := range cd.CreateMethods {
		createMethods = append(createMethods, model.CreateMethod(cm))
	}

	class := model.ThingClass{
		ID:                  id,
		VendorID:            vendorID,
		PluginID:            pluginID,
		Name:                cd.Name,
		DisplayName:         cd.DisplayName,
		CreateMethods:       createMethods,
		SetupMethod:         model.SetupMethod(cd.SetupMethod),
		ParamTypes:          paramTypes,
		SettingsTypes:       settingsTypes,
		DiscoveryParamTypes: discoveryParamTypes,
		StateTypes:          stateTypes,
		ActionTypes:         actionTypes,
		EventTypes:          eventTypes,
		Interfaces:          cd.Interfaces,
		Browsable:           cd.Browsable,
	}
	synthesizeStateTypes(&class)
	class.Interfaces = r.conformingInterfaces(class)
	return class, nil
}

// conformingInterfaces returns the subset of class.Interfaces the class
// actually satisfies: every required state/action/event name (transitively,
// through parent interfaces) must be present among the class's own
// StateTypes/ActionTypes/EventTypes, synthesized ones included. An
// interface the class claims but doesn't satisfy is dropped with a warning
// rather than failing the whole class.
func (r *Registry) conformingInterfaces(class model.ThingClass) []string {
	haveStates := namesOf(class.StateTypes, func(s model.StateType) string { return s.Name })
	haveActions := namesOf(class.ActionTypes, func(a model.ActionType) string { return a.Name })
	haveEvents := namesOf(class.EventTypes, func(e model.EventType) string { return e.Name })

	var out []string
	for _, ifaceName := range class.Interfaces {
		states, actions, events := r.flattenRequirements(ifaceName)
		ok := true
		for s := range states {
			if !haveStates[s] {
				ok = false
				break
			}
		}
		if ok {
			for a := range actions {
				if !haveActions[a] {
					ok = false
					break
				}
			}
		}
		if ok {
			for e := range events {
				if !haveEvents[e] {
					ok = false
					break
				}
			}
		}
		if !ok {
			r.log.Warn().Str("thingClass", class.Name).Str("interface", ifaceName).
				Msg("interface not fully implemented; dropped")
			continue
		}
		out = append(out, ifaceName)
	}
	return out
}

func namesOf[T any](items []T, name func(T) string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, it := range items {
		out[name(it)] = true
	}
	return out
}

func (r *Registry) addClass(class model.ThingClass) {
	r.classes[class.ID] = class
	for _, ifaceName := range class.Interfaces {
		r.byIface[ifaceName] = append(r.byIface[ifaceName], class.ID)
	}
}

// ThingClass implements things.TypeSource.
func (r *Registry) ThingClass(id model.ID) (model.ThingClass, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// ThingClassesImplementing implements things.TypeSource.
func (r *Registry) ThingClassesImplementing(interfaceName string) []model.ThingClass {
	ids := r.byIface[interfaceName]
	out := make([]model.ThingClass, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.classes[id])
	}
	return out
}

// Vendor looks up a loaded vendor by id.
func (r *Registry) Vendor(id model.ID) (model.Vendor, bool) {
	v, ok := r.vendors[id]
	return v, ok
}
