package types

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// interfaceDoc mirrors a bundled interface definition file.
type interfaceDoc struct {
	Name    string   `yaml:"name" validate:"required"`
	Parents []string `yaml:"parents"`
	States  []string `yaml:"states"`
	Actions []string `yaml:"actions"`
	Events  []string `yaml:"events"`
}

func parseInterfaceDoc(raw []byte) (interfaceDoc, error) {
	var doc interfaceDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return interfaceDoc{}, fmt.Errorf("parsing interface definition: %w", err)
	}
	if err := docValidator.Struct(doc); err != nil {
		return interfaceDoc{}, fmt.Errorf("validating interface definition: %w", err)
	}
	return doc, nil
}

// flattenRequirements walks parents (breadth-first, cycle-safe) and returns
// the union of every state/action/event name required transitively.
func (r *Registry) flattenRequirements(name string) (states, actions, events map[string]bool) {
	states, actions, events = map[string]bool{}, map[string]bool{}, map[string]bool{}
	seen := map[string]bool{}
	var walk func(n string)
	walk = func(n string) {
		if seen[n] {
			return
		}
		seen[n] = true
		iface, ok := r.interfaces[n]
		if !ok {
			return
		}
		for _, s := range iface.States {
			states[s] = true
		}
		for _, a := range iface.Actions {
			actions[a] = true
		}
		for _, e := range iface.Events {
			events[e] = true
		}
		for _, p := range iface.Parents {
			walk(p)
		}
	}
	walk(name)
	return
}
