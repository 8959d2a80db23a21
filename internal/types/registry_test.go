package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nymea/nymea-sub004/internal/model"
)

const samplePlugin = `
id: 11111111-1111-1111-1111-111111111111
name: demoplugin
displayName: Demo Plugin
vendors:
  - id: 22222222-2222-2222-2222-222222222222
    name: demovendor
    displayName: Demo Vendor
    thingClasses:
      - id: 33333333-3333-3333-3333-333333333333
        name: lamp
        displayName: Lamp
        createMethods: [user]
        setupMethod: justAdd
        interfaces: [light, missingthing]
        stateTypes:
          - id: 44444444-4444-4444-4444-444444444444
            name: power
            displayName: Power
            type: bool
            defaultValue: false
            writable: true
            displayNameEvent: Power changed
            displayNameAction: Set power
`

const lightInterface = `
name: light
states: [power]
actions: [power]
events: [power]
`

const missingInterface = `
name: missingthing
states: [temperature]
`

func TestLoadPluginSynthesizesStateChangeAndConformance(t *testing.T) {
	r := New()
	require.NoError(t, r.AddInterfaceDefinition([]byte(lightInterface)))
	require.NoError(t, r.AddInterfaceDefinition([]byte(missingInterface)))

	pluginID, err := model.ParseID("55555555-5555-5555-5555-555555555555")
	require.NoError(t, err)

	plugin, err := r.LoadPlugin(pluginID, []byte(samplePlugin))
	require.NoError(t, err)
	require.Equal(t, "demoplugin", plugin.Name)

	classID, err := model.ParseID("33333333-3333-3333-3333-333333333333")
	require.NoError(t, err)
	class, ok := r.ThingClass(classID)
	require.True(t, ok)

	// power is writable: both a stateChanged event and a set-power action
	// must have been synthesized, sharing the state type's id.
	require.Len(t, class.EventTypes, 1)
	require.Equal(t, class.StateTypes[0].ID, class.EventTypes[0].ID)
	require.Len(t, class.ActionTypes, 1)
	require.Equal(t, class.StateTypes[0].ID, class.ActionTypes[0].ID)

	// "light" is fully satisfied and kept; "missingthing" requires a state
	// this class never declares, so it must be dropped.
	require.Contains(t, class.Interfaces, "light")
	require.NotContains(t, class.Interfaces, "missingthing")

	implementors := r.ThingClassesImplementing("light")
	require.Len(t, implementors, 1)
	require.Equal(t, class.ID, implementors[0].ID)
}
