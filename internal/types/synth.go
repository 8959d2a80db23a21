package types

import (
	"github.com/nymea/nymea-sub004/internal/model"
)

// synthesizeStateTypes appends, for every StateType, a matching "stateChanged"
// EventType (and, if the state is writable, a matching set-value
// ActionType) to the class. Both are named after the state, which is the
// name interface definitions list under their events and actions.
// Synthesized ids equal the state type's id, so
// ThingManager's convention of reusing StateTypeID as the stateChanged
// EventTypeID (see things.OnStateChanged) holds for every class.
func synthesizeStateTypes(class *model.ThingClass) {
	for _, st := range class.StateTypes {
		param := model.ParamType{
			ID:            st.ID,
			Name:          st.Name,
			DisplayName:   st.DisplayName,
			Type:          st.Type,
			DefaultValue:  st.DefaultValue,
			MinValue:      st.MinValue,
			MaxValue:      st.MaxValue,
			AllowedValues: st.AllowedValues,
			Unit:          st.Unit,
		}
		class.EventTypes = append(class.EventTypes, model.EventType{
			ID:          st.ID,
			Name:        st.Name,
			DisplayName: st.DisplayNameEvent,
			ParamTypes:  []model.ParamType{param},
		})
		if st.Writable && len(st.Name) > 0 {
			class.ActionTypes = append(class.ActionTypes, model.ActionType{
				ID:          st.ID,
				Name:        st.Name,
				DisplayName: st.DisplayNameAction,
				ParamTypes:  []model.ParamType{param},
			})
		}
	}
}
