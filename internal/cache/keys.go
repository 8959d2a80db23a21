package cache

import "fmt"

// Key prefixes, one per cached resource.
const (
	PrefixThingState = "thingstate"
	PrefixThing       = "thing"
)

// ThingStateKey addresses one thing's one cached state value.
func ThingStateKey(thingID, stateTypeID string) string {
	return fmt.Sprintf("%s:%s:%s", PrefixThingState, thingID, stateTypeID)
}

// ThingStatesPattern matches every cached state value for one thing, for
// bulk invalidation on removal.
func ThingStatesPattern(thingID string) string {
	return fmt.Sprintf("%s:%s:*", PrefixThingState, thingID)
}

// ThingKey addresses one cached Thing snapshot.
func ThingKey(thingID string) string {
	return fmt.Sprintf("%s:%s", PrefixThing, thingID)
}
