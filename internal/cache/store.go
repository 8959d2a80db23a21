package cache

import (
	"context"
	"time"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/things"
)

// stateValueTTL bounds how long a cached state value survives without a
// fresh write. A stale cache entry only ever short-circuits a read back to
// PostgreSQL; it is never the system of record, so an hour is generous
// rather than load-bearing.
const stateValueTTL = time.Hour

// CachedStore decorates a things.Store with a Redis write-through cache for
// state values, the one part of ThingManager's persisted data written on
// every state change. Thing
// identity, params and settings pass straight through uncached: they change
// rarely and are read once at startup via LoadThings.
type CachedStore struct {
	things.Store
	cache *Cache
}

// NewCachedStore wraps backing with cache. If cache is disabled every call
// just falls through to backing.
func NewCachedStore(backing things.Store, c *Cache) *CachedStore {
	return &CachedStore{Store: backing, cache: c}
}

// SaveStateValue writes through to the backing store and then populates the
// cache. No CachedStore method reads the cached value back.
func (s *CachedStore) SaveStateValue(thingID, stateTypeID model.ID, value interface{}) error {
	if err := s.Store.SaveStateValue(thingID, stateTypeID, value); err != nil {
		return err
	}
	s.cache.Set(context.Background(), ThingStateKey(thingID.String(), stateTypeID.String()), value, stateValueTTL)
	return nil
}

// LoadStateValues always reads from the backing store: it is a startup-only,
// whole-table scan that the cache (keyed per thing/stateType) cannot serve
// cheaply, and it runs once before the cache has anything in it anyway.
func (s *CachedStore) LoadStateValues() (map[model.ID]model.ParamValues, error) {
	return s.Store.LoadStateValues()
}

// DeleteStateValues removes the backing rows and drops every cached entry
// for thingID.
func (s *CachedStore) DeleteStateValues(thingID model.ID) error {
	if err := s.Store.DeleteStateValues(thingID); err != nil {
		return err
	}
	s.cache.DeletePattern(context.Background(), ThingStatesPattern(thingID.String()))
	return nil
}

// DeleteThing removes the thing from the backing store and clears its
// cached states.
func (s *CachedStore) DeleteThing(id model.ID) error {
	if err := s.Store.DeleteThing(id); err != nil {
		return err
	}
	s.cache.DeletePattern(context.Background(), ThingStatesPattern(id.String()))
	return nil
}
