package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/nymea/nymea-sub004/internal/model"
)

const (
	roleThings       = "things"
	roleThingStates  = "thingStates"
	keyAutoCreated   = "autoCreated"
	keyName          = "name"
	keyThingClassID  = "thingClassId"
	keyPluginID      = "pluginId"
	keyParentID      = "parentId"
	keySetupStatus   = "setupStatus"
	groupParams      = "Params"
	groupSettings    = "Settings"
	subKeyType       = "type"
	subKeyValue      = "value"
)

// SaveThing persists one Thing's identity, params and settings under
// things/<thingId>/... per the layout in spec §6, as a single transaction:
// spec §6/§8 requires the store be atomic at the per-role granularity, so a
// crash between the Params delete and its re-inserts (or any other
// intermediate point) must never leave a partially written thing behind.
// States are not written here; OnStateChanged in ThingManager calls
// SaveStateValue per StateType individually, since only cached StateTypes
// persist at all.
func (s *Store) SaveThing(t model.Thing) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: save thing %s: begin tx: %w", t.ID, err)
	}
	if err := saveThingTx(tx, t); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: save thing %s: commit tx: %w", t.ID, err)
	}
	return nil
}

func saveThingTx(tx *sql.Tx, t model.Thing) error {
	group := joinPath(roleThings, t.ID.String())

	if err := putWith(tx, roleThings, group, keyAutoCreated, t.AutoCreated); err != nil {
		return err
	}
	if err := putWith(tx, roleThings, group, keyName, t.Name); err != nil {
		return err
	}
	if err := putWith(tx, roleThings, group, keyThingClassID, t.ThingClassID); err != nil {
		return err
	}
	if err := putWith(tx, roleThings, group, keyPluginID, t.PluginID); err != nil {
		return err
	}
	if t.ParentID != nil {
		if err := putWith(tx, roleThings, group, keyParentID, *t.ParentID); err != nil {
			return err
		}
	} else if err := deleteGroupWith(tx, roleThings, joinPath(group, keyParentID)); err != nil {
		return err
	}
	if err := putWith(tx, roleThings, group, keySetupStatus, string(t.SetupStatus)); err != nil {
		return err
	}

	paramsGroup := joinPath(group, groupParams)
	if err := deleteGroupWith(tx, roleThings, paramsGroup); err != nil {
		return err
	}
	for paramTypeID, v := range t.Params {
		pg := joinPath(paramsGroup, paramTypeID.String())
		if err := putTypedValueWith(tx, roleThings, pg, v); err != nil {
			return err
		}
	}

	settingsGroup := joinPath(group, groupSettings)
	if err := deleteGroupWith(tx, roleThings, settingsGroup); err != nil {
		return err
	}
	for paramTypeID, v := range t.Settings {
		sg := joinPath(settingsGroup, paramTypeID.String())
		if err := putTypedValueWith(tx, roleThings, sg, v); err != nil {
			return err
		}
	}
	return nil
}

// putTypedValue writes a value under group/type and group/value, matching
// the literal "type"/"value" key pair spec §6 calls for under every
// Params/Settings/state entry.
func (s *Store) putTypedValue(role, group string, v interface{}) error {
	return putTypedValueWith(s.db, role, group, v)
}

func putTypedValueWith(ex execer, role, group string, v interface{}) error {
	tag, _, err := encodeValue(v)
	if err != nil {
		return err
	}
	if err := putWith(ex, role, group, subKeyType, string(tag)); err != nil {
		return err
	}
	return putWith(ex, role, group, subKeyValue, v)
}

// DeleteThing removes a thing's identity, params, settings and cached state.
func (s *Store) DeleteThing(id model.ID) error {
	if err := s.deleteGroup(roleThings, joinPath(roleThings, id.String())); err != nil {
		return err
	}
	return s.deleteGroup(roleThingStates, joinPath(roleThingStates, id.String()))
}

// LoadThings reconstructs every persisted Thing.
func (s *Store) LoadThings() ([]model.Thing, error) {
	ids, err := s.listTopGroups(roleThings, roleThings+"/")
	if err != nil {
		return nil, err
	}

	var out []model.Thing
	for _, idStr := range ids {
		thingID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		group := joinPath(roleThings, idStr)
		entries, err := s.listGroup(roleThings, group)
		if err != nil {
			return nil, err
		}

		t := model.Thing{ID: thingID, Params: model.ParamValues{}, Settings: model.ParamValues{}, States: model.ParamValues{}}
		paramTags := map[string]typeTag{}
		settingTags := map[string]typeTag{}

		for _, e := range entries {
			rel := strings.TrimPrefix(e.groupPath, group+"/")
			switch {
			case e.groupPath == group && e.key == keyAutoCreated:
				v, _ := decodeValue(e.tag, e.raw)
				if b, ok := v.(bool); ok {
					t.AutoCreated = b
				}
			case e.groupPath == group && e.key == keyName:
				v, _ := decodeValue(e.tag, e.raw)
				if n, ok := v.(string); ok {
					t.Name = n
				}
			case e.groupPath == group && e.key == keyThingClassID:
				v, _ := decodeValue(e.tag, e.raw)
				if id, ok := v.(uuid.UUID); ok {
					t.ThingClassID = id
				}
			case e.groupPath == group && e.key == keyPluginID:
				v, _ := decodeValue(e.tag, e.raw)
				if id, ok := v.(uuid.UUID); ok {
					t.PluginID = id
				}
			case e.groupPath == group && e.key == keyParentID:
				v, _ := decodeValue(e.tag, e.raw)
				if id, ok := v.(uuid.UUID); ok {
					t.ParentID = &id
				}
			case e.groupPath == group && e.key == keySetupStatus:
				v, _ := decodeValue(e.tag, e.raw)
				if str, ok := v.(string); ok {
					t.SetupStatus = model.SetupStatus(str)
				}
			case strings.HasPrefix(rel, groupParams+"/"):
				paramTypeIDStr, subKey, ok := splitLeaf(rel, groupParams)
				if !ok {
					continue
				}
				collectTypedValue(t.Params, paramTags, paramTypeIDStr, subKey, e)
			case strings.HasPrefix(rel, groupSettings+"/"):
				paramTypeIDStr, subKey, ok := splitLeaf(rel, groupSettings)
				if !ok {
					continue
				}
				collectTypedValue(t.Settings, settingTags, paramTypeIDStr, subKey, e)
			}
		}

		if t.SetupStatus == "" {
			t.SetupStatus = model.SetupStatusComplete
		}
		out = append(out, t)
	}
	return out, nil
}

// splitLeaf pulls the <paramTypeId> out of a relative group path like
// "Params/<paramTypeId>". The "type"/"value" key is held in the row's key
// column rather than the path, so the returned key is always empty.
func splitLeaf(rel, prefix string) (id, key string, ok bool) {
	rest := strings.TrimPrefix(rel, prefix+"/")
	parts := strings.Split(rest, "/")
	if len(parts) != 1 {
		return "", "", false
	}
	return parts[0], "", true
}

// collectTypedValue accumulates the type/value pair for one paramTypeId leaf
// into dst once both halves have arrived, keyed by the tag recorded for
// that leaf.
func collectTypedValue(dst model.ParamValues, tags map[string]typeTag, idStr, _ string, e entry) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return
	}
	if e.key == subKeyType {
		v, _ := decodeValue(e.tag, e.raw)
		if s, ok := v.(string); ok {
			tags[idStr] = typeTag(s)
		}
		return
	}
	if e.key != subKeyValue {
		return
	}
	tag, ok := tags[idStr]
	if !ok {
		tag = e.tag
	}
	v, err := decodeValue(tag, e.raw)
	if err != nil {
		return
	}
	dst[id] = v
}

// SaveStateValue persists one cached StateType's current value under
// thingStates/<thingId>/<stateTypeId>/{type,value}.
func (s *Store) SaveStateValue(thingID, stateTypeID model.ID, value interface{}) error {
	group := joinPath(roleThingStates, thingID.String(), stateTypeID.String())
	return s.putTypedValue(roleThingStates, group, value)
}

// LoadStateValues reconstructs every persisted cached state value, keyed by
// thing id.
func (s *Store) LoadStateValues() (map[model.ID]model.ParamValues, error) {
	ids, err := s.listTopGroups(roleThingStates, roleThingStates+"/")
	if err != nil {
		return nil, err
	}

	out := map[model.ID]model.ParamValues{}
	for _, idStr := range ids {
		thingID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		group := joinPath(roleThingStates, idStr)
		entries, err := s.listGroup(roleThingStates, group)
		if err != nil {
			return nil, err
		}

		values := model.ParamValues{}
		tags := map[string]typeTag{}
		for _, e := range entries {
			stateTypeIDStr := strings.TrimPrefix(e.groupPath, group+"/")
			collectTypedValue(values, tags, stateTypeIDStr, "", e)
		}
		out[thingID] = values
	}
	return out, nil
}

// DeleteStateValues removes every cached state value for thingID.
// ThingManager calls it when it removes a thing.
func (s *Store) DeleteStateValues(thingID model.ID) error {
	return s.deleteGroup(roleThingStates, joinPath(roleThingStates, thingID.String()))
}
