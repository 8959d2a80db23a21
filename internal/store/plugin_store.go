package store

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nymea/nymea-sub004/internal/model"
)

const rolePlugins = "plugins"
const groupPluginConfig = "PluginConfig"

// SavePluginConfig persists a plugin's current config values under
// plugins/PluginConfig/<pluginId>/<paramTypeId>/{type,value}, satisfying
// pluginhost.ConfigStore.
func (s *Store) SavePluginConfig(pluginID model.ID, values model.ParamValues) error {
	group := joinPath(rolePlugins, groupPluginConfig, pluginID.String())
	if err := s.deleteGroup(rolePlugins, group); err != nil {
		return err
	}
	for paramTypeID, v := range values {
		pg := joinPath(group, paramTypeID.String())
		if err := s.putTypedValue(rolePlugins, pg, v); err != nil {
			return err
		}
	}
	return nil
}

// LoadPluginConfig reconstructs a plugin's persisted config values. Returns
// an empty, non-nil ParamValues if nothing was ever saved, so loadOne can
// overlay it onto ParamType defaults unconditionally.
func (s *Store) LoadPluginConfig(pluginID model.ID) (model.ParamValues, error) {
	group := joinPath(rolePlugins, groupPluginConfig, pluginID.String())
	entries, err := s.listGroup(rolePlugins, group)
	if err != nil {
		return nil, err
	}

	values := model.ParamValues{}
	tags := map[string]typeTag{}
	for _, e := range entries {
		rest := strings.TrimPrefix(e.groupPath, group+"/")
		if rest == "" || strings.Contains(rest, "/") {
			continue
		}
		if _, err := uuid.Parse(rest); err != nil {
			continue
		}
		collectTypedValue(values, tags, rest, "", e)
	}
	return values, nil
}
