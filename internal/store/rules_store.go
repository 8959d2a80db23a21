package store

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/nymea/nymea-sub004/internal/model"
	"github.com/nymea/nymea-sub004/internal/rules"
)

const roleRules = "rules"

// The rule keys below match the literal key list spec §6 gives for one rule:
// rules/<ruleId>/{name, enabled, executable, timeDescriptor, eventDescriptors,
// stateEvaluator, actions, exitActions}. Each is stored as its own JSON blob
// rather than flattened further: Rule's nested trees (StateEvaluator,
// RuleAction.Params) are themselves recursive, and re-deriving a generic
// tree encoding for them would just reinvent what json.Marshal already does
// well for a rule this shaped.
const (
	keyRuleName             = "name"
	keyRuleEnabled           = "enabled"
	keyRuleExecutable        = "executable"
	keyRuleTimeDescriptor    = "timeDescriptor"
	keyRuleEventDescriptors  = "eventDescriptors"
	keyRuleStateEvaluator    = "stateEvaluator"
	keyRuleActions           = "actions"
	keyRuleExitActions       = "exitActions"
)

// SaveRule persists one rule's full definition, satisfying rules.Store.
func (s *Store) SaveRule(r rules.Rule) error {
	group := joinPath(roleRules, r.ID.String())

	if err := s.put(roleRules, group, keyRuleName, r.Name); err != nil {
		return err
	}
	if err := s.put(roleRules, group, keyRuleEnabled, r.Enabled); err != nil {
		return err
	}
	if err := s.put(roleRules, group, keyRuleExecutable, r.Executable); err != nil {
		return err
	}
	if err := s.putJSON(group, keyRuleTimeDescriptor, r.TimeDescriptor); err != nil {
		return err
	}
	if err := s.putJSON(group, keyRuleEventDescriptors, r.EventDescriptors); err != nil {
		return err
	}
	if err := s.putJSON(group, keyRuleStateEvaluator, r.StateEvaluator); err != nil {
		return err
	}
	if err := s.putJSON(group, keyRuleActions, r.Actions); err != nil {
		return err
	}
	if err := s.putJSON(group, keyRuleExitActions, r.ExitActions); err != nil {
		return err
	}
	return nil
}

// putJSON stores v as a raw JSON blob, tagged as a variant: these fields are
// recursive structures the generic typeTag scheme doesn't model individually.
func (s *Store) putJSON(group, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("store: encode %s/%s: %w", group, key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO hub_entries (role, group_path, key, type_tag, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (role, group_path, key)
		DO UPDATE SET type_tag = $4, value = $5, updated_at = now()
	`, roleRules, group, key, string(tagVariant), raw)
	if err != nil {
		return fmt.Errorf("store: put %s/%s/%s: %w", roleRules, group, key, err)
	}
	return nil
}

// DeleteRule removes a rule's full definition.
func (s *Store) DeleteRule(id model.ID) error {
	return s.deleteGroup(roleRules, joinPath(roleRules, id.String()))
}

// LoadRules reconstructs every persisted rule.
func (s *Store) LoadRules() ([]rules.Rule, error) {
	ids, err := s.listTopGroups(roleRules, roleRules+"/")
	if err != nil {
		return nil, err
	}

	var out []rules.Rule
	for _, idStr := range ids {
		ruleID, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		group := joinPath(roleRules, idStr)
		entries, err := s.listGroup(roleRules, group)
		if err != nil {
			return nil, err
		}

		r := rules.Rule{ID: ruleID}
		for _, e := range entries {
			if e.groupPath != group {
				continue
			}
			switch e.key {
			case keyRuleName:
				v, _ := decodeValue(e.tag, e.raw)
				if s, ok := v.(string); ok {
					r.Name = s
				}
			case keyRuleEnabled:
				v, _ := decodeValue(e.tag, e.raw)
				if b, ok := v.(bool); ok {
					r.Enabled = b
				}
			case keyRuleExecutable:
				v, _ := decodeValue(e.tag, e.raw)
				if b, ok := v.(bool); ok {
					r.Executable = b
				}
			case keyRuleTimeDescriptor:
				_ = json.Unmarshal(e.raw, &r.TimeDescriptor)
			case keyRuleEventDescriptors:
				_ = json.Unmarshal(e.raw, &r.EventDescriptors)
			case keyRuleStateEvaluator:
				_ = json.Unmarshal(e.raw, &r.StateEvaluator)
			case keyRuleActions:
				_ = json.Unmarshal(e.raw, &r.Actions)
			case keyRuleExitActions:
				_ = json.Unmarshal(e.raw, &r.ExitActions)
			}
		}
		out = append(out, r)
	}
	return out, nil
}
