package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// execer is the subset of *sql.DB and *sql.Tx that put/deleteGroup need, so
// a multi-statement write can run either directly against the pool or
// against one transaction without duplicating the statement bodies.
type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// put upserts one (role, groupPath, key) entry.
func (s *Store) put(role, groupPath, key string, value interface{}) error {
	return putWith(s.db, role, groupPath, key, value)
}

func putWith(ex execer, role, groupPath, key string, value interface{}) error {
	tag, raw, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = ex.Exec(`
		INSERT INTO hub_entries (role, group_path, key, type_tag, value, updated_at)
		VALUES ($1, $2, $3, $4, $5, now())
		ON CONFLICT (role, group_path, key)
		DO UPDATE SET type_tag = $4, value = $5, updated_at = now()
	`, role, groupPath, key, string(tag), raw)
	if err != nil {
		return fmt.Errorf("store: put %s/%s/%s: %w", role, groupPath, key, err)
	}
	return nil
}

// get reads one entry. ok is false if no row exists.
func (s *Store) get(role, groupPath, key string) (value interface{}, ok bool, err error) {
	var tag string
	var raw []byte
	err = s.db.QueryRow(`SELECT type_tag, value FROM hub_entries WHERE role = $1 AND group_path = $2 AND key = $3`,
		role, groupPath, key).Scan(&tag, &raw)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store: get %s/%s/%s: %w", role, groupPath, key, err)
	}
	v, err := decodeValue(typeTag(tag), raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// deleteGroup removes every entry under groupPath and its descendants
// (group_path = groupPath or group_path LIKE groupPath || '/%').
func (s *Store) deleteGroup(role, groupPath string) error {
	return deleteGroupWith(s.db, role, groupPath)
}

func deleteGroupWith(ex execer, role, groupPath string) error {
	_, err := ex.Exec(`
		DELETE FROM hub_entries
		WHERE role = $1 AND (group_path = $2 OR group_path LIKE $3)
	`, role, groupPath, groupPath+"/%")
	if err != nil {
		return fmt.Errorf("store: delete group %s/%s: %w", role, groupPath, err)
	}
	return nil
}

// entry is one raw row, used when a caller needs to reconstruct a whole
// subtree (e.g. every Params/<paramTypeId> pair under a thing).
type entry struct {
	groupPath string
	key       string
	tag       typeTag
	raw       []byte
}

// listGroup returns every entry filed directly under groupPath or any of
// its descendants, ordered by group_path so sibling rows stay adjacent.
func (s *Store) listGroup(role, groupPath string) ([]entry, error) {
	rows, err := s.db.Query(`
		SELECT group_path, key, type_tag, value FROM hub_entries
		WHERE role = $1 AND (group_path = $2 OR group_path LIKE $3)
		ORDER BY group_path, key
	`, role, groupPath, groupPath+"/%")
	if err != nil {
		return nil, fmt.Errorf("store: list group %s/%s: %w", role, groupPath, err)
	}
	defer rows.Close()

	var out []entry
	for rows.Next() {
		var e entry
		var tag string
		if err := rows.Scan(&e.groupPath, &e.key, &tag, &e.raw); err != nil {
			return nil, err
		}
		e.tag = typeTag(tag)
		out = append(out, e)
	}
	return out, rows.Err()
}

// listTopGroups returns the distinct immediate child group names under
// role/prefix (e.g. every "<thingId>" under role "things").
func (s *Store) listTopGroups(role, prefix string) ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT group_path FROM hub_entries WHERE role = $1 AND group_path LIKE $2`,
		role, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("store: list top groups %s/%s: %w", role, prefix, err)
	}
	defer rows.Close()

	seen := map[string]bool{}
	var out []string
	for rows.Next() {
		var gp string
		if err := rows.Scan(&gp); err != nil {
			return nil, err
		}
		rest := strings.TrimPrefix(gp, prefix)
		id := rest
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			id = rest[:i]
		}
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out, rows.Err()
}
