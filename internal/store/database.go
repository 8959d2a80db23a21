// Package store implements the PersistenceStore contract (spec §4.8, §6):
// an abstract hierarchical role/group/key store, backed by PostgreSQL via
// database/sql and lib/pq, the way streamspace/api/internal/db backs its
// per-domain tables with a single connection pool.
//
// Unlike the teacher's per-domain tables, every role here (things,
// thingStates, plugins, rules) shares one generic table: the core's data
// model is a hierarchy of typed values, not a relational schema, so a
// single (role, group, key) -> (typeTag, value jsonb) table is the natural
// fit. Store's own methods satisfy the concrete things.Store /
// pluginhost.ConfigStore / rules.Store contracts on top of it.
package store

import (
	"database/sql"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/nymea/nymea-sub004/internal/logger"
)

// Config holds the PostgreSQL connection parameters.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// Store is one PostgreSQL-backed PersistenceStore. A single *sql.DB backs
// every role; role/group/key addressing is layered on top of one table
// rather than one table per role, since the shape is uniform.
type Store struct {
	db *sql.DB
}

var (
	hostnameRe = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-.]{0,253}[a-zA-Z0-9])?$`)
	identRe    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// validateConfig rejects configuration that would let connection-string
// interpolation become a SQL-injection vector.
func validateConfig(cfg Config) error {
	if cfg.Host == "" {
		return fmt.Errorf("store: host cannot be empty")
	}
	if net.ParseIP(cfg.Host) == nil && !hostnameRe.MatchString(cfg.Host) {
		return fmt.Errorf("store: invalid host %q", cfg.Host)
	}
	port, err := strconv.Atoi(cfg.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("store: invalid port %q", cfg.Port)
	}
	if cfg.User == "" || !identRe.MatchString(cfg.User) {
		return fmt.Errorf("store: invalid user %q", cfg.User)
	}
	if cfg.DBName == "" || !identRe.MatchString(cfg.DBName) {
		return fmt.Errorf("store: invalid database name %q", cfg.DBName)
	}
	switch cfg.SSLMode {
	case "", "disable", "allow", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("store: invalid sslmode %q", cfg.SSLMode)
	}
	return nil
}

// Open connects to PostgreSQL, verifies connectivity and ensures the
// backing schema and migrations are applied.
func Open(cfg Config) (*Store, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.SSLMode == "disable" {
		logger.Store().Warn().Msg("database SSL/TLS is disabled; set DB_SSL_MODE=require in production")
	}

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema migration: %w", err)
	}
	if err := s.migrateLegacyGroups(); err != nil {
		logger.Store().Error().Err(err).Msg("legacy group migration failed")
	}
	return s, nil
}

// OpenForTesting wraps an already-open *sql.DB (e.g. sqlmock or a test
// container), skipping config validation. Schema migration still runs.
func OpenForTesting(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrateSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

const schemaDDL = `
CREATE TABLE IF NOT EXISTS hub_entries (
	role       text NOT NULL,
	group_path text NOT NULL,
	key        text NOT NULL,
	type_tag   text NOT NULL,
	value      jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (role, group_path, key)
);
CREATE INDEX IF NOT EXISTS hub_entries_role_prefix_idx ON hub_entries (role, group_path text_pattern_ops);
`

func (s *Store) migrateSchema() error {
	_, err := s.db.Exec(schemaDDL)
	return err
}

// legacyRoleNames maps a role's historical group name (used by older
// installations, before the role/group/key layout in spec §6 settled) to
// its current one. On startup, any rows still filed under the old name are
// copied forward and the old rows removed.
var legacyRoleNames = map[string]string{
	"devices":       "things",
	"deviceStates":  "thingStates",
	"deviceConfigs": "plugins",
}

// migrateLegacyGroups copies rows filed under a historical role name to its
// current name and removes the old rows, so startup never has to special-
// case two layouts.
func (s *Store) migrateLegacyGroups() error {
	for oldRole, newRole := range legacyRoleNames {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		_, err = tx.Exec(`
			INSERT INTO hub_entries (role, group_path, key, type_tag, value, updated_at)
			SELECT $2, group_path, key, type_tag, value, updated_at FROM hub_entries WHERE role = $1
			ON CONFLICT (role, group_path, key) DO NOTHING
		`, oldRole, newRole)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err := tx.Exec(`DELETE FROM hub_entries WHERE role = $1`, oldRole); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// joinPath builds a slash-separated group path from segments, mirroring the
// §6 layout ("things/<thingId>/Params").
func joinPath(segments ...string) string {
	return strings.Join(segments, "/")
}
