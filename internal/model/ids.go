// Package model holds the core data model shared by the TypeRegistry,
// ThingManager and PluginHost: vendors, type descriptors, thing classes,
// things, descriptors and the transient Action/Event values that flow
// between plugins and the engines.
package model

import "github.com/google/uuid"

// ID is a 128-bit identifier, used for every entity in the system.
type ID = uuid.UUID

// NewID returns a new random ID.
func NewID() ID { return uuid.New() }

// ParseID parses a string into an ID.
func ParseID(s string) (ID, error) { return uuid.Parse(s) }

// MustParseID parses a string into an ID, panicking on failure. Only meant
// for ids baked into source (e.g. a built-in plugin's own type ids).
func MustParseID(s string) ID { return uuid.MustParse(s) }

// NilID is the zero-value ID, used to mean "not set".
var NilID = uuid.Nil
