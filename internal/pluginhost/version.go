package pluginhost

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a plugin API version, major.minor.
type Version struct {
	Major int
	Minor int
}

// ParseVersion parses a "major.minor" string.
func ParseVersion(s string) (Version, error) {
	parts := strings.SplitN(s, ".", 2)
	if len(parts) != 2 {
		return Version{}, fmt.Errorf("malformed api version %q, want major.minor", s)
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return Version{}, fmt.Errorf("malformed api version %q: %w", s, err)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return Version{}, fmt.Errorf("malformed api version %q: %w", s, err)
	}
	return Version{Major: major, Minor: minor}, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether a plugin declaring pluginVersion may load
// against a core running coreVersion: majors must match exactly, and the
// plugin's minor must not exceed the core's, since a plugin built against a
// newer minor may call core APIs this core doesn't have.
func Compatible(core, plugin Version) bool {
	return core.Major == plugin.Major && plugin.Minor <= core.Minor
}
