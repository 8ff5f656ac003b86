// Package scopes resolves (API, profile) pairs to concrete permission
// scope lists using an externally supplied YAML profile table.
package scopes

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Table maps an API name to its named scope profiles. Each profile is an
// ordered list of permission scope URLs. The order only matters for
// reproducible serialization; providers treat scopes as a set.
//
// A Table is immutable after load.
type Table map[string]map[string][]string

// UnknownProfileError reports a lookup for an (API, profile) pair that the
// loaded table does not define. This is a configuration error: the caller
// referenced a profile that nobody wrote down.
type UnknownProfileError struct {
	API     string
	Profile string
}

// Error implements the error interface.
func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("scope profile %q is not defined for API %q", e.Profile, e.API)
}

// LoadTable reads a scope profile table from a YAML file. The expected
// shape is:
//
//	gmail:
//	  send:
//	    - https://www.googleapis.com/auth/gmail.send
//	youtube:
//	  read:
//	    - https://www.googleapis.com/auth/youtube.readonly
//
// Loading is a side-effect-free read; callers may reload at will, though
// one load per run is the expected pattern.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scope profiles from %s: %w", path, err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse scope profiles from %s: %w", path, err)
	}

	return table, nil
}

// Resolve returns the ordered scope list for the given API and profile.
// A pair the table does not define yields an *UnknownProfileError, never a
// silent empty scope set.
//
// The returned slice is a copy; mutating it does not affect the table.
func (t Table) Resolve(api, profile string) ([]string, error) {
	profiles, ok := t[api]
	if !ok {
		return nil, &UnknownProfileError{API: api, Profile: profile}
	}

	scopeList, ok := profiles[profile]
	if !ok || len(scopeList) == 0 {
		return nil, &UnknownProfileError{API: api, Profile: profile}
	}

	return slices.Clone(scopeList), nil
}
