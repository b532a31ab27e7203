// Package facts defines the shared data model for crate appraisal: crate and
// repository identifiers, the provider result union, and the aggregated
// per-crate fact record that the collector assembles.
package facts

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CrateRef is a user-supplied, partially specified crate identifier: a name
// with an optional pinned version. It is parsed straight from CLI/workspace
// input and is never used as a map key once a CrateSpec exists.
type CrateRef struct {
	name    string
	version *semver.Version
}

// NewCrateRef builds a CrateRef from a name and an optional version.
func NewCrateRef(name string, version *semver.Version) CrateRef {
	return CrateRef{name: name, version: version}
}

// ParseCrateRef parses a string of the form "name" or "name@version".
func ParseCrateRef(s string) (CrateRef, error) {
	name, versionStr, hasVersion := strings.Cut(s, "@")
	if !hasVersion {
		return CrateRef{name: name}, nil
	}
	v, err := semver.NewVersion(versionStr)
	if err != nil {
		return CrateRef{}, fmt.Errorf("invalid version %q in crate specifier %q: %w", versionStr, s, err)
	}
	return CrateRef{name: name, version: v}, nil
}

// Name returns the crate name.
func (r CrateRef) Name() string { return r.name }

// Version returns the pinned version, or nil if unpinned.
func (r CrateRef) Version() *semver.Version { return r.version }

// String formats the ref back as "name" or "name@version", the inverse of
// ParseCrateRef.
func (r CrateRef) String() string {
	if r.version == nil {
		return r.name
	}
	return r.name + "@" + r.version.String()
}
