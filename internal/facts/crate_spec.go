package facts

import "github.com/Masterminds/semver/v3"

// CrateSpec is the canonical identifier the rest of the engine keys on: a
// name, a concrete resolved version, and an optional repository. Unlike
// CrateRef, a CrateSpec is only ever produced once the registry provider has
// confirmed the crate and version exist, which is why it carries the version
// unconditionally instead of as an Option.
type CrateSpec struct {
	name    string
	version *semver.Version
	repo    *RepoSpec
}

// NewCrateSpec builds a CrateSpec. version must not be nil.
func NewCrateSpec(name string, version *semver.Version, repo *RepoSpec) CrateSpec {
	return CrateSpec{name: name, version: version, repo: repo}
}

func (s CrateSpec) Name() string         { return s.name }
func (s CrateSpec) Version() *semver.Version { return s.version }
func (s CrateSpec) Repo() *RepoSpec      { return s.repo }

// Key returns a value suitable for use as a map key (semver.Version is not
// itself comparable via ==, so specs are keyed by their string form).
func (s CrateSpec) Key() string { return s.name + "@" + s.version.String() }

func (s CrateSpec) String() string { return s.Key() }
