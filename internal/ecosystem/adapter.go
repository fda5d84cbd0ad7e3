// Package ecosystem implements the per-ecosystem adapter capability set:
// discover, parse, write_version, write_requirement, regen_lock,
// validate_constraint, publishable. Adapters are modelled as a tagged union
// of concrete implementations (one per ecosystem), not an inheritance
// hierarchy.
package ecosystem

import "github.com/sampo-dev/sampo/internal/workspace"

// ConstraintResult is the outcome of validate_constraint.
type ConstraintResult int

const (
	ConstraintUnknown ConstraintResult = iota
	ConstraintSatisfies
	ConstraintViolates
)

// ManifestInfo is what parse() extracts from a single manifest file.
type ManifestInfo struct {
	Name         string
	Version      string
	Publishable  bool
	Dependencies []workspace.Dependency
}

// Adapter is the capability set every ecosystem implementation provides.
type Adapter interface {
	// Name is the ecosystem tag used in canonical PackageIds ("cargo", "npm", ...).
	Name() string

	// Discover walks root and returns the relative paths of every manifest
	// file this adapter recognises.
	Discover(root string) ([]string, error)

	// Parse reads a discovered manifest and extracts its package info.
	Parse(root, manifestRelPath string) (*ManifestInfo, error)

	// WriteVersion rewrites only the version scalar in the manifest at
	// manifestRelPath, preserving all other structure and formatting.
	WriteVersion(root, manifestRelPath, newVersion string) error

	// WriteRequirement rewrites the dependency requirement for depName in
	// the manifest at manifestRelPath to reflect newVersion, preserving the
	// requirement's operator style. If the dependency is workspace-
	// inherited, rootManifestRelPath (the root table's manifest) is edited
	// instead; otherwise rootManifestRelPath is empty and the edit targets
	// manifestRelPath directly.
	WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error

	// RegenerateLockfile regenerates this ecosystem's lockfile at the
	// workspace root, if one exists. Of the built-in adapters only cargo
	// does so (via `cargo generate-lockfile`); npm, pypi, hex and packagist
	// return nil without touching an existing lockfile.
	RegenerateLockfile(root string) error

	// ValidateConstraint checks whether candidate satisfies requirement,
	// per the ecosystem's own requirement dialect.
	ValidateConstraint(requirement, candidate string) ConstraintResult
}

// Registry returns every built-in adapter, keyed by ecosystem name.
func Registry() map[string]Adapter {
	return map[string]Adapter{
		"cargo":     &CargoAdapter{},
		"npm":       &NpmAdapter{},
		"pypi":      &PypiAdapter{},
		"hex":       &HexAdapter{},
		"packagist": &PackagistAdapter{},
	}
}
