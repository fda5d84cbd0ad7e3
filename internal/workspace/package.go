package workspace

import "github.com/sampo-dev/sampo/internal/semver"

// DependencyKind classifies an internal dependency edge.
type DependencyKind string

const (
	DependencyRuntime DependencyKind = "runtime"
	DependencyDev     DependencyKind = "dev"
	DependencyPeer    DependencyKind = "peer"
	DependencyBuild   DependencyKind = "build"
)

// Dependency is one entry in a Package's dependency list: a target
// PackageId (resolved only if the target lives in this workspace), the
// verbatim requirement string as written in the manifest, and whether the
// manifest defers the requirement to a workspace-level table.
type Dependency struct {
	Target             Id
	Kind               DependencyKind
	Requirement        string
	WorkspaceInherited bool
}

// Package is a single discovered package: its identity, manifest location,
// current version, publishability, and dependency list.
type Package struct {
	Id            Id
	ManifestPath  string // path to the manifest file, relative to workspace root
	Dir           string // directory containing the manifest, relative to workspace root
	Version       *semver.Version
	Publishable   bool
	Dependencies  []Dependency
	ChangelogPath string
}
