// Package changeset implements the changeset store: parsing the markdown
// files contributors author under .sampo/changesets/, resolving their
// package references against a workspace, and writing/consuming/preserving
// those files as a release is planned and applied.
package changeset

import "github.com/sampo-dev/sampo/internal/semver"

// Entry is one frontmatter line of a changeset: a requested bump level for
// a package, optionally carrying a custom tag name used by the changelog
// renderer instead of the bare bump-level heading.
type Entry struct {
	Level semver.BumpLevel
	Tag   string // "" when no "(Tag)" suffix was present
}

// Provenance is the commit and author identity attributed to a changeset,
// best-effort. It is not stored in the changeset file, so Read leaves it
// empty; CaptureProvenance fills it from a checkout's HEAD commit and
// configured git identity at the time it is called.
type Provenance struct {
	Commit string
	Author string
}

// Changeset is one parsed .sampo/changesets/*.md (or .sampo/prerelease/*.md)
// file: its resolved per-package entries, markdown body, and provenance.
//
// Entries is keyed by the raw reference string exactly as it appeared in
// frontmatter (canonical id or plain name) — resolution against a
// Workspace happens separately via Resolve, since the store can be read
// before a Workspace exists.
type Changeset struct {
	Path       string // absolute path to the source file
	Entries    map[string]Entry
	Body       string
	Provenance Provenance
}
