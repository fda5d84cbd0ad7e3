// Package planner implements the release planner: the fixpoint computation
// that turns pending changesets, the internal dependency graph, and
// fixed/linked group policy into a validated ReleasePlan.
package planner

import (
	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// Reason tags why a package was included in the plan. An entry can carry
// more than one: a package can be both a Cascade dependent and a member of
// a LinkedGroup that independently confirmed its level.
type Reason string

const (
	ReasonDirect                 Reason = "Direct"
	ReasonCascade                Reason = "Cascade"
	ReasonFixedGroup             Reason = "FixedGroup"
	ReasonLinkedGroup            Reason = "LinkedGroup"
	ReasonPrereleaseContinuation Reason = "PrereleaseContinuation"
)

// Source cites one changeset contributing to a PlanEntry: its resolved
// bump request plus everything the changelog renderer needs to render the
// entry line.
type Source struct {
	Path       string
	Level      semver.BumpLevel
	Tag        string
	Body       string
	Provenance changeset.Provenance
}

// PlanEntry is one package's planned version transition.
type PlanEntry struct {
	Id      workspace.Id
	From    *semver.Version
	To      *semver.Version
	Level   semver.BumpLevel
	Reasons []Reason
	Sources []Source
}

// HasReason reports whether r is among the entry's reasons.
func (e *PlanEntry) HasReason(r Reason) bool {
	for _, existing := range e.Reasons {
		if existing == r {
			return true
		}
	}
	return false
}

// RequirementRewrite is one dependency-requirement edit the apply phase
// must perform because the dependency's version changed.
type RequirementRewrite struct {
	Dependent    workspace.Id
	Dependency   workspace.Id
	NewVersion   string
	Inherited    bool
	ManifestPath string
}

// DiagnosticLevel classifies a non-fatal Diagnostic.
type DiagnosticLevel string

const (
	DiagnosticWarning DiagnosticLevel = "warning"
	DiagnosticInfo    DiagnosticLevel = "info"
)

// Diagnostic is a non-fatal observation surfaced alongside a Plan — a
// constraint downgrade, an unknown-dialect rewrite, or similar.
type Diagnostic struct {
	Level   DiagnosticLevel
	Message string
}

// Plan is the deterministic, validated output of Compute: every package
// whose version changes, every dependency requirement that must be
// rewritten, and the diagnostics collected along the way.
//
// Plan is returned unchanged by both the read-only "plan" operation and
// the "release" operation that goes on to apply it — a caller can diff
// From/To across every entry without anything having been mutated yet.
type Plan struct {
	Entries             []PlanEntry
	RequirementRewrites []RequirementRewrite
	Diagnostics         []Diagnostic
}

// EntryFor returns the plan entry for id, if one exists.
func (p *Plan) EntryFor(id workspace.Id) (*PlanEntry, bool) {
	for i := range p.Entries {
		if p.Entries[i].Id == id {
			return &p.Entries[i], true
		}
	}
	return nil, false
}
