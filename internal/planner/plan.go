package planner

import (
	"sort"

	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/depgraph"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// ResolvedChangeset is one changeset's frontmatter already resolved against
// the workspace (see changeset.Resolve), ready to be folded into a plan.
type ResolvedChangeset struct {
	Path       string
	Entries    map[workspace.Id]changeset.Entry
	Body       string
	Provenance changeset.Provenance
}

// Input is everything Compute needs to produce a Plan.
type Input struct {
	Workspace  *workspace.Workspace
	Graph      *depgraph.Graph
	Config     *config.Config
	Changesets []ResolvedChangeset
	Adapters   map[string]ecosystem.Adapter
}

// entryState is the mutable accumulator used while the fixpoint loop
// converges; it is promoted to a PlanEntry with a computed To version only
// once the levels stop changing.
type entryState struct {
	id      workspace.Id
	level   semver.BumpLevel
	reasons []Reason
	sources []Source
}

func (s *entryState) addReason(r Reason) {
	for _, existing := range s.reasons {
		if existing == r {
			return
		}
	}
	s.reasons = append(s.reasons, r)
}

// Compute runs the release planner's fixpoint computation: direct bumps from
// changesets, cascade propagation along the internal dependency graph, and
// fixed/linked group policy, repeated until no entry's level changes. It
// then computes each entry's target version, reconciles fixed-group
// lockstep versions, and validates downstream requirement constraints.
func Compute(input Input) (*Plan, error) {
	ws := input.Workspace

	groups, err := resolveGroups(ws, input.Config.Packages.Fixed, input.Config.Packages.Linked)
	if err != nil {
		return nil, err
	}

	states := make(map[workspace.Id]*entryState)
	ensure := func(id workspace.Id) *entryState {
		if s, ok := states[id]; ok {
			return s
		}
		s := &entryState{id: id}
		states[id] = s
		return s
	}

	// (a) Direct bumps.
	for _, cs := range input.Changesets {
		for id, entry := range cs.Entries {
			if _, found := ws.Get(id); !found {
				return nil, sampoerr.NewUnknownPackageError(id.String(), cs.Path)
			}
			s := ensure(id)
			s.level = semver.Join(s.level, entry.Level)
			s.addReason(ReasonDirect)
			s.sources = append(s.sources, Source{
				Path:       cs.Path,
				Level:      entry.Level,
				Tag:        entry.Tag,
				Body:       cs.Body,
				Provenance: cs.Provenance,
			})
		}
	}

	// (b)-(d) Fixpoint: cascade, then linked groups, then fixed groups,
	// repeated until nothing changes. The bump lattice has 4 values, so this
	// always converges.
	for {
		changed := false

		if cascadeStep(input.Graph, states, ensure) {
			changed = true
		}
		if linkedGroupStep(groups, states) {
			changed = true
		}
		if fixedGroupStep(groups, states, ensure) {
			changed = true
		}

		if !changed {
			break
		}
	}

	// (f) Version computation, including pre-release continuation tagging.
	entries := make([]PlanEntry, 0, len(states))
	for _, s := range states {
		pkg, _ := ws.Get(s.id)
		from := pkg.Version

		to, err := from.Bump(s.level)
		if err != nil {
			return nil, sampoerr.NewInvalidVersionError(from.String(), err.Error())
		}

		if from.IsPreRelease() && s.level != semver.LevelNone && s.level <= from.ImpliedLevel() {
			s.addReason(ReasonPrereleaseContinuation)
		}

		entries = append(entries, PlanEntry{
			Id:      s.id,
			From:    from,
			To:      to,
			Level:   s.level,
			Reasons: s.reasons,
			Sources: s.sources,
		})
	}

	reconcileFixedGroupVersions(groups, entries)

	sort.Slice(entries, func(i, j int) bool { return entries[i].Id.String() < entries[j].Id.String() })

	plan := &Plan{Entries: entries}

	rewrites, diagnostics, err := buildRequirementRewrites(ws, input.Adapters, input.Graph, groups, plan)
	if err != nil {
		return nil, err
	}
	plan.RequirementRewrites = rewrites
	plan.Diagnostics = diagnostics

	return plan, nil
}

// cascadeStep propagates at least a patch bump from every bumped package to
// its dependents, in dependency order. It reports whether any entry changed.
func cascadeStep(graph *depgraph.Graph, states map[workspace.Id]*entryState, ensure func(workspace.Id) *entryState) bool {
	changed := false
	for _, id := range graph.CascadeOrder() {
		s, ok := states[id]
		if !ok || s.level == semver.LevelNone {
			continue
		}
		for _, dependent := range graph.Dependents(id) {
			ds := ensure(dependent)
			next := semver.Join(ds.level, semver.LevelPatch)
			if next != ds.level {
				ds.level = next
				changed = true
			}
			before := len(ds.reasons)
			ds.addReason(ReasonCascade)
			if len(ds.reasons) != before {
				changed = true
			}
		}
	}
	return changed
}

// linkedGroupStep raises every currently-affected member of a linked group
// to the group's combined level. Members with no entry (never touched by a
// direct bump or cascade) are left alone — linked groups constrain affected
// members to move together, they do not themselves activate untouched ones.
func linkedGroupStep(groups *resolvedGroups, states map[workspace.Id]*entryState) bool {
	changed := false
	for _, group := range groups.linked {
		groupLevel := semver.LevelNone
		for _, id := range group {
			if s, ok := states[id]; ok {
				groupLevel = semver.Join(groupLevel, s.level)
			}
		}
		if groupLevel == semver.LevelNone {
			continue
		}
		for _, id := range group {
			s, ok := states[id]
			if !ok || s.level == semver.LevelNone {
				continue
			}
			if s.level != groupLevel {
				s.level = groupLevel
				changed = true
			}
			before := len(s.reasons)
			s.addReason(ReasonLinkedGroup)
			if len(s.reasons) != before {
				changed = true
			}
		}
	}
	return changed
}

// fixedGroupStep activates every member of a fixed group as soon as one
// member is affected: the whole group moves in lockstep, including members
// a direct bump or cascade never touched.
func fixedGroupStep(groups *resolvedGroups, states map[workspace.Id]*entryState, ensure func(workspace.Id) *entryState) bool {
	changed := false
	for _, group := range groups.fixed {
		groupLevel := semver.LevelNone
		for _, id := range group {
			if s, ok := states[id]; ok {
				groupLevel = semver.Join(groupLevel, s.level)
			}
		}
		if groupLevel == semver.LevelNone {
			continue
		}
		for _, id := range group {
			s := ensure(id)
			if s.level != groupLevel {
				s.level = groupLevel
				changed = true
			}
			before := len(s.reasons)
			s.addReason(ReasonFixedGroup)
			if len(s.reasons) != before {
				changed = true
			}
		}
	}
	return changed
}

// reconcileFixedGroupVersions enforces the fixed-group invariant that every
// member shares an identical To version: the highest version any member's
// own bump would produce becomes every member's To.
func reconcileFixedGroupVersions(groups *resolvedGroups, entries []PlanEntry) {
	byId := make(map[workspace.Id]*PlanEntry, len(entries))
	for i := range entries {
		byId[entries[i].Id] = &entries[i]
	}

	for _, group := range groups.fixed {
		var max *semver.Version
		for _, id := range group {
			e, ok := byId[id]
			if !ok {
				continue
			}
			if max == nil || e.To.GreaterThan(max) {
				max = e.To
			}
		}
		if max == nil {
			continue
		}
		for _, id := range group {
			if e, ok := byId[id]; ok {
				e.To = max
			}
		}
	}
}
