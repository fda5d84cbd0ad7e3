package planner

import (
	"fmt"
	"strings"

	"github.com/sampo-dev/sampo/internal/depgraph"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// buildRequirementRewrites walks every internal dependency edge whose
// target package changed version and decides, per the adapter's own
// constraint dialect, whether the dependent's requirement needs rewriting.
func buildRequirementRewrites(
	ws *workspace.Workspace,
	adapters map[string]ecosystem.Adapter,
	_ *depgraph.Graph,
	groups *resolvedGroups,
	plan *Plan,
) ([]RequirementRewrite, []Diagnostic, error) {
	var rewrites []RequirementRewrite
	var diagnostics []Diagnostic

	for _, p := range ws.All() {
		adapter, ok := adapters[p.Id.Ecosystem]
		if !ok {
			continue
		}

		for _, dep := range p.Dependencies {
			target, found := plan.EntryFor(dep.Target)
			if !found || target.To.Equals(target.From) {
				continue
			}

			newVersion := target.To.String()
			result := adapter.ValidateConstraint(dep.Requirement, newVersion)
			// Fixed-group siblings always end up on the identical version by
			// construction (reconcileFixedGroupVersions), so a stale pin
			// between them is always resolved by rewriting it, never a fatal
			// mismatch. Linked-group siblings only share a bump-level floor,
			// not a version, so a genuine violation there is left to fail.
			forced := groups.sameLinkedGroup(p.Id, dep.Target)

			switch result {
			case ecosystem.ConstraintSatisfies:
				// Requirement already covers the new version; nothing to do.

			case ecosystem.ConstraintViolates:
				if forced {
					return nil, nil, sampoerr.NewConstraintViolationError(
						p.Id.String(), dep.Target.String(), dep.Requirement, newVersion,
					)
				}
				diagnostics = append(diagnostics, Diagnostic{
					Level: DiagnosticWarning,
					Message: fmt.Sprintf(
						"%s requires %s %s, which planned version %s violates; requirement will be rewritten",
						p.Id, dep.Target, dep.Requirement, newVersion,
					),
				})
				rewrites = append(rewrites, RequirementRewrite{
					Dependent:    p.Id,
					Dependency:   dep.Target,
					NewVersion:   newVersion,
					Inherited:    dep.WorkspaceInherited,
					ManifestPath: p.ManifestPath,
				})

			case ecosystem.ConstraintUnknown:
				diagnostics = append(diagnostics, Diagnostic{
					Level: DiagnosticInfo,
					Message: fmt.Sprintf(
						"%s's requirement on %s (%q) uses a dialect %s cannot validate",
						p.Id, dep.Target, dep.Requirement, p.Id.Ecosystem,
					),
				})
				if isExactPin(dep.Requirement) {
					rewrites = append(rewrites, RequirementRewrite{
						Dependent:    p.Id,
						Dependency:   dep.Target,
						NewVersion:   newVersion,
						Inherited:    dep.WorkspaceInherited,
						ManifestPath: p.ManifestPath,
					})
				}
			}
		}
	}

	return rewrites, diagnostics, nil
}

// isExactPin reports whether requirement names a single version with no
// range operator — the only shape the "unknown dialect" fallback rewrites.
func isExactPin(requirement string) bool {
	r := strings.TrimSpace(requirement)
	if r == "" {
		return false
	}
	for _, tok := range []string{"^", "~", ">", "<", "*", "x", "X", ",", "|", " "} {
		if strings.Contains(r, tok) {
			return false
		}
	}
	return true
}
