package release

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sampo-dev/sampo/internal/branchguard"
	"github.com/sampo-dev/sampo/internal/changelog"
	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/planner"
	"github.com/sampo-dev/sampo/internal/prerelease"
	"github.com/sampo-dev/sampo/internal/sampoerr"
)

// rootManifestNames names each ecosystem's workspace-root manifest file, for
// rewriting requirements that defer to a workspace-level dependency table
// (Dependency.WorkspaceInherited).
var rootManifestNames = map[string]string{
	"cargo":     "Cargo.toml",
	"npm":       "package.json",
	"pypi":      "pyproject.toml",
	"hex":       "mix.exs",
	"packagist": "composer.json",
}

// Release runs Plan and then applies it: branch-guard check, manifest
// version writes, requirement rewrites, one lockfile regeneration per
// touched ecosystem, changelog rendering, and changeset consumption or
// preservation. Per §5's atomicity model, a release is atomic only at the
// plan boundary — once apply begins, a failure partway through leaves the
// working tree in the partial state reached, to be recovered from source
// control.
func (e *Engine) Release(releaseTime time.Time) (*planner.Plan, error) {
	if err := branchguard.Check(e.Root, e.Config); err != nil {
		return nil, err
	}

	plan, consumable, err := e.Plan()
	if err != nil {
		return nil, err
	}

	if err := e.applyVersions(plan); err != nil {
		return nil, err
	}
	if err := e.applyRequirementRewrites(plan); err != nil {
		return nil, err
	}
	if err := e.regenerateLockfiles(plan); err != nil {
		return nil, err
	}
	if err := changelog.RenderAndWrite(e.Root, e.Config, e.Workspace, plan, releaseTime); err != nil {
		return nil, err
	}
	if err := e.disposeChangesets(consumable); err != nil {
		return nil, err
	}

	log.Info("release applied", "packages", len(plan.Entries), "rewrites", len(plan.RequirementRewrites))
	return plan, nil
}

// applyVersions writes every bumped package's new version into its
// manifest, in the plan's deterministic lexicographic-by-id order.
func (e *Engine) applyVersions(plan *planner.Plan) error {
	for i := range plan.Entries {
		entry := &plan.Entries[i]
		pkg, found := e.Workspace.Get(entry.Id)
		if !found {
			continue
		}
		adapter, ok := e.Adapters[entry.Id.Ecosystem]
		if !ok {
			return sampoerr.NewInvalidConfigError("ecosystem", fmt.Sprintf("no adapter registered for ecosystem %q", entry.Id.Ecosystem), nil)
		}
		if err := adapter.WriteVersion(e.Root, pkg.ManifestPath, entry.To.String()); err != nil {
			return err
		}
		pkg.Version = entry.To
	}
	return nil
}

// applyRequirementRewrites edits every dependency requirement the plan
// flagged as needing a rewrite, directing workspace-inherited requirements
// at the ecosystem's root manifest instead of the dependent's own.
func (e *Engine) applyRequirementRewrites(plan *planner.Plan) error {
	for _, rw := range plan.RequirementRewrites {
		adapter, ok := e.Adapters[rw.Dependent.Ecosystem]
		if !ok {
			return sampoerr.NewInvalidConfigError("ecosystem", fmt.Sprintf("no adapter registered for ecosystem %q", rw.Dependent.Ecosystem), nil)
		}

		var rootManifest string
		if rw.Inherited {
			name, ok := rootManifestNames[rw.Dependent.Ecosystem]
			if !ok {
				return sampoerr.NewInvalidConfigError("ecosystem", fmt.Sprintf("ecosystem %q has no known root manifest for workspace-inherited requirements", rw.Dependent.Ecosystem), nil)
			}
			rootManifest = name
		}

		if err := adapter.WriteRequirement(e.Root, rw.ManifestPath, rootManifest, rw.Dependency.Name, rw.NewVersion, rw.Inherited); err != nil {
			return err
		}
	}
	return nil
}

// regenerateLockfiles runs each touched ecosystem's lockfile regeneration
// exactly once, after every manifest in that ecosystem has been written.
func (e *Engine) regenerateLockfiles(plan *planner.Plan) error {
	touched := make(map[string]bool)
	for _, entry := range plan.Entries {
		touched[entry.Id.Ecosystem] = true
	}
	for _, rw := range plan.RequirementRewrites {
		touched[rw.Dependent.Ecosystem] = true
	}

	ecosystems := make([]string, 0, len(touched))
	for eco := range touched {
		ecosystems = append(ecosystems, eco)
	}
	sort.Strings(ecosystems)

	for _, eco := range ecosystems {
		adapter, ok := e.Adapters[eco]
		if !ok {
			continue
		}
		if err := adapter.RegenerateLockfile(e.Root); err != nil {
			return sampoerr.NewIoError(e.Root, "failed to regenerate "+eco+" lockfile", err)
		}
	}
	return nil
}

// disposeChangesets consumes (stable mode) or preserves (pre-release mode)
// every changeset whose references were entirely resolved against active
// packages.
func (e *Engine) disposeChangesets(consumable []*changeset.Changeset) error {
	state, err := prerelease.ReadState(filepath.Join(e.SampoDir, "prerelease.json"))
	if err != nil {
		return err
	}

	for _, cs := range consumable {
		if state.Mode == prerelease.ModePrerelease {
			if err := changeset.Preserve(cs, filepath.Join(e.SampoDir, changeset.PreservedDir)); err != nil {
				return err
			}
			continue
		}
		if err := changeset.Consume(cs); err != nil {
			return err
		}
	}
	return nil
}
