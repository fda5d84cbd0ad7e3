package release

import (
	"path/filepath"

	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/planner"
)

// Plan runs the read-only planning operation: it reads every pending
// changeset, resolves it against the workspace, and computes the release
// plan. It also returns the subset of changesets fully resolved against
// active packages — the ones Release's apply phase may later consume or
// preserve. Nothing on disk is mutated.
func (e *Engine) Plan() (*planner.Plan, []*changeset.Changeset, error) {
	pending, err := changeset.ReadDir(filepath.Join(e.SampoDir, changeset.PendingDir))
	if err != nil {
		return nil, nil, err
	}

	// Every changeset folded into one release shares the same provenance
	// snapshot: the store never persists the original author/commit back
	// to disk, so the best available signal is the current checkout's HEAD
	// and git identity at plan time, not at changeset-authoring time.
	provenance := changeset.CaptureProvenance(e.Root)

	resolvedChangesets := make([]planner.ResolvedChangeset, 0, len(pending))
	consumable := make([]*changeset.Changeset, 0, len(pending))

	for _, cs := range pending {
		resolved, err := changeset.Resolve(cs, e.Workspace, e.Ignored)
		if err != nil {
			return nil, nil, err
		}
		if len(resolved.Entries) == 0 {
			continue
		}

		resolvedChangesets = append(resolvedChangesets, planner.ResolvedChangeset{
			Path:       cs.Path,
			Entries:    resolved.Entries,
			Body:       cs.Body,
			Provenance: provenance,
		})

		if resolved.AllActive {
			consumable = append(consumable, cs)
		}
	}

	plan, err := planner.Compute(planner.Input{
		Workspace:  e.Workspace,
		Graph:      e.Graph,
		Config:     e.Config,
		Changesets: resolvedChangesets,
		Adapters:   e.Adapters,
	})
	if err != nil {
		return nil, nil, err
	}

	return plan, consumable, nil
}
