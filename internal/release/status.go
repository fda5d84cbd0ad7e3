package release

import (
	"path/filepath"
	"sort"

	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// StatusEntry names one pending changeset's effect on one package.
type StatusEntry struct {
	Path  string
	Level string
	Tag   string
}

// Status reads pending changesets and groups them by the package they touch,
// without invoking the planner. It surfaces the same "what's pending"
// information Plan would fold into a version bump, for a CLI that just wants
// a listing.
func (e *Engine) Status() (pendingByPackage map[workspace.Id][]StatusEntry, warnings []string, err error) {
	pending, err := changeset.ReadDir(filepath.Join(e.SampoDir, changeset.PendingDir))
	if err != nil {
		return nil, nil, err
	}

	pendingByPackage = make(map[workspace.Id][]StatusEntry)

	for _, cs := range pending {
		resolved, rErr := changeset.Resolve(cs, e.Workspace, e.Ignored)
		if rErr != nil {
			return nil, nil, rErr
		}
		if !resolved.AllActive {
			warnings = append(warnings, "changeset "+cs.Path+" references an ignored or unresolved package")
		}
		for id, entry := range resolved.Entries {
			pendingByPackage[id] = append(pendingByPackage[id], StatusEntry{
				Path:  cs.Path,
				Level: entry.Level.String(),
				Tag:   entry.Tag,
			})
		}
	}

	sort.Strings(warnings)
	return pendingByPackage, warnings, nil
}
