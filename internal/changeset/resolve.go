package changeset

import (
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// Resolved is the outcome of resolving one changeset's frontmatter against
// a workspace: the subset of entries that target active (non-ignored,
// known) packages, plus whether every reference in the file resolved to an
// active package.
type Resolved struct {
	Entries map[workspace.Id]Entry
	// AllActive is true only when every frontmatter reference resolved to
	// an active package. The store uses this to decide whether the file
	// may be consumed after a release (§4.4, §9 open question): a
	// changeset mixing ignored and active references is left on disk even
	// though its active references are still folded into the plan.
	AllActive bool
}

// Resolve maps cs's raw frontmatter references onto PackageIds. active is
// the filtered workspace the planner operates over; ignored is the
// parallel index of packages discovered but dropped by ignore filtering —
// a reference landing there is neither an error nor planned, it simply
// keeps the changeset pending. A reference matching neither index fails
// with UnknownPackage; a plain name matching more than one id in either
// index fails with AmbiguousPackage.
func Resolve(cs *Changeset, active, ignored *workspace.Workspace) (*Resolved, error) {
	result := &Resolved{Entries: make(map[workspace.Id]Entry), AllActive: true}

	for ref, entry := range cs.Entries {
		id, isIgnored, err := resolveRef(ref, cs.Path, active, ignored)
		if err != nil {
			return nil, err
		}
		if isIgnored {
			result.AllActive = false
			continue
		}
		result.Entries[id] = entry
	}

	return result, nil
}

func resolveRef(ref, path string, active, ignored *workspace.Workspace) (workspace.Id, bool, error) {
	if id, ok := workspace.ParseId(ref); ok {
		if _, found := active.Get(id); found {
			return id, false, nil
		}
		if ignored != nil {
			if _, found := ignored.Get(id); found {
				return id, true, nil
			}
		}
		return workspace.Id{}, false, sampoerr.NewUnknownPackageError(ref, path)
	}

	candidates := active.ResolvePlainName(ref)
	switch len(candidates) {
	case 1:
		return candidates[0], false, nil
	case 0:
		// fall through to the ignored index
	default:
		return workspace.Id{}, false, sampoerr.NewAmbiguousPackageError(ref, path, idStrings(candidates))
	}

	if ignored == nil {
		return workspace.Id{}, false, sampoerr.NewUnknownPackageError(ref, path)
	}

	ignoredCandidates := ignored.ResolvePlainName(ref)
	switch len(ignoredCandidates) {
	case 1:
		return ignoredCandidates[0], true, nil
	case 0:
		return workspace.Id{}, false, sampoerr.NewUnknownPackageError(ref, path)
	default:
		return workspace.Id{}, false, sampoerr.NewAmbiguousPackageError(ref, path, idStrings(ignoredCandidates))
	}
}

func idStrings(ids []workspace.Id) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
