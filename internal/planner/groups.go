package planner

import (
	"fmt"

	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// resolvedGroups holds fixed/linked membership after config string
// references have been resolved against the workspace and validated for
// overlap and unknown ids.
type resolvedGroups struct {
	fixed  [][]workspace.Id
	linked [][]workspace.Id
	// linkedOf maps a package id to the index into linked it belongs to, for
	// the "same linked group as" check constraint validation needs.
	linkedOf map[workspace.Id]int
}

func resolveGroups(ws *workspace.Workspace, fixedRefs, linkedRefs [][]string) (*resolvedGroups, error) {
	rg := &resolvedGroups{
		linkedOf: make(map[workspace.Id]int),
	}

	seen := make(map[workspace.Id]string)

	resolveOne := func(refs []string, kind string) ([]workspace.Id, error) {
		ids := make([]workspace.Id, 0, len(refs))
		for _, ref := range refs {
			id, err := resolveGroupRef(ws, ref)
			if err != nil {
				return nil, sampoerr.NewInvalidConfigError("packages."+kind, err.Error(), err)
			}
			if prevKind, ok := seen[id]; ok {
				return nil, sampoerr.NewInvalidConfigError(
					"packages."+kind,
					fmt.Sprintf("package %q appears in both %s and %s groups", id, prevKind, kind),
					nil,
				)
			}
			seen[id] = kind
			ids = append(ids, id)
		}
		return ids, nil
	}

	for _, refs := range fixedRefs {
		ids, err := resolveOne(refs, "fixed")
		if err != nil {
			return nil, err
		}
		rg.fixed = append(rg.fixed, ids)
	}

	for _, refs := range linkedRefs {
		ids, err := resolveOne(refs, "linked")
		if err != nil {
			return nil, err
		}
		idx := len(rg.linked)
		rg.linked = append(rg.linked, ids)
		for _, id := range ids {
			rg.linkedOf[id] = idx
		}
	}

	return rg, nil
}

func resolveGroupRef(ws *workspace.Workspace, ref string) (workspace.Id, error) {
	if id, ok := workspace.ParseId(ref); ok {
		if _, found := ws.Get(id); found {
			return id, nil
		}
		return workspace.Id{}, fmt.Errorf("unknown package %q in group", ref)
	}
	candidates := ws.ResolvePlainName(ref)
	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return workspace.Id{}, fmt.Errorf("unknown package %q in group", ref)
	default:
		return workspace.Id{}, fmt.Errorf("ambiguous package %q in group: %v", ref, candidates)
	}
}

// sameLinkedGroup reports whether a and b are both members of the same
// linked group.
func (rg *resolvedGroups) sameLinkedGroup(a, b workspace.Id) bool {
	ia, oka := rg.linkedOf[a]
	ib, okb := rg.linkedOf[b]
	return oka && okb && ia == ib
}
