// Package workspace models the canonical package index across ecosystems.
// The index is built from the ecosystem adapters by internal/discovery.
package workspace

import "sort"

// Workspace is the immutable result of discovery: a package index keyed by
// canonical id, the root directory, the set of ecosystems that contributed
// packages, and a plain-name index for changeset resolution.
type Workspace struct {
	Root       string
	Packages   map[Id]*Package
	Ecosystems []string

	// byPlainName maps a bare package name to every PackageId sharing it;
	// len > 1 means the name is ambiguous and resolution must use the
	// canonical "ecosystem/name" form instead.
	byPlainName map[string][]Id
}

// New builds a Workspace from a flat package list, constructing the
// plain-name index as the final step.
func New(root string, packages []*Package) *Workspace {
	w := &Workspace{
		Root:        root,
		Packages:    make(map[Id]*Package, len(packages)),
		byPlainName: make(map[string][]Id),
	}

	ecosystemSet := make(map[string]bool)
	for _, p := range packages {
		w.Packages[p.Id] = p
		ecosystemSet[p.Id.Ecosystem] = true
		w.byPlainName[p.Id.Name] = append(w.byPlainName[p.Id.Name], p.Id)
	}

	for eco := range ecosystemSet {
		w.Ecosystems = append(w.Ecosystems, eco)
	}
	sort.Strings(w.Ecosystems)

	return w
}

// Get returns the package with the given id, if present.
func (w *Workspace) Get(id Id) (*Package, bool) {
	p, ok := w.Packages[id]
	return p, ok
}

// ResolvePlainName returns the set of ids sharing the given plain name.
func (w *Workspace) ResolvePlainName(name string) []Id {
	return w.byPlainName[name]
}

// All returns every package, sorted lexicographically by id — the
// deterministic iteration order that makes manifest-write diffs reproducible.
func (w *Workspace) All() []*Package {
	ids := make([]Id, 0, len(w.Packages))
	for id := range w.Packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	out := make([]*Package, len(ids))
	for i, id := range ids {
		out[i] = w.Packages[id]
	}
	return out
}

// Remove deletes a package from the index entirely, including its
// plain-name index entry.
func (w *Workspace) Remove(id Id) {
	if p, ok := w.Packages[id]; ok {
		delete(w.Packages, id)
		ids := w.byPlainName[p.Id.Name]
		for i, candidate := range ids {
			if candidate == id {
				w.byPlainName[p.Id.Name] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
}
