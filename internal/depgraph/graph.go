// Package depgraph models the internal dependency graph the release
// planner walks: directed edges from a dependent package to the packages
// it depends on, restricted to packages that live inside the workspace.
package depgraph

import (
	"sort"

	"github.com/sampo-dev/sampo/internal/workspace"
)

// Graph is a directed graph over workspace PackageIds. An edge A -> B
// means "A depends on B"; cascade bumps flow in the opposite direction
// (a bump to B may force a bump to A).
type Graph struct {
	nodes map[workspace.Id]bool
	edges map[workspace.Id][]workspace.Id
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[workspace.Id]bool),
		edges: make(map[workspace.Id][]workspace.Id),
	}
}

// FromWorkspace builds a Graph from every package's internal dependency
// list, keeping only edges whose target also lives in the workspace — an
// external dependency never becomes a graph edge.
func FromWorkspace(ws *workspace.Workspace) *Graph {
	g := New()
	for _, p := range ws.All() {
		g.AddNode(p.Id)
	}
	for _, p := range ws.All() {
		for _, dep := range p.Dependencies {
			if _, ok := ws.Get(dep.Target); ok {
				g.AddEdge(p.Id, dep.Target)
			}
		}
	}
	return g
}

// AddNode registers id in the graph if it is not already present.
func (g *Graph) AddNode(id workspace.Id) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.edges[id] = nil
	}
}

// AddEdge records that from depends on to. Both ends are added as nodes if
// not already present, and duplicate edges are collapsed.
func (g *Graph) AddEdge(from, to workspace.Id) {
	g.AddNode(from)
	g.AddNode(to)
	for _, existing := range g.edges[from] {
		if existing == to {
			return
		}
	}
	g.edges[from] = append(g.edges[from], to)
}

// DependenciesOf returns the ids from depends on directly.
func (g *Graph) DependenciesOf(id workspace.Id) []workspace.Id {
	return g.edges[id]
}

// Dependents returns every id that directly depends on target — the
// reverse-edge view the cascade step needs ("which packages depend on the
// one that just got bumped").
func (g *Graph) Dependents(target workspace.Id) []workspace.Id {
	var out []workspace.Id
	for _, id := range g.Nodes() {
		for _, dep := range g.edges[id] {
			if dep == target {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Nodes returns every node id, sorted for deterministic iteration.
func (g *Graph) Nodes() []workspace.Id {
	ids := make([]workspace.Id, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
