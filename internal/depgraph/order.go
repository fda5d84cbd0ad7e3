package depgraph

import "github.com/sampo-dev/sampo/internal/workspace"

// Cycles reports every strongly connected component of size > 1 (a true
// cycle; a lone self-loop would also qualify but internal dependency edges
// never point a package at itself). Cycles are reported, not rejected —
// the cascade fixpoint still converges because the bump-level lattice is
// finite.
func (g *Graph) Cycles() [][]workspace.Id {
	sccs := tarjanSCCs(g)
	var cycles [][]workspace.Id
	for _, scc := range sccs {
		if len(scc) > 1 {
			cycles = append(cycles, scc)
		}
	}
	return cycles
}

// tarjanSCCs runs Tarjan's algorithm over g, visiting nodes in their sorted
// order so that the result is deterministic across runs.
func tarjanSCCs(g *Graph) [][]workspace.Id {
	s := &tarjanState{
		g:        g,
		indices:  make(map[workspace.Id]int),
		lowlinks: make(map[workspace.Id]int),
		onStack:  make(map[workspace.Id]bool),
	}
	for _, id := range g.Nodes() {
		if _, visited := s.indices[id]; !visited {
			s.strongConnect(id)
		}
	}
	return s.sccs
}

type tarjanState struct {
	g        *Graph
	index    int
	indices  map[workspace.Id]int
	lowlinks map[workspace.Id]int
	onStack  map[workspace.Id]bool
	stack    []workspace.Id
	sccs     [][]workspace.Id
}

func (s *tarjanState) strongConnect(id workspace.Id) {
	s.indices[id] = s.index
	s.lowlinks[id] = s.index
	s.index++
	s.stack = append(s.stack, id)
	s.onStack[id] = true

	for _, dep := range s.g.DependenciesOf(id) {
		if _, visited := s.indices[dep]; !visited {
			s.strongConnect(dep)
			s.lowlinks[id] = minInt(s.lowlinks[id], s.lowlinks[dep])
		} else if s.onStack[dep] {
			s.lowlinks[id] = minInt(s.lowlinks[id], s.indices[dep])
		}
	}

	if s.lowlinks[id] == s.indices[id] {
		var scc []workspace.Id
		for {
			n := len(s.stack) - 1
			w := s.stack[n]
			s.stack = s.stack[:n]
			s.onStack[w] = false
			scc = append(scc, w)
			if w == id {
				break
			}
		}
		s.sccs = append(s.sccs, scc)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CascadeOrder returns the node ids in the order the cascade step should
// visit them: reverse-topological (dependencies resolved before their
// dependents see the change) when the graph is acyclic. When the graph
// contains a cycle, no topological order exists and every node is returned
// in sorted-id order instead — any fixed iteration order is valid here
// since the planner re-runs cascade propagation to a fixpoint regardless of
// visitation order.
func (g *Graph) CascadeOrder() []workspace.Id {
	if order, ok := g.topologicalOrder(); ok {
		return order
	}
	return g.Nodes()
}

// topologicalOrder runs Kahn's algorithm over the "depends on" edges and
// returns nodes with no remaining dependencies processed first (i.e.
// dependencies before dependents). ok is false if a cycle makes a full
// topological order impossible.
func (g *Graph) topologicalOrder() ([]workspace.Id, bool) {
	inDegree := make(map[workspace.Id]int)
	for _, id := range g.Nodes() {
		inDegree[id] = 0
	}
	for _, id := range g.Nodes() {
		for range g.DependenciesOf(id) {
			inDegree[id]++
		}
	}

	var queue []workspace.Id
	for _, id := range g.Nodes() {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var order []workspace.Id
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)

		for _, dependent := range g.Dependents(id) {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(order) != len(g.Nodes()) {
		return nil, false
	}
	return order, true
}
