// Package release ties workspace discovery, configuration, the changeset
// store, the release planner, ecosystem adapters, the changelog renderer,
// and the pre-release controller into the two top-level operations the CLI
// exposes: Plan (read-only) and Release (plan, then apply).
package release

import (
	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/depgraph"
	"github.com/sampo-dev/sampo/internal/discovery"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/workspace"
)

var log = logx.For("release")

// Engine holds everything a Plan or Release operation needs, already
// resolved against one workspace on disk.
type Engine struct {
	Root      string
	SampoDir  string
	Config    *config.Config
	Workspace *workspace.Workspace
	Ignored   *workspace.Workspace
	Graph     *depgraph.Graph
	Adapters  map[string]ecosystem.Adapter
}

// Load discovers the workspace containing start, loads its configuration,
// and builds the dependency graph every planner operation needs. start is
// normally the current working directory; the .sampo marker may live above
// it.
func Load(start string) (*Engine, error) {
	root, sampoDir, err := discovery.FindRoot(start)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(sampoDir)
	if err != nil {
		return nil, err
	}

	adapters := ecosystem.Registry()
	active, ignored, err := discovery.Discover(root, cfg, adapters)
	if err != nil {
		return nil, err
	}

	graph := depgraph.FromWorkspace(active)

	log.Debug("loaded workspace", "root", root, "packages", len(active.Packages))

	return &Engine{
		Root:      root,
		SampoDir:  sampoDir,
		Config:    cfg,
		Workspace: active,
		Ignored:   ignored,
		Graph:     graph,
		Adapters:  adapters,
	}, nil
}
