// Package discovery builds a workspace.Workspace by walking the filesystem
// with every registered ecosystem adapter and applying the packages.ignore /
// ignore_unpublished policy.
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// SampoDirName is the workspace marker directory every discovery walk looks
// for, and the root every relative path in a Package is resolved against.
const SampoDirName = ".sampo"

var log = logx.For("discovery")

// FindRoot walks upward from start looking for a .sampo directory, the same
// DetectDotGit-style search go-git uses for its own repository marker. It
// returns the workspace root (the directory containing .sampo) and the
// absolute path to .sampo itself.
func FindRoot(start string) (root, sampoDir string, err error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", "", sampoerr.NewIoError(start, "failed to resolve absolute path", err)
	}

	dir := abs
	for {
		candidate := filepath.Join(dir, SampoDirName)
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return dir, candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", sampoerr.NewNotInitializedError(abs)
		}
		dir = parent
	}
}

// Discover walks root with every registered ecosystem adapter, parses each
// discovered manifest, and partitions the result into an active workspace
// (what the planner operates over) and an ignored workspace (packages
// dropped by packages.ignore / ignore_unpublished, still resolvable by
// changesets per changeset.Resolve's ignored-reference rule).
func Discover(root string, cfg *config.Config, adapters map[string]ecosystem.Adapter) (active, ignored *workspace.Workspace, err error) {
	matchers, err := compileIgnoreGlobs(cfg.Packages.Ignore)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[workspace.Id]bool)
	var activePkgs, ignoredPkgs []*workspace.Package

	for _, eco := range sortedAdapterNames(adapters) {
		adapter := adapters[eco]
		manifestPaths, err := adapter.Discover(root)
		if err != nil {
			return nil, nil, sampoerr.NewIoError(root, "failed to discover "+eco+" manifests", err)
		}

		for _, relPath := range manifestPaths {
			info, err := adapter.Parse(root, relPath)
			if err != nil {
				return nil, nil, sampoerr.NewIoError(relPath, "failed to parse manifest", err)
			}

			pkg, err := buildPackage(eco, relPath, info)
			if err != nil {
				return nil, nil, err
			}

			if seen[pkg.Id] {
				return nil, nil, sampoerr.NewDuplicatePackageError(pkg.Id.String())
			}
			seen[pkg.Id] = true

			if isIgnored(pkg, cfg, matchers) {
				ignoredPkgs = append(ignoredPkgs, pkg)
			} else {
				activePkgs = append(activePkgs, pkg)
			}
		}
	}

	active = workspace.New(root, activePkgs)
	ignored = workspace.New(root, ignoredPkgs)

	if len(active.Packages) == 0 {
		return nil, nil, sampoerr.NewNoPackagesFoundError(root)
	}

	log.Debug("discovered workspace", "active", len(active.Packages), "ignored", len(ignored.Packages))
	return active, ignored, nil
}

func buildPackage(eco, relPath string, info *ecosystem.ManifestInfo) (*workspace.Package, error) {
	dir := filepath.Dir(relPath)
	if dir == "." {
		dir = ""
	}

	var version *semver.Version
	if info.Version == "" {
		if info.Publishable {
			return nil, sampoerr.NewInvalidVersionError("", "publishable package "+info.Name+" has no version")
		}
		version = semver.Zero()
	} else {
		v, err := semver.Parse(info.Version)
		if err != nil {
			return nil, sampoerr.NewInvalidVersionError(info.Version, err.Error())
		}
		version = v
	}

	return &workspace.Package{
		Id:           workspace.NewId(eco, info.Name),
		ManifestPath: relPath,
		Dir:          dir,
		Version:      version,
		Publishable:  info.Publishable,
		Dependencies: info.Dependencies,
	}, nil
}

func isIgnored(pkg *workspace.Package, cfg *config.Config, matchers []glob.Glob) bool {
	if cfg.Packages.IgnoreUnpublished && !pkg.Publishable {
		return true
	}
	for _, m := range matchers {
		if m.Match(pkg.Id.String()) || m.Match(pkg.Id.Name) || m.Match(pkg.ManifestPath) {
			return true
		}
	}
	return false
}

func compileIgnoreGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, sampoerr.NewInvalidConfigError("packages.ignore", "invalid ignore glob "+p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func sortedAdapterNames(adapters map[string]ecosystem.Adapter) []string {
	names := make([]string, 0, len(adapters))
	for name := range adapters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
