package release

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/depgraph"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name     string
	versions map[string]string
}

func (a *fakeAdapter) Name() string                                     { return a.name }
func (a *fakeAdapter) Discover(root string) ([]string, error)           { return nil, nil }
func (a *fakeAdapter) Parse(root, relPath string) (*ecosystem.ManifestInfo, error) {
	return nil, nil
}
func (a *fakeAdapter) WriteVersion(root, relPath, newVersion string) error {
	if a.versions == nil {
		a.versions = make(map[string]string)
	}
	a.versions[relPath] = newVersion
	return nil
}
func (a *fakeAdapter) WriteRequirement(root, relPath, rootRelPath, depName, newVersion string, inherited bool) error {
	return nil
}
func (a *fakeAdapter) RegenerateLockfile(root string) error { return nil }
func (a *fakeAdapter) ValidateConstraint(requirement, candidate string) ecosystem.ConstraintResult {
	return ecosystem.ConstraintSatisfies
}

func initRepoOnMain(t *testing.T, dir string) {
	t.Helper()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main")),
	))

	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("hello"), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("README.md")
	require.NoError(t, err)
	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@local", When: time.Now()},
	})
	require.NoError(t, err)
}

func newTestEngine(t *testing.T) (*Engine, *fakeAdapter) {
	dir := t.TempDir()
	initRepoOnMain(t, dir)

	sampoDir := filepath.Join(dir, ".sampo")
	changesetsDir := filepath.Join(sampoDir, changeset.PendingDir)
	require.NoError(t, os.MkdirAll(changesetsDir, 0o755))

	pkg := &workspace.Package{
		Id:           workspace.NewId("cargo", "a"),
		ManifestPath: "a/Cargo.toml",
		Dir:          "a",
		Version:      semver.MustParse("1.0.0"),
		Publishable:  true,
	}
	ws := workspace.New(dir, []*workspace.Package{pkg})
	ignored := workspace.New(dir, nil)

	adapter := &fakeAdapter{name: "cargo"}
	adapters := map[string]ecosystem.Adapter{"cargo": adapter}

	e := &Engine{
		Root:      dir,
		SampoDir:  sampoDir,
		Config:    config.Default(),
		Workspace: ws,
		Ignored:   ignored,
		Graph:     depgraph.FromWorkspace(ws),
		Adapters:  adapters,
	}
	return e, adapter
}

func TestEngine_PlanComputesBumpFromPendingChangeset(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := changeset.Write(filepath.Join(e.SampoDir, changeset.PendingDir), map[string]changeset.Entry{
		"cargo/a": {Level: semver.LevelMinor},
	}, "Added a feature.")
	require.NoError(t, err)

	plan, consumable, err := e.Plan()
	require.NoError(t, err)
	require.Len(t, consumable, 1)
	require.Len(t, plan.Entries, 1)
	assert.Equal(t, "1.1.0", plan.Entries[0].To.String())
}

func TestEngine_ReleaseAppliesVersionChangelogAndConsumesChangeset(t *testing.T) {
	e, adapter := newTestEngine(t)

	_, err := changeset.Write(filepath.Join(e.SampoDir, changeset.PendingDir), map[string]changeset.Entry{
		"cargo/a": {Level: semver.LevelMinor},
	}, "Added a feature.")
	require.NoError(t, err)

	plan, err := e.Release(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, plan.Entries, 1)

	assert.Equal(t, "1.1.0", adapter.versions["a/Cargo.toml"])

	pkg, _ := e.Workspace.Get(workspace.NewId("cargo", "a"))
	assert.Equal(t, "1.1.0", pkg.Version.String())

	changelogPath := filepath.Join(e.Root, "a", "CHANGELOG.md")
	data, err := os.ReadFile(changelogPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "## 1.1.0")
	assert.Contains(t, string(data), "Added a feature.")

	remaining, err := os.ReadDir(filepath.Join(e.SampoDir, changeset.PendingDir))
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestEngine_ReleaseRejectsDisallowedBranch(t *testing.T) {
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, repo.Storer.SetReference(
		plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("feature/x")),
	))
	readme := filepath.Join(dir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("hello"), 0o644))
	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add("README.md")
	require.NoError(t, err)
	_, err = worktree.Commit("initial commit", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@local", When: time.Now()},
	})
	require.NoError(t, err)

	sampoDir := filepath.Join(dir, ".sampo")
	require.NoError(t, os.MkdirAll(filepath.Join(sampoDir, changeset.PendingDir), 0o755))

	e := &Engine{
		Root:      dir,
		SampoDir:  sampoDir,
		Config:    config.Default(),
		Workspace: workspace.New(dir, nil),
		Ignored:   workspace.New(dir, nil),
		Adapters:  map[string]ecosystem.Adapter{},
	}

	_, err = e.Release(time.Now())
	assert.Error(t, err)
}
