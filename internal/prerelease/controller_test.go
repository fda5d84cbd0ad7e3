package prerelease

import (
	"os"
	"path/filepath"
	"testing"

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

func (a *fakeAdapter) Name() string { return a.name }
func (a *fakeAdapter) Discover(root string) ([]string, error)         { return nil, nil }
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

func newTestWorkspace() (*workspace.Workspace, *fakeAdapter) {
	adapter := &fakeAdapter{name: "cargo"}
	pkg := &workspace.Package{
		Id:           workspace.NewId("cargo", "a"),
		ManifestPath: "a/Cargo.toml",
		Version:      semver.MustParse("1.2.3"),
	}
	return workspace.New("/root", []*workspace.Package{pkg}), adapter
}

func TestValidLabel(t *testing.T) {
	assert.True(t, ValidLabel("alpha"))
	assert.True(t, ValidLabel("rc-1"))
	assert.False(t, ValidLabel(""))
	assert.False(t, ValidLabel("123"))
	assert.False(t, ValidLabel("latest"))
	assert.False(t, ValidLabel("stable"))
	assert.False(t, ValidLabel("not valid!"))
}

func TestController_Enter(t *testing.T) {
	dir := t.TempDir()
	sampoDir := filepath.Join(dir, ".sampo")
	require.NoError(t, os.MkdirAll(sampoDir, 0o755))

	ws, adapter := newTestWorkspace()
	c := New(dir, sampoDir, ws, adaptersWith(adapter))
	state, err := c.Enter("alpha", []string{"a"})
	require.NoError(t, err)

	assert.Equal(t, ModePrerelease, state.Mode)
	assert.Equal(t, "alpha", state.Label)
	assert.Equal(t, []string{"cargo/a"}, state.Packages)

	pkg, _ := ws.Get(workspace.NewId("cargo", "a"))
	assert.Equal(t, "1.2.4-alpha", pkg.Version.String())
	assert.Equal(t, "1.2.4-alpha", adapter.versions["a/Cargo.toml"])

	persisted, err := ReadState(filepath.Join(sampoDir, "prerelease.json"))
	require.NoError(t, err)
	assert.Equal(t, ModePrerelease, persisted.Mode)
	assert.Equal(t, "alpha", persisted.Label)
}

func TestController_EnterRejectsInvalidLabel(t *testing.T) {
	dir := t.TempDir()
	sampoDir := filepath.Join(dir, ".sampo")
	require.NoError(t, os.MkdirAll(sampoDir, 0o755))

	ws, adapter := newTestWorkspace()
	c := New(dir, sampoDir, ws, adaptersWith(adapter))

	_, err := c.Enter("123", []string{"a"})
	assert.Error(t, err)
}

func TestController_ExitStripsPreReleaseAndClearsState(t *testing.T) {
	dir := t.TempDir()
	sampoDir := filepath.Join(dir, ".sampo")
	require.NoError(t, os.MkdirAll(sampoDir, 0o755))

	ws, adapter := newTestWorkspace()
	c := New(dir, sampoDir, ws, adaptersWith(adapter))

	_, err := c.Enter("alpha", []string{"a"})
	require.NoError(t, err)

	state, err := c.Exit(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeStable, state.Mode)

	pkg, _ := ws.Get(workspace.NewId("cargo", "a"))
	assert.Equal(t, "1.2.4", pkg.Version.String())

	assert.False(t, func() bool {
		_, err := os.Stat(filepath.Join(sampoDir, "prerelease.json"))
		return err == nil
	}())
}

func TestController_SwitchChangesLabel(t *testing.T) {
	dir := t.TempDir()
	sampoDir := filepath.Join(dir, ".sampo")
	require.NoError(t, os.MkdirAll(sampoDir, 0o755))

	ws, adapter := newTestWorkspace()
	c := New(dir, sampoDir, ws, adaptersWith(adapter))

	_, err := c.Enter("alpha", []string{"a"})
	require.NoError(t, err)

	state, err := c.Switch("beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", state.Label)

	pkg, _ := ws.Get(workspace.NewId("cargo", "a"))
	assert.Equal(t, "1.2.5-beta", pkg.Version.String())
}

func adaptersWith(a *fakeAdapter) map[string]ecosystem.Adapter {
	return map[string]ecosystem.Adapter{a.name: a}
}
