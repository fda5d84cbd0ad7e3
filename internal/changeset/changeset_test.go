package changeset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRead_FlatSchema(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "---\ncargo/foo: minor (Added)\nnpm/bar: patch\n---\n\nSome notes.\n")

	cs, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Entry{Level: semver.LevelMinor, Tag: "Added"}, cs.Entries["cargo/foo"])
	assert.Equal(t, Entry{Level: semver.LevelPatch, Tag: ""}, cs.Entries["npm/bar"])
	assert.Equal(t, "Some notes.\n", cs.Body)
}

func TestRead_LegacySchema(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "---\npackages:\n  - cargo/foo\n  - npm/bar\nrelease: major\n---\n\nBreaking change.\n")

	cs, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, Entry{Level: semver.LevelMajor}, cs.Entries["cargo/foo"])
	assert.Equal(t, Entry{Level: semver.LevelMajor}, cs.Entries["npm/bar"])
}

func TestRead_NoFrontmatterFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "just a markdown file\n")

	_, err := Read(path)
	require.Error(t, err)
}

func TestRead_InvalidBumpLevelFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.md", "---\ncargo/foo: huge\n---\n\nbody\n")

	_, err := Read(path)
	require.Error(t, err)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := map[string]Entry{
		"cargo/foo": {Level: semver.LevelMinor, Tag: "Added"},
		"npm/bar":   {Level: semver.LevelPatch},
	}
	path, err := Write(dir, entries, "Some notes about the change.")
	require.NoError(t, err)

	cs, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, entries, cs.Entries)
	assert.Equal(t, "Some notes about the change.\n", cs.Body)
}

func newWs(t *testing.T, ids ...workspace.Id) *workspace.Workspace {
	t.Helper()
	pkgs := make([]*workspace.Package, 0, len(ids))
	for _, id := range ids {
		pkgs = append(pkgs, &workspace.Package{Id: id, Version: semver.New(1, 0, 0)})
	}
	return workspace.New("/root", pkgs)
}

func TestResolve_CanonicalAndPlainName(t *testing.T) {
	active := newWs(t, workspace.NewId("cargo", "foo"), workspace.NewId("npm", "bar"))
	ignored := newWs(t)

	cs := &Changeset{Entries: map[string]Entry{
		"cargo/foo": {Level: semver.LevelMinor},
		"bar":       {Level: semver.LevelPatch},
	}}

	resolved, err := Resolve(cs, active, ignored)
	require.NoError(t, err)
	assert.True(t, resolved.AllActive)
	assert.Equal(t, semver.LevelMinor, resolved.Entries[workspace.NewId("cargo", "foo")].Level)
	assert.Equal(t, semver.LevelPatch, resolved.Entries[workspace.NewId("npm", "bar")].Level)
}

func TestResolve_AmbiguousPlainName(t *testing.T) {
	active := newWs(t, workspace.NewId("cargo", "foo"), workspace.NewId("npm", "foo"))
	ignored := newWs(t)

	cs := &Changeset{Path: "a.md", Entries: map[string]Entry{"foo": {Level: semver.LevelMinor}}}
	_, err := Resolve(cs, active, ignored)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ambiguous")
}

func TestResolve_UnknownPackage(t *testing.T) {
	active := newWs(t, workspace.NewId("cargo", "foo"))
	ignored := newWs(t)

	cs := &Changeset{Path: "a.md", Entries: map[string]Entry{"npm/missing": {Level: semver.LevelMinor}}}
	_, err := Resolve(cs, active, ignored)
	require.Error(t, err)
}

func TestResolve_IgnoredPackageLeavesFileUnconsumed(t *testing.T) {
	active := newWs(t, workspace.NewId("cargo", "foo"))
	ignored := newWs(t, workspace.NewId("cargo", "internal-tool"))

	cs := &Changeset{Path: "a.md", Entries: map[string]Entry{
		"cargo/foo":          {Level: semver.LevelMinor},
		"cargo/internal-tool": {Level: semver.LevelPatch},
	}}

	resolved, err := Resolve(cs, active, ignored)
	require.NoError(t, err)
	assert.False(t, resolved.AllActive)
	assert.Len(t, resolved.Entries, 1)
	assert.Contains(t, resolved.Entries, workspace.NewId("cargo", "foo"))
}

func TestStore_ConsumeAndPreserveAndRestore(t *testing.T) {
	sampoDir := t.TempDir()
	pendingDir := filepath.Join(sampoDir, PendingDir)
	preservedDir := filepath.Join(sampoDir, PreservedDir)
	require.NoError(t, os.MkdirAll(pendingDir, 0o755))

	path := writeFile(t, pendingDir, "a.md", "---\ncargo/foo: patch\n---\n\nbody\n")
	cs, err := Read(path)
	require.NoError(t, err)

	require.NoError(t, Preserve(cs, preservedDir))
	assert.NoFileExists(t, path)
	assert.FileExists(t, filepath.Join(preservedDir, "a.md"))

	require.NoError(t, Restore(preservedDir, pendingDir))
	assert.FileExists(t, filepath.Join(pendingDir, "a.md"))

	restored, err := Read(filepath.Join(pendingDir, "a.md"))
	require.NoError(t, err)
	require.NoError(t, Consume(restored))
	assert.NoFileExists(t, filepath.Join(pendingDir, "a.md"))
}

func TestReadDir_Empty(t *testing.T) {
	list, err := ReadDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCaptureProvenance_NonGitDir(t *testing.T) {
	prov := CaptureProvenance(t.TempDir())
	assert.Empty(t, prov.Commit)
	assert.Empty(t, prov.Author)
}
