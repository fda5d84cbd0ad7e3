package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, ".sampo"))
	require.NoError(t, err)
	assert.Equal(t, "main", cfg.Git.DefaultBranch)
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[git]
default_branch = "trunk"
release_branches = ["release"]

[changelog]
show_commit_hash = false

[packages]
ignore_unpublished = true
ignore = ["cargo/internal-*"]
fixed = [["cargo/a", "cargo/b"]]

[changesets]
tags = ["Added", "Fixed"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "trunk", cfg.Git.DefaultBranch)
	assert.Equal(t, []string{"release"}, cfg.Git.ReleaseBranches)
	assert.False(t, cfg.Changelog.ShowCommitHash)
	// unset fields keep their defaults
	assert.True(t, cfg.Changelog.ShowAcknowledgments)
	assert.Equal(t, "%Y-%m-%d", cfg.Changelog.ReleaseDateFormat)
	assert.True(t, cfg.Packages.IgnoreUnpublished)
	assert.Equal(t, []string{"cargo/internal-*"}, cfg.Packages.Ignore)
	assert.Equal(t, [][]string{{"cargo/a", "cargo/b"}}, cfg.Packages.Fixed)
	assert.Equal(t, []string{"Added", "Fixed"}, cfg.Changesets.Tags)
}

func TestLoadFile_InvalidGroupsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[packages]
fixed = [["cargo/a"]]
linked = [["cargo/a"]]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
}

func TestLoad_PrefersTOMLOverYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(`[git]
default_branch = "from-toml"
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("git:\n  default_branch: from-yaml\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "from-toml", cfg.Git.DefaultBranch)
}
