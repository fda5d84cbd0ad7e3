package ecosystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCargoAdapter_Parse(t *testing.T) {
	t.Run("parses name, version, and dependencies", func(t *testing.T) {
		tempDir := t.TempDir()
		content := `[package]
name = "my-rust-crate"
version = "1.2.3"
edition = "2021"

[dependencies]
serde = "1.0"
tokio = { version = "1.5", features = ["full"] }
local-crate = { path = "../local-crate" }
shared = { workspace = true }
`
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "Cargo.toml"), []byte(content), 0o644))

		a := &CargoAdapter{}
		info, err := a.Parse(tempDir, "Cargo.toml")
		require.NoError(t, err)
		assert.Equal(t, "my-rust-crate", info.Name)
		assert.Equal(t, "1.2.3", info.Version)
		assert.True(t, info.Publishable)

		byName := map[string]string{}
		for _, d := range info.Dependencies {
			byName[d.Target.Name] = d.Requirement
		}
		assert.Equal(t, "1.0", byName["serde"])
		assert.Equal(t, "1.5", byName["tokio"])
		_, hasLocal := byName["local-crate"]
		assert.False(t, hasLocal, "path-only dependency should be skipped")
	})

	t.Run("respects publish = false", func(t *testing.T) {
		tempDir := t.TempDir()
		content := "[package]\nname = \"internal-only\"\nversion = \"0.1.0\"\npublish = false\n"
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "Cargo.toml"), []byte(content), 0o644))

		a := &CargoAdapter{}
		info, err := a.Parse(tempDir, "Cargo.toml")
		require.NoError(t, err)
		assert.False(t, info.Publishable)
	})
}

func TestCargoAdapter_WriteVersion(t *testing.T) {
	t.Run("rewrites only the version field, preserving everything else", func(t *testing.T) {
		tempDir := t.TempDir()
		path := filepath.Join(tempDir, "Cargo.toml")
		content := `[package]
name = "my-rust-crate"
version = "1.2.3"
edition = "2021"

[dependencies]
serde = "1.0"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		a := &CargoAdapter{}
		require.NoError(t, a.WriteVersion(tempDir, "Cargo.toml", "2.0.0"))

		out, err := os.ReadFile(path)
		require.NoError(t, err)
		text := string(out)
		assert.Contains(t, text, `version = "2.0.0"`)
		assert.Contains(t, text, `name = "my-rust-crate"`)
		assert.Contains(t, text, `edition = "2021"`)
		assert.Contains(t, text, `serde = "1.0"`)
	})
}

func TestCargoAdapter_WriteRequirement(t *testing.T) {
	t.Run("preserves the caret operator", func(t *testing.T) {
		tempDir := t.TempDir()
		path := filepath.Join(tempDir, "Cargo.toml")
		content := "[package]\nname = \"a\"\nversion = \"1.0.0\"\n\n[dependencies]\nother-crate = \"^1.0\"\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		a := &CargoAdapter{}
		require.NoError(t, a.WriteRequirement(tempDir, "Cargo.toml", "", "other-crate", "2.0.0", false))

		out, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(out), `other-crate = "^2.0.0"`)
	})
}

func TestCargoAdapter_ValidateConstraint(t *testing.T) {
	a := &CargoAdapter{}
	assert.Equal(t, ConstraintSatisfies, a.ValidateConstraint("^1.0", "1.5.0"))
	assert.Equal(t, ConstraintViolates, a.ValidateConstraint("^1.0", "2.0.0"))
	assert.Equal(t, ConstraintUnknown, a.ValidateConstraint("not-a-constraint!!", "1.0.0"))
}

func TestCargoAdapter_Discover(t *testing.T) {
	t.Run("finds Cargo.toml but skips node_modules/target", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "Cargo.toml"), []byte("[package]\nname=\"a\"\nversion=\"0.1.0\"\n"), 0o644))
		nested := filepath.Join(tempDir, "target", "nested")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "Cargo.toml"), []byte("[package]\n"), 0o644))

		a := &CargoAdapter{}
		found, err := a.Discover(tempDir)
		require.NoError(t, err)
		assert.Equal(t, []string{"Cargo.toml"}, found)
	})
}
