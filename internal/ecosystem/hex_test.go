package ecosystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMixExs = `defmodule MyApp.MixProject do
  use Mix.Project

  def project do
    [
      app: :my_app,
      version: "1.2.3",
      elixir: "~> 1.14",
      deps: deps()
    ]
  end

  defp deps do
    [
      {:jason, "~> 1.4"},
      {:phoenix, ">= 1.7.0"},
      {:local_dep, path: "../local_dep"}
    ]
  end

  defp package do
    [
      licenses: ["Apache-2.0"],
      links: %{"GitHub" => "https://github.com/example/my_app"}
    ]
  end
end
`

const sampleMixExsNoPackage = `defmodule MyUmbrellaApp.MixProject do
  use Mix.Project

  def project do
    [
      app: :my_umbrella_app,
      version: "0.1.0",
      elixir: "~> 1.14",
      deps: deps()
    ]
  end

  defp deps do
    []
  end
end
`

func TestHexAdapter_Parse(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "mix.exs"), []byte(sampleMixExs), 0o644))

	a := &HexAdapter{}
	info, err := a.Parse(tempDir, "mix.exs")
	require.NoError(t, err)
	assert.Equal(t, "my_app", info.Name)
	assert.Equal(t, "1.2.3", info.Version)
	assert.True(t, info.Publishable, "a package() block makes the app publishable")

	byName := map[string]string{}
	for _, d := range info.Dependencies {
		byName[d.Target.Name] = d.Requirement
	}
	assert.Equal(t, "~> 1.4", byName["jason"])
	assert.Equal(t, ">= 1.7.0", byName["phoenix"])
	_, hasLocal := byName["local_dep"]
	assert.False(t, hasLocal, "path dependency should be skipped")
}

func TestHexAdapter_Parse_NoPackageBlockIsNotPublishable(t *testing.T) {
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "mix.exs"), []byte(sampleMixExsNoPackage), 0o644))

	a := &HexAdapter{}
	info, err := a.Parse(tempDir, "mix.exs")
	require.NoError(t, err)
	assert.False(t, info.Publishable, "an umbrella app with no package() block is not publishable")
}

func TestHexAdapter_WriteVersion(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "mix.exs")
	require.NoError(t, os.WriteFile(path, []byte(sampleMixExs), 0o644))

	a := &HexAdapter{}
	require.NoError(t, a.WriteVersion(tempDir, "mix.exs", "2.0.0"))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, `version: "2.0.0"`)
	assert.Contains(t, text, `app: :my_app`)
	assert.Contains(t, text, `elixir: "~> 1.14"`)
}

func TestHexAdapter_WriteRequirement(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "mix.exs")
	require.NoError(t, os.WriteFile(path, []byte(sampleMixExs), 0o644))

	a := &HexAdapter{}
	require.NoError(t, a.WriteRequirement(tempDir, "mix.exs", "", "jason", "1.5.0", false))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(out), `{:jason, "~> 1.5.0"}`)
}

func TestHexAdapter_ValidateConstraint(t *testing.T) {
	a := &HexAdapter{}
	assert.Equal(t, ConstraintSatisfies, a.ValidateConstraint("~> 1.4", "1.4.9"))
	assert.Equal(t, ConstraintViolates, a.ValidateConstraint("~> 1.4", "2.0.0"))
}
