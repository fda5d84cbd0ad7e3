package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	d := Default()
	assert.Equal(t, "main", d.Git.DefaultBranch)
	assert.True(t, d.Changelog.ShowCommitHash)
	assert.True(t, d.Changelog.ShowAcknowledgments)
	assert.True(t, d.Changelog.ShowReleaseDate)
	assert.Equal(t, "%Y-%m-%d", d.Changelog.ReleaseDateFormat)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
		errMsg  string
	}{
		{
			name:   "empty config valid",
			config: &Config{},
		},
		{
			name: "disjoint fixed and linked groups valid",
			config: &Config{
				Packages: PackagesConfig{
					Fixed:  [][]string{{"cargo/a", "cargo/b"}},
					Linked: [][]string{{"npm/c", "npm/d"}},
				},
			},
		},
		{
			name: "package in both fixed and linked fails",
			config: &Config{
				Packages: PackagesConfig{
					Fixed:  [][]string{{"cargo/a", "cargo/b"}},
					Linked: [][]string{{"cargo/a", "npm/c"}},
				},
			},
			wantErr: true,
			errMsg:  "both fixed and linked",
		},
		{
			name: "package in two fixed groups fails",
			config: &Config{
				Packages: PackagesConfig{
					Fixed: [][]string{{"cargo/a", "cargo/b"}, {"cargo/a", "cargo/c"}},
				},
			},
			wantErr: true,
		},
		{
			name: "empty group fails",
			config: &Config{
				Packages: PackagesConfig{
					Fixed: [][]string{{}},
				},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEffectiveReleaseBranches(t *testing.T) {
	c := &Config{Git: GitConfig{DefaultBranch: "main", ReleaseBranches: []string{"release/1.x"}}}
	assert.ElementsMatch(t, []string{"release/1.x", "main"}, c.EffectiveReleaseBranches())

	c2 := &Config{Git: GitConfig{DefaultBranch: "main", ReleaseBranches: []string{"main"}}}
	assert.ElementsMatch(t, []string{"main"}, c2.EffectiveReleaseBranches())
}
