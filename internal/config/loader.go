package config

import (
	"fmt"
	"path/filepath"

	"github.com/sampo-dev/sampo/internal/fileutil"
	"github.com/spf13/viper"
)

// candidateNames are the config file stems Load searches for under
// .sampo/, tried in order. TOML matches the schema header in the workspace
// layout documentation; YAML/JSON are accepted for format flexibility,
// mirroring the teacher's multi-extension FindConfig walk.
var candidateNames = []string{"config.toml", "config.yaml", "config.yml", "config.json"}

// Load searches sampoDir (normally "<root>/.sampo") for a recognised config
// file, reads it through viper, applies documented defaults to any key the
// file left unset, and validates the result.
//
// A missing config file is not an error: Sampo runs with every default
// applied, matching the "all fields optional" framing of the schema.
func Load(sampoDir string) (*Config, error) {
	path, err := findConfigFile(sampoDir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		cfg := Default()
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile reads a specific config file path through viper, layering it
// over the documented defaults, and validates the result.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	d := Default()
	v.SetDefault("git.default_branch", d.Git.DefaultBranch)
	v.SetDefault("changelog.show_commit_hash", d.Changelog.ShowCommitHash)
	v.SetDefault("changelog.show_acknowledgments", d.Changelog.ShowAcknowledgments)
	v.SetDefault("changelog.show_release_date", d.Changelog.ShowReleaseDate)
	v.SetDefault("changelog.release_date_format", d.Changelog.ReleaseDateFormat)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// findConfigFile returns the first candidate that exists under sampoDir, or
// "" if none do.
func findConfigFile(sampoDir string) (string, error) {
	for _, name := range candidateNames {
		path := filepath.Join(sampoDir, name)
		if fileutil.PathExists(path) {
			return path, nil
		}
	}
	return "", nil
}
