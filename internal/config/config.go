// Package config provides the typed view of a workspace's .sampo/config.toml
// (or its YAML/JSON fallback): branch allow-lists, changelog rendering
// options, package ignore/group policy, and custom changeset tags.
package config

// Config is the parsed, defaulted, and validated configuration the release
// engine consumes. The core never resolves a config file's location itself;
// callers hand it an already-loaded value.
type Config struct {
	LogLevel   string           `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	LogFormat  string           `mapstructure:"log_format" json:"log_format" yaml:"log_format"`
	Git        GitConfig        `mapstructure:"git" json:"git" yaml:"git"`
	GitHub     GitHubConfig     `mapstructure:"github" json:"github" yaml:"github"`
	Changelog  ChangelogConfig  `mapstructure:"changelog" json:"changelog" yaml:"changelog"`
	Packages   PackagesConfig   `mapstructure:"packages" json:"packages" yaml:"packages"`
	Changesets ChangesetsConfig `mapstructure:"changesets" json:"changesets" yaml:"changesets"`
}

// GitConfig controls branch-guard behaviour.
type GitConfig struct {
	DefaultBranch   string   `mapstructure:"default_branch" json:"default_branch" yaml:"default_branch"`
	ReleaseBranches []string `mapstructure:"release_branches" json:"release_branches" yaml:"release_branches"`
}

// GitHubConfig names the repository slug used to build commit/PR links in
// rendered changelog entries (out-of-scope webhook/PR automation is never
// driven from here).
type GitHubConfig struct {
	Repository string `mapstructure:"repository" json:"repository" yaml:"repository"`
}

// ChangelogConfig controls the renderer's section formatting.
type ChangelogConfig struct {
	ShowCommitHash      bool   `mapstructure:"show_commit_hash" json:"show_commit_hash" yaml:"show_commit_hash"`
	ShowAcknowledgments bool   `mapstructure:"show_acknowledgments" json:"show_acknowledgments" yaml:"show_acknowledgments"`
	ShowReleaseDate     bool   `mapstructure:"show_release_date" json:"show_release_date" yaml:"show_release_date"`
	ReleaseDateFormat   string `mapstructure:"release_date_format" json:"release_date_format" yaml:"release_date_format"`
	ReleaseDateTimezone string `mapstructure:"release_date_timezone" json:"release_date_timezone" yaml:"release_date_timezone"`
}

// PackagesConfig controls workspace discovery filtering and group policies.
type PackagesConfig struct {
	IgnoreUnpublished bool       `mapstructure:"ignore_unpublished" json:"ignore_unpublished" yaml:"ignore_unpublished"`
	Ignore            []string   `mapstructure:"ignore" json:"ignore" yaml:"ignore"`
	Fixed             [][]string `mapstructure:"fixed" json:"fixed" yaml:"fixed"`
	Linked            [][]string `mapstructure:"linked" json:"linked" yaml:"linked"`
}

// ChangesetsConfig controls changelog heading labels.
type ChangesetsConfig struct {
	Tags []string `mapstructure:"tags" json:"tags" yaml:"tags"`
}

// Default returns a Config with every documented default applied (main
// branch, stable release-date format, all changelog flags on). Load builds
// on top of this via viper's SetDefault before unmarshalling a config file
// over it, so a present key always wins over the default.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Git: GitConfig{
			DefaultBranch:   "main",
			ReleaseBranches: nil,
		},
		Changelog: ChangelogConfig{
			ShowCommitHash:      true,
			ShowAcknowledgments: true,
			ShowReleaseDate:     true,
			ReleaseDateFormat:   "%Y-%m-%d",
		},
	}
}

// EffectiveReleaseBranches returns the release branch allow-list augmented
// with the default branch, per the schema note that default_branch is
// always implicitly a release branch.
func (c *Config) EffectiveReleaseBranches() []string {
	branches := append([]string{}, c.Git.ReleaseBranches...)
	for _, b := range branches {
		if b == c.Git.DefaultBranch {
			return branches
		}
	}
	return append(branches, c.Git.DefaultBranch)
}
