package ecosystem

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// CargoAdapter implements the Adapter capability set for Rust's Cargo.toml,
// grounded on the teacher's structure-preserving regex-scoped version edit.
type CargoAdapter struct{}

func (a *CargoAdapter) Name() string { return "cargo" }

type cargoManifest struct {
	Package cargoPackage `toml:"package"`
	// Dependencies keyed by crate name to a value that is either a bare
	// version string or an inline table with a "version"/"workspace" key.
	Dependencies map[string]interface{} `toml:"dependencies"`
}

type cargoPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Publish *bool  `toml:"publish"`
}

func (a *CargoAdapter) Discover(root string) ([]string, error) {
	var found []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if isSkippedDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.Name() == "Cargo.toml" {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return relErr
			}
			found = append(found, rel)
		}
		return nil
	})
	return found, err
}

func (a *CargoAdapter) Parse(root, manifestRelPath string) (*ManifestInfo, error) {
	content, err := os.ReadFile(filepath.Join(root, manifestRelPath))
	if err != nil {
		return nil, err
	}

	var m cargoManifest
	if err := toml.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestRelPath, err)
	}
	if m.Package.Name == "" {
		return nil, fmt.Errorf("no [package] name in %s", manifestRelPath)
	}

	publishable := true
	if m.Package.Publish != nil {
		publishable = *m.Package.Publish
	}

	var deps []workspace.Dependency
	for name, raw := range m.Dependencies {
		dep := workspace.Dependency{Kind: workspace.DependencyRuntime}
		switch v := raw.(type) {
		case string:
			dep.Requirement = v
		case map[string]interface{}:
			if ws, ok := v["workspace"].(bool); ok && ws {
				dep.WorkspaceInherited = true
			}
			if ver, ok := v["version"].(string); ok {
				dep.Requirement = ver
			}
			if _, hasPath := v["path"]; hasPath && dep.Requirement == "" {
				continue // path-only dependency, left untouched
			}
		default:
			continue
		}
		dep.Target = workspace.NewId("cargo", name)
		deps = append(deps, dep)
	}

	return &ManifestInfo{
		Name:         m.Package.Name,
		Version:      m.Package.Version,
		Publishable:  publishable,
		Dependencies: deps,
	}, nil
}

var cargoPackageSectionRe = regexp.MustCompile(`(?s)(\[package\].*?)(\n\[|\z)`)
var cargoVersionFieldRe = regexp.MustCompile(`(version\s*=\s*")([^"]+)(")`)

func (a *CargoAdapter) WriteVersion(root, manifestRelPath, newVersion string) error {
	path := filepath.Join(root, manifestRelPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text := string(content)
	loc := cargoPackageSectionRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return fmt.Errorf("no [package] section found in %s", manifestRelPath)
	}
	section := text[loc[2]:loc[3]]
	newSection := cargoVersionFieldRe.ReplaceAllString(section, "${1}"+newVersion+"${3}")
	newText := text[:loc[2]] + newSection + text[loc[3]:]

	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *CargoAdapter) WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error {
	targetRel := manifestRelPath
	if inherited && rootManifestRelPath != "" {
		targetRel = rootManifestRelPath
	}
	path := filepath.Join(root, targetRel)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	text := string(content)
	depRe := regexp.MustCompile(`(?m)^(` + regexp.QuoteMeta(depName) + `\s*=\s*(?:\{[^}]*version\s*=\s*"|"))([^"]+)(")`)
	m := depRe.FindStringSubmatch(text)
	if m == nil || m[2] == "*" {
		return nil // path-only or wildcard entry, left untouched
	}
	newText := depRe.ReplaceAllString(text, "${1}"+rewriteCargoRequirement(m[2], newVersion)+"${3}")
	return os.WriteFile(path, []byte(newText), 0o644)
}

// rewriteCargoRequirement preserves the leading operator (^, ~, =, nothing)
// of a Cargo requirement string while replacing its version portion.
func rewriteCargoRequirement(old, newVersion string) string {
	for _, op := range []string{"^", "~", "="} {
		if strings.HasPrefix(old, op) {
			return op + newVersion
		}
	}
	return newVersion
}

func (a *CargoAdapter) RegenerateLockfile(root string) error {
	lockPath := filepath.Join(root, "Cargo.lock")
	if _, err := os.Stat(lockPath); err != nil {
		return nil // no lockfile, nothing to do
	}
	cmd := exec.Command("cargo", "generate-lockfile")
	cmd.Dir = root
	return cmd.Run()
}

func (a *CargoAdapter) ValidateConstraint(requirement, candidate string) ConstraintResult {
	c, err := mmsemver.NewConstraint(requirement)
	if err != nil {
		return ConstraintUnknown
	}
	v, err := mmsemver.NewVersion(candidate)
	if err != nil {
		return ConstraintUnknown
	}
	if c.Check(v) {
		return ConstraintSatisfies
	}
	return ConstraintViolates
}

func isSkippedDir(name string) bool {
	if strings.HasPrefix(name, ".") && name != ".git" {
		return true
	}
	switch name {
	case "node_modules", "vendor", "__pycache__", ".git", "dist", "build", "target":
		return true
	default:
		return false
	}
}
