package ecosystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// PackagistAdapter implements the Adapter capability set for PHP's
// composer.json, structurally identical to the npm adapter's JSON-regex
// technique since composer.json is also just JSON with a top-level
// "version" key.
type PackagistAdapter struct{}

func (a *PackagistAdapter) Name() string { return "packagist" }

type composerManifest struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Require    map[string]string `json:"require"`
	RequireDev map[string]string `json:"require-dev"`
}

func (a *PackagistAdapter) Discover(root string) ([]string, error) {
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
		if info.Name() == "composer.json" {
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

func (a *PackagistAdapter) Parse(root, manifestRelPath string) (*ManifestInfo, error) {
	content, err := os.ReadFile(filepath.Join(root, manifestRelPath))
	if err != nil {
		return nil, err
	}

	var m composerManifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestRelPath, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("no name in %s", manifestRelPath)
	}

	var deps []workspace.Dependency
	addDeps := func(kind workspace.DependencyKind, set map[string]string) {
		for name, req := range set {
			if name == "php" || len(name) == 0 {
				continue
			}
			if req == "" || req == "*" {
				continue
			}
			// skip platform/extension requirements (ext-*, lib-*)
			if len(name) >= 4 && (name[:4] == "ext-" || name[:4] == "lib-") {
				continue
			}
			deps = append(deps, workspace.Dependency{
				Target:      workspace.NewId("packagist", name),
				Kind:        kind,
				Requirement: req,
			})
		}
	}
	addDeps(workspace.DependencyRuntime, m.Require)
	addDeps(workspace.DependencyDev, m.RequireDev)

	return &ManifestInfo{
		Name:         m.Name,
		Version:      m.Version,
		Publishable:  true,
		Dependencies: deps,
	}, nil
}

var composerVersionFieldRe = regexp.MustCompile(`("version"\s*:\s*")([^"]+)(")`)

func (a *PackagistAdapter) WriteVersion(root, manifestRelPath, newVersion string) error {
	path := filepath.Join(root, manifestRelPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	newText := composerVersionFieldRe.ReplaceAllString(string(content), "${1}"+newVersion+"${3}")
	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *PackagistAdapter) WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error {
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
	depRe := regexp.MustCompile(`("` + regexp.QuoteMeta(depName) + `"\s*:\s*")([^"]+)(")`)
	m := depRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	rewritten := rewriteNpmRequirement(m[2], newVersion) // ^, ~ prefix preserved identically in Composer
	newText := depRe.ReplaceAllString(text, "${1}"+rewritten+"${3}")
	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *PackagistAdapter) RegenerateLockfile(root string) error {
	// composer.lock regeneration requires a real `composer update`
	// invocation; out of scope for this engine, kept as a deliberate no-op.
	return nil
}

func (a *PackagistAdapter) ValidateConstraint(requirement, candidate string) ConstraintResult {
	if requirement == "" || requirement == "*" {
		return ConstraintSatisfies
	}
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
