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

// NpmAdapter implements the Adapter capability set for npm's package.json,
// grounded on the teacher's regex-scoped version replace (not a full JSON
// re-serialisation, so key order/formatting survive untouched).
type NpmAdapter struct{}

func (a *NpmAdapter) Name() string { return "npm" }

type npmManifest struct {
	Name            string            `json:"name"`
	Version         string            `json:"version"`
	Private         bool              `json:"private"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
	PeerDeps        map[string]string `json:"peerDependencies"`
}

func (a *NpmAdapter) Discover(root string) ([]string, error) {
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
		if info.Name() == "package.json" {
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

func (a *NpmAdapter) Parse(root, manifestRelPath string) (*ManifestInfo, error) {
	content, err := os.ReadFile(filepath.Join(root, manifestRelPath))
	if err != nil {
		return nil, err
	}

	var m npmManifest
	if err := json.Unmarshal(content, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestRelPath, err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("no name in %s", manifestRelPath)
	}

	var deps []workspace.Dependency
	addDeps := func(kind workspace.DependencyKind, set map[string]string) {
		for name, req := range set {
			if req == "" || req[0] == '*' {
				continue
			}
			deps = append(deps, workspace.Dependency{
				Target:      workspace.NewId("npm", name),
				Kind:        kind,
				Requirement: req,
			})
		}
	}
	addDeps(workspace.DependencyRuntime, m.Dependencies)
	addDeps(workspace.DependencyDev, m.DevDependencies)
	addDeps(workspace.DependencyPeer, m.PeerDeps)

	return &ManifestInfo{
		Name:         m.Name,
		Version:      m.Version,
		Publishable:  !m.Private,
		Dependencies: deps,
	}, nil
}

var npmVersionFieldRe = regexp.MustCompile(`("version"\s*:\s*")([^"]+)(")`)

func (a *NpmAdapter) WriteVersion(root, manifestRelPath, newVersion string) error {
	path := filepath.Join(root, manifestRelPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	newText := npmVersionFieldRe.ReplaceAllString(string(content), "${1}"+newVersion+"${3}")
	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *NpmAdapter) WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error {
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
	rewritten := rewriteNpmRequirement(m[2], newVersion)
	newText := depRe.ReplaceAllString(text, "${1}"+rewritten+"${3}")
	return os.WriteFile(path, []byte(newText), 0o644)
}

func rewriteNpmRequirement(old, newVersion string) string {
	switch {
	case len(old) > 0 && old[0] == '^':
		return "^" + newVersion
	case len(old) > 0 && old[0] == '~':
		return "~" + newVersion
	default:
		return newVersion
	}
}

func (a *NpmAdapter) RegenerateLockfile(root string) error {
	// Always a no-op: an existing package-lock.json, pnpm-lock.yaml or
	// yarn.lock is detected but not regenerated, and no package manager
	// is invoked.
	candidates := []string{"package-lock.json", "pnpm-lock.yaml", "yarn.lock"}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(root, c)); err == nil {
			return nil
		}
	}
	return nil
}

func (a *NpmAdapter) ValidateConstraint(requirement, candidate string) ConstraintResult {
	if requirement == "*" || requirement == "" {
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
