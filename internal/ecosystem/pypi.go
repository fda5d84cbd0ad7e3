package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/BurntSushi/toml"
	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// PypiAdapter implements the Adapter capability set for Python's
// pyproject.toml, supporting both the Poetry ([tool.poetry]) and PEP 621
// ([project]) manifest shapes, grounded on the teacher's priority-ordered
// detection in internal/ecosystem/python.go.
type PypiAdapter struct{}

func (a *PypiAdapter) Name() string { return "pypi" }

type pyproject struct {
	Project struct {
		Name         string   `toml:"name"`
		Version      string   `toml:"version"`
		Dependencies []string `toml:"dependencies"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name         string            `toml:"name"`
			Version      string            `toml:"version"`
			Dependencies map[string]string `toml:"dependencies"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func (a *PypiAdapter) Discover(root string) ([]string, error) {
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
		if info.Name() == "pyproject.toml" {
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

var pyRequirementRe = regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*([<>=!~^].*)?$`)

func (a *PypiAdapter) Parse(root, manifestRelPath string) (*ManifestInfo, error) {
	content, err := os.ReadFile(filepath.Join(root, manifestRelPath))
	if err != nil {
		return nil, err
	}

	var p pyproject
	if err := toml.Unmarshal(content, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", manifestRelPath, err)
	}

	if p.Tool.Poetry.Name != "" {
		var deps []workspace.Dependency
		for name, req := range p.Tool.Poetry.Dependencies {
			if name == "python" {
				continue
			}
			deps = append(deps, workspace.Dependency{
				Target:      workspace.NewId("pypi", name),
				Kind:        workspace.DependencyRuntime,
				Requirement: req,
			})
		}
		return &ManifestInfo{Name: p.Tool.Poetry.Name, Version: p.Tool.Poetry.Version, Publishable: true, Dependencies: deps}, nil
	}

	if p.Project.Name != "" {
		var deps []workspace.Dependency
		for _, raw := range p.Project.Dependencies {
			m := pyRequirementRe.FindStringSubmatch(raw)
			if m == nil {
				continue
			}
			deps = append(deps, workspace.Dependency{
				Target:      workspace.NewId("pypi", m[1]),
				Kind:        workspace.DependencyRuntime,
				Requirement: m[2],
			})
		}
		return &ManifestInfo{Name: p.Project.Name, Version: p.Project.Version, Publishable: true, Dependencies: deps}, nil
	}

	return nil, fmt.Errorf("no [project] or [tool.poetry] name in %s", manifestRelPath)
}

var (
	poetrySectionRe    = regexp.MustCompile(`(?s)(\[tool\.poetry\].*?)(\n\[|\z)`)
	projectSectionRe   = regexp.MustCompile(`(?s)(\[project\].*?)(\n\[|\z)`)
	pypiVersionFieldRe = regexp.MustCompile(`(version\s*=\s*")([^"]+)(")`)
)

func (a *PypiAdapter) WriteVersion(root, manifestRelPath, newVersion string) error {
	path := filepath.Join(root, manifestRelPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(content)

	section := poetrySectionRe
	if !section.MatchString(text) {
		section = projectSectionRe
	}
	loc := section.FindStringSubmatchIndex(text)
	if loc == nil {
		return fmt.Errorf("no [project] or [tool.poetry] section in %s", manifestRelPath)
	}
	sub := text[loc[2]:loc[3]]
	newSub := pypiVersionFieldRe.ReplaceAllString(sub, "${1}"+newVersion+"${3}")
	newText := text[:loc[2]] + newSub + text[loc[3]:]
	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *PypiAdapter) WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error {
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

	// Poetry table form: `name = "^1.0"`
	poetryDepRe := regexp.MustCompile(`(?m)^(` + regexp.QuoteMeta(depName) + `\s*=\s*")([^"]+)(")`)
	if poetryDepRe.MatchString(text) {
		m := poetryDepRe.FindStringSubmatch(text)
		rewritten := rewriteCargoRequirement(m[2], newVersion) // same operator-preserving scheme (^,~,=)
		newText := poetryDepRe.ReplaceAllString(text, "${1}"+rewritten+"${3}")
		return os.WriteFile(path, []byte(newText), 0o644)
	}

	// PEP 621 array form: `"name>=1.0"`
	pep621DepRe := regexp.MustCompile(`("` + regexp.QuoteMeta(depName) + `)([<>=!~^][^"]*)(")`)
	if pep621DepRe.MatchString(text) {
		newText := pep621DepRe.ReplaceAllString(text, "${1}>="+newVersion+"${3}")
		return os.WriteFile(path, []byte(newText), 0o644)
	}

	return nil
}

func (a *PypiAdapter) RegenerateLockfile(root string) error {
	candidates := []string{"poetry.lock", "uv.lock"}
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(root, c)); err == nil {
			return nil
		}
	}
	return nil
}

func (a *PypiAdapter) ValidateConstraint(requirement, candidate string) ConstraintResult {
	if requirement == "" {
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
