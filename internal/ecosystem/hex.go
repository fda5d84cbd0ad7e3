package ecosystem

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	mmsemver "github.com/Masterminds/semver/v3"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// HexAdapter implements the Adapter capability set for Elixir's mix.exs,
// extending the cargo adapter's section-bounded regex-replace technique to
// Elixir's `def project do ... end` keyword-list syntax, since mix.exs has
// no structured parser in the teacher's stack.
type HexAdapter struct{}

func (a *HexAdapter) Name() string { return "hex" }

var (
	mixProjectFnRe = regexp.MustCompile(`(?s)def project do(.*?)\n\s*end`)
	mixAppNameRe   = regexp.MustCompile(`app:\s*:([A-Za-z0-9_]+)`)
	mixVersionRe   = regexp.MustCompile(`(version:\s*")([^"]+)(")`)
	mixDepsFnRe    = regexp.MustCompile(`(?s)defp?\s+deps\s*do(.*?)\n\s*end`)
	mixDepEntryRe  = regexp.MustCompile(`\{:([A-Za-z0-9_]+),\s*"([^"]*)"`)
	mixPackageFnRe = regexp.MustCompile(`(?s)defp?\s+package\s*do(.*?)\n\s*end`)
)

func (a *HexAdapter) Discover(root string) ([]string, error) {
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
		if info.Name() == "mix.exs" {
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

func (a *HexAdapter) Parse(root, manifestRelPath string) (*ManifestInfo, error) {
	content, err := os.ReadFile(filepath.Join(root, manifestRelPath))
	if err != nil {
		return nil, err
	}
	text := string(content)

	projectMatch := mixProjectFnRe.FindString(text)
	if projectMatch == "" {
		return nil, fmt.Errorf("no `def project do` block in %s", manifestRelPath)
	}
	nameMatch := mixAppNameRe.FindStringSubmatch(projectMatch)
	versionMatch := mixVersionRe.FindStringSubmatch(projectMatch)
	if nameMatch == nil || versionMatch == nil {
		return nil, fmt.Errorf("no app/version keys in project block of %s", manifestRelPath)
	}

	var deps []workspace.Dependency
	if depsMatch := mixDepsFnRe.FindString(text); depsMatch != "" {
		for _, m := range mixDepEntryRe.FindAllStringSubmatch(depsMatch, -1) {
			name, req := m[1], m[2]
			if req == "" {
				continue // path/git/umbrella dependency, no version requirement
			}
			deps = append(deps, workspace.Dependency{
				Target:      workspace.NewId("hex", name),
				Kind:        workspace.DependencyRuntime,
				Requirement: req,
			})
		}
	}

	// A Hex package is only publishable if mix.exs defines a package()
	// function describing its Hex metadata (licenses, links, files); its
	// absence means the app is private to the umbrella/workspace.
	publishable := mixPackageFnRe.MatchString(text)

	return &ManifestInfo{
		Name:         nameMatch[1],
		Version:      versionMatch[2],
		Publishable:  publishable,
		Dependencies: deps,
	}, nil
}

func (a *HexAdapter) WriteVersion(root, manifestRelPath, newVersion string) error {
	path := filepath.Join(root, manifestRelPath)
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(content)

	loc := mixProjectFnRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return fmt.Errorf("no `def project do` block in %s", manifestRelPath)
	}
	section := text[loc[2]:loc[3]]
	newSection := mixVersionRe.ReplaceAllString(section, "${1}"+newVersion+"${3}")
	newText := text[:loc[2]] + newSection + text[loc[3]:]

	return os.WriteFile(path, []byte(newText), 0o644)
}

func (a *HexAdapter) WriteRequirement(root, manifestRelPath, rootManifestRelPath, depName, newVersion string, inherited bool) error {
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

	loc := mixDepsFnRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil
	}
	section := text[loc[2]:loc[3]]
	entryRe := regexp.MustCompile(`(\{:` + regexp.QuoteMeta(depName) + `,\s*")([^"]*)(")`)
	m := entryRe.FindStringSubmatch(section)
	if m == nil || m[2] == "" {
		return nil // path/git dependency, left untouched
	}
	rewritten := rewriteHexRequirement(m[2], newVersion)
	newSection := entryRe.ReplaceAllString(section, "${1}"+rewritten+"${3}")
	newText := text[:loc[2]] + newSection + text[loc[3]:]
	return os.WriteFile(path, []byte(newText), 0o644)
}

// rewriteHexRequirement preserves the leading operator (~>, >=, ==, nothing)
// of a Hex requirement string while replacing its version portion.
func rewriteHexRequirement(old, newVersion string) string {
	for _, op := range []string{"~>", ">=", "==", ">", "<"} {
		if strings.HasPrefix(old, op) {
			return op + " " + newVersion
		}
	}
	return newVersion
}

func (a *HexAdapter) RegenerateLockfile(root string) error {
	// mix.lock regeneration requires a real `mix deps.get` invocation
	// against the Hex registry; out of scope for this engine, kept as a
	// deliberate no-op.
	return nil
}

func (a *HexAdapter) ValidateConstraint(requirement, candidate string) ConstraintResult {
	if requirement == "" {
		return ConstraintSatisfies
	}
	normalized := strings.ReplaceAll(requirement, "~>", "^")
	c, err := mmsemver.NewConstraint(normalized)
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
