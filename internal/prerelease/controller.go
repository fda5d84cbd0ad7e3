package prerelease

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sampo-dev/sampo/internal/changeset"
	"github.com/sampo-dev/sampo/internal/ecosystem"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
)

var log = logx.For("prerelease")

var labelPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)
var numericLabelPattern = regexp.MustCompile(`^[0-9-]+$`)

// reservedLabels can never be used as a pre-release label: they either
// collide with dist-tag conventions ("latest") or with this controller's own
// vocabulary ("stable", "prerelease", "none").
var reservedLabels = map[string]bool{
	"latest":     true,
	"stable":     true,
	"prerelease": true,
	"none":       true,
}

// ValidLabel reports whether label is acceptable to Enter: non-empty,
// matching [A-Za-z0-9-]+, not purely numeric, and not reserved.
func ValidLabel(label string) bool {
	if !labelPattern.MatchString(label) || numericLabelPattern.MatchString(label) {
		return false
	}
	return !reservedLabels[strings.ToLower(label)]
}

// Controller mutates per-package versions and the workspace's pre-release
// state file. Root is the workspace root directory; sampoDir is the absolute
// path to its .sampo directory.
type Controller struct {
	Root      string
	SampoDir  string
	Workspace *workspace.Workspace
	Adapters  map[string]ecosystem.Adapter
}

// New builds a Controller scoped to one workspace.
func New(root, sampoDir string, ws *workspace.Workspace, adapters map[string]ecosystem.Adapter) *Controller {
	return &Controller{Root: root, SampoDir: sampoDir, Workspace: ws, Adapters: adapters}
}

func (c *Controller) statePath() string     { return filepath.Join(c.SampoDir, "prerelease.json") }
func (c *Controller) pendingDir() string    { return filepath.Join(c.SampoDir, changeset.PendingDir) }
func (c *Controller) preservedDir() string  { return filepath.Join(c.SampoDir, changeset.PreservedDir) }

// resolveRefs resolves a list of package references (canonical "eco/name" or
// a plain name unique across ecosystems) into workspace ids.
func (c *Controller) resolveRefs(refs []string) ([]workspace.Id, error) {
	ids := make([]workspace.Id, 0, len(refs))
	for _, ref := range refs {
		if id, ok := workspace.ParseId(ref); ok {
			if _, found := c.Workspace.Get(id); !found {
				return nil, sampoerr.NewUnknownPackageError(ref, "")
			}
			ids = append(ids, id)
			continue
		}
		matches := c.Workspace.ResolvePlainName(ref)
		switch len(matches) {
		case 0:
			return nil, sampoerr.NewUnknownPackageError(ref, "")
		case 1:
			ids = append(ids, matches[0])
		default:
			candidates := make([]string, len(matches))
			for i, m := range matches {
				candidates[i] = m.String()
			}
			return nil, sampoerr.NewAmbiguousPackageError(ref, "", candidates)
		}
	}
	return ids, nil
}

func idsToStrings(ids []workspace.Id) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func (c *Controller) writeVersion(id workspace.Id, v *semver.Version) error {
	pkg, found := c.Workspace.Get(id)
	if !found {
		return sampoerr.NewUnknownPackageError(id.String(), "")
	}
	adapter, ok := c.Adapters[id.Ecosystem]
	if !ok {
		return sampoerr.NewInvalidConfigError("ecosystem", fmt.Sprintf("no adapter registered for ecosystem %q", id.Ecosystem), nil)
	}
	if err := adapter.WriteVersion(c.Root, pkg.ManifestPath, v.String()); err != nil {
		return err
	}
	pkg.Version = v
	return nil
}

// Enter puts the selected packages into pre-release mode under label: each
// package's version becomes bump(current, patch) with label attached, and
// subsequent releases consume changesets into the preservation directory
// instead of deleting them.
func (c *Controller) Enter(label string, refs []string) (*State, error) {
	if !ValidLabel(label) {
		return nil, sampoerr.NewInvalidConfigError("label", fmt.Sprintf("invalid pre-release label %q", label), nil)
	}

	ids, err := c.resolveRefs(refs)
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		pkg, _ := c.Workspace.Get(id)
		bumped, err := pkg.Version.Bump(semver.LevelPatch)
		if err != nil {
			return nil, sampoerr.NewInvalidVersionError(pkg.Version.String(), err.Error())
		}
		if err := c.writeVersion(id, bumped.AttachPreRelease(label)); err != nil {
			return nil, err
		}
	}

	state := &State{Mode: ModePrerelease, Label: label, Packages: idsToStrings(ids)}
	if err := WriteState(c.statePath(), state); err != nil {
		return nil, err
	}
	log.Debug("entered pre-release mode", "label", label, "packages", len(ids))
	return state, nil
}

// Exit restores every preserved changeset back to pending and strips the
// pre-release suffix from each selected package's version. If refs is empty,
// every package currently named in state is exited.
func (c *Controller) Exit(refs []string) (*State, error) {
	state, err := ReadState(c.statePath())
	if err != nil {
		return nil, err
	}

	ids, err := c.exitTargets(state, refs)
	if err != nil {
		return nil, err
	}

	if err := changeset.Restore(c.preservedDir(), c.pendingDir()); err != nil {
		return nil, err
	}

	for _, id := range ids {
		pkg, found := c.Workspace.Get(id)
		if !found {
			continue
		}
		if err := c.writeVersion(id, pkg.Version.StripPreRelease()); err != nil {
			return nil, err
		}
	}

	remaining := removeAll(state.Packages, idsToStrings(ids))
	if len(remaining) == 0 {
		if err := DeleteState(c.statePath()); err != nil {
			return nil, err
		}
		log.Debug("exited pre-release mode", "packages", len(ids))
		return stableState(), nil
	}

	next := &State{Mode: ModePrerelease, Label: state.Label, Packages: remaining}
	if err := WriteState(c.statePath(), next); err != nil {
		return nil, err
	}
	log.Debug("exited pre-release mode for a subset of packages", "exited", len(ids), "remaining", len(remaining))
	return next, nil
}

// Switch exits every package currently in pre-release mode and re-enters the
// same set under newLabel.
func (c *Controller) Switch(newLabel string) (*State, error) {
	state, err := ReadState(c.statePath())
	if err != nil {
		return nil, err
	}
	if state.Mode != ModePrerelease {
		return nil, sampoerr.NewInvalidConfigError("mode", "workspace is not currently in pre-release mode", nil)
	}

	packages := append([]string{}, state.Packages...)
	if _, err := c.Exit(packages); err != nil {
		return nil, err
	}
	return c.Enter(newLabel, packages)
}

// exitTargets resolves refs against state's package list; an empty refs
// means "every package currently in pre-release mode".
func (c *Controller) exitTargets(state *State, refs []string) ([]workspace.Id, error) {
	if len(refs) == 0 {
		return c.resolveRefs(state.Packages)
	}
	return c.resolveRefs(refs)
}

func removeAll(all, remove []string) []string {
	removeSet := make(map[string]bool, len(remove))
	for _, r := range remove {
		removeSet[r] = true
	}
	out := make([]string, 0, len(all))
	for _, a := range all {
		if !removeSet[a] {
			out = append(out, a)
		}
	}
	return out
}
