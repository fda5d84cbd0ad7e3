// Package semver provides semantic versioning for Sampo: parsing,
// comparison, and the bump rules (stable and pre-release) in use by the
// release planner. It implements the Semantic Versioning 2.0.0 precedence
// rules (https://semver.org/) plus the project's own pre-release suffix
// convention (`-label` or `-label.N`).
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// BumpLevel is the total order none < patch < minor < major used throughout
// the planner. Join (see Join) is the maximum.
type BumpLevel int

const (
	LevelNone BumpLevel = iota
	LevelPatch
	LevelMinor
	LevelMajor
)

func (l BumpLevel) String() string {
	switch l {
	case LevelPatch:
		return "patch"
	case LevelMinor:
		return "minor"
	case LevelMajor:
		return "major"
	default:
		return "none"
	}
}

// ParseLevel parses one of "patch", "minor", "major" (case-insensitive).
func ParseLevel(s string) (BumpLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patch":
		return LevelPatch, nil
	case "minor":
		return LevelMinor, nil
	case "major":
		return LevelMajor, nil
	case "none", "":
		return LevelNone, nil
	default:
		return LevelNone, fmt.Errorf("unknown bump level %q", s)
	}
}

// Join returns the greater of two levels (the lattice join, ⊔).
func Join(a, b BumpLevel) BumpLevel {
	if a > b {
		return a
	}
	return b
}

// preReleaseRe matches "<ident>" or "<ident>.<N>" where ident is non-empty
// and not purely numeric, per the data model's pre-release grammar.
var preReleaseRe = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9-]*)(?:\.(\d+))?$`)

// Version is a semantic version, optionally carrying a pre-release suffix.
type Version struct {
	Major int
	Minor int
	Patch int

	// PreRelease is empty for a stable version. When set it is the bare
	// label ("alpha", "rc") without any numeric suffix.
	PreRelease string
	// PreReleaseNum is the numeric suffix attached to PreRelease, or -1 if
	// the pre-release has no numeric suffix (bare "alpha", not "alpha.0").
	PreReleaseNum int
}

// IsPreRelease reports whether v carries a pre-release label.
func (v *Version) IsPreRelease() bool {
	return v.PreRelease != ""
}

// String renders the version in "major.minor.patch[-label[.N]]" form.
func (v *Version) String() string {
	base := fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	if v.PreRelease == "" {
		return base
	}
	if v.PreReleaseNum < 0 {
		return fmt.Sprintf("%s-%s", base, v.PreRelease)
	}
	return fmt.Sprintf("%s-%s.%d", base, v.PreRelease, v.PreReleaseNum)
}

// Compare follows semver precedence: numeric core first, then pre-release
// (a stable version is greater than any pre-release sharing the same core).
// Returns -1, 0, or 1.
func (v *Version) Compare(other *Version) int {
	if c := compareInt(v.Major, other.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, other.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, other.Patch); c != 0 {
		return c
	}

	switch {
	case v.PreRelease == "" && other.PreRelease == "":
		return 0
	case v.PreRelease == "" && other.PreRelease != "":
		return 1
	case v.PreRelease != "" && other.PreRelease == "":
		return -1
	}

	if c := strings.Compare(v.PreRelease, other.PreRelease); c != 0 {
		if c < 0 {
			return -1
		}
		return 1
	}
	return compareInt(v.PreReleaseNum, other.PreReleaseNum)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v *Version) Equals(other *Version) bool      { return v.Compare(other) == 0 }
func (v *Version) LessThan(other *Version) bool    { return v.Compare(other) < 0 }
func (v *Version) GreaterThan(other *Version) bool { return v.Compare(other) > 0 }

// Copy returns a deep copy of v.
func (v *Version) Copy() *Version {
	c := *v
	return &c
}

// StripPreRelease returns the stable base version, discarding any
// pre-release suffix. Used by the pre-release controller's Exit command.
func (v *Version) StripPreRelease() *Version {
	return &Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// impliedLevel returns the level implied by a stable core: patch
// if the patch component is nonzero, else minor, else major.
func (v *Version) impliedLevel() BumpLevel {
	switch {
	case v.Patch > 0:
		return LevelPatch
	case v.Minor > 0:
		return LevelMinor
	default:
		return LevelMajor
	}
}

// ImpliedLevel exposes impliedLevel: the level a pre-release version's
// numeric core already implies, used by callers (e.g. the planner) that
// need to tell a suffix-increment bump apart from a core-advancing one.
func (v *Version) ImpliedLevel() BumpLevel {
	return v.impliedLevel()
}

// bumpStable advances a stable core by level, per the standard semver
// bump rules (major resets minor/patch, minor resets patch).
func bumpStable(v *Version, level BumpLevel) *Version {
	switch level {
	case LevelMajor:
		return &Version{Major: v.Major + 1, Minor: 0, Patch: 0}
	case LevelMinor:
		return &Version{Major: v.Major, Minor: v.Minor + 1, Patch: 0}
	case LevelPatch:
		return &Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	default:
		return v.Copy()
	}
}

// Bump applies level to v: stable versions use the plain
// semver rule; pre-release versions compare the incoming level against the
// version's implied level to decide whether to advance the numeric core or
// just bump the pre-release suffix counter.
func (v *Version) Bump(level BumpLevel) (*Version, error) {
	if level == LevelNone {
		return v.Copy(), nil
	}

	if !v.IsPreRelease() {
		return bumpStable(v, level), nil
	}

	implied := v.impliedLevel()
	if level <= implied {
		next := v.Copy()
		if next.PreReleaseNum < 0 {
			next.PreReleaseNum = 1
		} else {
			next.PreReleaseNum++
		}
		return next, nil
	}

	advanced := bumpStable(&Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}, level)
	advanced.PreRelease = v.PreRelease
	advanced.PreReleaseNum = -1
	return advanced, nil
}

// AttachPreRelease returns a copy of v tagged with the given label and no
// numeric suffix, used when entering pre-release mode.
func (v *Version) AttachPreRelease(label string) *Version {
	c := v.Copy()
	c.PreRelease = label
	c.PreReleaseNum = -1
	return c
}

// Parse parses a version string of the form "major.minor.patch[-label[.N]]",
// tolerating a leading "v" and treating "" or "latest" as the zero version.
func Parse(versionStr string) (*Version, error) {
	versionStr = strings.TrimSpace(versionStr)
	if versionStr == "" || versionStr == "latest" {
		return &Version{PreReleaseNum: -1}, nil
	}

	versionStr = strings.TrimPrefix(versionStr, "v")

	core := versionStr
	var preRaw string
	if idx := strings.IndexByte(versionStr, '-'); idx >= 0 {
		core = versionStr[:idx]
		preRaw = versionStr[idx+1:]
	}

	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("invalid version format: %s (expected major.minor.patch)", versionStr)
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %s", parts[0])
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid minor version: %s", parts[1])
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return nil, fmt.Errorf("invalid patch version: %s", parts[2])
	}

	v := &Version{Major: major, Minor: minor, Patch: patch, PreReleaseNum: -1}

	if preRaw == "" {
		return v, nil
	}

	m := preReleaseRe.FindStringSubmatch(preRaw)
	if m == nil {
		return nil, fmt.Errorf("invalid pre-release label %q: leading identifier must not be purely numeric", preRaw)
	}
	v.PreRelease = m[1]
	if m[2] != "" {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("invalid pre-release numeric suffix %q", m[2])
		}
		v.PreReleaseNum = n
	}
	return v, nil
}

// MustParse parses versionStr and panics on error; intended for constants.
func MustParse(versionStr string) *Version {
	v, err := Parse(versionStr)
	if err != nil {
		panic(fmt.Sprintf("failed to parse version %s: %v", versionStr, err))
	}
	return v
}

// New creates a stable Version from its numeric components.
func New(major, minor, patch int) *Version {
	return &Version{Major: major, Minor: minor, Patch: patch, PreReleaseNum: -1}
}

// Zero returns the zero version (0.0.0).
func Zero() *Version {
	return New(0, 0, 0)
}

// ValidPreReleaseLabel reports whether label is acceptable to the
// pre-release controller's Enter command: non-empty, matching
// [A-Za-z0-9-]+, and not purely numeric.
func ValidPreReleaseLabel(label string) bool {
	if label == "" {
		return false
	}
	if !regexp.MustCompile(`^[A-Za-z0-9-]+$`).MatchString(label) {
		return false
	}
	if regexp.MustCompile(`^[0-9-]+$`).MatchString(label) {
		return false
	}
	return true
}
