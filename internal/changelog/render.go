// Package changelog renders the per-package CHANGELOG.md section a release
// plan produces: heading grouping by custom tag or bump level, contributing
// changeset bodies enriched with commit links and acknowledgments, and
// imputed lines for cascade and fixed-group bumps that never had a
// changeset of their own.
package changelog

import (
	"fmt"
	"strings"
	"time"

	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/planner"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/sampo-dev/sampo/internal/workspace"
)

// section is one heading group ("### Major changes", a custom tag, ...) and
// the bullet lines rendered beneath it.
type section struct {
	Heading string
	Lines   []string
}

// Renderer builds new changelog sections from a computed Plan.
type Renderer struct {
	Config    *config.Config
	Workspace *workspace.Workspace
	Plan      *planner.Plan
}

// NewRenderer builds a Renderer scoped to one plan.
func NewRenderer(cfg *config.Config, ws *workspace.Workspace, plan *planner.Plan) *Renderer {
	return &Renderer{Config: cfg, Workspace: ws, Plan: plan}
}

var bumpHeading = map[semver.BumpLevel]string{
	semver.LevelMajor: "Major changes",
	semver.LevelMinor: "Minor changes",
	semver.LevelPatch: "Patch changes",
}

// RenderSection renders the complete "## <version>[ - <date>]" block for
// entry, including every nested "### <heading>" group.
func (r *Renderer) RenderSection(entry *planner.PlanEntry, releaseTime time.Time) (string, error) {
	pkg, found := r.Workspace.Get(entry.Id)
	if !found {
		return "", fmt.Errorf("plan entry %s has no workspace package", entry.Id)
	}

	heading := "## " + entry.To.String()
	if r.Config.Changelog.ShowReleaseDate {
		dateStr, err := formatDate(releaseTime, r.Config.Changelog.ReleaseDateFormat, r.Config.Changelog.ReleaseDateTimezone)
		if err != nil {
			return "", err
		}
		heading += " - " + dateStr
	}

	var b strings.Builder
	b.WriteString(heading + "\n\n")
	for _, sec := range r.buildSections(entry, pkg) {
		b.WriteString("### " + sec.Heading + "\n")
		for _, line := range sec.Lines {
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n", nil
}

// buildSections groups entry's changeset-sourced lines and imputed lines
// into headings, ordered: configured custom tags first (in declared order),
// then the bump-level fallback headings, then any other heading
// encountered (a tag used in a changeset but absent from configuration).
func (r *Renderer) buildSections(entry *planner.PlanEntry, pkg *workspace.Package) []section {
	lines := make(map[string][]string)
	var firstSeen []string
	add := func(heading, line string) {
		if _, ok := lines[heading]; !ok {
			firstSeen = append(firstSeen, heading)
		}
		lines[heading] = append(lines[heading], line)
	}

	for _, src := range entry.Sources {
		heading := src.Tag
		if heading == "" {
			heading = bumpHeading[src.Level]
		}
		add(heading, renderEntryLine(src, r.Config))
	}

	for _, line := range r.imputedLines(entry, pkg) {
		add(bumpHeading[entry.Level], line)
	}

	order := append([]string{}, r.Config.Changesets.Tags...)
	order = append(order, bumpHeading[semver.LevelMajor], bumpHeading[semver.LevelMinor], bumpHeading[semver.LevelPatch])

	emitted := make(map[string]bool)
	var sections []section
	for _, h := range order {
		if ls, ok := lines[h]; ok && !emitted[h] {
			sections = append(sections, section{Heading: h, Lines: ls})
			emitted[h] = true
		}
	}
	for _, h := range firstSeen {
		if !emitted[h] {
			sections = append(sections, section{Heading: h, Lines: lines[h]})
			emitted[h] = true
		}
	}
	return sections
}

// imputedLines produces the trailing lines for bumps that were never
// explicitly requested by a changeset: dependency cascades and fixed-group
// lockstep.
func (r *Renderer) imputedLines(entry *planner.PlanEntry, pkg *workspace.Package) []string {
	var out []string

	if entry.HasReason(planner.ReasonCascade) {
		for _, d := range pkg.Dependencies {
			target, ok := r.Plan.EntryFor(d.Target)
			if !ok || target.To.Equals(target.From) {
				continue
			}
			out = append(out, fmt.Sprintf("- Updated dependencies: %s@%s", d.Target, target.To))
		}
	}

	if entry.HasReason(planner.ReasonFixedGroup) && len(entry.Sources) == 0 {
		out = append(out, "- Bumped due to fixed dependency group policy")
	}

	return out
}

// renderEntryLine renders one changeset's contribution as a single bullet,
// optionally prefixed with a linked commit hash and suffixed with an
// acknowledgment.
func renderEntryLine(src planner.Source, cfg *config.Config) string {
	var b strings.Builder
	b.WriteString("- ")

	if cfg.Changelog.ShowCommitHash && src.Provenance.Commit != "" {
		short := src.Provenance.Commit
		if len(short) > 7 {
			short = short[:7]
		}
		if repo := cfg.GitHub.Repository; repo != "" {
			b.WriteString(fmt.Sprintf("[%s](https://github.com/%s/commit/%s) ", short, repo, src.Provenance.Commit))
		} else {
			b.WriteString(short + " ")
		}
	}

	body := reindentBody(src.Body)
	b.WriteString(body)

	if cfg.Changelog.ShowAcknowledgments && src.Provenance.Author != "" {
		ack := fmt.Sprintf("Thanks @%s!", src.Provenance.Author)
		if endsInFencedCodeBlock(body) {
			b.WriteString("\n\n  — " + ack)
		} else {
			b.WriteString(" — " + ack)
		}
	}

	return b.String()
}

// reindentBody indents every line after the first by two spaces, so nested
// markdown lists and paragraphs in a changeset body remain valid children of
// the top-level "-" bullet they're rendered under.
func reindentBody(body string) string {
	body = strings.TrimSpace(body)
	if body == "" {
		return ""
	}
	lines := strings.Split(body, "\n")
	for i := 1; i < len(lines); i++ {
		if lines[i] != "" {
			lines[i] = "  " + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}

// endsInFencedCodeBlock reports whether body's last non-empty line closes a
// fenced code block, in which case a trailing acknowledgment must start on
// its own line to avoid being parsed as part of the fence.
func endsInFencedCodeBlock(body string) bool {
	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	return strings.HasPrefix(last, "```")
}
