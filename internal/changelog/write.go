package changelog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/fileutil"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/planner"
	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/workspace"
)

var sectionHeadingRe = regexp.MustCompile(`(?m)^## `)

// splitPreamble separates content's custom top matter (everything before
// the first "## " line) from the release sections beneath it.
func splitPreamble(content string) (preamble, sections string) {
	loc := sectionHeadingRe.FindStringIndex(content)
	if loc == nil {
		return content, ""
	}
	return content[:loc[0]], content[loc[0]:]
}

// splitSections breaks the release-sections portion of a changelog into one
// string per "## " block.
func splitSections(sections string) []string {
	if sections == "" {
		return nil
	}
	idx := sectionHeadingRe.FindAllStringIndex(sections, -1)
	out := make([]string, 0, len(idx))
	for i, loc := range idx {
		end := len(sections)
		if i+1 < len(idx) {
			end = idx[i+1][0]
		}
		out = append(out, sections[loc[0]:end])
	}
	return out
}

// replaceOrPrepend inserts newSection into sections: if a section already
// begins with "## <version>" (a prior dry run of the same release), that
// exact section is replaced in place; otherwise newSection is prepended
// above every existing section, newest first.
func replaceOrPrepend(sections, newSection, version string) string {
	prefix := "## " + version
	existing := splitSections(sections)

	for i, s := range existing {
		if strings.HasPrefix(s, prefix) {
			existing[i] = newSection
			return strings.Join(existing, "")
		}
	}

	return newSection + sections
}

// ApplySection merges newSection into the changelog file at path: the
// custom preamble is preserved untouched, and newSection either replaces an
// existing same-version section (idempotent re-run) or is prepended above
// the most recent prior release.
func ApplySection(path, newSection, version string) error {
	var existing string
	if fileutil.PathExists(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return sampoerr.NewIoError(path, "failed to read changelog", err)
		}
		existing = string(data)
	}

	preamble, sections := splitPreamble(existing)
	sections = replaceOrPrepend(sections, newSection, version)

	var out strings.Builder
	out.WriteString(preamble)
	if preamble != "" && !strings.HasSuffix(preamble, "\n") {
		out.WriteString("\n")
	}
	if preamble != "" {
		out.WriteString("\n")
	}
	out.WriteString(sections)

	if err := fileutil.AtomicWrite(path, []byte(out.String()), 0o644); err != nil {
		return sampoerr.NewIoError(path, "failed to write changelog", err)
	}
	return nil
}

// RenderAndWrite renders and writes the changelog section for every entry
// in plan, in the plan's deterministic (lexicographic-by-id) order.
func RenderAndWrite(root string, cfg *config.Config, ws *workspace.Workspace, plan *planner.Plan, releaseTime time.Time) error {
	log := logx.For("changelog")
	r := NewRenderer(cfg, ws, plan)

	for i := range plan.Entries {
		entry := &plan.Entries[i]
		pkg, found := ws.Get(entry.Id)
		if !found {
			continue
		}

		section, err := r.RenderSection(entry, releaseTime)
		if err != nil {
			return err
		}

		changelogRelPath := pkg.ChangelogPath
		if changelogRelPath == "" {
			changelogRelPath = filepath.Join(pkg.Dir, "CHANGELOG.md")
		}
		path := filepath.Join(root, changelogRelPath)

		if err := ApplySection(path, section, entry.To.String()); err != nil {
			return err
		}
		log.Debug("wrote changelog section", "package", entry.Id.String(), "version", entry.To.String())
	}

	return nil
}
