package changeset

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/sampo-dev/sampo/internal/sampoerr"
	"github.com/sampo-dev/sampo/internal/semver"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// reservedFrontmatterKeys are structural keys belonging to the legacy
// schema rather than package references; they never appear as a flat
// package-ref key.
var reservedFrontmatterKeys = map[string]bool{
	"packages": true,
	"release":  true,
}

// bumpValueRe matches a frontmatter value of the flat schema: a bare bump
// level optionally followed by a parenthesised custom tag, e.g.
// "minor" or "minor (Added)".
var bumpValueRe = regexp.MustCompile(`^(major|minor|patch)\s*(?:\(\s*([^)]+?)\s*\))?$`)

// md is configured once with the frontmatter extension; goldmark.New is
// cheap to reuse across calls but sharing one instance avoids the repeated
// extension-registration cost on large changeset directories.
var md = goldmark.New(goldmark.WithExtensions(meta.Meta))

// Read parses a single changeset file at path. It detects whether the
// frontmatter uses the flat "pkg: level" schema or the legacy
// "packages: [...]; release: level" schema and normalises either into the
// same Entries map, per the dynamic frontmatter design note.
func Read(path string) (*Changeset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, sampoerr.NewIoError(path, "failed to read changeset", err)
	}

	var buf bytes.Buffer
	ctx := parser.NewContext()
	if err := md.Convert(content, &buf, parser.WithContext(ctx)); err != nil {
		return nil, sampoerr.NewInvalidChangesetError(path, "failed to parse markdown", err)
	}

	raw := meta.Get(ctx)
	if raw == nil {
		return nil, sampoerr.NewInvalidChangesetError(path, "no frontmatter block found", nil)
	}

	entries, err := normalizeFrontmatter(raw)
	if err != nil {
		return nil, sampoerr.NewInvalidChangesetError(path, err.Error(), err)
	}

	return &Changeset{
		Path:    path,
		Entries: entries,
		Body:    normalizeBody(extractBody(string(content))),
	}, nil
}

// normalizeFrontmatter detects and normalises both historical schemas into
// the flat ref -> Entry form.
func normalizeFrontmatter(raw map[string]interface{}) (map[string]Entry, error) {
	if isLegacyShape(raw) {
		return normalizeLegacy(raw)
	}
	return normalizeFlat(raw)
}

// isLegacyShape reports whether raw uses the legacy schema: a "packages"
// list plus a top-level "release" bump level, with no other keys.
func isLegacyShape(raw map[string]interface{}) bool {
	_, hasPackages := raw["packages"]
	_, hasRelease := raw["release"]
	return hasPackages && hasRelease && len(raw) == 2
}

func normalizeLegacy(raw map[string]interface{}) (map[string]Entry, error) {
	levelRaw, _ := raw["release"].(string)
	m := bumpValueRe.FindStringSubmatch(strings.TrimSpace(levelRaw))
	if m == nil {
		return nil, fmt.Errorf("invalid release level %q in legacy frontmatter", levelRaw)
	}
	level, err := semver.ParseLevel(m[1])
	if err != nil {
		return nil, err
	}

	packages, err := toStringList(raw["packages"])
	if err != nil {
		return nil, fmt.Errorf("invalid packages list in legacy frontmatter: %w", err)
	}

	entries := make(map[string]Entry, len(packages))
	for _, pkg := range packages {
		entries[pkg] = Entry{Level: level, Tag: m[2]}
	}
	return entries, nil
}

func normalizeFlat(raw map[string]interface{}) (map[string]Entry, error) {
	entries := make(map[string]Entry, len(raw))
	for key, value := range raw {
		if reservedFrontmatterKeys[key] {
			return nil, fmt.Errorf("unexpected reserved key %q outside legacy schema", key)
		}
		str, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("frontmatter value for %q must be a string, got %T", key, value)
		}
		m := bumpValueRe.FindStringSubmatch(strings.TrimSpace(str))
		if m == nil {
			return nil, fmt.Errorf("invalid bump level %q for package %q", str, key)
		}
		level, err := semver.ParseLevel(m[1])
		if err != nil {
			return nil, err
		}
		entries[key] = Entry{Level: level, Tag: m[2]}
	}
	return entries, nil
}

func toStringList(v interface{}) ([]string, error) {
	list, ok := v.([]interface{})
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("expected string list entry, got %T", item)
		}
		out = append(out, s)
	}
	return out, nil
}

// extractBody returns everything after the closing "---" of the frontmatter
// block. A malformed or absent block returns the content unchanged; Read
// has already validated the frontmatter exists by this point.
func extractBody(content string) string {
	lines := strings.Split(content, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return content
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return content
}

// normalizeBody trims the body to a single trailing newline, per the
// changeset file format's "trailing newline normalised" rule.
func normalizeBody(body string) string {
	return strings.TrimRight(strings.TrimSpace(body), "\n") + "\n"
}
