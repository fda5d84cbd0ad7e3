package changeset

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/sampo-dev/sampo/internal/fileutil"
	"github.com/sampo-dev/sampo/internal/sampoerr"
)

// Write serializes entries and body into the flat frontmatter schema (the
// legacy schema is never emitted, per the dynamic-shapes design note) and
// atomically creates a new file under dir. The filename is an opaque
// content hash, matching the spec's "file name is opaque" rule.
func Write(dir string, entries map[string]Entry, body string) (string, error) {
	var b strings.Builder
	b.WriteString("---\n")

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, ref := range keys {
		e := entries[ref]
		if e.Tag != "" {
			fmt.Fprintf(&b, "%s: %s (%s)\n", ref, e.Level, e.Tag)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", ref, e.Level)
		}
	}
	b.WriteString("---\n\n")
	b.WriteString(normalizeBody(body))

	content := b.String()
	name := contentFilename(content)
	path := filepath.Join(dir, name)

	if err := fileutil.AtomicWrite(path, []byte(content), 0o644); err != nil {
		return "", sampoerr.NewIoError(path, "failed to write changeset", err)
	}
	return path, nil
}

// contentFilename derives an opaque but stable filename from content so
// repeated Write calls for identical content are idempotent instead of
// accumulating duplicates.
func contentFilename(content string) string {
	sum := sha1.Sum([]byte(content))
	return hex.EncodeToString(sum[:8]) + ".md"
}

// CaptureProvenance best-effort reads the local git repository containing
// root for the configured user identity and the current HEAD commit. Both
// fields are left empty, not an error, when root is not a git checkout —
// provenance is metadata, never a hard requirement for writing a
// changeset.
func CaptureProvenance(root string) Provenance {
	repo, err := gogit.PlainOpenWithOptions(root, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Provenance{}
	}

	var prov Provenance

	if cfg, err := repo.Config(); err == nil {
		name := cfg.User.Name
		email := cfg.User.Email
		switch {
		case name != "" && email != "":
			prov.Author = fmt.Sprintf("%s <%s>", name, email)
		case name != "":
			prov.Author = name
		case email != "":
			prov.Author = email
		}
	}

	if head, err := repo.Head(); err == nil {
		prov.Commit = head.Hash().String()
	}

	return prov
}
