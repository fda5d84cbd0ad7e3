package changeset

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sampo-dev/sampo/internal/fileutil"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/sampoerr"
)

var log = logx.For("changeset")

// PendingDir and PreservedDir name the two directories a changeset file can
// live in, relative to .sampo/.
const (
	PendingDir   = "changesets"
	PreservedDir = "prerelease"
)

// ReadDir scans dir (an absolute path, normally "<sampoDir>/changesets" or
// "<sampoDir>/prerelease") for *.md files and parses each one. A missing
// directory returns an empty slice, not an error.
func ReadDir(dir string) ([]*Changeset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, sampoerr.NewIoError(dir, "failed to list changesets", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]*Changeset, 0, len(names))
	for _, name := range names {
		cs, err := Read(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

// Consume deletes cs from disk, the stable-mode disposition once its
// entries are fully folded into an applied plan.
func Consume(cs *Changeset) error {
	log.Debug("consuming changeset", "path", cs.Path)
	if err := os.Remove(cs.Path); err != nil {
		return sampoerr.NewIoError(cs.Path, "failed to consume changeset", err)
	}
	return nil
}

// Preserve moves cs from the pending directory into preservedDir, the
// pre-release-mode disposition: the file survives so Restore can bring it
// back once the workspace exits pre-release mode.
func Preserve(cs *Changeset, preservedDir string) error {
	if err := fileutil.EnsureDir(preservedDir); err != nil {
		return sampoerr.NewIoError(preservedDir, "failed to create preservation directory", err)
	}
	dest := filepath.Join(preservedDir, filepath.Base(cs.Path))
	log.Debug("preserving changeset", "from", cs.Path, "to", dest)
	if err := os.Rename(cs.Path, dest); err != nil {
		return sampoerr.NewIoError(cs.Path, "failed to preserve changeset", err)
	}
	cs.Path = dest
	return nil
}

// Restore moves every file in preservedDir back into pendingDir, undoing
// Preserve. It is invoked when the pre-release controller exits or
// switches label.
func Restore(preservedDir, pendingDir string) error {
	entries, err := os.ReadDir(preservedDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return sampoerr.NewIoError(preservedDir, "failed to list preserved changesets", err)
	}

	if err := fileutil.EnsureDir(pendingDir); err != nil {
		return sampoerr.NewIoError(pendingDir, "failed to create changesets directory", err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		src := filepath.Join(preservedDir, e.Name())
		dest := filepath.Join(pendingDir, e.Name())
		log.Debug("restoring changeset", "from", src, "to", dest)
		if err := os.Rename(src, dest); err != nil {
			errs = append(errs, sampoerr.NewIoError(src, "failed to restore changeset", err))
		}
	}
	return errors.Join(errs...)
}
