// Package branchguard checks the active git branch against a release
// allow-list before a release operation proceeds.
package branchguard

import (
	"os"

	gogit "github.com/go-git/go-git/v5"
	"github.com/sampo-dev/sampo/internal/config"
	"github.com/sampo-dev/sampo/internal/logx"
	"github.com/sampo-dev/sampo/internal/sampoerr"
)

// ReleaseBranchEnv overrides the detected branch when set, bypassing the
// git lookup entirely (useful in CI environments that check out a detached
// HEAD but still know their logical branch).
const ReleaseBranchEnv = "SAMPO_RELEASE_BRANCH"

var log = logx.For("branchguard")

// CurrentBranch returns the short name of the branch HEAD points at for the
// repository containing path, walking up the directory tree to find the
// enclosing .git directory.
func CurrentBranch(path string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", sampoerr.NewIoError(path, "failed to open git repository", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", sampoerr.NewIoError(path, "failed to resolve HEAD", err)
	}

	return head.Name().Short(), nil
}

// Check verifies that the active branch for the repository containing
// workspaceRoot is a member of cfg's effective release branch allow-list.
// The SAMPO_RELEASE_BRANCH environment variable, when set, is checked in
// place of the git-detected branch and takes precedence over detection
// failures — it lets CI report its logical branch without a full checkout.
func Check(workspaceRoot string, cfg *config.Config) error {
	allowed := cfg.EffectiveReleaseBranches()

	branch := os.Getenv(ReleaseBranchEnv)
	if branch == "" {
		detected, err := CurrentBranch(workspaceRoot)
		if err != nil {
			return err
		}
		branch = detected
	}

	for _, a := range allowed {
		if a == branch {
			log.Debug("branch allowed", "branch", branch)
			return nil
		}
	}

	log.Warn("branch not in release allow-list", "branch", branch, "allowed", allowed)
	return sampoerr.NewBranchNotAllowedError(branch, allowed)
}
