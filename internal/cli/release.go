package cli

import (
	"fmt"
	"time"

	"github.com/sampo-dev/sampo/internal/release"
	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Compute and apply the release plan",
	Long:  "Runs plan, then applies it: writes bumped versions and rewritten dependency requirements to every affected manifest, regenerates lockfiles, renders changelogs, and consumes (or, in pre-release mode, preserves) the changesets that were folded in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := release.Load(".")
		if err != nil {
			fail(err)
			return nil
		}

		plan, err := engine.Release(time.Now())
		if err != nil {
			fail(err)
			return nil
		}

		printPlan(plan)
		fmt.Println("\nRelease applied.")
		return nil
	},
}
